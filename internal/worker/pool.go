package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"cloudconvert-webhooks/internal/metrics"
	"cloudconvert-webhooks/internal/models"
)

// Options tune retry behaviour.
type Options struct {
	// MaxRetries is the number of attempts a transient failure gets before
	// the delivery is dead-lettered.
	MaxRetries int
	// RetryDelay is the wait before a failed delivery is re-queued.
	RetryDelay time.Duration
	// HandlerTimeout bounds a single EventHandler call.
	HandlerTimeout time.Duration
}

// DefaultOptions returns the settings NewPool uses for zero RetryDelay and
// HandlerTimeout values.
func DefaultOptions() Options {
	return Options{
		MaxRetries:     5,
		RetryDelay:     10 * time.Second,
		HandlerTimeout: 30 * time.Second,
	}
}

// Pool manages a pool of workers and a job queue.
type Pool struct {
	JobQueue chan models.Job

	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	retryWG  sync.WaitGroup

	logger           *slog.Logger
	idempotencyStore IdempotencyStore
	handler          EventHandler
	sink             metrics.Sink
	opts             Options
}

// NewPool creates a new worker pool. A nil sink disables metrics. Zero
// RetryDelay and HandlerTimeout fall back to DefaultOptions; MaxRetries is
// used as given.
func NewPool(maxQueueSize int, logger *slog.Logger, store IdempotencyStore, handler EventHandler, sink metrics.Sink, opts Options) *Pool {
	if sink == nil {
		sink = metrics.NewNoopSink()
	}
	defaults := DefaultOptions()
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaults.RetryDelay
	}
	if opts.HandlerTimeout <= 0 {
		opts.HandlerTimeout = defaults.HandlerTimeout
	}
	return &Pool{
		JobQueue:         make(chan models.Job, maxQueueSize),
		quit:             make(chan struct{}),
		logger:           logger,
		idempotencyStore: store,
		handler:          handler,
		sink:             sink,
		opts:             opts,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(numWorkers int) {
	for i := 1; i <= numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop lets workers finish what is already queued and waits for them. Pending
// retries are dropped. Stop is safe to call more than once.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping worker pool... Draining job queue.")
		close(p.quit)
		p.wg.Wait()
		p.retryWG.Wait()
		p.logger.Info("All workers have stopped.", "abandoned", len(p.JobQueue))
	})
}

// worker is the background goroutine that processes jobs from the queue.
func (p *Pool) worker(id int) {
	defer p.wg.Done()
	p.logger.Info("Worker started", "worker_id", id)

	for {
		select {
		case job := <-p.JobQueue:
			p.process(id, job)
		case <-p.quit:
			for {
				select {
				case job := <-p.JobQueue:
					p.process(id, job)
				default:
					return
				}
			}
		}
	}
}

func (p *Pool) process(id int, job models.Job) {
	event := job.Event
	kind := event.Kind().String()
	key := job.IdempotencyKey()
	logger := p.logger.With(
		"worker_id", id,
		"delivery_id", job.DeliveryID,
		"event", kind,
		"job_id", event.Job().ID,
		"attempt", job.Attempts+1,
	)

	p.sink.EventsInFlightIncr()
	defer p.sink.EventsInFlightDecr()

	ctx := context.Background()

	seen, err := p.idempotencyStore.Has(ctx, key)
	if err != nil {
		logger.Error("Idempotency lookup failed, processing anyway", "error", err)
	} else if seen {
		logger.Warn("Duplicate webhook event detected and ignored")
		p.sink.EventProcessed(kind, metrics.OutcomeDuplicate)
		return
	}

	hctx, cancel := context.WithTimeout(ctx, p.opts.HandlerTimeout)
	err = p.handler.HandleEvent(hctx, event)
	cancel()

	if err == nil {
		logger.Info("Event processed successfully")
		p.markProcessed(ctx, logger, key)
		p.sink.EventProcessed(kind, metrics.OutcomeSuccess)
		return
	}

	var permanentErr *ErrPermanent
	var transientErr *ErrTransient

	switch {
	case errors.As(err, &permanentErr):
		logger.Error("Event failed with permanent error, will not be retried", "error", err)
		p.markProcessed(ctx, logger, key)
		p.sink.EventProcessed(kind, metrics.OutcomePermanent)

	case errors.As(err, &transientErr), errors.Is(err, context.DeadlineExceeded):
		job.Attempts++
		if job.Attempts < p.opts.MaxRetries {
			logger.Warn("Event failed with transient error, re-queuing for another attempt", "error", err, "delay", p.opts.RetryDelay)
			p.sink.EventProcessed(kind, metrics.OutcomeRetry)
			p.retry(job)
			return
		}
		logger.Error("CRITICAL: Job failed after max retries, moving to dead-letter queue (simulated)", "error", err)
		p.markProcessed(ctx, logger, key)
		p.sink.EventProcessed(kind, metrics.OutcomeDead)

	default:
		logger.Error("Event failed with an unknown error", "error", err)
		p.sink.EventProcessed(kind, metrics.OutcomeUnknown)
	}
}

// retry re-queues job after the retry delay unless the pool stops first.
func (p *Pool) retry(job models.Job) {
	p.retryWG.Add(1)
	go func(j models.Job) {
		defer p.retryWG.Done()

		timer := time.NewTimer(p.opts.RetryDelay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-p.quit:
			p.logger.Warn("Pool stopping, retry dropped", "delivery_id", j.DeliveryID, "attempt", j.Attempts+1)
			return
		}

		select {
		case p.JobQueue <- j:
		case <-p.quit:
			p.logger.Warn("Pool stopping, retry dropped", "delivery_id", j.DeliveryID, "attempt", j.Attempts+1)
		}
	}(job)
}

func (p *Pool) markProcessed(ctx context.Context, logger *slog.Logger, key string) {
	if err := p.idempotencyStore.Set(ctx, key); err != nil {
		logger.Error("Failed to record processed event", "error", err)
	}
}
