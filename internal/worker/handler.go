package worker

import (
	"context"
	"fmt"
	"log/slog"

	"cloudconvert-webhooks/webhook"
)

//go:generate mockgen -destination=mocks/mock_worker.go -package=mocks cloudconvert-webhooks/internal/worker EventHandler,IdempotencyStore

// EventHandler does the application work for one verified event. Return
// ErrTransient to have the delivery retried and ErrPermanent to give up on it.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *webhook.Event) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *webhook.Event) error

func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *webhook.Event) error {
	return f(ctx, event)
}

// Router dispatches events to a handler registered for their kind.
type Router struct {
	handlers map[webhook.EventKind]EventHandler
	fallback EventHandler
}

// NewRouter returns a Router that sends unregistered kinds to fallback.
// A nil fallback makes unregistered kinds a permanent error.
func NewRouter(fallback EventHandler) *Router {
	return &Router{
		handlers: make(map[webhook.EventKind]EventHandler),
		fallback: fallback,
	}
}

// Handle registers h for kind, replacing any previous handler.
func (r *Router) Handle(kind webhook.EventKind, h EventHandler) {
	r.handlers[kind] = h
}

func (r *Router) HandleEvent(ctx context.Context, event *webhook.Event) error {
	if h, ok := r.handlers[event.Kind()]; ok {
		return h.HandleEvent(ctx, event)
	}
	if r.fallback != nil {
		return r.fallback.HandleEvent(ctx, event)
	}
	return &ErrPermanent{Err: fmt.Errorf("no handler for event %s", event.Kind())}
}

// LogHandler records what each event says about its job.
type LogHandler struct {
	Logger *slog.Logger
}

func (h *LogHandler) HandleEvent(_ context.Context, event *webhook.Event) error {
	j := event.Job()
	logger := h.Logger.With("event", event.Kind().String(), "job_id", j.ID, "tag", j.Tag)

	switch event.Kind() {
	case webhook.JobCreated:
		logger.Info("Job created", "tasks", len(j.Tasks))

	case webhook.JobFinished:
		for _, task := range j.Tasks {
			files, err := task.Files()
			if err != nil {
				return &ErrPermanent{Err: err}
			}
			for _, f := range files {
				logger.Info("Job produced file", "task", task.Name, "filename", f.Filename, "url", f.URL)
			}
		}
		logger.Info("Job finished")

	case webhook.JobFailed:
		for _, task := range j.FailedTasks() {
			logger.Warn("Task failed",
				"task", task.Name,
				"operation", task.Operation,
				"code", task.ErrorCode,
				"message", task.Message,
			)
		}
		logger.Warn("Job failed")
	}
	return nil
}

var (
	_ EventHandler = EventHandlerFunc(nil)
	_ EventHandler = (*Router)(nil)
	_ EventHandler = (*LogHandler)(nil)
)
