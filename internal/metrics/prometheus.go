package metrics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	logger *slog.Logger

	verificationsTotal *prometheus.CounterVec
	eventsQueuedTotal  *prometheus.CounterVec
	queueRejectedTotal prometheus.Counter
	eventsProcessed    *prometheus.CounterVec
	eventsInFlight     prometheus.Gauge
}

// NewPrometheusSink creates the collectors and registers them with reg.
func NewPrometheusSink(reg prometheus.Registerer, logger *slog.Logger) *PrometheusSink {
	s := &PrometheusSink{logger: logger}

	s.verificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudconvert_webhook_verifications_total",
		Help: "Total number of webhook deliveries by verification outcome.",
	}, []string{"outcome"})

	s.eventsQueuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudconvert_webhook_events_queued_total",
		Help: "Total number of verified events accepted into the worker queue.",
	}, []string{"kind"})

	s.queueRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cloudconvert_webhook_queue_rejected_total",
		Help: "Total number of verified events rejected because the queue was full.",
	})

	s.eventsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudconvert_webhook_events_processed_total",
		Help: "Total number of worker processing attempts by event kind and outcome.",
	}, []string{"kind", "outcome"})

	s.eventsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cloudconvert_webhook_events_in_flight",
		Help: "Number of events currently being handled by workers.",
	})

	s.register(reg, s.verificationsTotal, "cloudconvert_webhook_verifications_total")
	s.register(reg, s.eventsQueuedTotal, "cloudconvert_webhook_events_queued_total")
	s.register(reg, s.queueRejectedTotal, "cloudconvert_webhook_queue_rejected_total")
	s.register(reg, s.eventsProcessed, "cloudconvert_webhook_events_processed_total")
	s.register(reg, s.eventsInFlight, "cloudconvert_webhook_events_in_flight")
	return s
}

func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		s.logger.Warn("metrics: failed to register collector", "name", name, "error", err)
	}
}

func (s *PrometheusSink) VerificationOutcome(outcome string) {
	s.verificationsTotal.WithLabelValues(outcome).Inc()
}

func (s *PrometheusSink) EventQueued(kind string) {
	s.eventsQueuedTotal.WithLabelValues(kind).Inc()
}

func (s *PrometheusSink) QueueRejected() {
	s.queueRejectedTotal.Inc()
}

func (s *PrometheusSink) EventProcessed(kind, outcome string) {
	s.eventsProcessed.WithLabelValues(kind, outcome).Inc()
}

func (s *PrometheusSink) EventsInFlightIncr() {
	s.eventsInFlight.Inc()
}

func (s *PrometheusSink) EventsInFlightDecr() {
	s.eventsInFlight.Dec()
}
