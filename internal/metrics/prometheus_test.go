package metrics

import (
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSink(t *testing.T) (*PrometheusSink, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink := NewPrometheusSink(reg, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	return sink, reg
}

func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matchLabels(m.GetLabel(), labels) {
				return m
			}
		}
	}
	return nil
}

func matchLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	if len(pairs) != len(want) {
		return false
	}
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; !ok || v != p.GetValue() {
			return false
		}
	}
	return true
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	m := findMetric(t, reg, name, labels)
	if m == nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func TestVerificationOutcome(t *testing.T) {
	sink, reg := newTestSink(t)

	sink.VerificationOutcome(VerificationVerified)
	sink.VerificationOutcome(VerificationVerified)
	sink.VerificationOutcome(VerificationSignatureMismatch)

	assert.Equal(t, 2.0, counterValue(t, reg, "cloudconvert_webhook_verifications_total", map[string]string{"outcome": "verified"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "cloudconvert_webhook_verifications_total", map[string]string{"outcome": "signature_mismatch"}))
}

func TestQueueMetrics(t *testing.T) {
	sink, reg := newTestSink(t)

	sink.EventQueued("job.finished")
	sink.QueueRejected()
	sink.QueueRejected()

	assert.Equal(t, 1.0, counterValue(t, reg, "cloudconvert_webhook_events_queued_total", map[string]string{"kind": "job.finished"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "cloudconvert_webhook_queue_rejected_total", map[string]string{}))
}

func TestProcessingMetrics(t *testing.T) {
	sink, reg := newTestSink(t)

	sink.EventProcessed("job.failed", OutcomeRetry)
	sink.EventProcessed("job.failed", OutcomeSuccess)
	sink.EventsInFlightIncr()
	sink.EventsInFlightIncr()
	sink.EventsInFlightDecr()

	labels := map[string]string{"kind": "job.failed", "outcome": "retry"}
	assert.Equal(t, 1.0, counterValue(t, reg, "cloudconvert_webhook_events_processed_total", labels))

	m := findMetric(t, reg, "cloudconvert_webhook_events_in_flight", map[string]string{})
	require.NotNil(t, m)
	assert.Equal(t, 1.0, m.GetGauge().GetValue())
}

func TestDoubleRegistrationDoesNotPanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	NewPrometheusSink(reg, logger)
	second := NewPrometheusSink(reg, logger)

	// The second sink's collectors are unregistered but must stay usable.
	second.VerificationOutcome(VerificationVerified)
	second.EventsInFlightIncr()
}

func TestNoopSink(t *testing.T) {
	var sink Sink = NewNoopSink()
	sink.VerificationOutcome(VerificationVerified)
	sink.EventQueued("job.created")
	sink.QueueRejected()
	sink.EventProcessed("job.created", OutcomeSuccess)
	sink.EventsInFlightIncr()
	sink.EventsInFlightDecr()
}
