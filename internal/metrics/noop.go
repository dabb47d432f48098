package metrics

// NoopSink is a no-op implementation of Sink.
// Used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) VerificationOutcome(outcome string)  {}
func (n *NoopSink) EventQueued(kind string)             {}
func (n *NoopSink) QueueRejected()                      {}
func (n *NoopSink) EventProcessed(kind, outcome string) {}
func (n *NoopSink) EventsInFlightIncr()                 {}
func (n *NoopSink) EventsInFlightDecr()                 {}

var (
	_ Sink = (*NoopSink)(nil)
	_ Sink = (*PrometheusSink)(nil)
)
