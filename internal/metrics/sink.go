package metrics

// Sink defines the interface for recording receiver metrics.
// Implementations must not block or return errors.
type Sink interface {
	// Verification
	VerificationOutcome(outcome string)

	// Queueing
	EventQueued(kind string)
	QueueRejected()

	// Processing
	EventProcessed(kind, outcome string)
	EventsInFlightIncr()
	EventsInFlightDecr()
}

// Verification outcomes.
const (
	VerificationVerified          = "verified"
	VerificationMissingSignature  = "missing_signature"
	VerificationMalformed         = "malformed_signature"
	VerificationSignatureMismatch = "signature_mismatch"
	VerificationInvalidPayload    = "invalid_payload"
	VerificationTooLarge          = "too_large"
	VerificationReadError         = "read_error"
)

// Processing outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeDuplicate = "duplicate"
	OutcomePermanent = "permanent_error"
	OutcomeRetry     = "retry"
	OutcomeDead      = "dead"
	OutcomeUnknown   = "unknown_error"
)
