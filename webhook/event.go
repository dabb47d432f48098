package webhook

import (
	"crypto/hmac"
	"encoding/json"
	"errors"
	"fmt"

	"cloudconvert-webhooks/job"
)

// EventKind is the type of a webhook event.
type EventKind string

const (
	JobCreated  EventKind = "job.created"
	JobFinished EventKind = "job.finished"
	JobFailed   EventKind = "job.failed"
)

// eventKinds is the complete vocabulary accepted on decode. There is no
// fallback for unknown kinds.
var eventKinds = map[string]EventKind{
	"job.created":  JobCreated,
	"job.finished": JobFinished,
	"job.failed":   JobFailed,
}

// ParseEventKind maps a wire literal to an EventKind. Matching is case-sensitive.
func ParseEventKind(s string) (EventKind, error) {
	kind, ok := eventKinds[s]
	if !ok {
		return "", fmt.Errorf("unknown event kind %q", s)
	}
	return kind, nil
}

func (k EventKind) String() string { return string(k) }

func (k *EventKind) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("event kind must be a string: %w", err)
	}
	kind, err := ParseEventKind(text)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Event is a webhook delivery whose signature has been checked. The only way
// to obtain one is Verify. A zero Event, such as webhook.Event{}, is not a
// verified event: its Kind is empty and Verified reports false.
type Event struct {
	kind      EventKind
	job       job.Job
	signature Signature
}

// Kind returns the event type.
func (e *Event) Kind() EventKind { return e.kind }

// Job returns a deep copy of the job snapshot carried by the event. Changes
// to the copy never reach the event.
func (e *Event) Job() job.Job { return e.job.Clone() }

// Signature returns the signature computed during verification. It is meant
// for audit logs and idempotency keys, never for re-verification.
func (e *Event) Signature() Signature { return e.signature }

// Verified reports whether e was produced by Verify.
func (e *Event) Verified() bool { return e != nil && e.kind != "" }

// Verify authenticates payload against the hex signature taken from the
// SignatureHeader and, only if it matches, decodes it into an Event.
//
// payload must be the request body exactly as received.
func Verify(payload []byte, signature string, secret []byte) (*Event, error) {
	expected, err := decodeSignature(signature)
	if err != nil {
		return nil, &ErrHexDecodeSignature{Err: err}
	}

	actual := Sign(payload, secret)
	if !hmac.Equal(actual[:], expected[:]) {
		return nil, ErrSignatureMismatch
	}

	var body struct {
		Event *EventKind `json:"event"`
		Job   *job.Job   `json:"job"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, &ErrJSON{Err: err}
	}
	if body.Event == nil {
		return nil, &ErrJSON{Err: errors.New("missing required field \"event\"")}
	}
	if body.Job == nil {
		return nil, &ErrJSON{Err: errors.New("missing required field \"job\"")}
	}

	return &Event{
		kind:      *body.Event,
		job:       *body.Job,
		signature: actual,
	}, nil
}
