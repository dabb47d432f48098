package models

import "cloudconvert-webhooks/webhook"

// Job wraps a verified webhook event for the worker pool and includes a retry counter.
type Job struct {
	// DeliveryID identifies this receipt of the event in logs and responses.
	DeliveryID string
	Event      *webhook.Event
	Attempts   int
}

// IdempotencyKey identifies the delivery across redeliveries. CloudConvert
// resends the same body, so the same signature.
func (j Job) IdempotencyKey() string {
	return j.Event.Signature().String()
}
