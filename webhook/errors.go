package webhook

import (
	"errors"
	"fmt"
)

// ErrSignatureMismatch means the body was not signed with the secret. Treat it
// as a possible forgery, not a transient fault.
var ErrSignatureMismatch = errors.New("webhook: signature mismatch")

// ErrHexDecodeSignature means the signature header is not 32 bytes of hex.
type ErrHexDecodeSignature struct{ Err error }

func (e *ErrHexDecodeSignature) Error() string {
	return fmt.Sprintf("webhook: decode signature: %v", e.Err)
}
func (e *ErrHexDecodeSignature) Unwrap() error { return e.Err }

// ErrJSON means the body was correctly signed but is not a valid event. This
// usually points at a schema change on the sender's side.
type ErrJSON struct{ Err error }

func (e *ErrJSON) Error() string { return fmt.Sprintf("webhook: decode event: %v", e.Err) }
func (e *ErrJSON) Unwrap() error { return e.Err }
