// Package webhook verifies and parses CloudConvert webhook deliveries.
//
// CloudConvert signs every webhook body with HMAC-SHA256 using the signing
// secret of the webhook, and sends the lowercase hex digest in the
// CloudConvert-Signature header. Verify authenticates the raw body against
// that header before decoding anything:
//
//  1. The header is decoded as hex; it must be exactly 32 bytes.
//  2. HMAC-SHA256(secret, body) is computed over the bytes as received.
//  3. The two digests are compared in constant time.
//  4. Only then is the body decoded into an Event.
//
// Each step gates the next. A failure returns ErrSignatureMismatch,
// *ErrHexDecodeSignature or *ErrJSON and no Event.
//
// # Usage
//
//	body, _ := io.ReadAll(r.Body)
//	event, err := webhook.Verify(body, r.Header.Get(webhook.SignatureHeader), secret)
//	if err != nil {
//		http.Error(w, "forbidden", http.StatusForbidden)
//		return
//	}
//	switch event.Kind() {
//	case webhook.JobFinished:
//		// event.Job() is trusted
//	}
//
// Verify has no side effects and may be called concurrently.
package webhook
