package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	goerrors "github.com/goliatone/go-errors"

	"cloudconvert-webhooks/internal/contextkeys"
	"cloudconvert-webhooks/internal/metrics"
	"cloudconvert-webhooks/webhook"
)

// VerifyOptions configures VerifySignature.
type VerifyOptions struct {
	// Header carries the hex signature. Defaults to webhook.SignatureHeader.
	Header string
	// MaxBodySize caps the request body in bytes. Zero means 1MB.
	MaxBodySize int64
	// Sink records verification outcomes. Nil disables metrics.
	Sink metrics.Sink
}

const defaultMaxBodySize = 1 << 20

// VerifySignature is a Chi middleware that authenticates CloudConvert webhook
// requests and stores the verified *webhook.Event in the request context.
func VerifySignature(logger *slog.Logger, secret []byte, opts VerifyOptions) func(next http.Handler) http.Handler {
	if opts.Header == "" {
		opts.Header = webhook.SignatureHeader
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = defaultMaxBodySize
	}
	if opts.Sink == nil {
		opts.Sink = metrics.NewNoopSink()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.With(
				"request_id", chimw.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)

			signature := r.Header.Get(opts.Header)
			if signature == "" {
				log.Warn("Missing signature header", "header", opts.Header)
				opts.Sink.VerificationOutcome(metrics.VerificationMissingSignature)
				WriteError(w, newHTTPError("missing signature header", goerrors.CategoryAuth,
					http.StatusForbidden, TextCodeMissingSignature))
				return
			}

			// Read one byte past the limit to detect oversized bodies.
			body, err := io.ReadAll(io.LimitReader(r.Body, opts.MaxBodySize+1))
			r.Body.Close()
			if err != nil {
				log.Error("Failed to read request body", "error", err)
				opts.Sink.VerificationOutcome(metrics.VerificationReadError)
				WriteError(w, newHTTPError("cannot read request body", goerrors.CategoryInternal,
					http.StatusInternalServerError, TextCodeReadFailed))
				return
			}
			if int64(len(body)) > opts.MaxBodySize {
				log.Warn("Request body too large", "limit", opts.MaxBodySize)
				opts.Sink.VerificationOutcome(metrics.VerificationTooLarge)
				WriteError(w, newHTTPError("payload too large", goerrors.CategoryBadInput,
					http.StatusRequestEntityTooLarge, TextCodeBodyTooLarge))
				return
			}

			event, err := webhook.Verify(body, signature, secret)
			if err != nil {
				rich, outcome := verificationError(err)
				log.Warn("Webhook verification failed", "outcome", outcome, "error", err)
				opts.Sink.VerificationOutcome(outcome)
				WriteError(w, rich)
				return
			}

			opts.Sink.VerificationOutcome(metrics.VerificationVerified)
			log.Debug("Webhook verified", "event", event.Kind().String(), "job_id", event.Job().ID)

			ctx := context.WithValue(r.Context(), contextkeys.EventKey, event)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
