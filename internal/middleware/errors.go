package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"cloudconvert-webhooks/internal/metrics"
	"cloudconvert-webhooks/webhook"
)

// Text codes returned in error bodies.
const (
	TextCodeMissingSignature = "MISSING_SIGNATURE"
	TextCodeInvalidSignature = "INVALID_SIGNATURE"
	TextCodeInvalidPayload   = "INVALID_PAYLOAD"
	TextCodeBodyTooLarge     = "BODY_TOO_LARGE"
	TextCodeReadFailed       = "READ_FAILED"
	TextCodeQueueFull        = "QUEUE_FULL"
	TextCodeInternal         = "INTERNAL_ERROR"
)

func newHTTPError(message string, category goerrors.Category, code int, textCode string) *goerrors.Error {
	return goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
}

// verificationError maps a webhook.Verify failure to a response error and a
// metrics outcome. Hex and mismatch failures share one body so a caller cannot
// tell which check rejected the request.
func verificationError(err error) (*goerrors.Error, string) {
	var hexErr *webhook.ErrHexDecodeSignature
	var jsonErr *webhook.ErrJSON

	switch {
	case errors.Is(err, webhook.ErrSignatureMismatch):
		return goerrors.Wrap(err, goerrors.CategoryAuthz, "invalid signature").
			WithCode(http.StatusForbidden).
			WithTextCode(TextCodeInvalidSignature), metrics.VerificationSignatureMismatch
	case errors.As(err, &hexErr):
		return goerrors.Wrap(err, goerrors.CategoryAuthz, "invalid signature").
			WithCode(http.StatusForbidden).
			WithTextCode(TextCodeInvalidSignature), metrics.VerificationMalformed
	case errors.As(err, &jsonErr):
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid event payload").
			WithCode(http.StatusBadRequest).
			WithTextCode(TextCodeInvalidPayload), metrics.VerificationInvalidPayload
	default:
		return goerrors.Wrap(err, goerrors.CategoryInternal, "verification failed").
			WithCode(http.StatusInternalServerError).
			WithTextCode(TextCodeInternal), metrics.VerificationReadError
	}
}

// WriteJSON sends a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError sends err as a JSON error envelope using its Code as the status.
// The wrapped source error and the source location are never serialized.
func WriteError(w http.ResponseWriter, err *goerrors.Error) {
	status := err.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}
	resp := err.Clone().ToErrorResponse(false, nil)
	resp.Error.Source = nil
	resp.Error.Location = nil
	WriteJSON(w, status, resp)
}
