package config

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Validate checks the configuration and resolves derived values. All problems
// are reported together as field errors.
func (c *Config) Validate() error {
	var fields []goerrors.FieldError
	invalid := func(field, message string) {
		fields = append(fields, goerrors.FieldError{Field: field, Message: message})
	}

	if c.Webhook.SigningSecret == "" {
		invalid("webhook.signing_secret", "is required (set CLOUDCONVERT_SIGNING_SECRET)")
	}
	if !strings.HasPrefix(c.Webhook.Path, "/") {
		invalid("webhook.path", "must start with /")
	}
	if strings.TrimSpace(c.Webhook.SignatureHeader) == "" {
		invalid("webhook.signature_header", "is required")
	}
	if size, err := parseMaxBodySize(c.Webhook.MaxBodySize); err != nil {
		invalid("webhook.max_body_size", err.Error())
	} else {
		c.Webhook.maxBodyBytes = size
	}

	if c.Worker.QueueSize <= 0 {
		invalid("worker.queue_size", "must be positive")
	}
	if c.Worker.Workers <= 0 {
		invalid("worker.workers", "must be positive")
	}
	if c.Worker.MaxRetries < 0 {
		invalid("worker.max_retries", "must not be negative")
	}
	if c.Worker.RetryDelay <= 0 {
		invalid("worker.retry_delay", "must be positive")
	}
	if c.Worker.HandlerTimeout <= 0 {
		invalid("worker.handler_timeout", "must be positive")
	}

	switch c.Idempotency.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Idempotency.RedisAddr == "" {
			invalid("idempotency.redis_addr", "is required for the redis backend")
		}
	default:
		invalid("idempotency.backend", "must be \"memory\" or \"redis\"")
	}
	if c.Idempotency.TTL < 0 {
		invalid("idempotency.ttl", "must not be negative")
	}

	if c.Metrics.Enabled {
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			invalid("metrics.path", "must start with /")
		} else if c.Metrics.Path == c.Webhook.Path {
			invalid("metrics.path", "must differ from webhook.path")
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		invalid("log.level", "must be one of debug, info, warn, error")
	}

	if len(fields) == 0 {
		return nil
	}
	return goerrors.NewValidation("config: validation failed", fields...).
		WithCode(http.StatusUnprocessableEntity).
		WithTextCode("INVALID_CONFIG").
		WithSeverity(goerrors.SeverityError)
}
