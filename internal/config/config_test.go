package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"CLOUDCONVERT_SIGNING_SECRET", "SERVER_PORT", "REDIS_ADDR", "LOG_LEVEL"} {
		t.Setenv(name, "")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr bool
		checkFn func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults with secret from env",
			env:  map[string]string{"CLOUDCONVERT_SIGNING_SECRET": "from-env"},
			checkFn: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "from-env", cfg.Webhook.SigningSecret)
				assert.Equal(t, ":8080", cfg.Server.Listen)
				assert.Equal(t, "/webhooks", cfg.Webhook.Path)
				assert.Equal(t, "CloudConvert-Signature", cfg.Webhook.SignatureHeader)
				assert.Equal(t, int64(1<<20), cfg.Webhook.MaxBodyBytes())
				assert.Equal(t, 5, cfg.Worker.Workers)
				assert.Equal(t, BackendMemory, cfg.Idempotency.Backend)
			},
		},
		{
			name: "yaml file with interpolation",
			yaml: `
server:
  listen: 127.0.0.1:9090
webhook:
  path: /hooks/cloudconvert
  signing_secret: ${TEST_CC_SECRET}
  max_body_size: 512KB
worker:
  workers: 2
  queue_size: 10
  retry_delay: 2s
idempotency:
  backend: redis
  redis_addr: localhost:6379
  ttl: 1h
`,
			env: map[string]string{"TEST_CC_SECRET": "yaml-secret"},
			checkFn: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "127.0.0.1:9090", cfg.Server.Listen)
				assert.Equal(t, "/hooks/cloudconvert", cfg.Webhook.Path)
				assert.Equal(t, "yaml-secret", cfg.Webhook.SigningSecret)
				assert.Equal(t, int64(512*1024), cfg.Webhook.MaxBodyBytes())
				assert.Equal(t, 2, cfg.Worker.Workers)
				assert.Equal(t, 2*time.Second, cfg.Worker.RetryDelay)
				assert.Equal(t, 5, cfg.Worker.MaxRetries, "unset fields keep defaults")
				assert.Equal(t, BackendRedis, cfg.Idempotency.Backend)
				assert.Equal(t, time.Hour, cfg.Idempotency.TTL)
			},
		},
		{
			name: "env overrides file",
			yaml: `
webhook:
  signing_secret: file-secret
`,
			env: map[string]string{
				"CLOUDCONVERT_SIGNING_SECRET": "env-secret",
				"SERVER_PORT":                 "7000",
				"LOG_LEVEL":                   "debug",
			},
			checkFn: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "env-secret", cfg.Webhook.SigningSecret)
				assert.Equal(t, ":7000", cfg.Server.Listen)
				assert.Equal(t, "debug", cfg.Log.Level)
			},
		},
		{
			name: "unset interpolation variable",
			yaml: `
webhook:
  signing_secret: ${TEST_CC_UNSET_VARIABLE}
`,
			wantErr: true,
		},
		{
			name:    "missing secret",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "webhook: [unterminated",
			env:     map[string]string{"CLOUDCONVERT_SIGNING_SECRET": "s"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.yaml != "" {
				path = writeConfig(t, tt.yaml)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.checkFn(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateReportsAllFields(t *testing.T) {
	cfg := Defaults()
	cfg.Worker.Workers = 0
	cfg.Worker.RetryDelay = 0
	cfg.Idempotency.Backend = "sqlite"
	cfg.Webhook.MaxBodySize = "-1MB"
	cfg.Log.Level = "verbose"

	err := cfg.Validate()
	require.Error(t, err)

	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich), "expected go-errors envelope, got %T", err)
	assert.Equal(t, goerrors.CategoryValidation, rich.Category)

	var got []string
	for _, fe := range rich.AllValidationErrors() {
		got = append(got, fe.Field)
	}
	assert.ElementsMatch(t, []string{
		"webhook.signing_secret",
		"webhook.max_body_size",
		"worker.workers",
		"worker.retry_delay",
		"idempotency.backend",
		"log.level",
	}, got)
}

func TestValidateRedisRequiresAddr(t *testing.T) {
	cfg := Defaults()
	cfg.Webhook.SigningSecret = "s"
	cfg.Idempotency.Backend = BackendRedis

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	cfg.Idempotency.RedisAddr = "localhost:6379"
	assert.NoError(t, cfg.Validate())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogConfig{Level: "DEBUG"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LogConfig{Level: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: ""}.SlogLevel())
}

func TestParseMaxBodySize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{input: "2048", want: 2048},
		{input: "1KB", want: 1024},
		{input: "1mb", want: 1 << 20},
		{input: " 2 GB ", want: 2 << 30},
		{input: "", wantErr: true},
		{input: "0", wantErr: true},
		{input: "lots", wantErr: true},
		{input: "99999999999GB", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseMaxBodySize(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
