package config

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"cloudconvert-webhooks/webhook"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Config is the receiver configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Webhook     WebhookConfig     `yaml:"webhook"`
	Worker      WorkerConfig      `yaml:"worker"`
	Idempotency IdempotencyConfig `yaml:"idempotency"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Listen          string        `yaml:"listen"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// WebhookConfig defines the webhook endpoint.
type WebhookConfig struct {
	Path            string `yaml:"path"`
	SigningSecret   string `yaml:"signing_secret"`
	SignatureHeader string `yaml:"signature_header"`
	// MaxBodySize accepts a byte count or a KB/MB/GB suffix.
	MaxBodySize string `yaml:"max_body_size"`

	maxBodyBytes int64
}

// MaxBodyBytes returns the parsed MaxBodySize.
func (w WebhookConfig) MaxBodyBytes() int64 { return w.maxBodyBytes }

// WorkerConfig defines the worker pool.
type WorkerConfig struct {
	QueueSize      int           `yaml:"queue_size"`
	Workers        int           `yaml:"workers"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	HandlerTimeout time.Duration `yaml:"handler_timeout"`
}

// Idempotency backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// IdempotencyConfig selects where processed deliveries are remembered.
type IdempotencyConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	KeyPrefix     string        `yaml:"key_prefix"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

// MetricsConfig defines the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel maps Level to a slog.Level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Defaults returns a Config with every optional value filled in.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:          ":8080",
			ShutdownTimeout: 30 * time.Second,
		},
		Webhook: WebhookConfig{
			Path:            "/webhooks",
			SignatureHeader: webhook.SignatureHeader,
			MaxBodySize:     "1MB",
		},
		Worker: WorkerConfig{
			QueueSize:      100,
			Workers:        5,
			MaxRetries:     5,
			RetryDelay:     10 * time.Second,
			HandlerTimeout: 30 * time.Second,
		},
		Idempotency: IdempotencyConfig{
			Backend:   BackendMemory,
			TTL:       24 * time.Hour,
			KeyPrefix: "cloudconvert:webhook:",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path,
// and environment overrides, then validates it. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
		expanded, err := interpolateEnv(string(data))
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// interpolateEnv replaces ${VAR} references. Unset variables are an error so a
// missing secret never silently becomes an empty string.
func interpolateEnv(s string) (string, error) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		value, ok := os.LookupEnv(name)
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("config references unset environment variables: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CLOUDCONVERT_SIGNING_SECRET"); v != "" {
		cfg.Webhook.SigningSecret = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Server.Listen = ":" + v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Idempotency.RedisAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// parseMaxBodySize parses size strings like "1MB", "512KB" or "2048" to bytes.
func parseMaxBodySize(size string) (int64, error) {
	upper := strings.ToUpper(strings.TrimSpace(size))
	multiplier := int64(1)

	switch {
	case strings.HasSuffix(upper, "KB"):
		multiplier = 1024
		upper = strings.TrimSuffix(upper, "KB")
	case strings.HasSuffix(upper, "MB"):
		multiplier = 1024 * 1024
		upper = strings.TrimSuffix(upper, "MB")
	case strings.HasSuffix(upper, "GB"):
		multiplier = 1024 * 1024 * 1024
		upper = strings.TrimSuffix(upper, "GB")
	}

	value, err := strconv.ParseInt(strings.TrimSpace(upper), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %w", err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("size must be positive")
	}

	result := value * multiplier
	if result/multiplier != value {
		return 0, fmt.Errorf("size too large")
	}
	return result, nil
}
