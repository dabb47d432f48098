package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"cloudconvert-webhooks/internal/config"
	"cloudconvert-webhooks/internal/metrics"
	"cloudconvert-webhooks/internal/middleware"
	"cloudconvert-webhooks/internal/webhooks"
	"cloudconvert-webhooks/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, continuing with environment variables")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		attrs := []any{"error", err}
		var rich *goerrors.Error
		if goerrors.As(err, &rich) {
			attrs = append(attrs, "fields", rich.ValidationMap())
		}
		logger.Error("Invalid configuration. Application cannot start.", attrs...)
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))

	// 1. Metrics.
	var sink metrics.Sink = metrics.NewNoopSink()
	registry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sink = metrics.NewPrometheusSink(registry, logger)
	}

	// 2. Idempotency store.
	var store worker.IdempotencyStore
	var redisClient *redis.Client
	switch cfg.Idempotency.Backend {
	case config.BackendRedis:
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Idempotency.RedisAddr,
			Password: cfg.Idempotency.RedisPassword,
			DB:       cfg.Idempotency.RedisDB,
		})
		redisStore := worker.NewRedisStore(redisClient, cfg.Idempotency.TTL, cfg.Idempotency.KeyPrefix)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisStore.Ping(pingCtx); err != nil {
			// Lookups fail open, so keep running and let Redis come back.
			logger.Warn("Redis is not reachable yet", "addr", cfg.Idempotency.RedisAddr, "error", err)
		}
		cancel()
		store = redisStore
	default:
		store = worker.NewMemoryStore()
	}

	// 3. Event handlers.
	logHandler := &worker.LogHandler{Logger: logger}
	router := worker.NewRouter(logHandler)

	// 4. Create and start the worker pool.
	workerPool := worker.NewPool(cfg.Worker.QueueSize, logger, store, router, sink, worker.Options{
		MaxRetries:     cfg.Worker.MaxRetries,
		RetryDelay:     cfg.Worker.RetryDelay,
		HandlerTimeout: cfg.Worker.HandlerTimeout,
	})
	workerPool.Start(cfg.Worker.Workers)

	// 5. Instantiate our webhook handler, passing it the worker pool's job queue.
	webhookHandler := webhooks.NewHandler(logger, workerPool.JobQueue, sink)

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.RequestLogger(logger))
	mux.Use(chimw.Recoverer)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"queue_depth": len(workerPool.JobQueue),
		})
	})
	if cfg.Metrics.Enabled {
		mux.Method(http.MethodGet, cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	mux.Route(cfg.Webhook.Path, func(r chi.Router) {
		r.Use(middleware.VerifySignature(logger, []byte(cfg.Webhook.SigningSecret), middleware.VerifyOptions{
			Header:      cfg.Webhook.SignatureHeader,
			MaxBodySize: cfg.Webhook.MaxBodyBytes(),
			Sink:        sink,
		}))
		r.Post("/", webhookHandler.HandleWebhook)
	})

	server := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", server.Addr, "webhook_path", cfg.Webhook.Path, "idempotency", cfg.Idempotency.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server shutting down...")

	// Stop accepting deliveries first so nothing is queued behind the drain.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Stop the worker pool. This will block until queued events are processed.
	workerPool.Stop()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Failed to close redis client", "error", err)
		}
	}

	logger.Info("Server exited gracefully")
}
