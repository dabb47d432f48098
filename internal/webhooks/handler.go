package webhooks

import (
	"log/slog"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"cloudconvert-webhooks/internal/contextkeys"
	"cloudconvert-webhooks/internal/metrics"
	"cloudconvert-webhooks/internal/middleware"
	"cloudconvert-webhooks/internal/models"
	"cloudconvert-webhooks/webhook"
)

// Handler contains dependencies for the webhook HTTP handlers.
type Handler struct {
	Logger   *slog.Logger
	JobQueue chan<- models.Job
	Sink     metrics.Sink
}

// AcceptedResponse is the body returned for a queued delivery.
type AcceptedResponse struct {
	DeliveryID string `json:"delivery_id"`
	Event      string `json:"event"`
	JobID      string `json:"job_id"`
}

// NewHandler creates a new instance of the webhook Handler. A nil sink
// disables metrics.
func NewHandler(logger *slog.Logger, jobQueue chan<- models.Job, sink metrics.Sink) *Handler {
	if sink == nil {
		sink = metrics.NewNoopSink()
	}
	return &Handler{
		Logger:   logger,
		JobQueue: jobQueue,
		Sink:     sink,
	}
}

// HandleWebhook queues the event verified by middleware.VerifySignature. It
// answers 202 as soon as the event is queued and 503 when the queue is full so
// CloudConvert redelivers later.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	event, ok := r.Context().Value(contextkeys.EventKey).(*webhook.Event)
	if !ok || !event.Verified() {
		h.Logger.Error("Could not retrieve verified event from context")
		middleware.WriteError(w, goerrors.New("internal server error", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(middleware.TextCodeInternal))
		return
	}

	job := models.Job{
		DeliveryID: uuid.NewString(),
		Event:      event,
	}
	kind := event.Kind().String()
	logger := h.Logger.With("delivery_id", job.DeliveryID, "event", kind, "job_id", event.Job().ID)

	select {
	case h.JobQueue <- job:
		h.Sink.EventQueued(kind)
		logger.Info("Webhook event successfully queued for processing")
		middleware.WriteJSON(w, http.StatusAccepted, AcceptedResponse{
			DeliveryID: job.DeliveryID,
			Event:      kind,
			JobID:      event.Job().ID,
		})
	default:
		h.Sink.QueueRejected()
		logger.Error("Job queue is full. Rejecting webhook event.")
		w.Header().Set("Retry-After", "30")
		middleware.WriteError(w, goerrors.New("server busy", goerrors.CategoryRateLimit).
			WithCode(http.StatusServiceUnavailable).
			WithTextCode(middleware.TextCodeQueueFull))
	}
}
