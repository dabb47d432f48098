package worker

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"cloudconvert-webhooks/internal/models"
	"cloudconvert-webhooks/webhook"
)

var testSecret = []byte("worker-test-secret")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// newEvent signs and verifies a body so tests hold a real *webhook.Event.
func newEvent(t *testing.T, kind webhook.EventKind, jobJSON string) *webhook.Event {
	t.Helper()
	payload := []byte(fmt.Sprintf(`{"event":%q,"job":%s}`, kind, jobJSON))
	event, err := webhook.Verify(payload, webhook.Sign(payload, testSecret).String(), testSecret)
	require.NoError(t, err)
	return event
}

func newJob(t *testing.T, jobID string) models.Job {
	t.Helper()
	return models.Job{
		DeliveryID: "delivery-" + jobID,
		Event:      newEvent(t, webhook.JobFinished, fmt.Sprintf(`{"id":%q,"tasks":[]}`, jobID)),
	}
}
