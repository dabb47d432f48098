package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudconvert-webhooks/internal/worker/mocks"
	"cloudconvert-webhooks/webhook"
)

const finishedJob = `{
	"id": "c677ccf7-8876-4f48-bb96-0ab8e0d88cd7",
	"tag": "invoice-42",
	"status": "finished",
	"tasks": [
		{"id": "t1", "name": "import-it", "operation": "import/url", "status": "finished"},
		{"id": "t2", "name": "export-it", "operation": "export/url", "status": "finished",
		 "result": {"files": [{"filename": "invoice.pdf", "url": "https://storage.example/invoice.pdf"}]}}
	]
}`

const failedJob = `{
	"id": "job-failed",
	"status": "error",
	"tasks": [
		{"id": "t1", "name": "convert-it", "operation": "convert", "status": "error",
		 "code": "INVALID_CONVERSION_TYPE", "message": "unsupported format"},
		{"id": "t2", "name": "export-it", "operation": "export/url", "status": "waiting"}
	]
}`

func TestRouterDispatchesByKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	created := mocks.NewMockEventHandler(ctrl)
	fallback := mocks.NewMockEventHandler(ctrl)

	createdEvent := newEvent(t, webhook.JobCreated, `{"id":"j1"}`)
	failedEvent := newEvent(t, webhook.JobFailed, `{"id":"j2"}`)

	created.EXPECT().HandleEvent(gomock.Any(), createdEvent).Return(nil)
	fallback.EXPECT().HandleEvent(gomock.Any(), failedEvent).Return(errors.New("fallback"))

	router := NewRouter(fallback)
	router.Handle(webhook.JobCreated, created)

	assert.NoError(t, router.HandleEvent(context.Background(), createdEvent))
	assert.EqualError(t, router.HandleEvent(context.Background(), failedEvent), "fallback")
}

func TestRouterWithoutFallback(t *testing.T) {
	router := NewRouter(nil)
	router.Handle(webhook.JobFinished, EventHandlerFunc(func(context.Context, *webhook.Event) error {
		return nil
	}))

	err := router.HandleEvent(context.Background(), newEvent(t, webhook.JobCreated, `{"id":"j1"}`))

	var permanent *ErrPermanent
	require.ErrorAs(t, err, &permanent)
	assert.Contains(t, err.Error(), "job.created")
}

func TestLogHandler(t *testing.T) {
	tests := []struct {
		name     string
		kind     webhook.EventKind
		job      string
		contains []string
	}{
		{
			name:     "created",
			kind:     webhook.JobCreated,
			job:      `{"id":"job-new","tasks":[{"id":"t1","operation":"import/url","status":"waiting"}]}`,
			contains: []string{"Job created", "job-new"},
		},
		{
			name:     "finished lists exported files",
			kind:     webhook.JobFinished,
			job:      finishedJob,
			contains: []string{"Job produced file", "invoice.pdf", "https://storage.example/invoice.pdf", "invoice-42"},
		},
		{
			name:     "failed lists failing tasks",
			kind:     webhook.JobFailed,
			job:      failedJob,
			contains: []string{"Task failed", "convert-it", "INVALID_CONVERSION_TYPE", "unsupported format"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &LogHandler{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

			require.NoError(t, h.HandleEvent(context.Background(), newEvent(t, tt.kind, tt.job)))
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestLogHandlerFailedJobSkipsHealthyTasks(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	require.NoError(t, h.HandleEvent(context.Background(), newEvent(t, webhook.JobFailed, failedJob)))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`"msg":"Task failed"`)))
}

func TestLogHandlerMalformedFilesArePermanent(t *testing.T) {
	h := &LogHandler{Logger: discardLogger()}
	event := newEvent(t, webhook.JobFinished, `{"id":"j","tasks":[
		{"id":"t","operation":"export/url","status":"finished","result":{"files":"not-a-list"}}
	]}`)

	err := h.HandleEvent(context.Background(), event)

	var permanent *ErrPermanent
	assert.ErrorAs(t, err, &permanent)
}
