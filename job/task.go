package job

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Task is the status of one task within a job.
type Task struct {
	ID        string `json:"id"`
	JobID     string `json:"job_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Operation string `json:"operation"`
	Status    Status `json:"status"`

	// Message holds the error details when Status is StatusError.
	Message string `json:"message,omitempty"`
	// ErrorCode is set when Status is StatusError.
	ErrorCode string `json:"code,omitempty"`
	// Credits is the number of credits consumed once the task finished.
	Credits *int `json:"credits,omitempty"`
	Percent int  `json:"percent,omitempty"`

	RetryOfTaskID    string   `json:"retry_of_task_id,omitempty"`
	Retries          []string `json:"retries,omitempty"`
	DependsOnTaskIDs []string `json:"depends_on_task_ids,omitempty"`

	Engine        string `json:"engine,omitempty"`
	EngineVersion string `json:"engine_version,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	Payload json.RawMessage   `json:"payload,omitempty"`
	Result  map[string]any    `json:"result,omitempty"`
	Links   map[string]string `json:"links,omitempty"`
}

// File is one entry of an export task's result.
type File struct {
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var raw struct {
		ID        *string `json:"id"`
		Operation *string `json:"operation"`
		Status    *Status `json:"status"`
		plain
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.ID == nil:
		return errors.New("job: task missing required field \"id\"")
	case raw.Operation == nil:
		return fmt.Errorf("job: task %s missing required field \"operation\"", *raw.ID)
	case raw.Status == nil:
		return fmt.Errorf("job: task %s missing required field \"status\"", *raw.ID)
	}

	decoded := Task(raw.plain)
	decoded.ID = *raw.ID
	decoded.Operation = *raw.Operation
	decoded.Status = *raw.Status
	*t = decoded
	return nil
}

// Files decodes the "files" entry of the task result. Tasks without files
// return nil.
func (t Task) Files() ([]File, error) {
	raw, ok := t.Result["files"]
	if !ok || raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("job: encode task %s files: %w", t.ID, err)
	}
	var files []File
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, fmt.Errorf("job: decode task %s files: %w", t.ID, err)
	}
	return files, nil
}
