// Package job holds the read-only snapshot of a CloudConvert job and its tasks,
// as delivered in webhook bodies and API responses.
package job

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Job is the status of a job and its tasks at the moment it was serialized.
type Job struct {
	ID        string            `json:"id"`
	Tag       string            `json:"tag,omitempty"`
	Status    *Status           `json:"status,omitempty"`
	CreatedAt *time.Time        `json:"created_at,omitempty"`
	StartedAt *time.Time        `json:"started_at,omitempty"`
	EndedAt   *time.Time        `json:"ended_at,omitempty"`
	Tasks     []Task            `json:"tasks,omitempty"`
	Links     map[string]string `json:"links,omitempty"`
}

// Envelope is the body of a job API response.
type Envelope struct {
	Data Job `json:"data"`
}

// UnmarshalJSON decodes a job and fills in the job_id of every task that omits it.
// A task that names a different job is rejected.
func (j *Job) UnmarshalJSON(data []byte) error {
	type plain Job
	var raw struct {
		ID *string `json:"id"`
		plain
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == nil {
		return errors.New("job: missing required field \"id\"")
	}

	decoded := Job(raw.plain)
	decoded.ID = *raw.ID
	for i := range decoded.Tasks {
		task := &decoded.Tasks[i]
		if task.JobID == "" {
			task.JobID = decoded.ID
			continue
		}
		if task.JobID != decoded.ID {
			return fmt.Errorf("job: task %s belongs to job %q, not %q", task.ID, task.JobID, decoded.ID)
		}
	}

	*j = decoded
	return nil
}

// TaskByName returns the task with the given name. If several tasks share the
// name, the first one is returned. Unnamed tasks never match.
func (j Job) TaskByName(name string) (Task, bool) {
	if name == "" {
		return Task{}, false
	}
	for _, task := range j.Tasks {
		if task.Name == name {
			return task, true
		}
	}
	return Task{}, false
}

// FailedTasks returns the tasks whose status is StatusError.
func (j Job) FailedTasks() []Task {
	var failed []Task
	for _, task := range j.Tasks {
		if task.Status == StatusError {
			failed = append(failed, task)
		}
	}
	return failed
}
