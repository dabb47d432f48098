package job

import (
	"encoding/json"
	"maps"
	"slices"
	"time"
)

// Clone returns a deep copy of j. Nothing in the copy shares memory with j.
func (j Job) Clone() Job {
	c := j
	if j.Status != nil {
		s := *j.Status
		c.Status = &s
	}
	c.CreatedAt = cloneTime(j.CreatedAt)
	c.StartedAt = cloneTime(j.StartedAt)
	c.EndedAt = cloneTime(j.EndedAt)
	c.Links = maps.Clone(j.Links)
	if j.Tasks != nil {
		c.Tasks = make([]Task, len(j.Tasks))
		for i, task := range j.Tasks {
			c.Tasks[i] = task.Clone()
		}
	}
	return c
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	c := t
	if t.Credits != nil {
		n := *t.Credits
		c.Credits = &n
	}
	c.Retries = slices.Clone(t.Retries)
	c.DependsOnTaskIDs = slices.Clone(t.DependsOnTaskIDs)
	c.CreatedAt = cloneTime(t.CreatedAt)
	c.StartedAt = cloneTime(t.StartedAt)
	c.EndedAt = cloneTime(t.EndedAt)
	c.Payload = json.RawMessage(slices.Clone([]byte(t.Payload)))
	c.Links = maps.Clone(t.Links)
	if t.Result != nil {
		c.Result = cloneValue(t.Result).(map[string]any)
	}
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// cloneValue copies the shapes encoding/json produces for an any.
func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(v))
		for i, e := range v {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}
