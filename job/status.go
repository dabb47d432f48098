package job

import (
	"encoding/json"
	"fmt"
)

// Status is the state of a job or one of its tasks.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusProcessing Status = "processing"
	StatusFinished   Status = "finished"
	StatusError      Status = "error"
)

// statuses is the complete vocabulary accepted on decode.
var statuses = map[string]Status{
	"waiting":    StatusWaiting,
	"processing": StatusProcessing,
	"finished":   StatusFinished,
	"error":      StatusError,
}

// ParseStatus maps a wire literal to a Status. Matching is case-sensitive.
func ParseStatus(s string) (Status, error) {
	status, ok := statuses[s]
	if !ok {
		return "", fmt.Errorf("job: unknown status %q", s)
	}
	return status, nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("job: status must be a string: %w", err)
	}
	status, err := ParseStatus(text)
	if err != nil {
		return err
	}
	*s = status
	return nil
}
