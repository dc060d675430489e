package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/kunal1274/fms-dev-sub000/internal/records"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRecordsWarm refreshes the cached list and metrics of a kind.
	TaskRecordsWarm = "records:warm"
)

// WarmPayload names the kind to warm. An empty kind warms every registered kind.
type WarmPayload struct {
	Kind records.Kind `json:"kind,omitempty"`
}

// Kinds resolves the payload to the kinds it covers.
func (p WarmPayload) Kinds() ([]records.Kind, error) {
	if p.Kind == "" {
		return records.Kinds, nil
	}
	if !p.Kind.Valid() {
		return nil, fmt.Errorf("jobs: unknown kind %q", p.Kind)
	}
	return []records.Kind{p.Kind}, nil
}

// NewWarmTask constructs a records warm-up task for kind.
func NewWarmTask(kind records.Kind) (*asynq.Task, error) {
	data, err := json.Marshal(WarmPayload{Kind: kind})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecordsWarm, data), nil
}
