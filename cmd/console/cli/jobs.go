package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hibiken/asynq"

	"github.com/kunal1274/fms-dev-sub000/internal/records"
	"github.com/kunal1274/fms-dev-sub000/jobs"
)

// Enqueuer queues cache warm-ups.
type Enqueuer interface {
	EnqueueWarm(ctx context.Context, kind records.Kind) error
}

// QueueInspector reports queue state.
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    Enqueuer
	inspector QueueInspector
}

// NewJobsCLI wires the CLI helpers. inspector may be nil.
func NewJobsCLI(client Enqueuer, inspector QueueInspector) (*JobsCLI, error) {
	if client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	return &JobsCLI{client: client, inspector: inspector}, nil
}

// WarmOptions defines the flags of the jobs warm command.
type WarmOptions struct {
	Kind   string
	Stdout io.Writer
	Stderr io.Writer
}

// WarmCommand queues a warm-up for one kind, or for every kind when none is named.
func (c *JobsCLI) WarmCommand(ctx context.Context, opts WarmOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	kinds := records.Kinds
	if opts.Kind != "" {
		kind, err := records.ParseKind(opts.Kind)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "jobs warm: %v\n", err)
			return 1
		}
		kinds = []records.Kind{kind}
	}
	for _, kind := range kinds {
		if err := c.client.EnqueueWarm(ctx, kind); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "jobs warm: enqueue %s: %v\n", kind, err)
			return 1
		}
		_, _ = fmt.Fprintf(opts.Stdout, "queued %s %s\n", jobs.TaskRecordsWarm, kind)
	}
	return 0
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string `json:"queue"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue(ctx context.Context) (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
	}
	return stats, nil
}

// StatsCommand prints the default queue statistics as JSON.
func (c *JobsCLI) StatsCommand(ctx context.Context, stdout, stderr io.Writer) int {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	stats, err := c.InspectQueue(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "jobs stats: %v\n", err)
		return 1
	}
	if err := json.NewEncoder(stdout).Encode(stats); err != nil {
		_, _ = fmt.Fprintf(stderr, "jobs stats: encode json: %v\n", err)
		return 1
	}
	return 0
}
