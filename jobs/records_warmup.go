package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/kunal1274/fms-dev-sub000/internal/jobs"
	"github.com/kunal1274/fms-dev-sub000/internal/records"
)

// kindTimeout bounds the warm-up of a single kind.
const kindTimeout = 20 * time.Second

// Warmer repopulates the record cache of a kind.
type Warmer interface {
	Warm(ctx context.Context, kind records.Kind) error
}

// RecordsWarmupJob pre-populates the record cache so list screens open warm.
type RecordsWarmupJob struct {
	Warmer  Warmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewRecordsWarmupJob wires dependencies for the warmup handler.
func NewRecordsWarmupJob(warmer Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *RecordsWarmupJob {
	return &RecordsWarmupJob{
		Warmer:  warmer,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes records warm-up tasks. Every kind is attempted; the first failure
// is returned so Asynq retries the task.
func (j *RecordsWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Warmer == nil {
		return errors.New("records warmup: handler not configured")
	}
	var payload WarmPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("records warmup: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	kinds, err := payload.Kinds()
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskRecordsWarm)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	start := j.now()
	warmed := 0
	for _, kind := range kinds {
		if err := j.warmKind(ctx, kind); err != nil {
			logger.Error("warm kind", slog.String("kind", string(kind)), slog.Any("error", err))
			if resultErr == nil {
				resultErr = err
			}
			continue
		}
		j.Metrics.AddWarmed(string(kind))
		warmed++
	}

	logger.Info("completed records warmup", slog.Int("kinds", warmed), slog.Int("failed", len(kinds)-warmed), slog.Duration("duration", j.now().Sub(start)))
	return resultErr
}

func (j *RecordsWarmupJob) warmKind(ctx context.Context, kind records.Kind) error {
	kindCtx, cancel := context.WithTimeout(ctx, kindTimeout)
	defer cancel()
	return j.Warmer.Warm(kindCtx, kind)
}

func (j *RecordsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskRecordsWarm))
	}
	return slog.Default().With(slog.String("job", TaskRecordsWarm))
}

func (j *RecordsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

// WarmSchedule builds one cron registration per kind for the cron expression.
func WarmSchedule(spec string) ([]CronRegistration, error) {
	if spec == "" {
		return nil, nil
	}
	regs := make([]CronRegistration, 0, len(records.Kinds))
	for _, kind := range records.Kinds {
		task, err := NewWarmTask(kind)
		if err != nil {
			return nil, err
		}
		regs = append(regs, CronRegistration{
			Spec:    spec,
			Task:    task,
			Options: []asynq.Option{asynq.Queue(QueueDefault), asynq.Unique(warmUniqueTTL)},
		})
	}
	return regs, nil
}
