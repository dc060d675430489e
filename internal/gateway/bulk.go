package gateway

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/kunal1274/fms-dev-sub000/internal/records"
)

// Failure is one delete that did not succeed.
type Failure struct {
	ID  string `json:"id"`
	Err error  `json:"-"`
}

// BulkResult reports the outcome of every delete of a bulk operation.
type BulkResult struct {
	Deleted []string  `json:"deleted"`
	Failed  []Failure `json:"failed"`
}

// DeletedCount returns the number of successful deletes.
func (r BulkResult) DeletedCount() int { return len(r.Deleted) }

// FailedCount returns the number of failed deletes.
func (r BulkResult) FailedCount() int { return len(r.Failed) }

// FailedIDs returns the ids whose delete failed.
func (r BulkResult) FailedIDs() []string {
	ids := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		ids = append(ids, f.ID)
	}
	return ids
}

// BulkDelete issues one delete per id concurrently and waits for every outcome. A
// failed delete never cancels the others; results keep the order of ids.
func (c *Client) BulkDelete(ctx context.Context, kind records.Kind, ids []string) BulkResult {
	errs := make([]error, len(ids))

	var g errgroup.Group
	if c.bulkConcurrency > 0 {
		g.SetLimit(c.bulkConcurrency)
	}
	for i, id := range ids {
		g.Go(func() error {
			errs[i] = c.Remove(ctx, kind, id)
			return nil
		})
	}
	_ = g.Wait()

	result := BulkResult{Deleted: []string{}, Failed: []Failure{}}
	for i, id := range ids {
		if errs[i] != nil {
			result.Failed = append(result.Failed, Failure{ID: id, Err: errs[i]})
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	if len(result.Failed) > 0 {
		c.logger.Warn("bulk delete partially failed",
			slog.String("kind", string(kind)),
			slog.Int("deleted", len(result.Deleted)),
			slog.Int("failed", len(result.Failed)))
	}
	return result
}
