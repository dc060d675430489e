// Package listing drives list screens: it loads records through the gateway, projects
// them through the query engine and serves the console API.
package listing

import (
	"context"
	"io"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/kunal1274/fms-dev-sub000/internal/gateway"
	"github.com/kunal1274/fms-dev-sub000/internal/records"
	"github.com/kunal1274/fms-dev-sub000/internal/summary"
)

// Backend is the subset of gateway.Client the service depends on.
type Backend interface {
	RawList(ctx context.Context, kind records.Kind, rng *gateway.DateRange) ([]records.Raw, error)
	RawMetrics(ctx context.Context, kind records.Kind, rng *gateway.DateRange) (map[string]any, error)
	Remove(ctx context.Context, kind records.Kind, id string) error
	Upsert(ctx context.Context, kind records.Kind, payload records.Raw) (records.Record, error)
	BulkDelete(ctx context.Context, kind records.Kind, ids []string) gateway.BulkResult
	UploadLogo(ctx context.Context, kind records.Kind, id, filename string, file io.Reader, progress gateway.ProgressFunc) (records.Raw, error)
}

// Warmer schedules a cache warm-up for a kind.
type Warmer interface {
	EnqueueWarm(ctx context.Context, kind records.Kind) error
}

// Source feeds a Screen.
type Source interface {
	List(ctx context.Context, kind records.Kind, rng *gateway.DateRange) ([]records.Record, error)
	Metrics(ctx context.Context, kind records.Kind, rng *gateway.DateRange) (summary.Partial, error)
	BulkDelete(ctx context.Context, kind records.Kind, ids []string) gateway.BulkResult
	Upsert(ctx context.Context, kind records.Kind, payload records.Raw) (records.Record, error)
}

// Service fronts the backend with the record cache and invalidates it on every mutation.
type Service struct {
	backend Backend
	cache   *Cache
	warmer  Warmer
	logger  *slog.Logger
	warms   singleflight.Group
}

// NewService wires the service. cache and warmer may be nil.
func NewService(backend Backend, cache *Cache, warmer Warmer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{backend: backend, cache: cache, warmer: warmer, logger: logger}
}

// List returns the normalized records of kind.
func (s *Service) List(ctx context.Context, kind records.Kind, rng *gateway.DateRange) ([]records.Record, error) {
	raws, err := s.rawList(ctx, kind, rng)
	if err != nil {
		return nil, err
	}
	return records.NormalizeAll(raws, kind), nil
}

// Metrics returns the server-side summary metrics of kind.
func (s *Service) Metrics(ctx context.Context, kind records.Kind, rng *gateway.DateRange) (summary.Partial, error) {
	raw, err := s.rawMetrics(ctx, kind, rng)
	if err != nil {
		return summary.Partial{}, err
	}
	return summary.ParsePartial(raw), nil
}

// Upsert creates or updates a record.
func (s *Service) Upsert(ctx context.Context, kind records.Kind, payload records.Raw) (records.Record, error) {
	rec, err := s.backend.Upsert(ctx, kind, payload)
	if err != nil {
		return records.Record{}, err
	}
	s.invalidate(ctx, kind)
	return rec, nil
}

// Remove deletes one record.
func (s *Service) Remove(ctx context.Context, kind records.Kind, id string) error {
	if err := s.backend.Remove(ctx, kind, id); err != nil {
		return err
	}
	s.invalidate(ctx, kind)
	return nil
}

// BulkDelete deletes ids concurrently and reports every outcome.
func (s *Service) BulkDelete(ctx context.Context, kind records.Kind, ids []string) gateway.BulkResult {
	result := s.backend.BulkDelete(ctx, kind, ids)
	if result.DeletedCount() > 0 {
		s.invalidate(ctx, kind)
	}
	return result
}

// UploadLogo forwards a logo upload for a record.
func (s *Service) UploadLogo(ctx context.Context, kind records.Kind, id, filename string, file io.Reader) (records.Raw, error) {
	logger := s.logger.With(slog.String("kind", string(kind)), slog.String("id", id))
	raw, err := s.backend.UploadLogo(ctx, kind, id, filename, file, func(sent, total int64) {
		if sent == total {
			logger.Debug("logo upload sent", slog.Int64("bytes", total))
		}
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, kind)
	return raw, nil
}

// Warm repopulates the cached list and metrics of kind. Concurrent warms of the same
// kind share one backend round trip.
func (s *Service) Warm(ctx context.Context, kind records.Kind) error {
	_, err, _ := s.warms.Do(string(kind), func() (any, error) {
		if _, err := s.rawList(ctx, kind, nil); err != nil {
			return nil, err
		}
		if _, err := s.rawMetrics(ctx, kind, nil); err != nil {
			s.logger.Warn("warm metrics", slog.String("kind", string(kind)), slog.Any("error", err))
		}
		return nil, nil
	})
	return err
}

func (s *Service) rawList(ctx context.Context, kind records.Kind, rng *gateway.DateRange) ([]records.Raw, error) {
	key, err := s.cache.BuildKey(ctx, kind, keyList(rng))
	if err != nil {
		s.logger.Warn("record cache unavailable", slog.Any("error", err))
		return s.backend.RawList(ctx, kind, rng)
	}
	var raws []records.Raw
	err = s.cache.FetchJSON(ctx, key, &raws, func(ctx context.Context) (any, error) {
		return s.backend.RawList(ctx, kind, rng)
	})
	if err != nil {
		return nil, err
	}
	return raws, nil
}

func (s *Service) rawMetrics(ctx context.Context, kind records.Kind, rng *gateway.DateRange) (map[string]any, error) {
	key, err := s.cache.BuildKey(ctx, kind, keyMetrics(rng))
	if err != nil {
		s.logger.Warn("record cache unavailable", slog.Any("error", err))
		return s.backend.RawMetrics(ctx, kind, rng)
	}
	var raw map[string]any
	err = s.cache.FetchJSON(ctx, key, &raw, func(ctx context.Context) (any, error) {
		return s.backend.RawMetrics(ctx, kind, rng)
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *Service) invalidate(ctx context.Context, kind records.Kind) {
	if err := s.cache.Bump(ctx, kind); err != nil {
		s.logger.Warn("bump record cache", slog.String("kind", string(kind)), slog.Any("error", err))
	}
	if s.warmer == nil {
		return
	}
	if err := s.warmer.EnqueueWarm(ctx, kind); err != nil {
		s.logger.Warn("enqueue cache warm", slog.String("kind", string(kind)), slog.Any("error", err))
	}
}
