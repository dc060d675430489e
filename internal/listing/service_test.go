package listing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunal1274/fms-dev-sub000/internal/gateway"
	"github.com/kunal1274/fms-dev-sub000/internal/records"
)

type fakeBackend struct {
	listCalls    atomic.Int32
	metricsCalls atomic.Int32
	removeErr    error
	raws         []records.Raw
}

func (b *fakeBackend) RawList(context.Context, records.Kind, *gateway.DateRange) ([]records.Raw, error) {
	b.listCalls.Add(1)
	return b.raws, nil
}

func (b *fakeBackend) RawMetrics(context.Context, records.Kind, *gateway.DateRange) (map[string]any, error) {
	b.metricsCalls.Add(1)
	return map[string]any{"totalCompanies": 7}, nil
}

func (b *fakeBackend) Remove(context.Context, records.Kind, string) error { return b.removeErr }

func (b *fakeBackend) Upsert(_ context.Context, kind records.Kind, payload records.Raw) (records.Record, error) {
	return records.Normalize(payload, kind), nil
}

func (b *fakeBackend) BulkDelete(_ context.Context, _ records.Kind, ids []string) gateway.BulkResult {
	return gateway.BulkResult{Deleted: ids, Failed: []gateway.Failure{}}
}

func (b *fakeBackend) UploadLogo(_ context.Context, _ records.Kind, id, _ string, file io.Reader, progress gateway.ProgressFunc) (records.Raw, error) {
	data, _ := io.ReadAll(file)
	if progress != nil {
		progress(int64(len(data)), int64(len(data)))
	}
	return records.Raw{"_id": id, "logoUrl": "/uploads/" + id}, nil
}

type recordingWarmer struct {
	mu    sync.Mutex
	kinds []records.Kind
	err   error
}

func (w *recordingWarmer) EnqueueWarm(_ context.Context, kind records.Kind) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.kinds = append(w.kinds, kind)
	return w.err
}

func newCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestServiceListIsCachedUntilMutation(t *testing.T) {
	cache, mr := newCache(t)
	backend := &fakeBackend{raws: []records.Raw{{"_id": "1", "companyName": "Acme", "creditLimit": 1500.5}}}
	warmer := &recordingWarmer{}
	svc := NewService(backend, cache, warmer, discardLogger())
	ctx := context.Background()

	first, err := svc.List(ctx, records.KindCompany, nil)
	require.NoError(t, err)
	second, err := svc.List(ctx, records.KindCompany, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), backend.listCalls.Load())
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.Equal(t, "1500.5", second[0].CreditLimit.String())
	assert.True(t, mr.Exists("records:company:list:all:1"))

	require.NoError(t, svc.Remove(ctx, records.KindCompany, "1"))
	assert.Equal(t, []records.Kind{records.KindCompany}, warmer.kinds)
	mr.CheckGet(t, "records:version:company", "2")

	_, err = svc.List(ctx, records.KindCompany, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), backend.listCalls.Load())
}

func TestServiceCachesPerKindAndRange(t *testing.T) {
	cache, _ := newCache(t)
	backend := &fakeBackend{}
	svc := NewService(backend, cache, nil, discardLogger())
	ctx := context.Background()
	rng := &gateway.DateRange{From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	_, err := svc.List(ctx, records.KindCompany, nil)
	require.NoError(t, err)
	_, err = svc.List(ctx, records.KindCompany, rng)
	require.NoError(t, err)
	_, err = svc.List(ctx, records.KindVendor, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), backend.listCalls.Load())

	require.NoError(t, cache.Bump(ctx, records.KindVendor))
	_, err = svc.List(ctx, records.KindCompany, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), backend.listCalls.Load())
}

func TestServiceMetricsParsed(t *testing.T) {
	cache, _ := newCache(t)
	svc := NewService(&fakeBackend{}, cache, nil, discardLogger())

	p, err := svc.Metrics(context.Background(), records.KindCompany, nil)
	require.NoError(t, err)
	require.NotNil(t, p.Count)
	assert.Equal(t, 7, *p.Count)
}

func TestServiceWithoutCachePassesThrough(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewService(backend, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.List(ctx, records.KindItem, nil)
	require.NoError(t, err)
	_, err = svc.List(ctx, records.KindItem, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), backend.listCalls.Load())
}

func TestServiceWarmPopulatesCache(t *testing.T) {
	cache, mr := newCache(t)
	backend := &fakeBackend{}
	svc := NewService(backend, cache, nil, discardLogger())
	ctx := context.Background()

	require.NoError(t, svc.Warm(ctx, records.KindInvoice))
	assert.True(t, mr.Exists("records:invoice:list:all:1"))
	assert.True(t, mr.Exists("records:invoice:metrics:all:1"))

	_, err := svc.List(ctx, records.KindInvoice, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), backend.listCalls.Load())
}

func TestServiceFailedRemoveDoesNotInvalidate(t *testing.T) {
	cache, mr := newCache(t)
	warmer := &recordingWarmer{}
	svc := NewService(&fakeBackend{removeErr: errors.New("boom")}, cache, warmer, discardLogger())

	require.Error(t, svc.Remove(context.Background(), records.KindCompany, "1"))
	assert.Empty(t, warmer.kinds)
	assert.False(t, mr.Exists("records:version:company"))
}

func TestServiceWarmerErrorIsNotFatal(t *testing.T) {
	warmer := &recordingWarmer{err: errors.New("queue down")}
	svc := NewService(&fakeBackend{}, nil, warmer, discardLogger())

	rec, err := svc.Upsert(context.Background(), records.KindVendor, records.Raw{"vendorName": "Beta"})
	require.NoError(t, err)
	assert.Equal(t, "Beta", rec.Name)
	assert.Len(t, warmer.kinds, 1)
}

func TestServiceUploadLogo(t *testing.T) {
	warmer := &recordingWarmer{}
	svc := NewService(&fakeBackend{}, nil, warmer, discardLogger())

	raw, err := svc.UploadLogo(context.Background(), records.KindCompany, "c1", "logo.png", strings.NewReader("PNG"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/c1", raw["logoUrl"])
	assert.Equal(t, []records.Kind{records.KindCompany}, warmer.kinds)
}

func TestServiceListSurvivesRedisOutage(t *testing.T) {
	cache, mr := newCache(t)
	backend := &fakeBackend{raws: []records.Raw{{"_id": "1", "companyName": "Acme"}}}
	svc := NewService(backend, cache, nil, discardLogger())
	mr.Close()

	list, err := svc.List(context.Background(), records.KindCompany, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].Name)
	assert.EqualValues(t, 1, backend.listCalls.Load())
}

func TestCacheFetchJSONDegradesOnReadFailure(t *testing.T) {
	cache, mr := newCache(t)
	ctx := context.Background()
	mr.Close()

	var out []string
	err := cache.FetchJSON(ctx, "records:company:list:all:1", &out, func(context.Context) (any, error) {
		return []string{"a", "b"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out)

	loaderErr := errors.New("backend down")
	err = cache.FetchJSON(ctx, "k", &out, func(context.Context) (any, error) { return nil, loaderErr })
	assert.ErrorIs(t, err, loaderErr)
}

func TestServiceListKeepsLargeNumbersExact(t *testing.T) {
	raws := []records.Raw{{
		"_id":         json.Number("9007199254740993"),
		"companyName": "Acme",
		"creditLimit": json.Number("12345678901234567.89"),
	}}
	cache, _ := newCache(t)
	cases := map[string]*Cache{"uncached": nil, "cached": cache}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			backend := &fakeBackend{raws: raws}
			svc := NewService(backend, c, nil, discardLogger())
			ctx := context.Background()

			for i := 0; i < 2; i++ {
				list, err := svc.List(ctx, records.KindCompany, nil)
				require.NoError(t, err)
				require.Len(t, list, 1)
				assert.Equal(t, "9007199254740993", list[0].ID)
				assert.Equal(t, "12345678901234567.89", list[0].CreditLimit.String())
			}
		})
	}
}
