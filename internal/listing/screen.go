package listing

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kunal1274/fms-dev-sub000/internal/gateway"
	"github.com/kunal1274/fms-dev-sub000/internal/query"
	"github.com/kunal1274/fms-dev-sub000/internal/records"
	"github.com/kunal1274/fms-dev-sub000/internal/selection"
	"github.com/kunal1274/fms-dev-sub000/internal/summary"
)

// Notice levels.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notice is a transient message for the user.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// View is a rendering snapshot of a screen.
type View struct {
	Kind        records.Kind     `json:"kind"`
	Label       string           `json:"label"`
	Query       query.Query      `json:"query"`
	Tabs        []string         `json:"tabs"`
	Rows        []records.Record `json:"rows"`
	Total       int              `json:"total"`
	Selected    []string         `json:"selected"`
	AllSelected bool             `json:"allSelected"`
	Summary     summary.Summary  `json:"summary"`
	Error       string           `json:"error,omitempty"`
	Notices     []Notice         `json:"notices,omitempty"`
}

// Screen holds the state of one list screen session. All methods are safe for
// concurrent use; fetch completions are applied atomically and the last one wins.
type Screen struct {
	kind   records.Kind
	tabs   query.Tabs
	source Source
	logger *slog.Logger

	mu         sync.Mutex
	rng        *gateway.DateRange
	all        []records.Record
	q          query.Query
	projection []records.Record
	selected   selection.Set
	client     summary.Summary
	server     summary.Partial
	listErr    error
	notices    []Notice
}

// NewScreen creates an empty screen for kind.
func NewScreen(kind records.Kind, source Source, logger *slog.Logger) *Screen {
	if logger == nil {
		logger = slog.Default()
	}
	return &Screen{
		kind:     kind,
		tabs:     query.TabsFor(kind),
		source:   source,
		logger:   logger.With(slog.String("kind", string(kind))),
		q:        query.Default(),
		selected: selection.New(),
	}
}

// Load fetches the record list and the server metrics concurrently and applies each
// result as it arrives. It returns the list error, if any; a metrics failure is only
// logged and the client-computed summary is kept.
func (s *Screen) Load(ctx context.Context, rng *gateway.DateRange) error {
	s.mu.Lock()
	s.rng = rng
	s.mu.Unlock()

	var listErr error
	var g errgroup.Group
	g.Go(func() error {
		recs, err := s.source.List(ctx, s.kind, rng)
		s.applyList(recs, err)
		listErr = err
		return nil
	})
	g.Go(func() error {
		partial, err := s.source.Metrics(ctx, s.kind, rng)
		s.applyMetrics(partial, err)
		return nil
	})
	_ = g.Wait()
	return listErr
}

func (s *Screen) applyList(recs []records.Record, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Error("load records", slog.Any("error", err))
		s.listErr = err
		s.all = nil
		s.client = summary.Summarize(nil)
		s.reproject()
		return
	}
	s.listErr = nil
	s.all = recs
	s.client = summary.Summarize(recs)
	s.reproject()
}

func (s *Screen) applyMetrics(partial summary.Partial, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Warn("load metrics", slog.Any("error", err))
		s.server = summary.Partial{}
		return
	}
	s.server = partial
}

// reproject recomputes the projection and drops selected ids it no longer contains.
// Callers hold mu.
func (s *Screen) reproject() {
	s.projection = query.Project(s.all, s.q, s.tabs)
	s.selected = selection.Reconcile(s.selected, query.IDs(s.projection))
}

// SetQuery replaces the whole query.
func (s *Screen) SetQuery(q query.Query) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.q = q.Normalized()
	s.reproject()
}

// SetTab switches the active tab.
func (s *Screen) SetTab(tab string) {
	s.update(func(q *query.Query) { q.Tab = tab })
}

// SetStatus changes the status filter.
func (s *Screen) SetStatus(status query.StatusFilter) {
	s.update(func(q *query.Query) { q.Status = status })
}

// SetSearch changes the search text.
func (s *Screen) SetSearch(search string) {
	s.update(func(q *query.Query) { q.Search = search })
}

// SetSort changes the sort key.
func (s *Screen) SetSort(key query.SortKey) {
	s.update(func(q *query.Query) { q.Sort = key })
}

func (s *Screen) update(fn func(*query.Query)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.q
	fn(&q)
	s.q = q.Normalized()
	s.reproject()
}

// Query returns the current query.
func (s *Screen) Query() query.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q
}

// ToggleAll selects every projected record when checked and clears the selection
// otherwise.
func (s *Screen) ToggleAll(checked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = selection.ToggleAll(query.IDs(s.projection), s.selected, checked)
}

// ToggleOne flips the selection of id. Ids outside the projection are ignored.
func (s *Screen) ToggleOne(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(query.IDs(s.projection), id) {
		return
	}
	s.selected = selection.ToggleOne(id, s.selected)
}

// Select replaces the selection with the ids that are part of the projection.
func (s *Screen) Select(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = selection.Reconcile(selection.New(ids...), query.IDs(s.projection))
}

// Selected returns the selected ids in projection order.
func (s *Screen) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected.Ordered(query.IDs(s.projection))
}

// Projection returns a copy of the records currently shown.
func (s *Screen) Projection() []records.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil
	}
	return slices.Clone(s.projection)
}

// Summary returns the client summary overlaid with the server metrics.
func (s *Screen) Summary() summary.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summary.MergeServerMetrics(s.client, s.server)
}

// BulkDelete deletes the selected records, posts a notice per outcome, clears the
// selection and reloads. The returned error is the reload error.
func (s *Screen) BulkDelete(ctx context.Context) (gateway.BulkResult, error) {
	s.mu.Lock()
	ids := s.selected.Ordered(query.IDs(s.projection))
	rng := s.rng
	s.mu.Unlock()

	if len(ids) == 0 {
		return gateway.BulkResult{Deleted: []string{}, Failed: []gateway.Failure{}}, nil
	}

	result := s.source.BulkDelete(ctx, s.kind, ids)

	s.mu.Lock()
	if n := result.DeletedCount(); n > 0 {
		s.notify(NoticeSuccess, fmt.Sprintf("%d deleted", n))
	}
	if n := result.FailedCount(); n > 0 {
		s.notify(NoticeError, fmt.Sprintf("%d failed", n))
	}
	s.selected = selection.New()
	s.mu.Unlock()

	return result, s.Load(ctx, rng)
}

// Save creates or updates a record. A rejected payload posts an error notice with the
// server's message and leaves the screen untouched; a saved one triggers a reload
// whose outcome is reflected in the view.
func (s *Screen) Save(ctx context.Context, payload records.Raw) (records.Record, error) {
	rec, err := s.source.Upsert(ctx, s.kind, payload)
	if err != nil {
		s.mu.Lock()
		s.notify(NoticeError, gateway.UserMessage(err))
		s.mu.Unlock()
		return records.Record{}, err
	}

	s.mu.Lock()
	s.notify(NoticeSuccess, "Record saved")
	rng := s.rng
	s.mu.Unlock()

	_ = s.Load(ctx, rng)
	return rec, nil
}

func (s *Screen) notify(level, message string) {
	s.notices = append(s.notices, Notice{Level: level, Message: message})
}

// View returns a snapshot of the screen and drains pending notices.
func (s *Screen) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := query.IDs(s.projection)
	v := View{
		Kind:     s.kind,
		Label:    s.kind.Label(),
		Query:    s.q,
		Tabs:     s.tabs.Names(),
		Rows:     slices.Clone(s.projection),
		Total:    len(s.all),
		Selected: s.selected.Ordered(ids),
		Summary:  summary.MergeServerMetrics(s.client, s.server),
		Notices:  s.notices,
	}
	if v.Rows == nil {
		v.Rows = []records.Record{}
	}
	v.AllSelected = len(ids) > 0 && len(v.Selected) == len(ids)
	if s.listErr != nil {
		v.Rows = []records.Record{}
		v.Error = s.listErr.Error()
	}
	s.notices = nil
	return v
}
