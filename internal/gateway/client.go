// Package gateway talks to the backend REST API that owns every record.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/kunal1274/fms-dev-sub000/internal/platform/httpx"
	"github.com/kunal1274/fms-dev-sub000/internal/records"
	"github.com/kunal1274/fms-dev-sub000/internal/summary"
)

const maxResponseBytes = 16 << 20

// Observer receives one observation per backend call. Status is 0 when no response
// was received.
type Observer interface {
	ObserveUpstream(kind, op string, status int, elapsed time.Duration)
}

// DateRange bounds list and metrics requests by creation date.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Values encodes the range as from/to query parameters.
func (r *DateRange) Values() url.Values {
	v := url.Values{}
	if r == nil {
		return v
	}
	if !r.From.IsZero() {
		v.Set("from", r.From.UTC().Format(time.RFC3339))
	}
	if !r.To.IsZero() {
		v.Set("to", r.To.UTC().Format(time.RFC3339))
	}
	return v
}

// Config configures a Client.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	BulkConcurrency int
	HTTPClient      *http.Client
	Observer        Observer
	Logger          *slog.Logger
}

// Client is the CRUD gateway to the backend API.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	bulkConcurrency int
	observer        Observer
	logger          *slog.Logger
}

// NewClient constructs a Client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("gateway: base url required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("gateway: parse base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:         base,
		httpClient:      httpClient,
		bulkConcurrency: cfg.BulkConcurrency,
		observer:        cfg.Observer,
		logger:          logger,
	}, nil
}

// RawList fetches the unnormalized list payload of kind.
func (c *Client) RawList(ctx context.Context, kind records.Kind, rng *DateRange) ([]records.Raw, error) {
	body, err := c.do(ctx, kind, "list", http.MethodGet, c.endpoint(kind, rng.Values()), nil, "")
	if err != nil {
		return nil, err
	}
	return decodeList(body)
}

// List fetches and normalizes the records of kind.
func (c *Client) List(ctx context.Context, kind records.Kind, rng *DateRange) ([]records.Record, error) {
	raws, err := c.RawList(ctx, kind, rng)
	if err != nil {
		return nil, err
	}
	return records.NormalizeAll(raws, kind), nil
}

// RawMetrics fetches the first metrics object reported for kind.
func (c *Client) RawMetrics(ctx context.Context, kind records.Kind, rng *DateRange) (map[string]any, error) {
	body, err := c.do(ctx, kind, "metrics", http.MethodGet, c.endpoint(kind, rng.Values(), "metrics"), nil, "")
	if err != nil {
		return nil, err
	}
	var payload struct {
		Metrics []map[string]any `json:"metrics"`
	}
	if err := unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("metrics %s: decode: %w", kind, err)
	}
	if len(payload.Metrics) == 0 {
		return map[string]any{}, nil
	}
	return payload.Metrics[0], nil
}

// Metrics fetches server-side summary metrics of kind.
func (c *Client) Metrics(ctx context.Context, kind records.Kind, rng *DateRange) (summary.Partial, error) {
	raw, err := c.RawMetrics(ctx, kind, rng)
	if err != nil {
		return summary.Partial{}, err
	}
	return summary.ParsePartial(raw), nil
}

// Get fetches a single record.
func (c *Client) Get(ctx context.Context, kind records.Kind, id string) (records.Record, error) {
	body, err := c.do(ctx, kind, "get", http.MethodGet, c.endpoint(kind, nil, id), nil, "")
	if err != nil {
		return records.Record{}, err
	}
	raw, err := decodeOne(body)
	if err != nil {
		return records.Record{}, fmt.Errorf("get %s %s: decode: %w", kind, id, err)
	}
	return records.Normalize(raw, kind), nil
}

// Remove deletes a record. Any 2xx response is success.
func (c *Client) Remove(ctx context.Context, kind records.Kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: record id required", httpx.ErrValidation)
	}
	_, err := c.do(ctx, kind, "delete", http.MethodDelete, c.endpoint(kind, nil, id), nil, "")
	return err
}

// Upsert creates payload when it has no id and updates it otherwise. The persisted
// record echoed by the backend is returned.
func (c *Client) Upsert(ctx context.Context, kind records.Kind, payload records.Raw) (records.Record, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return records.Record{}, fmt.Errorf("%w: encode payload: %v", httpx.ErrValidation, err)
	}
	method, op, target := http.MethodPost, "create", c.endpoint(kind, nil)
	if id := PayloadID(payload); id != "" {
		method, op, target = http.MethodPut, "update", c.endpoint(kind, nil, id)
	}
	body, err := c.do(ctx, kind, op, method, target, bytes.NewReader(data), "application/json")
	if err != nil {
		return records.Record{}, err
	}
	raw, err := decodeOne(body)
	if err != nil {
		return records.Record{}, fmt.Errorf("%s %s: decode: %w", op, kind, err)
	}
	return records.Normalize(raw, kind), nil
}

// PayloadID returns the backend identifier carried by payload, if any.
func PayloadID(payload records.Raw) string {
	for _, key := range []string{"_id", "id"} {
		if v, ok := records.Lookup(payload, key); ok {
			if s, ok := records.ToString(v); ok {
				return s
			}
		}
	}
	return ""
}

func (c *Client) endpoint(kind records.Kind, query url.Values, segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString("/")
	b.WriteString(kind.Path())
	for _, s := range segments {
		b.WriteString("/")
		b.WriteString(url.PathEscape(s))
	}
	if len(query) > 0 {
		b.WriteString("?")
		b.WriteString(query.Encode())
	}
	return b.String()
}

func (c *Client) do(ctx context.Context, kind records.Kind, op, method, target string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: build request: %w", op, kind, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	req.Header.Set("X-Request-ID", requestID(ctx))
	if l, ok := body.(interface{ Len() int }); ok {
		req.ContentLength = int64(l.Len())
	}
	return c.send(req, kind, op)
}

func (c *Client) send(req *http.Request, kind records.Kind, op string) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(kind, op, 0, start)
		return nil, fmt.Errorf("%s %s: %w: %w", op, kind, httpx.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.observe(kind, op, resp.StatusCode, start)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w: %w", op, kind, httpx.ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := newStatusError(op+" "+string(kind), resp.StatusCode, data)
		c.logger.Warn("backend call failed",
			slog.String("kind", string(kind)),
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.String("message", se.Message))
		return nil, se
	}
	return data, nil
}

func (c *Client) observe(kind records.Kind, op string, status int, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveUpstream(string(kind), op, status, time.Since(start))
}

func requestID(ctx context.Context) string {
	if id := chimw.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func unmarshal(body []byte, target any) error {
	return httpx.UnmarshalJSON(body, target)
}

// decodeList accepts a bare array or an object wrapping the array under data.
func decodeList(body []byte) ([]records.Raw, error) {
	var payload any
	if err := unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	items, ok := payload.([]any)
	if !ok {
		obj, isObj := payload.(map[string]any)
		if !isObj {
			return nil, fmt.Errorf("decode list: unexpected %T payload", payload)
		}
		items, ok = obj["data"].([]any)
		if !ok {
			return nil, fmt.Errorf("decode list: data is not an array")
		}
	}
	out := make([]records.Raw, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, records.Raw(obj))
		}
	}
	return out, nil
}

// decodeOne accepts a record object optionally wrapped under data.
func decodeOne(body []byte) (records.Raw, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return records.Raw{}, nil
	}
	var payload map[string]any
	if err := unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if data, ok := payload["data"].(map[string]any); ok {
		return records.Raw(data), nil
	}
	return records.Raw(payload), nil
}
