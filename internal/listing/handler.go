package listing

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kunal1274/fms-dev-sub000/internal/export"
	"github.com/kunal1274/fms-dev-sub000/internal/gateway"
	"github.com/kunal1274/fms-dev-sub000/internal/platform/httpx"
	"github.com/kunal1274/fms-dev-sub000/internal/query"
	"github.com/kunal1274/fms-dev-sub000/internal/records"
)

const maxLogoBytes = 10 << 20

// Handler serves the console list API.
type Handler struct {
	service   *Service
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandler constructs the list API handler. pdf may be nil, which disables PDF export.
func NewHandler(service *Service, pdf *export.PDFExporter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, pdf: pdf, validator: validator.New(), logger: logger}
}

// MountRoutes attaches the list routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/kinds", h.kinds)
	r.Route("/{kind}", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Post("/bulk-delete", h.bulkDelete)
		r.Get("/export.csv", h.exportCSV)
		r.Get("/export.xlsx", h.exportXLSX)
		r.Get("/export.pdf", h.exportPDF)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.remove)
		r.Post("/{id}/logo", h.uploadLogo)
	})
}

type kindInfo struct {
	Kind     records.Kind `json:"kind"`
	Label    string       `json:"label"`
	Path     string       `json:"path"`
	Document bool         `json:"document"`
	Tabs     []string     `json:"tabs"`
}

func (h *Handler) kinds(w http.ResponseWriter, r *http.Request) {
	out := make([]kindInfo, 0, len(records.Kinds))
	for _, k := range records.Kinds {
		out = append(out, kindInfo{
			Kind:     k,
			Label:    k.Label(),
			Path:     k.Path(),
			Document: k.IsDocument(),
			Tabs:     query.TabsFor(k).Names(),
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	screen, ok := h.loadScreen(w, r, r.URL.Query())
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, screen.View())
}

type saveResponse struct {
	Record records.Record `json:"record"`
	View   View           `json:"view"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "", http.StatusCreated)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, id string, status int) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	var payload records.Raw
	if err := httpx.DecodeJSON(r, &payload); err != nil || payload == nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be a JSON object")
		return
	}
	if id != "" {
		delete(payload, "id")
		payload["_id"] = id
	}
	if err := validatePayload(h.validator, kind, payload); err != nil {
		h.respondMutationError(w, err)
		return
	}

	screen := NewScreen(kind, h.service, h.logger)
	rec, err := screen.Save(r.Context(), payload)
	if err != nil {
		h.logger.Warn("save record", slog.String("kind", string(kind)), slog.Any("error", err))
		h.respondMutationError(w, err)
		return
	}
	httpx.JSON(w, status, saveResponse{Record: rec, View: screen.View()})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	if err := h.service.Remove(r.Context(), kind, chi.URLParam(r, "id")); err != nil {
		h.logger.Warn("delete record", slog.String("kind", string(kind)), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	IDs    []string `json:"ids"`
	Tab    string   `json:"tab"`
	Status string   `json:"status"`
	Search string   `json:"search"`
	Sort   string   `json:"sort"`
	From   string   `json:"from"`
	To     string   `json:"to"`
}

func (req bulkDeleteRequest) values() url.Values {
	v := url.Values{}
	for key, val := range map[string]string{
		"tab": req.Tab, "status": req.Status, "search": req.Search,
		"sort": req.Sort, "from": req.From, "to": req.To,
	} {
		if val != "" {
			v.Set(key, val)
		}
	}
	return v
}

type bulkFailure struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type bulkDeleteResponse struct {
	Deleted      []string      `json:"deleted"`
	Failed       []bulkFailure `json:"failed"`
	DeletedCount int           `json:"deletedCount"`
	FailedCount  int           `json:"failedCount"`
	View         View          `json:"view"`
}

func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be a JSON object")
		return
	}
	screen, ok := h.loadScreen(w, r, req.values())
	if !ok {
		return
	}
	screen.Select(req.IDs)

	result, err := screen.BulkDelete(r.Context())
	if err != nil {
		h.logger.Warn("reload after bulk delete", slog.Any("error", err))
	}
	resp := bulkDeleteResponse{
		Deleted:      result.Deleted,
		Failed:       make([]bulkFailure, 0, len(result.Failed)),
		DeletedCount: result.DeletedCount(),
		FailedCount:  result.FailedCount(),
		View:         screen.View(),
	}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, bulkFailure{ID: f.ID, Message: f.Err.Error()})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	screen, ok := h.loadScreen(w, r, r.URL.Query())
	if !ok {
		return
	}
	kind := screen.kind
	buf := &bytes.Buffer{}
	if err := export.WriteCSV(buf, export.ColumnsFor(kind), screen.Projection()); err != nil {
		h.logger.Error("export csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	writeAttachment(w, exportName(kind, ".csv"), buf.Bytes())
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	screen, ok := h.loadScreen(w, r, r.URL.Query())
	if !ok {
		return
	}
	kind := screen.kind
	buf := &bytes.Buffer{}
	if err := export.WriteXLSX(buf, kind.Label(), export.ColumnsFor(kind), screen.Projection()); err != nil {
		h.logger.Error("export xlsx", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	writeAttachment(w, exportName(kind, ".xlsx"), buf.Bytes())
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "PDF Export Unavailable", "no PDF renderer configured")
		return
	}
	screen, ok := h.loadScreen(w, r, r.URL.Query())
	if !ok {
		return
	}
	kind := screen.kind
	title := kind.Label()
	if tab := screen.Query().Tab; tab != query.DefaultTab {
		title += " - " + tab
	}
	pdf, err := h.pdf.Render(r.Context(), title, export.ColumnsFor(kind), screen.Projection())
	if err != nil {
		h.logger.Error("export pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "PDF Render Failed", "")
		return
	}
	writeAttachment(w, exportName(kind, ".pdf"), pdf)
}

func (h *Handler) uploadLogo(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxLogoBytes)
	if err := r.ParseMultipartForm(maxLogoBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Upload", "multipart form with a logo file is required")
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Upload", "logo file is required")
		return
	}
	defer func() { _ = file.Close() }()

	raw, err := h.service.UploadLogo(r.Context(), kind, chi.URLParam(r, "id"), header.Filename, file)
	if err != nil {
		h.logger.Warn("upload logo", slog.String("kind", string(kind)), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, raw)
}

func (h *Handler) kind(w http.ResponseWriter, r *http.Request) (records.Kind, bool) {
	kind, err := records.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrNotFound, err))
		return "", false
	}
	return kind, true
}

// loadScreen builds a screen for the kind in the URL, loads it for the date range in
// values and applies the query in values.
func (h *Handler) loadScreen(w http.ResponseWriter, r *http.Request, values url.Values) (*Screen, bool) {
	kind, ok := h.kind(w, r)
	if !ok {
		return nil, false
	}
	q, err := query.Parse(values)
	if err != nil {
		httpx.RespondError(w, err)
		return nil, false
	}
	rng, err := ParseDateRange(values)
	if err != nil {
		httpx.RespondError(w, err)
		return nil, false
	}
	screen := NewScreen(kind, h.service, h.logger)
	if err := screen.Load(r.Context(), rng); err != nil {
		httpx.RespondError(w, err)
		return nil, false
	}
	screen.SetQuery(q)
	return screen, true
}

func (h *Handler) respondMutationError(w http.ResponseWriter, err error) {
	var formErr *FormError
	switch {
	case errors.As(err, &formErr):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", formErr.Error())
	case errors.Is(err, httpx.ErrValidation) && !errors.Is(err, httpx.ErrDuplicate):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", gateway.UserMessage(err))
	default:
		httpx.RespondError(w, err)
	}
}

// ParseDateRange reads optional from/to values as RFC 3339 timestamps or dates. It
// returns nil when neither is set.
func ParseDateRange(values url.Values) (*gateway.DateRange, error) {
	from, err := parseBound(values.Get("from"))
	if err != nil {
		return nil, err
	}
	to, err := parseBound(values.Get("to"))
	if err != nil {
		return nil, err
	}
	if from.IsZero() && to.IsZero() {
		return nil, nil
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, fmt.Errorf("%w: date range ends before it starts", httpx.ErrValidation)
	}
	return &gateway.DateRange{From: from, To: to}, nil
}

func parseBound(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", httpx.ErrValidation, s)
}

func exportName(kind records.Kind, ext string) string {
	return kind.Path() + "-" + time.Now().UTC().Format("20060102") + ext
}

func writeAttachment(w http.ResponseWriter, filename string, data []byte) {
	ext := filename[strings.LastIndex(filename, "."):]
	w.Header().Set("Content-Type", export.ContentType(ext))
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
