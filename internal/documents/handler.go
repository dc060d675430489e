package documents

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/kunal1274/fms-dev-sub000/internal/platform/httpx"
	"github.com/kunal1274/fms-dev-sub000/internal/records"
)

// Handler serves document totals previews.
type Handler struct {
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandler constructs the documents handler.
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{validator: NewValidator(), logger: logger}
}

// NewValidator returns a validator that compares decimal fields numerically.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// MountRoutes attaches the document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/{kind}/totals", h.totals)
}

type totalsResponse struct {
	Kind   records.Kind `json:"kind"`
	Totals Totals       `json:"totals"`
}

func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
	kind, err := records.ParseKind(chi.URLParam(r, "kind"))
	if err != nil || !kind.IsDocument() {
		httpx.RespondError(w, fmt.Errorf("%w: %q is not a document kind", httpx.ErrNotFound, chi.URLParam(r, "kind")))
		return
	}
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be a document with lines")
		return
	}
	if err := h.Validate(in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	totals := Compute(in)
	h.logger.Debug("document totals", slog.String("kind", string(kind)), slog.Int("lines", len(in.Lines)), slog.String("grand_total", totals.GrandTotal.String()))
	httpx.JSON(w, http.StatusOK, totalsResponse{Kind: kind, Totals: totals})
}

// Validate checks in and reports every failing field.
func (h *Handler) Validate(in Input) error {
	err := h.validator.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	sort.Strings(msgs)
	return fmt.Errorf("%w: %s", httpx.ErrValidation, strings.Join(msgs, "; "))
}
