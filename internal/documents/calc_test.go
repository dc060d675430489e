package documents

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunal1274/fms-dev-sub000/internal/platform/httpx"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeLineExclusive(t *testing.T) {
	lt := ComputeLine(Line{Quantity: d("3"), UnitPrice: d("100"), Discount: d("10"), DiscountType: DiscountPercent, TaxRate: d("5")}, false)
	assert.Equal(t, "300", lt.Gross.String())
	assert.Equal(t, "30", lt.Discount.String())
	assert.Equal(t, "270", lt.Net.String())
	assert.Equal(t, "13.5", lt.Tax.String())
}

func TestComputeLineInclusive(t *testing.T) {
	lt := ComputeLine(Line{Quantity: d("1"), UnitPrice: d("118"), TaxRate: d("18")}, true)
	assert.Equal(t, "18", lt.Tax.String())
}

func TestDiscountAmountOf(t *testing.T) {
	assert.True(t, DiscountAmountOf(d("200"), d("25"), DiscountAmount).Equal(d("25")))
	assert.True(t, DiscountAmountOf(d("200"), d("25"), DiscountPercent).Equal(d("50")))
	assert.True(t, DiscountAmountOf(d("200"), d("0"), DiscountPercent).IsZero())
	assert.True(t, DiscountAmountOf(d("200"), d("-5"), DiscountAmount).IsZero())
}

func TestComputeExclusiveDocument(t *testing.T) {
	totals := Compute(Input{
		Lines: []Line{
			{Quantity: d("2"), UnitPrice: d("50"), TaxRate: d("10")},
			{Quantity: d("1"), UnitPrice: d("200"), Discount: d("20"), DiscountType: DiscountAmount, TaxRate: d("5")},
		},
		Discount:     d("10"),
		DiscountType: DiscountPercent,
		Adjustment:   d("-0.5"),
	})

	require.Len(t, totals.Lines, 2)
	assert.Equal(t, "300", totals.Gross.String())
	assert.Equal(t, "20", totals.LineDiscount.String())
	assert.Equal(t, "280", totals.Subtotal.String())
	assert.Equal(t, "28", totals.DocumentDiscount.String())
	assert.Equal(t, "19", totals.Tax.String())
	assert.Equal(t, "270.5", totals.GrandTotal.String())
}

func TestComputeInclusiveDoesNotAddTaxTwice(t *testing.T) {
	totals := Compute(Input{
		TaxInclusive: true,
		Lines:        []Line{{Quantity: d("1"), UnitPrice: d("105"), TaxRate: d("5")}},
	})
	assert.Equal(t, "5", totals.Tax.String())
	assert.Equal(t, "105", totals.GrandTotal.String())
}

func TestComputeRoundsToCents(t *testing.T) {
	totals := Compute(Input{Lines: []Line{{Quantity: d("3"), UnitPrice: d("0.333"), TaxRate: d("7")}}})
	assert.Equal(t, "1", totals.Subtotal.String())
	assert.Equal(t, "0.07", totals.Tax.String())
	assert.Equal(t, "1.07", totals.GrandTotal.String())
}

func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/documents", NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil))).MountRoutes)
	return r
}

func TestTotalsRoute(t *testing.T) {
	body := `{"lines":[{"quantity":2,"unitPrice":"10.50","taxRate":10}],"discount":1,"discountType":"A"}`
	rr := httptest.NewRecorder()
	newRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/documents/invoices/totals", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp totalsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "invoice", string(resp.Kind))
	assert.Equal(t, "21", resp.Totals.Subtotal.String())
	assert.Equal(t, "2.1", resp.Totals.Tax.String())
	assert.Equal(t, "22.1", resp.Totals.GrandTotal.String())
}

func TestTotalsRouteRejectsInvalidInput(t *testing.T) {
	router := newRouter()

	cases := map[string]string{
		"no lines":          `{"lines":[]}`,
		"zero quantity":     `{"lines":[{"quantity":0,"unitPrice":1}]}`,
		"bad discount type": `{"lines":[{"quantity":1,"unitPrice":1,"discountType":"X"}]}`,
		"tax above 100":     `{"lines":[{"quantity":1,"unitPrice":1,"taxRate":101}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/documents/invoice/totals", strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			var problem httpx.ProblemDetail
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
			assert.Equal(t, "Validation Failed", problem.Title)
		})
	}
}

func TestTotalsRouteRejectsMasterDataKind(t *testing.T) {
	rr := httptest.NewRecorder()
	newRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/documents/companies/totals", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
