// Package export renders a list projection as CSV, spreadsheet or PDF.
package export

import (
	"github.com/kunal1274/fms-dev-sub000/internal/records"
)

// Column is one exported column.
type Column struct {
	Header string
	Value  func(records.Record) string
}

var (
	colCode     = Column{"Code", func(r records.Record) string { return r.Code }}
	colName     = Column{"Name", func(r records.Record) string { return r.Name }}
	colEmail    = Column{"Email", func(r records.Record) string { return r.Email }}
	colTax      = Column{"Tax Number", func(r records.Record) string { return r.TaxNumber }}
	colBizType  = Column{"Business Type", func(r records.Record) string { return r.BusinessType }}
	colCurrency = Column{"Currency", func(r records.Record) string { return r.Currency }}
	colAddress  = Column{"Address", func(r records.Record) string { return r.Address }}
	colCredit   = Column{"Credit Limit", func(r records.Record) string { return r.CreditLimit.StringFixed(2) }}
	colOutstand = Column{"Outstanding", func(r records.Record) string { return r.OutstandingBalance.StringFixed(2) }}
	colActive   = Column{"Active", func(r records.Record) string { return yesNo(r.Active) }}
	colStatus   = Column{"Status", func(r records.Record) string { return r.Status }}
	colCreated  = Column{"Created At", func(r records.Record) string { return r.CreatedAt }}
)

// ColumnsFor returns the fixed column set exported for kind.
func ColumnsFor(kind records.Kind) []Column {
	switch {
	case kind == records.KindItem:
		return []Column{colCode, colName, colActive, colCreated}
	case kind.IsDocument():
		return []Column{
			{"Number", colCode.Value},
			{"Party", colName.Value},
			colStatus, colOutstand, colCurrency, colCreated,
		}
	}
	return []Column{colCode, colName, colEmail, colTax, colBizType, colCurrency, colAddress, colCredit, colOutstand, colActive, colCreated}
}

// Headers returns the header row of cols.
func Headers(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Header
	}
	return out
}

// Row returns the cells of rec for cols.
func Row(cols []Column, rec records.Record) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Value(rec)
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
