package records

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Raw is a record exactly as the backend returned it.
type Raw map[string]any

// Record is the canonical view of a backend record used by list screens.
type Record struct {
	Kind               Kind            `json:"kind"`
	ID                 string          `json:"id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	Active             bool            `json:"active"`
	Status             string          `json:"status"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
	CreditLimit        decimal.Decimal `json:"creditLimit"`
	CreatedAt          string          `json:"createdAt,omitempty"`

	Email        string `json:"email,omitempty"`
	TaxNumber    string `json:"taxNumber,omitempty"`
	Address      string `json:"address,omitempty"`
	BusinessType string `json:"businessType,omitempty"`
	Currency     string `json:"currency,omitempty"`

	Raw Raw `json:"-"`
}

// Renderable reports whether the record can be shown in a table.
func (r Record) Renderable() bool {
	return r.ID != ""
}

// Normalize extracts canonical fields from raw. It never fails: missing or malformed
// fields fall back to their zero value.
func Normalize(raw Raw, kind Kind) Record {
	p := profileFor(kind)
	rec := Record{
		Kind:               kind,
		Code:               firstString(raw, p.codes),
		Name:               firstString(raw, p.names),
		Status:             firstString(raw, p.statuses),
		Active:             firstBool(raw, p.actives),
		OutstandingBalance: firstDecimal(raw, p.outstanding),
		CreditLimit:        firstDecimal(raw, p.creditLimits),
		CreatedAt:          firstString(raw, p.createdAt),
		Email:              firstString(raw, p.emails),
		TaxNumber:          firstString(raw, p.taxNumbers),
		Address:            firstString(raw, p.addresses),
		BusinessType:       firstString(raw, p.businessType),
		Currency:           firstString(raw, p.currencies),
		Raw:                raw,
	}
	rec.ID = firstString(raw, p.ids)
	if rec.ID == "" {
		rec.ID = rec.Code
	}
	return rec
}

// NormalizeAll normalizes every raw record and assigns a positional id to records
// that carry no identifier at all, or whose code fallback repeats another record's id.
// Backend ids always win over code fallbacks.
func NormalizeAll(raws []Raw, kind Kind) []Record {
	ids := profileFor(kind).ids
	out := make([]Record, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	fallback := make([]bool, len(raws))
	for i, raw := range raws {
		rec := Normalize(raw, kind)
		if firstString(raw, ids) != "" {
			seen[rec.ID] = struct{}{}
		} else {
			fallback[i] = true
		}
		out = append(out, rec)
	}
	for i := range out {
		if !fallback[i] {
			continue
		}
		if _, dup := seen[out[i].ID]; out[i].ID == "" || dup {
			out[i].ID = string(kind) + "-" + strconv.Itoa(i+1)
		}
		seen[out[i].ID] = struct{}{}
	}
	return out
}
