package query

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/kunal1274/fms-dev-sub000/internal/records"
)

// Project narrows recs by tab, then status, then search, and finally applies a stable
// sort. recs is never modified.
func Project(recs []records.Record, q Query, tabs Tabs) []records.Record {
	q = q.Normalized()
	tabMatch := tabs.Predicate(q.Tab)
	statusMatch := statusPredicate(q.Status)

	out := make([]records.Record, 0, len(recs))
	for _, r := range recs {
		if tabMatch(r) && statusMatch(r) {
			out = append(out, r)
		}
	}

	// A blank term is a no-op; any other term matches exactly as typed, spaces included.
	if strings.TrimSpace(q.Search) != "" {
		fold := cases.Fold()
		needle := fold.String(q.Search)
		matched := out[:0]
		for _, r := range out {
			if strings.Contains(fold.String(SearchText(r)), needle) {
				matched = append(matched, r)
			}
		}
		out = matched
	}

	sortStable(out, q.Sort)
	return out
}

// IDs returns record ids in projection order.
func IDs(recs []records.Record) []string {
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	return ids
}

// SearchText joins the searchable fields of r.
func SearchText(r records.Record) string {
	return strings.Join([]string{
		r.Name, r.Code, r.Email, r.TaxNumber, r.Address, r.BusinessType, r.Currency,
	}, " ")
}

func statusPredicate(s StatusFilter) Predicate {
	switch s {
	case StatusActive:
		return IsActive
	case StatusInactive:
		return IsInactive
	default:
		return matchAll
	}
}

func sortStable(recs []records.Record, key SortKey) {
	var field func(records.Record) string
	desc := false
	switch key {
	case SortNameAsc:
		field = func(r records.Record) string { return r.Name }
	case SortNameDesc:
		field, desc = func(r records.Record) string { return r.Name }, true
	case SortCodeAsc:
		field = func(r records.Record) string { return r.Code }
	case SortCodeDesc:
		field, desc = func(r records.Record) string { return r.Code }, true
	default:
		return
	}

	// base strength: case and diacritics do not affect order
	col := collate.New(language.Und, collate.IgnoreCase, collate.IgnoreDiacritics, collate.IgnoreWidth)
	slices.SortStableFunc(recs, func(a, b records.Record) int {
		c := col.CompareString(field(a), field(b))
		if desc {
			return -c
		}
		return c
	})
}
