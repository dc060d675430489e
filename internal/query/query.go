// Package query projects a record set through tab, status, search and sort criteria.
package query

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kunal1274/fms-dev-sub000/internal/platform/httpx"
)

// StatusFilter narrows records by their active flag.
type StatusFilter string

const (
	StatusAll      StatusFilter = "All"
	StatusActive   StatusFilter = "Active"
	StatusInactive StatusFilter = "Inactive"
)

// SortKey selects the single ordering applied to a projection.
type SortKey string

const (
	SortNone     SortKey = "none"
	SortNameAsc  SortKey = "name-asc"
	SortNameDesc SortKey = "name-desc"
	SortCodeAsc  SortKey = "code-asc"
	SortCodeDesc SortKey = "code-desc"
)

// Query is the UI-driven state of a list screen.
type Query struct {
	Tab    string       `json:"tab"`
	Status StatusFilter `json:"status"`
	Search string       `json:"search"`
	Sort   SortKey      `json:"sort"`
}

// Default returns the query a screen starts with.
func Default() Query {
	return Query{Tab: DefaultTab, Status: StatusAll, Sort: SortNone}
}

// ParseStatus maps user input to a StatusFilter. Empty input means All.
func ParseStatus(s string) (StatusFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StatusAll, nil
	case "active":
		return StatusActive, nil
	case "inactive":
		return StatusInactive, nil
	}
	return "", fmt.Errorf("%w: unknown status filter %q", httpx.ErrValidation, s)
}

// ParseSort maps user input to a SortKey. Empty input means none.
func ParseSort(s string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case "":
		return SortNone, nil
	case SortNone, SortNameAsc, SortNameDesc, SortCodeAsc, SortCodeDesc:
		return key, nil
	}
	return "", fmt.Errorf("%w: unknown sort key %q", httpx.ErrValidation, s)
}

// Parse builds a Query from URL values (tab, status, search, sort).
func Parse(values url.Values) (Query, error) {
	q := Default()
	if tab := strings.TrimSpace(values.Get("tab")); tab != "" {
		q.Tab = tab
	}
	status, err := ParseStatus(values.Get("status"))
	if err != nil {
		return Query{}, err
	}
	sortKey, err := ParseSort(values.Get("sort"))
	if err != nil {
		return Query{}, err
	}
	q.Status = status
	q.Sort = sortKey
	q.Search = values.Get("search")
	return q, nil
}

// Normalized fills empty fields with their defaults.
func (q Query) Normalized() Query {
	if q.Tab == "" {
		q.Tab = DefaultTab
	}
	if q.Status == "" {
		q.Status = StatusAll
	}
	if q.Sort == "" {
		q.Sort = SortNone
	}
	return q
}
