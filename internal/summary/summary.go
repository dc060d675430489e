// Package summary computes the metric cards shown above list screens.
package summary

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kunal1274/fms-dev-sub000/internal/records"
)

// Summary aggregates a full record set.
//
// OnHoldOrInactiveCount counts records whose active flag is unset, so
// ActiveCount+OnHoldOrInactiveCount always equals Count.
type Summary struct {
	Count                 int             `json:"count"`
	CreditLimitTotal      decimal.Decimal `json:"creditLimitTotal"`
	PaidCount             int             `json:"paidCount"`
	ActiveCount           int             `json:"activeCount"`
	OnHoldOrInactiveCount int             `json:"onHoldOrInactiveCount"`
}

// Partial holds server-reported metrics. Nil fields were absent or null.
type Partial struct {
	Count                 *int             `json:"count,omitempty"`
	CreditLimitTotal      *decimal.Decimal `json:"creditLimitTotal,omitempty"`
	PaidCount             *int             `json:"paidCount,omitempty"`
	ActiveCount           *int             `json:"activeCount,omitempty"`
	OnHoldOrInactiveCount *int             `json:"onHoldOrInactiveCount,omitempty"`
}

// Empty reports whether no field is set.
func (p Partial) Empty() bool {
	return p.Count == nil && p.CreditLimitTotal == nil && p.PaidCount == nil &&
		p.ActiveCount == nil && p.OnHoldOrInactiveCount == nil
}

// Summarize computes the summary of recs. Callers pass the unfiltered set.
func Summarize(recs []records.Record) Summary {
	s := Summary{Count: len(recs), CreditLimitTotal: decimal.Zero}
	for _, r := range recs {
		s.CreditLimitTotal = s.CreditLimitTotal.Add(r.CreditLimit)
		if strings.EqualFold(strings.TrimSpace(r.Status), "paid") {
			s.PaidCount++
		}
		if r.Active {
			s.ActiveCount++
		} else {
			s.OnHoldOrInactiveCount++
		}
	}
	return s
}

// MergeServerMetrics overlays every non-nil server field onto client.
func MergeServerMetrics(client Summary, server Partial) Summary {
	out := client
	if server.Count != nil {
		out.Count = *server.Count
	}
	if server.CreditLimitTotal != nil {
		out.CreditLimitTotal = *server.CreditLimitTotal
	}
	if server.PaidCount != nil {
		out.PaidCount = *server.PaidCount
	}
	if server.ActiveCount != nil {
		out.ActiveCount = *server.ActiveCount
	}
	if server.OnHoldOrInactiveCount != nil {
		out.OnHoldOrInactiveCount = *server.OnHoldOrInactiveCount
	}
	return out
}
