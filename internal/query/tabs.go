package query

import (
	"strings"

	"github.com/kunal1274/fms-dev-sub000/internal/records"
)

// DefaultTab is the identity tab every screen has.
const DefaultTab = "List"

// Predicate reports whether a record belongs to a tab.
type Predicate func(records.Record) bool

// Tab is a named coarse filter over the full record set.
type Tab struct {
	Name  string
	Match Predicate
}

// Tabs is an ordered tab table for one entity kind.
type Tabs []Tab

// Names returns tab names in display order.
func (t Tabs) Names() []string {
	names := make([]string, 0, len(t))
	for _, tab := range t {
		names = append(names, tab.Name)
	}
	return names
}

// Predicate returns the predicate for name. Unknown names and the default tab match
// everything.
func (t Tabs) Predicate(name string) Predicate {
	for _, tab := range t {
		if strings.EqualFold(tab.Name, name) && tab.Match != nil {
			return tab.Match
		}
	}
	return matchAll
}

func matchAll(records.Record) bool { return true }

// IsActive matches records whose active flag is set.
func IsActive(r records.Record) bool { return r.Active }

// IsInactive matches records whose active flag is unset.
func IsInactive(r records.Record) bool { return !r.Active }

// HasOutstanding matches records with a positive outstanding balance.
func HasOutstanding(r records.Record) bool { return r.OutstandingBalance.IsPositive() }

// StatusIs builds a predicate matching a status label case-insensitively.
func StatusIs(status string) Predicate {
	return func(r records.Record) bool {
		return strings.EqualFold(strings.TrimSpace(r.Status), status)
	}
}

var documentStatuses = map[records.Kind][]string{
	records.KindPurchaseOrder:  {"Draft", "Approved", "Invoiced", "Paid", "Cancelled"},
	records.KindPurchaseReturn: {"Draft", "Posted", "Cancelled"},
	records.KindCreditNote:     {"Draft", "Posted", "Cancelled"},
	records.KindDebitNote:      {"Draft", "Posted", "Cancelled"},
	records.KindInvoice:        {"Draft", "Posted", "Partially Paid", "Paid", "Cancelled"},
}

// TabsFor returns the tab table of a kind.
func TabsFor(kind records.Kind) Tabs {
	tabs := Tabs{{Name: DefaultTab, Match: matchAll}}
	label := kind.Label()
	switch {
	case kind == records.KindItem:
		tabs = append(tabs,
			Tab{Name: "Active " + label, Match: IsActive},
			Tab{Name: "Inactive " + label, Match: IsInactive},
		)
	case kind.IsDocument():
		for _, status := range documentStatuses[kind] {
			tabs = append(tabs, Tab{Name: status, Match: StatusIs(status)})
		}
		tabs = append(tabs, Tab{Name: "Outstanding", Match: HasOutstanding})
	default:
		tabs = append(tabs,
			Tab{Name: "Active " + label, Match: IsActive},
			Tab{Name: "Inactive " + label, Match: IsInactive},
			Tab{Name: "Outstanding " + label, Match: HasOutstanding},
			Tab{Name: "Paid " + label, Match: StatusIs("Paid")},
		)
	}
	return tabs
}
