// Package records turns heterogeneous backend payloads into canonical list records.
package records

import (
	"fmt"
	"strings"
)

// Kind identifies an entity type served by the backend API.
type Kind string

const (
	KindCompany        Kind = "company"
	KindVendor         Kind = "vendor"
	KindCustomer       Kind = "customer"
	KindItem           Kind = "item"
	KindPurchaseOrder  Kind = "purchase_order"
	KindPurchaseReturn Kind = "purchase_return"
	KindCreditNote     Kind = "credit_note"
	KindDebitNote      Kind = "debit_note"
	KindInvoice        Kind = "invoice"
)

// Kinds lists every registered kind in menu order.
var Kinds = []Kind{
	KindCompany,
	KindVendor,
	KindCustomer,
	KindItem,
	KindPurchaseOrder,
	KindPurchaseReturn,
	KindCreditNote,
	KindDebitNote,
	KindInvoice,
}

// Path returns the backend collection path segment for the kind.
func (k Kind) Path() string {
	if p, ok := profiles[k]; ok {
		return p.path
	}
	return string(k)
}

// Label returns the plural display label, e.g. "Companies".
func (k Kind) Label() string {
	if p, ok := profiles[k]; ok {
		return p.label
	}
	return string(k)
}

// IsDocument reports whether the kind is a transactional document rather than master data.
func (k Kind) IsDocument() bool {
	if p, ok := profiles[k]; ok {
		return p.document
	}
	return false
}

// Valid reports whether the kind is registered.
func (k Kind) Valid() bool {
	_, ok := profiles[k]
	return ok
}

// ParseKind resolves a kind from its name, backend path or label.
func ParseKind(s string) (Kind, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	needle = strings.ReplaceAll(needle, "-", "_")
	for _, k := range Kinds {
		p := profiles[k]
		if needle == string(k) || needle == p.path || needle == strings.ToLower(p.label) {
			return k, nil
		}
	}
	return "", fmt.Errorf("records: unknown kind %q", s)
}
