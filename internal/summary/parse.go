package summary

import (
	"github.com/shopspring/decimal"

	"github.com/kunal1274/fms-dev-sub000/internal/records"
)

var (
	countKeys    = []string{"count", "total", "totalCount", "totalCompanies", "totalVendors", "totalCustomers", "totalItems", "totalOrders"}
	creditKeys   = []string{"creditLimitTotal", "creditLimits", "totalCreditLimit"}
	paidKeys     = []string{"paidCount", "paidCompanies", "paidVendors", "paidCustomers", "paidOrders"}
	activeKeys   = []string{"activeCount", "activeCompanies", "activeVendors", "activeCustomers", "activeItems"}
	inactiveKeys = []string{"onHoldOrInactiveCount", "onHoldCompanies", "onHoldVendors", "onHoldCustomers", "inactiveCount", "inactiveItems"}
)

// ParsePartial reads a metrics object from the backend. Null, missing or non-numeric
// values leave the corresponding field nil.
func ParsePartial(raw map[string]any) Partial {
	return Partial{
		Count:                 firstInt(raw, countKeys),
		CreditLimitTotal:      firstDecimal(raw, creditKeys),
		PaidCount:             firstInt(raw, paidKeys),
		ActiveCount:           firstInt(raw, activeKeys),
		OnHoldOrInactiveCount: firstInt(raw, inactiveKeys),
	}
}

func firstDecimal(raw map[string]any, keys []string) *decimal.Decimal {
	for _, k := range keys {
		v, ok := records.Lookup(raw, k)
		if !ok {
			continue
		}
		if d, ok := records.ToDecimal(v); ok {
			return &d
		}
	}
	return nil
}

func firstInt(raw map[string]any, keys []string) *int {
	d := firstDecimal(raw, keys)
	if d == nil {
		return nil
	}
	n := int(d.IntPart())
	return &n
}
