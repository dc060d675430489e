// Package documents computes line-item totals for transactional documents.
package documents

import (
	"github.com/shopspring/decimal"
)

// Discount types.
const (
	DiscountPercent = "P"
	DiscountAmount  = "A"
)

var hundred = decimal.NewFromInt(100)

// Line is one document line.
type Line struct {
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice    decimal.Decimal `json:"unitPrice" validate:"gte=0"`
	Discount     decimal.Decimal `json:"discount" validate:"gte=0"`
	DiscountType string          `json:"discountType" validate:"omitempty,oneof=P A"`
	TaxRate      decimal.Decimal `json:"taxRate" validate:"gte=0,lte=100"`
}

// Input is a document whose totals should be computed.
type Input struct {
	Lines        []Line          `json:"lines" validate:"required,min=1,dive"`
	TaxInclusive bool            `json:"taxInclusive"`
	Discount     decimal.Decimal `json:"discount" validate:"gte=0"`
	DiscountType string          `json:"discountType" validate:"omitempty,oneof=P A"`
	Adjustment   decimal.Decimal `json:"adjustment"`
}

// LineTotal is the computed breakdown of one line.
type LineTotal struct {
	Gross    decimal.Decimal `json:"gross"`
	Discount decimal.Decimal `json:"discount"`
	Net      decimal.Decimal `json:"net"`
	Tax      decimal.Decimal `json:"tax"`
}

// Totals is the computed breakdown of a document, rounded to 2 places.
type Totals struct {
	Lines            []LineTotal     `json:"lines"`
	Gross            decimal.Decimal `json:"gross"`
	LineDiscount     decimal.Decimal `json:"lineDiscount"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DocumentDiscount decimal.Decimal `json:"documentDiscount"`
	Tax              decimal.Decimal `json:"tax"`
	Adjustment       decimal.Decimal `json:"adjustment"`
	GrandTotal       decimal.Decimal `json:"grandTotal"`
}

// DiscountAmountOf returns the discount applied to base. Percentages are taken of
// base; any other type is a flat amount.
func DiscountAmountOf(base, discount decimal.Decimal, discountType string) decimal.Decimal {
	if !discount.IsPositive() {
		return decimal.Zero
	}
	if discountType == DiscountPercent {
		return base.Mul(discount).DivRound(hundred, 4)
	}
	return discount
}

// TaxOf returns the tax carried by net at rate percent. Inclusive amounts already
// contain the tax: net/(100+rate)*rate.
func TaxOf(net, rate decimal.Decimal, inclusive bool) decimal.Decimal {
	if !rate.IsPositive() {
		return decimal.Zero
	}
	if inclusive {
		return net.DivRound(hundred.Add(rate), 4).Mul(rate)
	}
	return net.DivRound(hundred, 4).Mul(rate)
}

// ComputeLine computes one line. Net is gross less discount; tax follows inclusive.
func ComputeLine(l Line, inclusive bool) LineTotal {
	gross := l.Quantity.Mul(l.UnitPrice)
	discount := DiscountAmountOf(gross, l.Discount, l.DiscountType)
	net := gross.Sub(discount)
	return LineTotal{Gross: gross, Discount: discount, Net: net, Tax: TaxOf(net, l.TaxRate, inclusive)}
}

// Compute totals the document. Inclusive tax is reported but not added to the grand
// total again.
func Compute(in Input) Totals {
	t := Totals{Lines: make([]LineTotal, 0, len(in.Lines))}
	gross, lineDiscount, subtotal, tax := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range in.Lines {
		lt := ComputeLine(l, in.TaxInclusive)
		gross = gross.Add(lt.Gross)
		lineDiscount = lineDiscount.Add(lt.Discount)
		subtotal = subtotal.Add(lt.Net)
		tax = tax.Add(lt.Tax)
		t.Lines = append(t.Lines, roundLine(lt))
	}

	docDiscount := DiscountAmountOf(subtotal, in.Discount, in.DiscountType)
	grand := subtotal.Sub(docDiscount).Add(in.Adjustment)
	if !in.TaxInclusive {
		grand = grand.Add(tax)
	}

	t.Gross = gross.Round(2)
	t.LineDiscount = lineDiscount.Round(2)
	t.Subtotal = subtotal.Round(2)
	t.DocumentDiscount = docDiscount.Round(2)
	t.Tax = tax.Round(2)
	t.Adjustment = in.Adjustment.Round(2)
	t.GrandTotal = grand.Round(2)
	return t
}

func roundLine(lt LineTotal) LineTotal {
	return LineTotal{
		Gross:    lt.Gross.Round(2),
		Discount: lt.Discount.Round(2),
		Net:      lt.Net.Round(2),
		Tax:      lt.Tax.Round(2),
	}
}
