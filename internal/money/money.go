// Package money implements decimal line and document total calculations.
// All arithmetic is fixed-point; float64 never enters the money path.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

var hundred = decimal.NewFromInt(100)

// Line carries the inputs needed to price one document row.
type Line struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal // percent, e.g. 20 for 20%
}

// Totals aggregates document amounts.
type Totals struct {
	Subtotal decimal.Decimal
	TaxTotal decimal.Decimal
	Total    decimal.Decimal
}

// ZeroTotals returns an all-zero Totals value.
func ZeroTotals() Totals {
	return Totals{Subtotal: decimal.Zero, TaxTotal: decimal.Zero, Total: decimal.Zero}
}

// LineAmount returns quantity * unitPrice rounded half-up to 2 decimal
// places. Negative inputs are rejected.
func LineAmount(quantity, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if quantity.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: quantity must not be negative", shared.ErrInvalidInput)
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: unit price must not be negative", shared.ErrInvalidInput)
	}
	return quantity.Mul(unitPrice).Round(2), nil
}

// LineTax returns the tax portion for a line amount at the given
// percentage rate, rounded to 2 decimal places.
func LineTax(amount, taxRate decimal.Decimal) decimal.Decimal {
	return amount.Mul(taxRate).Div(hundred).Round(2)
}

// Compute derives subtotal, tax total, and grand total from line items.
// Each line carries its own tax rate. An empty input yields zero totals;
// rejecting empty documents is the caller's concern.
func Compute(lines []Line) (Totals, error) {
	totals := ZeroTotals()
	for _, l := range lines {
		amount, err := LineAmount(l.Quantity, l.UnitPrice)
		if err != nil {
			return ZeroTotals(), err
		}
		if l.TaxRate.IsNegative() {
			return ZeroTotals(), fmt.Errorf("%w: tax rate must not be negative", shared.ErrInvalidInput)
		}
		totals.Subtotal = totals.Subtotal.Add(amount)
		totals.TaxTotal = totals.TaxTotal.Add(LineTax(amount, l.TaxRate))
	}
	totals.Total = totals.Subtotal.Add(totals.TaxTotal)
	return totals, nil
}
