package pricing

import (
	"github.com/shopspring/decimal"
)

// LineItem is a quantity/unit-price pair contributing to a total.
type LineItem struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Totals aggregates computed pricing components. Total always equals Subtotal + Tax.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// LineTotal returns quantity x unitPrice at full precision.
func LineTotal(quantity int, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, &ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))), nil
}

// Total is LineTotal for the item.
func (li LineItem) Total() (decimal.Decimal, error) {
	return LineTotal(li.Quantity, li.UnitPrice)
}

// PriceLine looks the unit price up once and returns a line with the price frozen on it.
func PriceLine(t *Table, item ItemType, service ServiceType, quantity int) (LineItem, error) {
	price, err := t.Price(item, service)
	if err != nil {
		return LineItem{}, err
	}
	if _, err := LineTotal(quantity, price); err != nil {
		return LineItem{}, err
	}
	return LineItem{Quantity: quantity, UnitPrice: price}, nil
}

// ComputeTotals sums the line totals and applies taxRate. Only the tax amount is rounded,
// half away from zero to two places. No items yields all zeros.
func ComputeTotals(items []LineItem, taxRate decimal.Decimal) (Totals, error) {
	if taxRate.IsNegative() {
		return Totals{}, &ValidationError{Field: "taxRate", Reason: "must not be negative"}
	}
	subtotal := decimal.Zero
	for _, it := range items {
		line, err := it.Total()
		if err != nil {
			return Totals{}, err
		}
		subtotal = subtotal.Add(line)
	}
	tax := RoundCurrency(subtotal.Mul(taxRate))
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}, nil
}
