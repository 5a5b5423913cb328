package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places money is rounded to for display and tax.
const CurrencyPlaces = 2

// RoundCurrency rounds half away from zero to CurrencyPlaces.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// Format renders an amount with a leading currency symbol and two fixed decimals, e.g. "$23.10".
func Format(symbol string, d decimal.Decimal) string {
	fixed := d.StringFixed(CurrencyPlaces)
	if strings.HasPrefix(fixed, "-") {
		return "-" + symbol + fixed[1:]
	}
	return symbol + fixed
}

// ParseAmount parses a decimal amount such as "4.50". Empty input is rejected.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "value is required"}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "not a decimal number", Err: err}
	}
	return d, nil
}

// DisplayTotals holds totals formatted for display.
type DisplayTotals struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// FormatTotals renders every component of t with symbol.
func FormatTotals(symbol string, t Totals) DisplayTotals {
	return DisplayTotals{
		Subtotal: Format(symbol, t.Subtotal),
		Tax:      Format(symbol, t.Tax),
		Total:    Format(symbol, t.Total),
	}
}
