package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotalsSampleOrder(t *testing.T) {
	items := []LineItem{
		{Quantity: 3, UnitPrice: dec("3.00")},
		{Quantity: 2, UnitPrice: dec("6.00")},
	}
	got, err := ComputeTotals(items, dec("0.10"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Subtotal.StringFixed(2) != "21.00" || got.Tax.StringFixed(2) != "2.10" || got.Total.StringFixed(2) != "23.10" {
		t.Fatalf("expected 21.00/2.10/23.10, got %s/%s/%s", got.Subtotal, got.Tax, got.Total)
	}
}

func TestComputeTotalsEmpty(t *testing.T) {
	for _, rate := range []string{"0", "0.10", "1"} {
		got, err := ComputeTotals(nil, dec(rate))
		if err != nil {
			t.Fatalf("rate %s: unexpected error: %v", rate, err)
		}
		if !got.Subtotal.IsZero() || !got.Tax.IsZero() || !got.Total.IsZero() {
			t.Fatalf("rate %s: expected zero totals, got %+v", rate, got)
		}
	}
}

func TestComputeTotalsRoundsTaxHalfAwayFromZero(t *testing.T) {
	got, err := ComputeTotals([]LineItem{{Quantity: 1, UnitPrice: dec("10.005")}}, dec("1.0"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Tax.StringFixed(2) != "10.01" {
		t.Fatalf("expected tax 10.01, got %s", got.Tax)
	}
}

func TestComputeTotalsDoesNotRoundLines(t *testing.T) {
	// 3 x 0.335 = 1.005 per line; rounding each line first would give 1.01 + 1.01.
	items := []LineItem{
		{Quantity: 3, UnitPrice: dec("0.335")},
		{Quantity: 3, UnitPrice: dec("0.335")},
	}
	got, err := ComputeTotals(items, dec("0"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Subtotal.Equal(dec("2.01")) {
		t.Fatalf("expected exact subtotal 2.01, got %s", got.Subtotal)
	}
}

func TestComputeTotalsInvariants(t *testing.T) {
	items := []LineItem{
		{Quantity: 1, UnitPrice: dec("4.50")},
		{Quantity: 7, UnitPrice: dec("2.50")},
		{Quantity: 2, UnitPrice: dec("0.00")},
		{Quantity: 11, UnitPrice: dec("1.333")},
	}
	for _, rate := range []string{"0", "0.075", "0.10", "0.175", "2"} {
		got, err := ComputeTotals(items, dec(rate))
		if err != nil {
			t.Fatalf("rate %s: unexpected error: %v", rate, err)
		}
		sum := decimal.Zero
		for _, it := range items {
			line, err := LineTotal(it.Quantity, it.UnitPrice)
			if err != nil {
				t.Fatalf("line total: %v", err)
			}
			sum = sum.Add(line)
		}
		if !got.Subtotal.Equal(sum) {
			t.Fatalf("rate %s: subtotal %s != sum of lines %s", rate, got.Subtotal, sum)
		}
		if !got.Total.Equal(got.Subtotal.Add(got.Tax)) {
			t.Fatalf("rate %s: total %s != subtotal + tax", rate, got.Total)
		}
		if !got.Tax.Equal(got.Subtotal.Mul(dec(rate)).Round(2)) {
			t.Fatalf("rate %s: tax %s not rounded from subtotal", rate, got.Tax)
		}
		again, _ := ComputeTotals(items, dec(rate))
		if !again.Total.Equal(got.Total) || !again.Tax.Equal(got.Tax) {
			t.Fatalf("rate %s: repeated call differed", rate)
		}
	}
}

func TestComputeTotalsRejectsNegativeRate(t *testing.T) {
	_, err := ComputeTotals(nil, dec("-0.01"))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "taxRate" {
		t.Fatalf("expected taxRate validation error, got %v", err)
	}
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestLineTotalValidation(t *testing.T) {
	cases := []struct {
		name  string
		qty   int
		price string
		field string
	}{
		{name: "zero quantity", qty: 0, price: "1", field: "quantity"},
		{name: "negative quantity", qty: -2, price: "1", field: "quantity"},
		{name: "negative price", qty: 1, price: "-0.01", field: "price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LineTotal(tc.qty, dec(tc.price))
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tc.field {
				t.Fatalf("expected %s validation error, got %v", tc.field, err)
			}
		})
	}

	got, err := LineTotal(4, dec("0"))
	if err != nil || !got.IsZero() {
		t.Fatalf("zero price should be valid, got %s %v", got, err)
	}
}

func TestComputeTotalsPropagatesLineErrors(t *testing.T) {
	_, err := ComputeTotals([]LineItem{{Quantity: 1, UnitPrice: dec("1")}, {Quantity: 0, UnitPrice: dec("1")}}, dec("0.1"))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPriceLineFreezesPrice(t *testing.T) {
	reg := NewRegistry(nil)
	line, err := PriceLine(reg.Current(), Pants, DryClean, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := DefaultRows()
	rows[1].DryClean = dec("9.99")
	reg.Replace(MustTable(EntriesFromRows(rows)))

	if !line.UnitPrice.Equal(dec("6")) {
		t.Fatalf("expected frozen price 6, got %s", line.UnitPrice)
	}
	fresh, _ := PriceLine(reg.Current(), Pants, DryClean, 2)
	if !fresh.UnitPrice.Equal(dec("9.99")) {
		t.Fatalf("expected new price 9.99, got %s", fresh.UnitPrice)
	}
}

func TestPriceLineErrors(t *testing.T) {
	if _, err := PriceLine(DefaultTable(), ItemType("Curtain"), Wash, 1); !errors.Is(err, ErrLookup) {
		t.Fatalf("expected lookup error, got %v", err)
	}
	if _, err := PriceLine(DefaultTable(), Shirt, Wash, 0); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	if got := Format("$", dec("23.1")); got != "$23.10" {
		t.Fatalf("expected $23.10, got %s", got)
	}
	if got := Format("$", dec("-4.005")); got != "-$4.01" {
		t.Fatalf("expected -$4.01, got %s", got)
	}
}
