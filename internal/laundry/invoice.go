package laundry

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-laundry/internal/pricing"
)

type InvoiceStatus string

const (
	InvoicePaid   InvoiceStatus = "paid"
	InvoiceUnpaid InvoiceStatus = "unpaid"
)

func (s InvoiceStatus) Valid() bool {
	return s == InvoicePaid || s == InvoiceUnpaid
}

// Toggle flips paid and unpaid.
func (s InvoiceStatus) Toggle() InvoiceStatus {
	if s == InvoicePaid {
		return InvoiceUnpaid
	}
	return InvoicePaid
}

// DefaultDueDays is added to the invoice date when no due date is given.
const DefaultDueDays = 30

// InvoiceItem carries an explicit price rather than a table lookup.
type InvoiceItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

func (i InvoiceItem) Line() pricing.LineItem {
	return pricing.LineItem{Quantity: i.Quantity, UnitPrice: i.Price}
}

type Invoice struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customerId"`
	CustomerName string          `json:"customerName"`
	Date         time.Time       `json:"date"`
	DueDate      time.Time       `json:"dueDate"`
	Items        []InvoiceItem   `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	Status       InvoiceStatus   `json:"status"`
	Notes        string          `json:"notes"`
}

func (inv Invoice) Lines() []pricing.LineItem {
	out := make([]pricing.LineItem, 0, len(inv.Items))
	for _, it := range inv.Items {
		out = append(out, it.Line())
	}
	return out
}

// Retotal recomputes the invoice totals.
func (inv *Invoice) Retotal(taxRate decimal.Decimal) error {
	totals, err := pricing.ComputeTotals(inv.Lines(), taxRate)
	if err != nil {
		return err
	}
	inv.Subtotal, inv.Tax, inv.Total = totals.Subtotal, totals.Tax, totals.Total
	return nil
}

func (inv Invoice) clone() Invoice {
	c := inv
	c.Items = append([]InvoiceItem(nil), inv.Items...)
	return c
}
