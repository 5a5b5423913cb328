package quote

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-laundry/internal/laundry"
	"github.com/noah-isme/backend-laundry/internal/pricing"
)

// OrderLine asks for the price of a garment service.
type OrderLine struct {
	ItemType    pricing.ItemType    `json:"itemType" validate:"required"`
	ServiceType pricing.ServiceType `json:"serviceType" validate:"required"`
	Quantity    int                 `json:"quantity" validate:"gt=0"`
}

// InvoiceLine carries its own unit price.
type InvoiceLine struct {
	Description string          `json:"description" validate:"required"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	Price       decimal.Decimal `json:"price"`
}

// PricedLine is one quoted line with its frozen unit price.
type PricedLine struct {
	ItemType    pricing.ItemType    `json:"itemType,omitempty"`
	ServiceType pricing.ServiceType `json:"serviceType,omitempty"`
	Description string              `json:"description,omitempty"`
	Quantity    int                 `json:"quantity"`
	UnitPrice   decimal.Decimal     `json:"unitPrice"`
	LineTotal   decimal.Decimal     `json:"lineTotal"`
	Display     string              `json:"display"`
}

// Result is a computed quote.
type Result struct {
	Lines   []PricedLine    `json:"lines"`
	TaxRate decimal.Decimal `json:"taxRate"`
	pricing.Totals
	Display pricing.DisplayTotals `json:"display"`
}

// PriceOrder looks every line up in t and totals them with the workspace tax rate.
func PriceOrder(t *pricing.Table, lines []OrderLine, settings laundry.Settings) (Result, error) {
	priced := make([]pricing.LineItem, 0, len(lines))
	out := make([]PricedLine, 0, len(lines))
	for _, l := range lines {
		li, err := pricing.PriceLine(t, l.ItemType, l.ServiceType, l.Quantity)
		if err != nil {
			return Result{}, err
		}
		total, err := li.Total()
		if err != nil {
			return Result{}, err
		}
		priced = append(priced, li)
		out = append(out, PricedLine{
			ItemType:    l.ItemType,
			ServiceType: l.ServiceType,
			Quantity:    l.Quantity,
			UnitPrice:   li.UnitPrice,
			LineTotal:   total,
			Display:     pricing.Format(settings.CurrencySymbol, total),
		})
	}
	return finish(out, priced, settings)
}

// PriceInvoice totals explicit-price lines.
func PriceInvoice(lines []InvoiceLine, settings laundry.Settings) (Result, error) {
	priced := make([]pricing.LineItem, 0, len(lines))
	out := make([]PricedLine, 0, len(lines))
	for _, l := range lines {
		li := pricing.LineItem{Quantity: l.Quantity, UnitPrice: l.Price}
		total, err := li.Total()
		if err != nil {
			return Result{}, err
		}
		priced = append(priced, li)
		out = append(out, PricedLine{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.Price,
			LineTotal:   total,
			Display:     pricing.Format(settings.CurrencySymbol, total),
		})
	}
	return finish(out, priced, settings)
}

func finish(out []PricedLine, priced []pricing.LineItem, settings laundry.Settings) (Result, error) {
	totals, err := pricing.ComputeTotals(priced, settings.TaxRate)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Lines:   out,
		TaxRate: settings.TaxRate,
		Totals:  totals,
		Display: pricing.FormatTotals(settings.CurrencySymbol, totals),
	}, nil
}
