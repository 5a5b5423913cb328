package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Entry is one configured (item, service) price.
type Entry struct {
	Item    ItemType        `json:"itemType"`
	Service ServiceType     `json:"serviceType"`
	Price   decimal.Decimal `json:"price"`
}

// Table maps every (ItemType, ServiceType) pair to a unit price. A Table is immutable once built.
type Table struct {
	prices map[ItemType]map[ServiceType]decimal.Decimal
}

// NewTable builds a Table and rejects it unless every item type has exactly one
// non-negative price for every service type.
func NewTable(entries []Entry) (*Table, error) {
	prices := make(map[ItemType]map[ServiceType]decimal.Decimal, len(ItemTypes))
	for _, e := range entries {
		if !e.Item.Valid() {
			return nil, &ValidationError{Field: "itemType", Reason: fmt.Sprintf("unknown item type %q", string(e.Item))}
		}
		if !e.Service.Valid() {
			return nil, &ValidationError{Field: "serviceType", Reason: fmt.Sprintf("unknown service type %q", string(e.Service))}
		}
		if e.Price.IsNegative() {
			return nil, &ValidationError{Field: "price", Reason: fmt.Sprintf("%s/%s price must not be negative", e.Item, e.Service)}
		}
		row, ok := prices[e.Item]
		if !ok {
			row = make(map[ServiceType]decimal.Decimal, len(ServiceTypes))
			prices[e.Item] = row
		}
		if _, dup := row[e.Service]; dup {
			return nil, &ValidationError{Field: "price", Reason: fmt.Sprintf("%s/%s configured twice", e.Item, e.Service)}
		}
		row[e.Service] = e.Price
	}
	for _, item := range ItemTypes {
		for _, svc := range ServiceTypes {
			if _, ok := prices[item][svc]; !ok {
				return nil, &ValidationError{Field: "price", Reason: fmt.Sprintf("%s/%s has no price", item, svc)}
			}
		}
	}
	return &Table{prices: prices}, nil
}

// MustTable is NewTable for static configuration.
func MustTable(entries []Entry) *Table {
	t, err := NewTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// Price returns the unit price for the pair. A zero price is a legitimate configured value.
func (t *Table) Price(item ItemType, service ServiceType) (decimal.Decimal, error) {
	if t == nil {
		return decimal.Zero, &LookupError{Item: item, Service: service}
	}
	row, ok := t.prices[item]
	if !ok {
		return decimal.Zero, &LookupError{Item: item, Service: service}
	}
	price, ok := row[service]
	if !ok {
		return decimal.Zero, &LookupError{Item: item, Service: service}
	}
	return price, nil
}

// Entries returns the table in ItemTypes x ServiceTypes order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(ItemTypes)*len(ServiceTypes))
	for _, item := range ItemTypes {
		for _, svc := range ServiceTypes {
			out = append(out, Entry{Item: item, Service: svc, Price: t.prices[item][svc]})
		}
	}
	return out
}

// Row is the per-item view used by the price list endpoint and workbook export.
type Row struct {
	Item     ItemType        `json:"itemType"`
	Wash     decimal.Decimal `json:"wash"`
	DryClean decimal.Decimal `json:"dryClean"`
	Iron     decimal.Decimal `json:"iron"`
}

// Rows returns one Row per item type.
func (t *Table) Rows() []Row {
	out := make([]Row, 0, len(ItemTypes))
	for _, item := range ItemTypes {
		row := t.prices[item]
		out = append(out, Row{Item: item, Wash: row[Wash], DryClean: row[DryClean], Iron: row[Iron]})
	}
	return out
}

// EntriesFromRows flattens rows back into entries.
func EntriesFromRows(rows []Row) []Entry {
	out := make([]Entry, 0, len(rows)*len(ServiceTypes))
	for _, r := range rows {
		out = append(out,
			Entry{Item: r.Item, Service: Wash, Price: r.Wash},
			Entry{Item: r.Item, Service: DryClean, Price: r.DryClean},
			Entry{Item: r.Item, Service: Iron, Price: r.Iron},
		)
	}
	return out
}

// DefaultRows is the shop's standard price list.
func DefaultRows() []Row {
	p := decimal.RequireFromString
	return []Row{
		{Item: Shirt, Wash: p("3.00"), DryClean: p("5.00"), Iron: p("2.00")},
		{Item: Pants, Wash: p("4.00"), DryClean: p("6.00"), Iron: p("2.00")},
		{Item: Dress, Wash: p("6.00"), DryClean: p("8.00"), Iron: p("3.00")},
		{Item: Suit, Wash: p("0.00"), DryClean: p("12.00"), Iron: p("5.00")},
		{Item: Bedsheet, Wash: p("5.00"), DryClean: p("8.00"), Iron: p("3.00")},
		{Item: Towel, Wash: p("2.50"), DryClean: p("4.00"), Iron: p("1.50")},
		{Item: Jacket, Wash: p("7.00"), DryClean: p("10.00"), Iron: p("4.00")},
		{Item: Skirt, Wash: p("4.50"), DryClean: p("7.00"), Iron: p("2.50")},
	}
}

// DefaultTable builds the standard price list.
func DefaultTable() *Table {
	return MustTable(EntriesFromRows(DefaultRows()))
}
