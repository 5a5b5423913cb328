package laundry

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settings are the business-wide pricing settings.
type Settings struct {
	TaxRate        decimal.Decimal `json:"taxRate"`
	Currency       string          `json:"currency"`
	CurrencySymbol string          `json:"currencySymbol"`
}

// DefaultSettings is a 10% tax rate in US dollars.
func DefaultSettings() Settings {
	return Settings{TaxRate: decimal.RequireFromString("0.10"), Currency: "USD", CurrencySymbol: "$"}
}

// Dataset is the whole workspace: every collection plus settings.
type Dataset struct {
	Orders    []Order         `json:"orders"`
	Customers []Customer      `json:"customers"`
	Invoices  []Invoice       `json:"invoices"`
	Inventory []InventoryItem `json:"inventory"`
	Settings  Settings        `json:"settings"`
}

// Clone returns a deep copy that shares no slices with d.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return &Dataset{Settings: DefaultSettings()}
	}
	out := &Dataset{
		Orders:    make([]Order, 0, len(d.Orders)),
		Customers: append(make([]Customer, 0, len(d.Customers)), d.Customers...),
		Invoices:  make([]Invoice, 0, len(d.Invoices)),
		Inventory: append(make([]InventoryItem, 0, len(d.Inventory)), d.Inventory...),
		Settings:  d.Settings,
	}
	for _, o := range d.Orders {
		out.Orders = append(out.Orders, o.clone())
	}
	for _, inv := range d.Invoices {
		out.Invoices = append(out.Invoices, inv.clone())
	}
	return out
}

func (d *Dataset) OrderIndex(id string) int {
	for i := range d.Orders {
		if d.Orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Dataset) CustomerIndex(id string) int {
	for i := range d.Customers {
		if d.Customers[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Dataset) InvoiceIndex(id string) int {
	for i := range d.Invoices {
		if d.Invoices[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Dataset) InventoryIndex(id string) int {
	for i := range d.Inventory {
		if d.Inventory[i].ID == id {
			return i
		}
	}
	return -1
}

// OrdersFor returns the customer's orders in dataset order.
func (d *Dataset) OrdersFor(customerID string) []Order {
	var out []Order
	for _, o := range d.Orders {
		if o.CustomerID == customerID {
			out = append(out, o.clone())
		}
	}
	return out
}

// RefreshCustomerStats recomputes TotalOrders and TotalSpent of one customer from the order book.
// Cancelled orders count as orders but not as spend.
func (d *Dataset) RefreshCustomerStats(customerID string) {
	idx := d.CustomerIndex(customerID)
	if idx < 0 {
		return
	}
	count := 0
	spent := decimal.Zero
	for _, o := range d.Orders {
		if o.CustomerID != customerID {
			continue
		}
		count++
		if o.Status != OrderCancelled {
			spent = spent.Add(o.Total)
		}
	}
	d.Customers[idx].TotalOrders = count
	d.Customers[idx].TotalSpent = spent
}

// RetotalAll recomputes every order and invoice with the dataset tax rate.
func (d *Dataset) RetotalAll() error {
	for i := range d.Orders {
		if err := d.Orders[i].Retotal(d.Settings.TaxRate); err != nil {
			return fmt.Errorf("order %s: %w", d.Orders[i].ID, err)
		}
	}
	for i := range d.Invoices {
		if err := d.Invoices[i].Retotal(d.Settings.TaxRate); err != nil {
			return fmt.Errorf("invoice %s: %w", d.Invoices[i].ID, err)
		}
	}
	return nil
}

// NewID returns prefix followed by ten upper-case hex characters, e.g. "ORD3F9A0C12B4".
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(raw[:10])
}
