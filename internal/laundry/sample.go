package laundry

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-laundry/internal/pricing"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

// SampleDataset is the demo workspace shipped with the consoles. Inventory timestamps use now.
func SampleDataset(now time.Time) *Dataset {
	amt := decimal.RequireFromString
	settings := DefaultSettings()
	created := day(2025, 7, 1)

	ds := &Dataset{
		Settings: settings,
		Customers: []Customer{
			{
				ID: "CUST002", Name: "Eric Ahiadoglo", Phone: "+233 243-125-473", Email: "eric@email.com",
				Address: "Com25 Main St,Tema", Status: CustomerActive, TotalOrders: 3, TotalSpent: amt("116.00"),
				Notes: "Regular customer, prefers pickup on weekends", CreatedAt: created,
			},
			{
				ID: "CUST003", Name: "Janet Kumah", Phone: "+233 555-012-324", Email: "janetkumah@email.com",
				Address: "Ridge Ave Road, Accra", Status: CustomerVIP, TotalOrders: 2, TotalSpent: amt("89.00"),
				Notes: "VIP customer, 10% discount applied", CreatedAt: created,
			},
			{
				ID: "CUST001", Name: "Abdul Rauf", Phone: "+233 515-654-987", Email: "abdulrauf@email.com",
				Address: "Nima-Accra", Status: CustomerActive, TotalOrders: 8, TotalSpent: amt("240.25"),
				Notes: "New customer, referred by Janet Kumah", CreatedAt: created,
			},
		},
		Orders: []Order{
			{
				ID: "ORD002", CustomerID: "CUST002", CustomerName: "Eric Ahiadoglo",
				Items: []OrderItem{
					{ID: "ITEM001", Type: pricing.Shirt, ServiceType: pricing.Wash, Quantity: 3, Price: amt("3.00")},
					{ID: "ITEM002", Type: pricing.Pants, ServiceType: pricing.DryClean, Quantity: 2, Price: amt("6.00")},
				},
				Status: OrderProcessing, DropOffDate: day(2025, 8, 4), PickupDate: dayPtr(2025, 8, 7),
				Notes: "Handle with care - delicate fabric",
			},
			{
				ID: "ORD003", CustomerID: "CUST003", CustomerName: "Janet Kumah",
				Items: []OrderItem{
					{ID: "ITEM003", Type: pricing.Dress, ServiceType: pricing.DryClean, Quantity: 1, Price: amt("8.00")},
					{ID: "ITEM004", Type: pricing.Suit, ServiceType: pricing.DryClean, Quantity: 1, Price: amt("12.00")},
				},
				Status: OrderReady, DropOffDate: day(2025, 8, 3), PickupDate: dayPtr(2025, 8, 6),
				Notes: "VIP customer - priority service",
			},
			{
				ID: "ORD001", CustomerID: "CUST001", CustomerName: "Abdul Rauf",
				Items: []OrderItem{
					{ID: "ITEM005", Type: pricing.Bedsheet, ServiceType: pricing.Wash, Quantity: 2, Price: amt("5.00")},
				},
				Status: OrderPending, DropOffDate: day(2025, 8, 5), PickupDate: dayPtr(2025, 8, 8),
				Notes: "Standard wash and fold",
			},
		},
		Inventory: []InventoryItem{
			{ID: "INV001", Name: "Laundry Detergent", Category: CategoryCleaning, Quantity: 25, Unit: "bottles", Cost: amt("12.50"), Threshold: 10, LastUpdated: now, Notes: "Premium brand detergent"},
			{ID: "INV002", Name: "Fabric Softener", Category: CategoryCleaning, Quantity: 8, Unit: "bottles", Cost: amt("8.75"), Threshold: 15, LastUpdated: now, Notes: "Low stock - reorder soon"},
			{ID: "INV003", Name: "Dry Cleaning Solvent", Category: CategoryChemicals, Quantity: 3, Unit: "gallons", Cost: amt("45.00"), Threshold: 5, LastUpdated: now, Notes: "Critical stock level"},
			{ID: "INV004", Name: "Hangers", Category: CategoryEquipment, Quantity: 150, Unit: "pieces", Cost: amt("0.50"), Threshold: 50, LastUpdated: now, Notes: "Plastic hangers for shirts"},
		},
		Invoices: []Invoice{
			{
				ID: "INV001", CustomerID: "CUST001", CustomerName: "Abdul Rauf",
				Date: day(2025, 8, 1), DueDate: day(2025, 8, 15),
				Items:  []InvoiceItem{{ID: "INVITEM001", Description: "Laundry Service - July", Quantity: 1, Price: amt("45.50")}},
				Status: InvoicePaid, Notes: "Monthly service package",
			},
			{
				ID: "INV002", CustomerID: "CUST002", CustomerName: "Eric Ahiadoglo",
				Date: day(2025, 8, 2), DueDate: day(2025, 8, 16),
				Items:  []InvoiceItem{{ID: "INVITEM002", Description: "Dry Cleaning Service", Quantity: 1, Price: amt("35.00")}},
				Status: InvoiceUnpaid, Notes: "VIP discount applied",
			},
		},
	}

	for i := range ds.Orders {
		o := &ds.Orders[i]
		o.CreatedAt, o.UpdatedAt = o.DropOffDate, o.DropOffDate
		if err := o.Retotal(settings.TaxRate); err != nil {
			panic(err)
		}
	}
	for i := range ds.Invoices {
		if err := ds.Invoices[i].Retotal(settings.TaxRate); err != nil {
			panic(err)
		}
	}
	return ds
}
