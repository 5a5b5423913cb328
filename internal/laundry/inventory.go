package laundry

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups supplies.
type Category string

const (
	CategoryCleaning  Category = "cleaning"
	CategoryChemicals Category = "chemicals"
	CategoryEquipment Category = "equipment"
)

var Categories = []Category{CategoryCleaning, CategoryChemicals, CategoryEquipment}

func (c Category) Valid() bool {
	switch c {
	case CategoryCleaning, CategoryChemicals, CategoryEquipment:
		return true
	}
	return false
}

// StockStatus is derived from quantity and threshold and is never stored.
type StockStatus string

const (
	InStock    StockStatus = "in-stock"
	LowStock   StockStatus = "low-stock"
	OutOfStock StockStatus = "out-of-stock"
)

func (s StockStatus) Label() string {
	switch s {
	case InStock:
		return "In Stock"
	case LowStock:
		return "Low Stock"
	case OutOfStock:
		return "Out of Stock"
	}
	return string(s)
}

// Classify returns OutOfStock at zero, LowStock up to and including threshold, else InStock.
func Classify(quantity, threshold int) StockStatus {
	switch {
	case quantity <= 0:
		return OutOfStock
	case quantity <= threshold:
		return LowStock
	default:
		return InStock
	}
}

type InventoryItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    Category        `json:"category"`
	Quantity    int             `json:"quantity"`
	Unit        string          `json:"unit"`
	Cost        decimal.Decimal `json:"cost"`
	Threshold   int             `json:"threshold"`
	LastUpdated time.Time       `json:"lastUpdated"`
	Notes       string          `json:"notes"`
}

// StockStatus classifies the item's current quantity.
func (i InventoryItem) StockStatus() StockStatus {
	return Classify(i.Quantity, i.Threshold)
}

// NeedsReorder reports quantity at or below threshold.
func (i InventoryItem) NeedsReorder() bool {
	return i.Quantity <= i.Threshold
}

// StockValue is quantity x cost.
func (i InventoryItem) StockValue() decimal.Decimal {
	return i.Cost.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
