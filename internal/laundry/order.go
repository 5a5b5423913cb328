package laundry

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-laundry/internal/pricing"
)

// OrderStatus is the processing state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderReady      OrderStatus = "ready"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists the statuses of the processing cycle in order.
var OrderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderReady, OrderDelivered}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderReady, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Next returns the following status in the pending, processing, ready, delivered cycle.
// Delivered wraps around to pending. Cancelled orders do not advance.
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case OrderPending:
		return OrderProcessing, true
	case OrderProcessing:
		return OrderReady, true
	case OrderReady:
		return OrderDelivered, true
	case OrderDelivered:
		return OrderPending, true
	}
	return s, false
}

// Completed reports whether the order counts toward processing time.
func (s OrderStatus) Completed() bool {
	return s == OrderReady || s == OrderDelivered
}

// OrderItem is one priced garment line. Price is frozen when the line is created or re-priced.
type OrderItem struct {
	ID          string              `json:"id"`
	Type        pricing.ItemType    `json:"type"`
	ServiceType pricing.ServiceType `json:"serviceType"`
	Quantity    int                 `json:"quantity"`
	Price       decimal.Decimal     `json:"price"`
}

// Line converts the item to a pricing line.
func (i OrderItem) Line() pricing.LineItem {
	return pricing.LineItem{Quantity: i.Quantity, UnitPrice: i.Price}
}

// Order is a customer drop-off.
type Order struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customerId"`
	CustomerName string          `json:"customerName"`
	Items        []OrderItem     `json:"items"`
	Status       OrderStatus     `json:"status"`
	DropOffDate  time.Time       `json:"dropOffDate"`
	PickupDate   *time.Time      `json:"pickupDate"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	Notes        string          `json:"notes"`
	StatusNotes  string          `json:"statusNotes,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Lines returns the pricing lines of the order.
func (o Order) Lines() []pricing.LineItem {
	out := make([]pricing.LineItem, 0, len(o.Items))
	for _, it := range o.Items {
		out = append(out, it.Line())
	}
	return out
}

// Retotal recomputes Subtotal, Tax and Total from the frozen item prices.
func (o *Order) Retotal(taxRate decimal.Decimal) error {
	totals, err := pricing.ComputeTotals(o.Lines(), taxRate)
	if err != nil {
		return err
	}
	o.Subtotal, o.Tax, o.Total = totals.Subtotal, totals.Tax, totals.Total
	return nil
}

// ItemCount is the number of garments across lines.
func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// ProcessingHours is the time between drop-off and pickup. ok is false without a pickup date.
func (o Order) ProcessingHours() (float64, bool) {
	if o.PickupDate == nil || o.DropOffDate.IsZero() {
		return 0, false
	}
	return o.PickupDate.Sub(o.DropOffDate).Hours(), true
}

func (o Order) clone() Order {
	c := o
	c.Items = append([]OrderItem(nil), o.Items...)
	if o.PickupDate != nil {
		p := *o.PickupDate
		c.PickupDate = &p
	}
	return c
}
