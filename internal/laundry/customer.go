package laundry

import (
	"time"

	"github.com/shopspring/decimal"
)

type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "active"
	CustomerVIP      CustomerStatus = "vip"
	CustomerInactive CustomerStatus = "inactive"
)

func (s CustomerStatus) Valid() bool {
	switch s {
	case CustomerActive, CustomerVIP, CustomerInactive:
		return true
	}
	return false
}

// Customer is a shop client. TotalOrders and TotalSpent are maintained from the order book.
type Customer struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	Email       string          `json:"email"`
	Address     string          `json:"address"`
	Status      CustomerStatus  `json:"status"`
	TotalOrders int             `json:"totalOrders"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"createdAt"`
}
