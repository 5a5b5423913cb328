package customer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/noah-isme/backend-laundry/internal/common"
	"github.com/noah-isme/backend-laundry/internal/filter"
	"github.com/noah-isme/backend-laundry/internal/laundry"
	"github.com/noah-isme/backend-laundry/internal/store"
)

// Service manages the customer book.
type Service struct {
	workspace *store.Workspace
	logger    zerolog.Logger
	lang      language.Tag
	now       func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Workspace *store.Workspace
	Logger    zerolog.Logger
	// Language drives name collation; defaults to English.
	Language language.Tag
	Now      func() time.Time
}

// Input is the customer form.
type Input struct {
	Name    string                 `json:"name" validate:"required,max=120"`
	Phone   string                 `json:"phone" validate:"required,max=40"`
	Email   string                 `json:"email" validate:"omitempty,email"`
	Address string                 `json:"address" validate:"max=300"`
	Status  laundry.CustomerStatus `json:"status" validate:"omitempty,oneof=active vip inactive"`
	Notes   string                 `json:"notes" validate:"max=1000"`
}

// Details is a customer with their order book split into open and finished orders.
type Details struct {
	Customer          laundry.Customer `json:"customer"`
	AverageOrderValue decimal.Decimal  `json:"averageOrderValue"`
	ActiveOrders      []laundry.Order  `json:"activeOrders"`
	History           []laundry.Order  `json:"history"`
	Summary           Summary          `json:"summary"`
}

// Summary counts a customer's orders by status.
type Summary struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Ready      int `json:"ready"`
	Total      int `json:"total"`
	// Notifications is pending plus ready orders.
	Notifications int `json:"notifications"`
}

// ListResult is one page of customers.
type ListResult struct {
	Items []laundry.Customer
	Total int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Workspace == nil {
		return nil, fmt.Errorf("customer: workspace is required")
	}
	lang := cfg.Language
	if lang == language.Und {
		lang = language.English
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{workspace: cfg.Workspace, logger: cfg.Logger, lang: lang, now: now}, nil
}

// Spec returns the list-view filter binding for customers: search on name, phone,
// email and id, status, ordered by name. Each Spec owns its collator; collators are
// not safe for concurrent use.
func Spec(lang language.Tag) filter.Spec[laundry.Customer] {
	col := collate.New(lang, collate.IgnoreCase)
	return filter.Spec[laundry.Customer]{
		SearchFields: []func(laundry.Customer) string{
			func(c laundry.Customer) string { return c.Name },
			func(c laundry.Customer) string { return c.Phone },
			func(c laundry.Customer) string { return c.Email },
			func(c laundry.Customer) string { return c.ID },
		},
		Status:  func(c laundry.Customer) string { return string(c.Status) },
		Compare: func(a, b laundry.Customer) int { return col.CompareString(a.Name, b.Name) },
	}
}

// List filters, sorts and paginates customers.
func (s *Service) List(ctx context.Context, q common.ListQuery) (ListResult, error) {
	ds, err := s.workspace.Read(ctx)
	if err != nil {
		return ListResult{}, err
	}
	res := filter.Apply(ds.Customers, q.Criteria, Spec(s.lang), s.now())
	return ListResult{Items: filter.Paginate(res.Items, q.Page, q.PerPage), Total: len(res.Items)}, nil
}

// Details returns a customer with their orders, newest drop-off first.
func (s *Service) Details(ctx context.Context, id string) (Details, error) {
	ds, err := s.workspace.Read(ctx)
	if err != nil {
		return Details{}, err
	}
	idx := ds.CustomerIndex(id)
	if idx < 0 {
		return Details{}, laundry.NotFound("customer", id)
	}
	c := ds.Customers[idx]
	out := Details{
		Customer:          c,
		AverageOrderValue: decimal.Zero,
		ActiveOrders:      []laundry.Order{},
		History:           []laundry.Order{},
	}
	if c.TotalOrders > 0 {
		out.AverageOrderValue = c.TotalSpent.Div(decimal.NewFromInt(int64(c.TotalOrders))).Round(2)
	}
	orders := filter.Apply(ds.OrdersFor(id), filter.Criteria{}, filter.Spec[laundry.Order]{
		Compare:    func(a, b laundry.Order) int { return a.DropOffDate.Compare(b.DropOffDate) },
		Descending: true,
	}, s.now()).Items
	for _, o := range orders {
		switch o.Status {
		case laundry.OrderDelivered, laundry.OrderCancelled:
			out.History = append(out.History, o)
		default:
			out.ActiveOrders = append(out.ActiveOrders, o)
		}
		switch o.Status {
		case laundry.OrderPending:
			out.Summary.Pending++
		case laundry.OrderProcessing:
			out.Summary.Processing++
		case laundry.OrderReady:
			out.Summary.Ready++
		}
	}
	out.Summary.Total = len(orders)
	out.Summary.Notifications = out.Summary.Pending + out.Summary.Ready
	return out, nil
}

// Create adds a customer. Phone numbers must be unique.
func (s *Service) Create(ctx context.Context, in Input) (laundry.Customer, error) {
	var created laundry.Customer
	_, err := s.workspace.Update(ctx, func(ds *laundry.Dataset) error {
		c := laundry.Customer{
			ID:         laundry.NewID("CUST"),
			TotalSpent: decimal.Zero,
			CreatedAt:  s.now(),
		}
		if err := apply(ds, &c, in); err != nil {
			return err
		}
		ds.Customers = append(ds.Customers, c)
		created = c
		return nil
	})
	if err != nil {
		return laundry.Customer{}, err
	}
	s.logger.Info().Str("customer_id", created.ID).Msg("customer_created")
	return created, nil
}

// Update edits the contact fields. A new name is copied onto the customer's orders and invoices.
func (s *Service) Update(ctx context.Context, id string, in Input) (laundry.Customer, error) {
	var updated laundry.Customer
	_, err := s.workspace.Update(ctx, func(ds *laundry.Dataset) error {
		idx := ds.CustomerIndex(id)
		if idx < 0 {
			return laundry.NotFound("customer", id)
		}
		c := ds.Customers[idx]
		if err := apply(ds, &c, in); err != nil {
			return err
		}
		ds.Customers[idx] = c
		for i := range ds.Orders {
			if ds.Orders[i].CustomerID == id {
				ds.Orders[i].CustomerName = c.Name
			}
		}
		for i := range ds.Invoices {
			if ds.Invoices[i].CustomerID == id {
				ds.Invoices[i].CustomerName = c.Name
			}
		}
		updated = c
		return nil
	})
	if err != nil {
		return laundry.Customer{}, err
	}
	s.logger.Info().Str("customer_id", id).Msg("customer_updated")
	return updated, nil
}

// Delete removes a customer together with their orders. It reports how many orders went with them.
func (s *Service) Delete(ctx context.Context, id string) (int, error) {
	removed := 0
	_, err := s.workspace.Update(ctx, func(ds *laundry.Dataset) error {
		idx := ds.CustomerIndex(id)
		if idx < 0 {
			return laundry.NotFound("customer", id)
		}
		ds.Customers = append(ds.Customers[:idx], ds.Customers[idx+1:]...)
		kept := ds.Orders[:0]
		for _, o := range ds.Orders {
			if o.CustomerID == id {
				removed++
				continue
			}
			kept = append(kept, o)
		}
		ds.Orders = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info().Str("customer_id", id).Int("orders_removed", removed).Msg("customer_deleted")
	return removed, nil
}

func apply(ds *laundry.Dataset, c *laundry.Customer, in Input) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return laundry.Invalid("name", "is required")
	}
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		return laundry.Invalid("phone", "is required")
	}
	for _, other := range ds.Customers {
		if other.ID != c.ID && other.Phone == phone {
			return fmt.Errorf("customer with phone %s: %w", phone, laundry.ErrDuplicate)
		}
	}
	status := in.Status
	if status == "" {
		status = laundry.CustomerActive
	}
	if !status.Valid() {
		return laundry.Invalid("status", "must be one of active, vip, inactive")
	}
	c.Name = name
	c.Phone = phone
	c.Email = strings.TrimSpace(in.Email)
	c.Address = strings.TrimSpace(in.Address)
	c.Status = status
	c.Notes = strings.TrimSpace(in.Notes)
	return nil
}

// FormatPhone renders ten-digit numbers as (555) 123-4567 and leaves anything else as typed.
func FormatPhone(raw string) string {
	digits := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}
	if len(digits) != 10 {
		return strings.TrimSpace(raw)
	}
	return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
}
