package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-laundry/internal/common"
	"github.com/noah-isme/backend-laundry/internal/filter"
	"github.com/noah-isme/backend-laundry/internal/laundry"
	"github.com/noah-isme/backend-laundry/internal/obs"
	"github.com/noah-isme/backend-laundry/internal/pricing"
	"github.com/noah-isme/backend-laundry/internal/store"
)

// Service owns the order book of the workspace.
type Service struct {
	workspace *store.Workspace
	registry  *pricing.Registry
	metrics   *obs.DomainMetrics
	logger    zerolog.Logger
	loc       *time.Location
	now       func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Workspace *store.Workspace
	Registry  *pricing.Registry
	Metrics   *obs.DomainMetrics
	Logger    zerolog.Logger
	Location  *time.Location
	Now       func() time.Time
}

// ItemInput is one garment line of an order form. ID is set when editing an existing line.
type ItemInput struct {
	ID          string              `json:"id"`
	Type        pricing.ItemType    `json:"type" validate:"required"`
	ServiceType pricing.ServiceType `json:"serviceType" validate:"required"`
	Quantity    int                 `json:"quantity" validate:"gt=0"`
}

// Input is the order form.
type Input struct {
	CustomerID  string      `json:"customerId" validate:"required"`
	DropOffDate string      `json:"dropOffDate" validate:"required"`
	PickupDate  string      `json:"pickupDate"`
	Items       []ItemInput `json:"items" validate:"required,min=1,dive"`
	Notes       string      `json:"notes" validate:"max=1000"`
}

// ListResult is one page of orders.
type ListResult struct {
	Items []laundry.Order
	Total int
	// Undated counts orders hidden by the date filter because their drop-off date is missing.
	Undated int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Workspace == nil {
		return nil, fmt.Errorf("order: workspace is required")
	}
	registry := cfg.Registry
	if registry == nil {
		registry = pricing.NewRegistry(nil)
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		workspace: cfg.Workspace,
		registry:  registry,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		loc:       loc,
		now:       now,
	}, nil
}

// Spec returns the list-view filter binding for orders: search on id and customer
// name, status, drop-off date range, newest drop-off first.
func Spec() filter.Spec[laundry.Order] {
	return filter.Spec[laundry.Order]{
		SearchFields: []func(laundry.Order) string{
			func(o laundry.Order) string { return o.ID },
			func(o laundry.Order) string { return o.CustomerName },
		},
		Status: func(o laundry.Order) string { return string(o.Status) },
		Date: func(o laundry.Order) (time.Time, bool) {
			return o.DropOffDate, !o.DropOffDate.IsZero()
		},
		Compare:    func(a, b laundry.Order) int { return a.DropOffDate.Compare(b.DropOffDate) },
		Descending: true,
	}
}

// List filters and paginates the order book.
func (s *Service) List(ctx context.Context, q common.ListQuery) (ListResult, error) {
	ds, err := s.workspace.Read(ctx)
	if err != nil {
		return ListResult{}, err
	}
	res := filter.Apply(ds.Orders, q.Criteria, Spec(), s.now().In(s.loc))
	return ListResult{
		Items:   filter.Paginate(res.Items, q.Page, q.PerPage),
		Total:   len(res.Items),
		Undated: len(res.Undated),
	}, nil
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, id string) (laundry.Order, error) {
	ds, err := s.workspace.Read(ctx)
	if err != nil {
		return laundry.Order{}, err
	}
	idx := ds.OrderIndex(id)
	if idx < 0 {
		return laundry.Order{}, laundry.NotFound("order", id)
	}
	return ds.Orders[idx], nil
}

// Settings returns the workspace pricing settings.
func (s *Service) Settings(ctx context.Context) (laundry.Settings, error) {
	ds, err := s.workspace.Read(ctx)
	if err != nil {
		return laundry.Settings{}, err
	}
	return ds.Settings, nil
}

// Create prices the lines against the current table and adds a pending order at the
// top of the book.
func (s *Service) Create(ctx context.Context, in Input) (laundry.Order, error) {
	table := s.registry.Current()
	now := s.now()
	var created laundry.Order
	_, err := s.workspace.Update(ctx, func(ds *laundry.Dataset) error {
		o := laundry.Order{
			ID:        laundry.NewID("ORD"),
			Status:    laundry.OrderPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.apply(ds, &o, in, table, nil); err != nil {
			return err
		}
		ds.Orders = append([]laundry.Order{o}, ds.Orders...)
		ds.RefreshCustomerStats(o.CustomerID)
		created = o
		return nil
	})
	if err != nil {
		return laundry.Order{}, err
	}
	s.metrics.Order("create")
	s.logger.Info().Str("order_id", created.ID).Str("customer_id", created.CustomerID).Str("total", created.Total.StringFixed(2)).Msg("order_created")
	return created, nil
}

// Update replaces the form fields of an order. Lines whose id, item type and service
// are unchanged keep their frozen price; other lines are priced again.
func (s *Service) Update(ctx context.Context, id string, in Input) (laundry.Order, error) {
	table := s.registry.Current()
	var updated laundry.Order
	_, err := s.workspace.Update(ctx, func(ds *laundry.Dataset) error {
		idx := ds.OrderIndex(id)
		if idx < 0 {
			return laundry.NotFound("order", id)
		}
		o := ds.Orders[idx]
		previousCustomer := o.CustomerID
		if err := s.apply(ds, &o, in, table, ds.Orders[idx].Items); err != nil {
			return err
		}
		o.UpdatedAt = s.now()
		ds.Orders[idx] = o
		ds.RefreshCustomerStats(o.CustomerID)
		if previousCustomer != o.CustomerID {
			ds.RefreshCustomerStats(previousCustomer)
		}
		updated = o
		return nil
	})
	if err != nil {
		return laundry.Order{}, err
	}
	s.metrics.Order("update")
	s.logger.Info().Str("order_id", id).Msg("order_updated")
	return updated, nil
}

// Advance moves an order to the next status of the cycle. Reaching ready without a
// pickup date schedules pickup for tomorrow.
func (s *Service) Advance(ctx context.Context, id string) (laundry.Order, error) {
	return s.transition(ctx, id, func(o *laundry.Order) error {
		next, ok := o.Status.Next()
		if !ok {
			return fmt.Errorf("order %s is %s: %w", o.ID, o.Status, laundry.ErrInvalidTransition)
		}
		o.Status = next
		return nil
	})
}

// SetStatus moves an order to any status of the cycle, recording the staff note.
func (s *Service) SetStatus(ctx context.Context, id string, status laundry.OrderStatus, notes string) (laundry.Order, error) {
	if !status.Valid() || status == laundry.OrderCancelled {
		return laundry.Order{}, laundry.Invalid("status", "must be one of pending, processing, ready, delivered")
	}
	return s.transition(ctx, id, func(o *laundry.Order) error {
		if o.Status == laundry.OrderCancelled {
			return fmt.Errorf("order %s is cancelled: %w", o.ID, laundry.ErrInvalidTransition)
		}
		o.Status = status
		if notes = strings.TrimSpace(notes); notes != "" {
			o.StatusNotes = notes
		}
		return nil
	})
}

// Cancel cancels a pending order.
func (s *Service) Cancel(ctx context.Context, id string) (laundry.Order, error) {
	o, err := s.transition(ctx, id, func(o *laundry.Order) error {
		if o.Status != laundry.OrderPending {
			return fmt.Errorf("only pending orders can be cancelled, order %s is %s: %w", o.ID, o.Status, laundry.ErrInvalidTransition)
		}
		o.Status = laundry.OrderCancelled
		return nil
	})
	if err == nil {
		s.metrics.Order("cancel")
	}
	return o, err
}

// Delete removes an order and refreshes its customer's statistics.
func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.workspace.Update(ctx, func(ds *laundry.Dataset) error {
		idx := ds.OrderIndex(id)
		if idx < 0 {
			return laundry.NotFound("order", id)
		}
		customerID := ds.Orders[idx].CustomerID
		ds.Orders = append(ds.Orders[:idx], ds.Orders[idx+1:]...)
		ds.RefreshCustomerStats(customerID)
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.Order("delete")
	s.logger.Info().Str("order_id", id).Msg("order_deleted")
	return nil
}

func (s *Service) transition(ctx context.Context, id string, fn func(*laundry.Order) error) (laundry.Order, error) {
	var (
		out  laundry.Order
		from laundry.OrderStatus
	)
	_, err := s.workspace.Update(ctx, func(ds *laundry.Dataset) error {
		idx := ds.OrderIndex(id)
		if idx < 0 {
			return laundry.NotFound("order", id)
		}
		o := ds.Orders[idx]
		from = o.Status
		if err := fn(&o); err != nil {
			return err
		}
		now := s.now()
		if o.Status == laundry.OrderReady && o.PickupDate == nil {
			tomorrow := now.In(s.loc).AddDate(0, 0, 1)
			o.PickupDate = &tomorrow
		}
		o.UpdatedAt = now
		ds.Orders[idx] = o
		ds.RefreshCustomerStats(o.CustomerID)
		out = o
		return nil
	})
	if err != nil {
		return laundry.Order{}, err
	}
	s.metrics.OrderTransition(string(from), string(out.Status))
	s.logger.Info().Str("order_id", id).Str("from", string(from)).Str("to", string(out.Status)).Msg("order_status_changed")
	return out, nil
}

// apply validates the form against ds and writes it onto o. previous holds the lines
// of the order being edited.
func (s *Service) apply(ds *laundry.Dataset, o *laundry.Order, in Input, table *pricing.Table, previous []laundry.OrderItem) error {
	cidx := ds.CustomerIndex(strings.TrimSpace(in.CustomerID))
	if cidx < 0 {
		return laundry.Invalid("customerId", "unknown customer")
	}
	if len(in.Items) == 0 {
		return laundry.Invalid("items", "at least one item is required")
	}
	dropOff, err := laundry.ParseDate("dropOffDate", in.DropOffDate, s.loc)
	if err != nil {
		return err
	}
	pickup, err := laundry.ParseOptionalDate("pickupDate", in.PickupDate, s.loc)
	if err != nil {
		return err
	}
	if pickup != nil && pickup.Before(dropOff) {
		return laundry.Invalid("pickupDate", "must not be before the drop-off date")
	}

	items := make([]laundry.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		line, err := priceItem(it, table, previous)
		if err != nil {
			return err
		}
		items = append(items, line)
	}

	customer := ds.Customers[cidx]
	o.CustomerID = customer.ID
	o.CustomerName = customer.Name
	o.Items = items
	o.DropOffDate = dropOff
	o.PickupDate = pickup
	o.Notes = strings.TrimSpace(in.Notes)
	return o.Retotal(ds.Settings.TaxRate)
}

func priceItem(it ItemInput, table *pricing.Table, previous []laundry.OrderItem) (laundry.OrderItem, error) {
	if it.ID != "" {
		for _, p := range previous {
			if p.ID == it.ID && p.Type == it.Type && p.ServiceType == it.ServiceType {
				if _, err := pricing.LineTotal(it.Quantity, p.Price); err != nil {
					return laundry.OrderItem{}, err
				}
				p.Quantity = it.Quantity
				return p, nil
			}
		}
	}
	li, err := pricing.PriceLine(table, it.Type, it.ServiceType, it.Quantity)
	if err != nil {
		return laundry.OrderItem{}, err
	}
	id := it.ID
	if id == "" {
		id = laundry.NewID("ITM")
	}
	return laundry.OrderItem{
		ID:          id,
		Type:        it.Type,
		ServiceType: it.ServiceType,
		Quantity:    li.Quantity,
		Price:       li.UnitPrice,
	}, nil
}
