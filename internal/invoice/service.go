package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-laundry/internal/common"
	"github.com/noah-isme/backend-laundry/internal/filter"
	"github.com/noah-isme/backend-laundry/internal/laundry"
	"github.com/noah-isme/backend-laundry/internal/obs"
	"github.com/noah-isme/backend-laundry/internal/store"
)

// Service manages billing documents.
type Service struct {
	workspace *store.Workspace
	metrics   *obs.DomainMetrics
	logger    zerolog.Logger
	loc       *time.Location
	now       func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Workspace *store.Workspace
	Metrics   *obs.DomainMetrics
	Logger    zerolog.Logger
	Location  *time.Location
	Now       func() time.Time
}

// ItemInput is one billed line. ID is set when editing an existing line.
type ItemInput struct {
	ID          string          `json:"id"`
	Description string          `json:"description" validate:"required,max=200"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	Price       decimal.Decimal `json:"price"`
}

// Input is the invoice form. DueDate defaults to Date plus thirty days.
type Input struct {
	CustomerID string                `json:"customerId" validate:"required"`
	Date       string                `json:"date" validate:"required"`
	DueDate    string                `json:"dueDate"`
	Items      []ItemInput           `json:"items" validate:"required,min=1,dive"`
	Status     laundry.InvoiceStatus `json:"status" validate:"omitempty,oneof=paid unpaid"`
	Notes      string                `json:"notes" validate:"max=1000"`
}

// ListResult is one page of invoices.
type ListResult struct {
	Items   []laundry.Invoice
	Total   int
	Undated int
	// Outstanding sums the totals of unpaid invoices among the filtered set.
	Outstanding decimal.Decimal
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Workspace == nil {
		return nil, fmt.Errorf("invoice: workspace is required")
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{workspace: cfg.Workspace, metrics: cfg.Metrics, logger: cfg.Logger, loc: loc, now: now}, nil
}

// Spec returns the list-view filter binding for invoices: search on id and customer
// name, paid or unpaid, invoice date range, newest first.
func Spec() filter.Spec[laundry.Invoice] {
	return filter.Spec[laundry.Invoice]{
		SearchFields: []func(laundry.Invoice) string{
			func(inv laundry.Invoice) string { return inv.ID },
			func(inv laundry.Invoice) string { return inv.CustomerName },
		},
		Status: func(inv laundry.Invoice) string { return string(inv.Status) },
		Date: func(inv laundry.Invoice) (time.Time, bool) {
			return inv.Date, !inv.Date.IsZero()
		},
		Compare:    func(a, b laundry.Invoice) int { return a.Date.Compare(b.Date) },
		Descending: true,
	}
}

// List filters and paginates invoices.
func (s *Service) List(ctx context.Context, q common.ListQuery) (ListResult, error) {
	ds, err := s.workspace.Read(ctx)
	if err != nil {
		return ListResult{}, err
	}
	res := filter.Apply(ds.Invoices, q.Criteria, Spec(), s.now().In(s.loc))
	outstanding := decimal.Zero
	for _, inv := range res.Items {
		if inv.Status == laundry.InvoiceUnpaid {
			outstanding = outstanding.Add(inv.Total)
		}
	}
	return ListResult{
		Items:       filter.Paginate(res.Items, q.Page, q.PerPage),
		Total:       len(res.Items),
		Undated:     len(res.Undated),
		Outstanding: outstanding,
	}, nil
}

// Get returns one invoice.
func (s *Service) Get(ctx context.Context, id string) (laundry.Invoice, error) {
	ds, err := s.workspace.Read(ctx)
	if err != nil {
		return laundry.Invoice{}, err
	}
	idx := ds.InvoiceIndex(id)
	if idx < 0 {
		return laundry.Invoice{}, laundry.NotFound("invoice", id)
	}
	return ds.Invoices[idx], nil
}

// Settings returns the workspace pricing settings.
func (s *Service) Settings(ctx context.Context) (laundry.Settings, error) {
	ds, err := s.workspace.Read(ctx)
	if err != nil {
		return laundry.Settings{}, err
	}
	return ds.Settings, nil
}

// Create adds an unpaid invoice unless the form says otherwise.
func (s *Service) Create(ctx context.Context, in Input) (laundry.Invoice, error) {
	var created laundry.Invoice
	_, err := s.workspace.Update(ctx, func(ds *laundry.Dataset) error {
		inv := laundry.Invoice{ID: laundry.NewID("INV"), Status: laundry.InvoiceUnpaid}
		if err := s.apply(ds, &inv, in); err != nil {
			return err
		}
		ds.Invoices = append([]laundry.Invoice{inv}, ds.Invoices...)
		created = inv
		return nil
	})
	if err != nil {
		return laundry.Invoice{}, err
	}
	s.metrics.Invoice("create")
	s.logger.Info().Str("invoice_id", created.ID).Str("customer_id", created.CustomerID).Str("total", created.Total.StringFixed(2)).Msg("invoice_created")
	return created, nil
}

// Update replaces the form fields of an invoice and recomputes its totals.
func (s *Service) Update(ctx context.Context, id string, in Input) (laundry.Invoice, error) {
	var updated laundry.Invoice
	_, err := s.workspace.Update(ctx, func(ds *laundry.Dataset) error {
		idx := ds.InvoiceIndex(id)
		if idx < 0 {
			return laundry.NotFound("invoice", id)
		}
		inv := ds.Invoices[idx]
		if err := s.apply(ds, &inv, in); err != nil {
			return err
		}
		ds.Invoices[idx] = inv
		updated = inv
		return nil
	})
	if err != nil {
		return laundry.Invoice{}, err
	}
	s.metrics.Invoice("update")
	s.logger.Info().Str("invoice_id", id).Msg("invoice_updated")
	return updated, nil
}

// Toggle flips an invoice between paid and unpaid.
func (s *Service) Toggle(ctx context.Context, id string) (laundry.Invoice, error) {
	var out laundry.Invoice
	_, err := s.workspace.Update(ctx, func(ds *laundry.Dataset) error {
		idx := ds.InvoiceIndex(id)
		if idx < 0 {
			return laundry.NotFound("invoice", id)
		}
		ds.Invoices[idx].Status = ds.Invoices[idx].Status.Toggle()
		out = ds.Invoices[idx]
		return nil
	})
	if err != nil {
		return laundry.Invoice{}, err
	}
	s.metrics.Invoice("toggle")
	s.logger.Info().Str("invoice_id", id).Str("status", string(out.Status)).Msg("invoice_status_changed")
	return out, nil
}

// Delete removes an invoice.
func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.workspace.Update(ctx, func(ds *laundry.Dataset) error {
		idx := ds.InvoiceIndex(id)
		if idx < 0 {
			return laundry.NotFound("invoice", id)
		}
		ds.Invoices = append(ds.Invoices[:idx], ds.Invoices[idx+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.Invoice("delete")
	s.logger.Info().Str("invoice_id", id).Msg("invoice_deleted")
	return nil
}

func (s *Service) apply(ds *laundry.Dataset, inv *laundry.Invoice, in Input) error {
	cidx := ds.CustomerIndex(strings.TrimSpace(in.CustomerID))
	if cidx < 0 {
		return laundry.Invalid("customerId", "unknown customer")
	}
	if len(in.Items) == 0 {
		return laundry.Invalid("items", "at least one item is required")
	}
	date, err := laundry.ParseDate("date", in.Date, s.loc)
	if err != nil {
		return err
	}
	due, err := laundry.ParseOptionalDate("dueDate", in.DueDate, s.loc)
	if err != nil {
		return err
	}
	if due == nil {
		d := date.AddDate(0, 0, laundry.DefaultDueDays)
		due = &d
	}
	if due.Before(date) {
		return laundry.Invalid("dueDate", "must not be before the invoice date")
	}
	if in.Status != "" {
		if !in.Status.Valid() {
			return laundry.Invalid("status", "must be paid or unpaid")
		}
		inv.Status = in.Status
	}

	items := make([]laundry.InvoiceItem, 0, len(in.Items))
	for _, it := range in.Items {
		desc := strings.TrimSpace(it.Description)
		if desc == "" {
			return laundry.Invalid("items.description", "is required")
		}
		id := it.ID
		if id == "" {
			id = laundry.NewID("LI")
		}
		items = append(items, laundry.InvoiceItem{ID: id, Description: desc, Quantity: it.Quantity, Price: it.Price})
	}

	customer := ds.Customers[cidx]
	inv.CustomerID = customer.ID
	inv.CustomerName = customer.Name
	inv.Date = date
	inv.DueDate = *due
	inv.Items = items
	inv.Notes = strings.TrimSpace(in.Notes)
	return inv.Retotal(ds.Settings.TaxRate)
}
