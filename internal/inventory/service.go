package inventory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
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

// AlertLimit caps the reorder alert list.
const AlertLimit = 5

// AdjustKind is the direction of a stock adjustment.
type AdjustKind string

const (
	AdjustAdd    AdjustKind = "add"
	AdjustRemove AdjustKind = "remove"
	AdjustSet    AdjustKind = "set"
)

// Reasons accepted for a stock adjustment.
var Reasons = []string{"restock", "usage", "damaged", "correction", "other"}

// Service manages the supplies register.
type Service struct {
	workspace *store.Workspace
	metrics   *obs.DomainMetrics
	logger    zerolog.Logger
	now       func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Workspace *store.Workspace
	Metrics   *obs.DomainMetrics
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Input is the supply item form.
type Input struct {
	Name      string           `json:"name" validate:"required,max=120"`
	Category  laundry.Category `json:"category" validate:"required,oneof=cleaning chemicals equipment"`
	Quantity  int              `json:"quantity" validate:"gte=0"`
	Unit      string           `json:"unit" validate:"required,max=40"`
	Cost      decimal.Decimal  `json:"cost"`
	Threshold int              `json:"threshold" validate:"gte=1"`
	Notes     string           `json:"notes" validate:"max=1000"`
}

// Adjustment changes the stock level of one item.
type Adjustment struct {
	Type     AdjustKind `json:"type" validate:"required,oneof=add remove set"`
	Quantity int        `json:"quantity" validate:"gte=0"`
	Reason   string     `json:"reason" validate:"required,oneof=restock usage damaged correction other"`
	Notes    string     `json:"notes" validate:"max=500"`
}

// Summary aggregates the register.
type Summary struct {
	TotalItems int             `json:"totalItems"`
	LowStock   int             `json:"lowStock"`
	OutOfStock int             `json:"outOfStock"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// ListResult is one page of supplies plus register-wide figures.
type ListResult struct {
	Items   []laundry.InventoryItem
	Total   int
	Summary Summary
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Workspace == nil {
		return nil, fmt.Errorf("inventory: workspace is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{workspace: cfg.Workspace, metrics: cfg.Metrics, logger: cfg.Logger, now: now}, nil
}

// Spec returns the list-view filter binding for supplies: search on name, category
// and id, stock status, category, ordered by name.
func Spec() filter.Spec[laundry.InventoryItem] {
	return filter.Spec[laundry.InventoryItem]{
		SearchFields: []func(laundry.InventoryItem) string{
			func(i laundry.InventoryItem) string { return i.Name },
			func(i laundry.InventoryItem) string { return string(i.Category) },
			func(i laundry.InventoryItem) string { return i.ID },
		},
		Status:   func(i laundry.InventoryItem) string { return string(i.StockStatus()) },
		Category: func(i laundry.InventoryItem) string { return string(i.Category) },
		Compare: func(a, b laundry.InventoryItem) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		},
	}
}

// Summarize counts the register by stock status and sums its value.
func Summarize(items []laundry.InventoryItem) Summary {
	out := Summary{TotalItems: len(items), TotalValue: decimal.Zero}
	for _, it := range items {
		switch it.StockStatus() {
		case laundry.LowStock:
			out.LowStock++
		case laundry.OutOfStock:
			out.OutOfStock++
		}
		out.TotalValue = out.TotalValue.Add(it.StockValue())
	}
	return out
}

// Alerts returns up to limit items at or below their threshold, the most depleted
// relative to threshold first.
func Alerts(items []laundry.InventoryItem, limit int) []laundry.InventoryItem {
	out := make([]laundry.InventoryItem, 0, len(items))
	for _, it := range items {
		if it.NeedsReorder() {
			out = append(out, it)
		}
	}
	slices.SortStableFunc(out, func(a, b laundry.InventoryItem) int {
		return cmp.Compare(ratio(a), ratio(b))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func ratio(i laundry.InventoryItem) float64 {
	if i.Threshold <= 0 {
		return float64(i.Quantity)
	}
	return float64(i.Quantity) / float64(i.Threshold)
}

// List filters and paginates the register.
func (s *Service) List(ctx context.Context, q common.ListQuery) (ListResult, error) {
	ds, err := s.workspace.Read(ctx)
	if err != nil {
		return ListResult{}, err
	}
	res := filter.Apply(ds.Inventory, q.Criteria, Spec(), s.now())
	return ListResult{
		Items:   filter.Paginate(res.Items, q.Page, q.PerPage),
		Total:   len(res.Items),
		Summary: Summarize(ds.Inventory),
	}, nil
}

// Alerts returns the reorder alerts of the register.
func (s *Service) Alerts(ctx context.Context) ([]laundry.InventoryItem, error) {
	ds, err := s.workspace.Read(ctx)
	if err != nil {
		return nil, err
	}
	return Alerts(ds.Inventory, AlertLimit), nil
}

// Get returns one supply item.
func (s *Service) Get(ctx context.Context, id string) (laundry.InventoryItem, error) {
	ds, err := s.workspace.Read(ctx)
	if err != nil {
		return laundry.InventoryItem{}, err
	}
	idx := ds.InventoryIndex(id)
	if idx < 0 {
		return laundry.InventoryItem{}, laundry.NotFound("inventory item", id)
	}
	return ds.Inventory[idx], nil
}

// Create adds a supply item. Names are unique regardless of case.
func (s *Service) Create(ctx context.Context, in Input) (laundry.InventoryItem, error) {
	var created laundry.InventoryItem
	ds, err := s.workspace.Update(ctx, func(ds *laundry.Dataset) error {
		item := laundry.InventoryItem{ID: laundry.NewID("SUP")}
		if err := s.apply(ds, &item, in); err != nil {
			return err
		}
		ds.Inventory = append(ds.Inventory, item)
		created = item
		return nil
	})
	if err != nil {
		return laundry.InventoryItem{}, err
	}
	s.observe(ds)
	s.logger.Info().Str("item_id", created.ID).Str("name", created.Name).Msg("inventory_item_created")
	return created, nil
}

// Update replaces the form fields of a supply item.
func (s *Service) Update(ctx context.Context, id string, in Input) (laundry.InventoryItem, error) {
	var updated laundry.InventoryItem
	ds, err := s.workspace.Update(ctx, func(ds *laundry.Dataset) error {
		idx := ds.InventoryIndex(id)
		if idx < 0 {
			return laundry.NotFound("inventory item", id)
		}
		item := ds.Inventory[idx]
		if err := s.apply(ds, &item, in); err != nil {
			return err
		}
		ds.Inventory[idx] = item
		updated = item
		return nil
	})
	if err != nil {
		return laundry.InventoryItem{}, err
	}
	s.observe(ds)
	s.logger.Info().Str("item_id", id).Msg("inventory_item_updated")
	return updated, nil
}

// Adjust applies a stock movement and appends an audit line to the item notes.
func (s *Service) Adjust(ctx context.Context, id string, adj Adjustment) (laundry.InventoryItem, error) {
	if !slices.Contains(Reasons, adj.Reason) {
		return laundry.InventoryItem{}, laundry.Invalid("reason", "must be one of "+strings.Join(Reasons, ", "))
	}
	if adj.Quantity < 0 {
		return laundry.InventoryItem{}, laundry.Invalid("quantity", "must not be negative")
	}
	var (
		out laundry.InventoryItem
		old int
	)
	ds, err := s.workspace.Update(ctx, func(ds *laundry.Dataset) error {
		idx := ds.InventoryIndex(id)
		if idx < 0 {
			return laundry.NotFound("inventory item", id)
		}
		item := ds.Inventory[idx]
		old = item.Quantity
		switch adj.Type {
		case AdjustAdd:
			if adj.Quantity == 0 {
				return laundry.Invalid("quantity", "must be greater than zero")
			}
			item.Quantity += adj.Quantity
		case AdjustRemove:
			if adj.Quantity == 0 {
				return laundry.Invalid("quantity", "must be greater than zero")
			}
			if adj.Quantity > item.Quantity {
				return laundry.Invalid("quantity", fmt.Sprintf("cannot remove %d, only %d in stock", adj.Quantity, item.Quantity))
			}
			item.Quantity -= adj.Quantity
		case AdjustSet:
			item.Quantity = adj.Quantity
		default:
			return laundry.Invalid("type", "must be one of add, remove, set")
		}
		now := s.now()
		item.LastUpdated = now
		if strings.TrimSpace(adj.Notes) != "" {
			item.Notes = appendAudit(item.Notes, auditLine(now, adj, old, item.Quantity))
		}
		ds.Inventory[idx] = item
		out = item
		return nil
	})
	if err != nil {
		return laundry.InventoryItem{}, err
	}
	s.metrics.InventoryAdjusted(string(adj.Type), adj.Reason)
	s.observe(ds)
	s.logger.Info().Str("item_id", id).Str("type", string(adj.Type)).Str("reason", adj.Reason).
		Int("from", old).Int("to", out.Quantity).Msg("inventory_adjusted")
	return out, nil
}

// Delete removes a supply item.
func (s *Service) Delete(ctx context.Context, id string) error {
	ds, err := s.workspace.Update(ctx, func(ds *laundry.Dataset) error {
		idx := ds.InventoryIndex(id)
		if idx < 0 {
			return laundry.NotFound("inventory item", id)
		}
		ds.Inventory = append(ds.Inventory[:idx], ds.Inventory[idx+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	s.observe(ds)
	s.logger.Info().Str("item_id", id).Msg("inventory_item_deleted")
	return nil
}

func (s *Service) observe(ds *laundry.Dataset) {
	if ds == nil {
		return
	}
	low := 0
	for _, it := range ds.Inventory {
		if it.NeedsReorder() {
			low++
		}
	}
	s.metrics.SetLowStock(low)
}

func (s *Service) apply(ds *laundry.Dataset, item *laundry.InventoryItem, in Input) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return laundry.Invalid("name", "is required")
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		return laundry.Invalid("unit", "is required")
	}
	if !in.Category.Valid() {
		return laundry.Invalid("category", "must be one of cleaning, chemicals, equipment")
	}
	if in.Quantity < 0 {
		return laundry.Invalid("quantity", "must not be negative")
	}
	if in.Cost.IsNegative() {
		return laundry.Invalid("cost", "must not be negative")
	}
	if in.Threshold < 1 {
		return laundry.Invalid("threshold", "must be at least 1")
	}
	for _, other := range ds.Inventory {
		if other.ID != item.ID && strings.EqualFold(other.Name, name) {
			return fmt.Errorf("inventory item named %q: %w", name, laundry.ErrDuplicate)
		}
	}
	item.Name = name
	item.Category = in.Category
	item.Quantity = in.Quantity
	item.Unit = unit
	item.Cost = in.Cost
	item.Threshold = in.Threshold
	item.Notes = strings.TrimSpace(in.Notes)
	item.LastUpdated = s.now()
	return nil
}

// auditLine renders "[2025-08-05 12:00] restock: add 10 (8 → 18) - note".
func auditLine(at time.Time, adj Adjustment, from, to int) string {
	return fmt.Sprintf("[%s] %s: %s %d (%d → %d) - %s", at.Format("2006-01-02 15:04"), adj.Reason, adj.Type, adj.Quantity, from, to,
		strings.TrimSpace(adj.Notes))
}

func appendAudit(notes, line string) string {
	if strings.TrimSpace(notes) == "" {
		return line
	}
	return notes + "\n" + line
}
