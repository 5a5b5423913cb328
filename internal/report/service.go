package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-laundry/internal/filter"
	"github.com/noah-isme/backend-laundry/internal/inventory"
	"github.com/noah-isme/backend-laundry/internal/laundry"
	"github.com/noah-isme/backend-laundry/internal/store"
)

const (
	recentLimit   = 5
	lowStockLimit = 4
	pickupLimit   = 5
	topLimit      = 5

	// DefaultRevenueDays is the revenue series length when none is requested.
	DefaultRevenueDays = 7
	// MaxRevenueDays caps the revenue series.
	MaxRevenueDays = 90
)

// requiredImportKeys must all be present in an imported document.
var requiredImportKeys = []string{"orders", "customers", "inventory"}

// Service computes read models over the workspace and moves it in and out.
type Service struct {
	workspace *store.Workspace
	logger    zerolog.Logger
	loc       *time.Location
	now       func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Workspace *store.Workspace
	Logger    zerolog.Logger
	Location  *time.Location
	Now       func() time.Time
}

// StockAlert is one entry of the dashboard low-stock strip.
type StockAlert struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Quantity int                 `json:"quantity"`
	Unit     string              `json:"unit"`
	Status   laundry.StockStatus `json:"status"`
}

// StaffCounts is the staff console summary.
type StaffCounts struct {
	Pending        int `json:"pending"`
	Processing     int `json:"processing"`
	Ready          int `json:"ready"`
	Delivered      int `json:"delivered"`
	Cancelled      int `json:"cancelled"`
	CompletedToday int `json:"completedToday"`
	PickupsToday   int `json:"pickupsToday"`
}

// Dashboard is the admin overview.
type Dashboard struct {
	TotalOrders            int             `json:"totalOrders"`
	TotalCustomers         int             `json:"totalCustomers"`
	Revenue                decimal.Decimal `json:"revenue"`
	AverageProcessingHours int             `json:"averageProcessingHours"`
	RecentOrders           []laundry.Order `json:"recentOrders"`
	LowStock               []StockAlert    `json:"lowStock"`
	UpcomingPickups        []laundry.Order `json:"upcomingPickups"`
	Staff                  StaffCounts     `json:"staff"`
}

// Monthly compares revenue of the current calendar month with the previous one.
type Monthly struct {
	Revenue         decimal.Decimal `json:"revenue"`
	PreviousRevenue decimal.Decimal `json:"previousRevenue"`
	// Growth is a percentage with one decimal; zero when the previous month had no revenue.
	Growth            decimal.Decimal `json:"growth"`
	Orders            int             `json:"orders"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

// DailyRevenue is one point of the revenue series.
type DailyRevenue struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Report is the reports console read model.
type Report struct {
	Monthly         Monthly                     `json:"monthly"`
	StatusCounts    map[laundry.OrderStatus]int `json:"statusCounts"`
	TopCustomers    []laundry.Customer          `json:"topCustomers"`
	InventoryAlerts []laundry.InventoryItem     `json:"inventoryAlerts"`
	Revenue         []DailyRevenue              `json:"revenue"`
}

// SettingsInput is the settings form.
type SettingsInput struct {
	TaxRate        decimal.Decimal `json:"taxRate"`
	Currency       string          `json:"currency" validate:"required,len=3"`
	CurrencySymbol string          `json:"currencySymbol" validate:"required,max=4"`
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Workspace == nil {
		return nil, fmt.Errorf("report: workspace is required")
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{workspace: cfg.Workspace, logger: cfg.Logger, loc: loc, now: now}, nil
}

// Dashboard builds the admin overview.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	ds, err := s.workspace.Read(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	now := s.now().In(s.loc)
	out := Dashboard{
		TotalOrders:            len(ds.Orders),
		TotalCustomers:         len(ds.Customers),
		Revenue:                revenue(ds.Orders),
		AverageProcessingHours: averageProcessingHours(ds.Orders),
		RecentOrders:           head(ds.Orders, recentLimit),
		LowStock:               []StockAlert{},
		UpcomingPickups:        []laundry.Order{},
		Staff:                  staffCounts(ds.Orders, now, s.loc),
	}
	for _, it := range ds.Inventory {
		if len(out.LowStock) == lowStockLimit {
			break
		}
		if it.NeedsReorder() {
			out.LowStock = append(out.LowStock, StockAlert{ID: it.ID, Name: it.Name, Quantity: it.Quantity, Unit: it.Unit, Status: it.StockStatus()})
		}
	}
	for _, o := range ds.Orders {
		if len(out.UpcomingPickups) == pickupLimit {
			break
		}
		if o.Status == laundry.OrderReady {
			out.UpcomingPickups = append(out.UpcomingPickups, o)
		}
	}
	return out, nil
}

// Report builds the reports console read model with a revenue series of the last days days.
func (s *Service) Report(ctx context.Context, days int) (Report, error) {
	ds, err := s.workspace.Read(ctx)
	if err != nil {
		return Report{}, err
	}
	now := s.now().In(s.loc)
	counts := make(map[laundry.OrderStatus]int, len(laundry.OrderStatuses))
	for _, st := range laundry.OrderStatuses {
		counts[st] = 0
	}
	for _, o := range ds.Orders {
		counts[o.Status]++
	}
	return Report{
		Monthly:         monthly(ds.Orders, now, s.loc),
		StatusCounts:    counts,
		TopCustomers:    topCustomers(ds.Customers, topLimit),
		InventoryAlerts: inventory.Alerts(ds.Inventory, inventory.AlertLimit),
		Revenue:         revenueSeries(ds.Orders, now, s.loc, days),
	}, nil
}

// Settings returns the workspace settings.
func (s *Service) Settings(ctx context.Context) (laundry.Settings, error) {
	ds, err := s.workspace.Read(ctx)
	if err != nil {
		return laundry.Settings{}, err
	}
	return ds.Settings, nil
}

// UpdateSettings replaces the workspace settings. Existing documents keep their totals.
func (s *Service) UpdateSettings(ctx context.Context, in SettingsInput) (laundry.Settings, error) {
	if in.TaxRate.IsNegative() {
		return laundry.Settings{}, laundry.Invalid("taxRate", "must not be negative")
	}
	settings := laundry.Settings{
		TaxRate:        in.TaxRate,
		Currency:       strings.ToUpper(strings.TrimSpace(in.Currency)),
		CurrencySymbol: strings.TrimSpace(in.CurrencySymbol),
	}
	_, err := s.workspace.Update(ctx, func(ds *laundry.Dataset) error {
		ds.Settings = settings
		return nil
	})
	if err != nil {
		return laundry.Settings{}, err
	}
	s.logger.Info().Str("tax_rate", settings.TaxRate.String()).Str("currency", settings.Currency).Msg("settings_updated")
	return settings, nil
}

// Export returns a snapshot of the whole workspace.
func (s *Service) Export(ctx context.Context) (*laundry.Dataset, error) {
	return s.workspace.Read(ctx)
}

// Import replaces the workspace with a previously exported document. The document
// must carry orders, customers and inventory; missing invoices import as none and
// missing settings keep the current ones. Stored totals and customer stats are
// recomputed; a line with a non-positive quantity or negative price rejects the import.
func (s *Service) Import(ctx context.Context, raw []byte) (*laundry.Dataset, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, laundry.Invalid("document", "must be a JSON object")
	}
	var missing []string
	for _, k := range requiredImportKeys {
		if _, ok := keys[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, laundry.Invalid("document", "missing "+strings.Join(missing, ", "))
	}
	var ds laundry.Dataset
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode import: %w", err)
	}
	if ds.Settings.TaxRate.IsNegative() {
		return nil, laundry.Invalid("settings.taxRate", "must not be negative")
	}
	if err := checkInventory(ds.Inventory); err != nil {
		return nil, err
	}
	_, hasSettings := keys["settings"]
	imported, err := s.workspace.Update(ctx, func(current *laundry.Dataset) error {
		next := ds.Clone()
		if !hasSettings {
			next.Settings = current.Settings
		}
		if err := next.RetotalAll(); err != nil {
			return laundry.Invalid("document", err.Error())
		}
		for _, c := range next.Customers {
			next.RefreshCustomerStats(c.ID)
		}
		*current = *next
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int("orders", len(imported.Orders)).
		Int("customers", len(imported.Customers)).
		Int("invoices", len(imported.Invoices)).
		Int("inventory", len(imported.Inventory)).
		Msg("workspace_imported")
	return imported, nil
}

func checkInventory(items []laundry.InventoryItem) error {
	for _, it := range items {
		field := "inventory[" + it.ID + "]"
		switch {
		case it.Quantity < 0:
			return laundry.Invalid(field+".quantity", "must not be negative")
		case it.Threshold < 1:
			return laundry.Invalid(field+".threshold", "must be at least 1")
		case it.Cost.IsNegative():
			return laundry.Invalid(field+".cost", "must not be negative")
		}
	}
	return nil
}

func revenue(orders []laundry.Order) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range orders {
		if o.Status != laundry.OrderCancelled {
			sum = sum.Add(o.Total)
		}
	}
	return sum
}

// averageProcessingHours averages drop-off to pickup over ready and delivered orders
// that have a pickup date, rounded to whole hours.
func averageProcessingHours(orders []laundry.Order) int {
	total, n := 0.0, 0
	for _, o := range orders {
		if !o.Status.Completed() {
			continue
		}
		hours, ok := o.ProcessingHours()
		if !ok {
			continue
		}
		total += hours
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(total / float64(n)))
}

func staffCounts(orders []laundry.Order, now time.Time, loc *time.Location) StaffCounts {
	var out StaffCounts
	today := filter.StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	onDay := func(t time.Time) bool {
		t = t.In(loc)
		return !t.Before(today) && t.Before(tomorrow)
	}
	for _, o := range orders {
		switch o.Status {
		case laundry.OrderPending:
			out.Pending++
		case laundry.OrderProcessing:
			out.Processing++
		case laundry.OrderReady:
			out.Ready++
		case laundry.OrderDelivered:
			out.Delivered++
			if onDay(o.UpdatedAt) {
				out.CompletedToday++
			}
		case laundry.OrderCancelled:
			out.Cancelled++
		}
		if o.PickupDate != nil && o.Status != laundry.OrderCancelled && onDay(*o.PickupDate) {
			out.PickupsToday++
		}
	}
	return out
}

func monthly(orders []laundry.Order, now time.Time, loc *time.Location) Monthly {
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	lastMonth := thisMonth.AddDate(0, -1, 0)
	out := Monthly{Revenue: decimal.Zero, PreviousRevenue: decimal.Zero, Growth: decimal.Zero, AverageOrderValue: decimal.Zero}
	for _, o := range orders {
		if o.Status == laundry.OrderCancelled || o.DropOffDate.IsZero() {
			continue
		}
		d := o.DropOffDate.In(loc)
		switch {
		case !d.Before(thisMonth):
			out.Revenue = out.Revenue.Add(o.Total)
			out.Orders++
		case !d.Before(lastMonth):
			out.PreviousRevenue = out.PreviousRevenue.Add(o.Total)
		}
	}
	if out.PreviousRevenue.IsPositive() {
		out.Growth = out.Revenue.Sub(out.PreviousRevenue).Div(out.PreviousRevenue).Mul(decimal.NewFromInt(100)).Round(1)
	}
	if out.Orders > 0 {
		out.AverageOrderValue = out.Revenue.Div(decimal.NewFromInt(int64(out.Orders))).Round(2)
	}
	return out
}

func topCustomers(customers []laundry.Customer, limit int) []laundry.Customer {
	out := slices.Clone(customers)
	slices.SortStableFunc(out, func(a, b laundry.Customer) int { return b.TotalSpent.Cmp(a.TotalSpent) })
	return head(out, limit)
}

func revenueSeries(orders []laundry.Order, now time.Time, loc *time.Location, days int) []DailyRevenue {
	if days <= 0 {
		days = DefaultRevenueDays
	}
	days = min(days, MaxRevenueDays)
	start := filter.StartOfDay(now).AddDate(0, 0, -(days - 1))
	byDay := make(map[string]decimal.Decimal, days)
	for _, o := range orders {
		if o.Status == laundry.OrderCancelled || o.DropOffDate.IsZero() {
			continue
		}
		key := o.DropOffDate.In(loc).Format(laundry.DateLayout)
		byDay[key] = byDay[key].Add(o.Total)
	}
	out := make([]DailyRevenue, 0, days)
	for i := 0; i < days; i++ {
		key := start.AddDate(0, 0, i).Format(laundry.DateLayout)
		out = append(out, DailyRevenue{Date: key, Revenue: byDay[key].Add(decimal.Zero)})
	}
	return out
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	return append([]T{}, items...)
}
