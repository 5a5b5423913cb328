package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/backend-laundry/internal/laundry"
	"github.com/noah-isme/backend-laundry/internal/pricing"
	"github.com/noah-isme/backend-laundry/internal/report"
	"github.com/noah-isme/backend-laundry/internal/store"
)

var fixedNow = time.Date(2025, time.August, 5, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*report.Service, *store.Workspace) {
	t.Helper()
	ws, err := store.NewWorkspace(store.WorkspaceConfig{Store: store.NewMemory()})
	require.NoError(t, err)
	_, err = ws.Init(context.Background(), func() *laundry.Dataset { return laundry.SampleDataset(fixedNow) })
	require.NoError(t, err)
	svc, err := report.NewService(report.ServiceConfig{
		Workspace: ws,
		Logger:    zerolog.Nop(),
		Location:  time.UTC,
		Now:       func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc, ws
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func orderIDs(orders []laundry.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func TestDashboard(t *testing.T) {
	svc, _ := newService(t)

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, d.TotalOrders)
	require.Equal(t, 3, d.TotalCustomers)
	require.True(t, dec("56.10").Equal(d.Revenue), d.Revenue.String())
	require.Equal(t, 72, d.AverageProcessingHours)
	require.Equal(t, []string{"ORD002", "ORD003", "ORD001"}, orderIDs(d.RecentOrders))
	require.Equal(t, []string{"ORD003"}, orderIDs(d.UpcomingPickups))
	require.Len(t, d.LowStock, 2)
	require.Equal(t, "INV002", d.LowStock[0].ID)
	require.Equal(t, laundry.LowStock, d.LowStock[1].Status)
	require.Equal(t, report.StaffCounts{Pending: 1, Processing: 1, Ready: 1}, d.Staff)
}

func TestDashboardStaffToday(t *testing.T) {
	svc, ws := newService(t)
	ctx := context.Background()
	_, err := ws.Update(ctx, func(ds *laundry.Dataset) error {
		o := &ds.Orders[ds.OrderIndex("ORD003")]
		o.Status = laundry.OrderDelivered
		o.UpdatedAt = fixedNow.Add(-time.Hour)
		pickup := fixedNow
		o.PickupDate = &pickup
		c := &ds.Orders[ds.OrderIndex("ORD001")]
		c.Status = laundry.OrderCancelled
		return nil
	})
	require.NoError(t, err)

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, d.Staff.CompletedToday)
	require.Equal(t, 1, d.Staff.PickupsToday)
	require.Equal(t, 1, d.Staff.Cancelled)
	require.Empty(t, d.UpcomingPickups)
	require.True(t, dec("45.10").Equal(d.Revenue), "cancelled orders are not revenue")
	require.Equal(t, 60, d.AverageProcessingHours)
}

func TestReportMonthlyGrowth(t *testing.T) {
	svc, ws := newService(t)
	ctx := context.Background()
	_, err := ws.Update(ctx, func(ds *laundry.Dataset) error {
		prev := ds.Orders[ds.OrderIndex("ORD001")]
		prev.ID = "ORD000"
		prev.DropOffDate = time.Date(2025, time.July, 20, 0, 0, 0, 0, time.UTC)
		ds.Orders = append(ds.Orders, prev)
		return nil
	})
	require.NoError(t, err)

	rep, err := svc.Report(ctx, 7)
	require.NoError(t, err)
	require.True(t, dec("56.10").Equal(rep.Monthly.Revenue))
	require.True(t, dec("11").Equal(rep.Monthly.PreviousRevenue))
	require.Equal(t, "410", rep.Monthly.Growth.String())
	require.Equal(t, 3, rep.Monthly.Orders)
	require.Equal(t, "18.7", rep.Monthly.AverageOrderValue.String())
	require.Equal(t, 0, rep.StatusCounts[laundry.OrderDelivered])
	require.Equal(t, 2, rep.StatusCounts[laundry.OrderPending])
}

func TestReportSeriesAndTopCustomers(t *testing.T) {
	svc, _ := newService(t)

	rep, err := svc.Report(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, rep.Revenue, 7)
	require.Equal(t, "2025-07-30", rep.Revenue[0].Date)
	require.Equal(t, "2025-08-05", rep.Revenue[6].Date)
	require.True(t, dec("22").Equal(rep.Revenue[4].Revenue))
	require.True(t, dec("23.10").Equal(rep.Revenue[5].Revenue))
	require.True(t, dec("11").Equal(rep.Revenue[6].Revenue))
	require.True(t, rep.Revenue[0].Revenue.IsZero())
	require.Equal(t, "0", rep.Revenue[0].Revenue.String())

	require.Equal(t, "Abdul Rauf", rep.TopCustomers[0].Name)
	require.Equal(t, "Janet Kumah", rep.TopCustomers[2].Name)
	require.Len(t, rep.InventoryAlerts, 2)
	require.Equal(t, "INV002", rep.InventoryAlerts[0].ID)

	rep, err = svc.Report(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, rep.Revenue, report.DefaultRevenueDays)
}

func TestUpdateSettings(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.UpdateSettings(ctx, report.SettingsInput{TaxRate: dec("-0.01"), Currency: "GHS", CurrencySymbol: "₵"})
	require.ErrorIs(t, err, laundry.ErrInvalid)

	s, err := svc.UpdateSettings(ctx, report.SettingsInput{TaxRate: dec("0.125"), Currency: "ghs", CurrencySymbol: "₵"})
	require.NoError(t, err)
	require.Equal(t, "GHS", s.Currency)

	got, err := svc.Settings(ctx)
	require.NoError(t, err)
	require.True(t, dec("0.125").Equal(got.TaxRate))
}

func TestImport(t *testing.T) {
	svc, ws := newService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, []byte(`{"orders":[],"customers":[]}`))
	require.ErrorIs(t, err, laundry.ErrInvalid)
	require.Contains(t, err.Error(), "inventory")

	_, err = svc.Import(ctx, []byte(`[1,2]`))
	require.ErrorIs(t, err, laundry.ErrInvalid)

	exported, err := svc.Export(ctx)
	require.NoError(t, err)
	exported.Customers = exported.Customers[:1]
	exported.Invoices = nil
	raw, err := json.Marshal(map[string]any{
		"orders":    exported.Orders,
		"customers": exported.Customers,
		"inventory": exported.Inventory,
	})
	require.NoError(t, err)

	ds, err := svc.Import(ctx, raw)
	require.NoError(t, err)
	require.Len(t, ds.Customers, 1)
	require.NotNil(t, ds.Invoices)
	require.Empty(t, ds.Invoices)

	after, err := ws.Read(ctx)
	require.NoError(t, err)
	require.Len(t, after.Orders, 3)
	require.Equal(t, "USD", after.Settings.Currency, "settings survive an import without them")
}

func TestReportHandlers(t *testing.T) {
	svc, _ := newService(t)
	h := report.NewHandler(report.HandlerConfig{Service: svc, Registry: pricing.NewRegistry(nil)})
	r := chi.NewRouter()
	r.Get("/api/v1/dashboard", h.Dashboard)
	r.Get("/api/v1/reports", h.Reports)
	r.Get("/api/v1/settings", h.Settings)
	r.Put("/api/v1/settings", h.UpdateSettings)
	r.Get("/api/v1/export", h.Export)
	r.Get("/api/v1/export.xlsx", h.ExportWorkbook)
	r.Post("/api/v1/import", h.Import)

	t.Run("dashboard", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"revenue":"56.1"`)
	})

	t.Run("reports days", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports?days=400", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports?days=3", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Data report.Report `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Data.Revenue, 3)
	})

	t.Run("settings", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(`{"taxRate":"0.15","currency":"EURO","currencySymbol":"€"}`)))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(`{"taxRate":"0.15","currency":"EUR","currencySymbol":"€"}`)))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"taxRate":"0.15"`)
	})

	t.Run("export json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, `attachment; filename="laundry-data-2025-08-05.json"`, rec.Header().Get("Content-Disposition"))
		var ds laundry.Dataset
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ds))
		require.Len(t, ds.Orders, 3)
	})

	t.Run("export xlsx", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export.xlsx", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, []string{"Orders", "Customers", "Invoices", "Inventory", "Prices"}, f.GetSheetList())
	})

	t.Run("import", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/import", strings.NewReader(`{"orders":[]}`)))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/import", strings.NewReader(`{"orders":[],"customers":[],"inventory":[],"invoices":[]}`)))
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"data":{"orders":0,"customers":0,"invoices":0,"inventory":0}}`, rec.Body.String())
	})
}

func importDoc(t *testing.T, ds *laundry.Dataset) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"orders":    ds.Orders,
		"customers": ds.Customers,
		"inventory": ds.Inventory,
	})
	require.NoError(t, err)
	return raw
}

func TestImportRecomputesTotals(t *testing.T) {
	svc, ws := newService(t)
	ctx := context.Background()

	exported, err := svc.Export(ctx)
	require.NoError(t, err)
	exported.Orders = exported.Orders[:1]
	o := &exported.Orders[0]
	o.Status = laundry.OrderPending
	o.Items = o.Items[:1]
	o.Items[0].Quantity = 3
	o.Items[0].Price = dec("3.00")
	o.Subtotal, o.Tax, o.Total = dec("1"), dec("1"), dec("999")

	ds, err := svc.Import(ctx, importDoc(t, exported))
	require.NoError(t, err)
	got := ds.Orders[0]
	require.True(t, dec("9").Equal(got.Subtotal), got.Subtotal.String())
	require.True(t, dec("0.9").Equal(got.Tax), got.Tax.String())
	require.True(t, dec("9.9").Equal(got.Total), got.Total.String())

	idx := ds.CustomerIndex(got.CustomerID)
	require.GreaterOrEqual(t, idx, 0)
	require.Equal(t, 1, ds.Customers[idx].TotalOrders)
	require.True(t, dec("9.9").Equal(ds.Customers[idx].TotalSpent))

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.True(t, dec("9.9").Equal(d.Revenue), d.Revenue.String())

	after, err := ws.Read(ctx)
	require.NoError(t, err)
	require.True(t, dec("9.9").Equal(after.Orders[0].Total))
}

func TestImportRejectsInvalidRecords(t *testing.T) {
	svc, ws := newService(t)
	ctx := context.Background()
	before, err := svc.Export(ctx)
	require.NoError(t, err)

	cases := map[string]func(ds *laundry.Dataset){
		"negative quantity": func(ds *laundry.Dataset) {
			ds.Orders[0].Items[0].Quantity = -4
			ds.Orders[0].Items[0].Price = dec("-3.00")
		},
		"negative invoice price": func(ds *laundry.Dataset) { ds.Invoices[0].Items[0].Price = dec("-1") },
		"negative stock":         func(ds *laundry.Dataset) { ds.Inventory[0].Quantity = -5 },
		"zero threshold":         func(ds *laundry.Dataset) { ds.Inventory[0].Threshold = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			doc := before.Clone()
			mutate(doc)
			raw, err := json.Marshal(doc)
			require.NoError(t, err)
			_, err = svc.Import(ctx, raw)
			require.ErrorIs(t, err, laundry.ErrInvalid)

			after, err := ws.Read(ctx)
			require.NoError(t, err)
			require.Equal(t, before.Orders[0].Items, after.Orders[0].Items)
			require.Equal(t, before.Inventory[0].Quantity, after.Inventory[0].Quantity)
		})
	}
}
