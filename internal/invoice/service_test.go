package invoice_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-laundry/internal/common"
	"github.com/noah-isme/backend-laundry/internal/filter"
	"github.com/noah-isme/backend-laundry/internal/invoice"
	"github.com/noah-isme/backend-laundry/internal/laundry"
	"github.com/noah-isme/backend-laundry/internal/obs"
	"github.com/noah-isme/backend-laundry/internal/pricing"
	"github.com/noah-isme/backend-laundry/internal/store"
)

var fixedNow = time.Date(2025, time.August, 5, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*invoice.Service, *obs.DomainMetrics) {
	t.Helper()
	ws, err := store.NewWorkspace(store.WorkspaceConfig{Store: store.NewMemory()})
	require.NoError(t, err)
	_, err = ws.Init(context.Background(), func() *laundry.Dataset { return laundry.SampleDataset(fixedNow) })
	require.NoError(t, err)
	metrics := obs.NewDomainMetrics("test", prometheus.NewRegistry())
	svc, err := invoice.NewService(invoice.ServiceConfig{
		Workspace: ws,
		Metrics:   metrics,
		Logger:    zerolog.Nop(),
		Location:  time.UTC,
		Now:       func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc, metrics
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateDefaultsDueDateAndTotals(t *testing.T) {
	svc, metrics := newService(t)
	ctx := context.Background()

	inv, err := svc.Create(ctx, invoice.Input{
		CustomerID: "CUST003",
		Date:       "2025-08-05",
		Items: []invoice.ItemInput{
			{Description: "Dry Cleaning Service", Quantity: 2, Price: dec("12.00")},
			{Description: " Express fee ", Quantity: 1, Price: dec("5.50")},
		},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(inv.ID, "INV"))
	require.Equal(t, "Janet Kumah", inv.CustomerName)
	require.Equal(t, laundry.InvoiceUnpaid, inv.Status)
	require.Equal(t, time.Date(2025, time.September, 4, 0, 0, 0, 0, time.UTC), inv.DueDate)
	require.Equal(t, "Express fee", inv.Items[1].Description)
	require.True(t, strings.HasPrefix(inv.Items[0].ID, "LI"))
	require.True(t, dec("29.50").Equal(inv.Subtotal))
	require.True(t, dec("2.95").Equal(inv.Tax))
	require.True(t, dec("32.45").Equal(inv.Total))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.InvoicesTotal.WithLabelValues("create")))

	got, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, inv.ID, got.ID)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	item := []invoice.ItemInput{{Description: "Service", Quantity: 1, Price: dec("10")}}

	_, err := svc.Create(ctx, invoice.Input{CustomerID: "CUST404", Date: "2025-08-05", Items: item})
	require.ErrorIs(t, err, laundry.ErrInvalid)

	_, err = svc.Create(ctx, invoice.Input{CustomerID: "CUST001", Date: "05/08/2025", Items: item})
	require.ErrorIs(t, err, laundry.ErrInvalid)

	_, err = svc.Create(ctx, invoice.Input{CustomerID: "CUST001", Date: "2025-08-05", DueDate: "2025-08-01", Items: item})
	require.ErrorIs(t, err, laundry.ErrInvalid)

	_, err = svc.Create(ctx, invoice.Input{CustomerID: "CUST001", Date: "2025-08-05",
		Items: []invoice.ItemInput{{Description: "Refund", Quantity: 1, Price: dec("-1")}}})
	require.ErrorIs(t, err, pricing.ErrInvalid)

	res, err := svc.List(ctx, common.ListQuery{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Equal(t, 2, res.Total, "failed writes leave the book unchanged")
}

func TestUpdateRetotalsAndKeepsStatus(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	inv, err := svc.Update(ctx, "INV001", invoice.Input{
		CustomerID: "CUST001",
		Date:       "2025-08-01",
		DueDate:    "2025-08-15",
		Items:      []invoice.ItemInput{{ID: "INVITEM001", Description: "Laundry Service - July", Quantity: 2, Price: dec("45.50")}},
	})
	require.NoError(t, err)
	require.Equal(t, laundry.InvoicePaid, inv.Status)
	require.Equal(t, "INVITEM001", inv.Items[0].ID)
	require.True(t, dec("100.10").Equal(inv.Total))

	_, err = svc.Update(ctx, "INV404", invoice.Input{CustomerID: "CUST001", Date: "2025-08-01",
		Items: []invoice.ItemInput{{Description: "x", Quantity: 1}}})
	require.ErrorIs(t, err, laundry.ErrNotFound)
}

func TestToggleAndDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	inv, err := svc.Toggle(ctx, "INV002")
	require.NoError(t, err)
	require.Equal(t, laundry.InvoicePaid, inv.Status)
	inv, err = svc.Toggle(ctx, "INV002")
	require.NoError(t, err)
	require.Equal(t, laundry.InvoiceUnpaid, inv.Status)

	require.NoError(t, svc.Delete(ctx, "INV002"))
	require.ErrorIs(t, svc.Delete(ctx, "INV002"), laundry.ErrNotFound)
	_, err = svc.Toggle(ctx, "INV002")
	require.ErrorIs(t, err, laundry.ErrNotFound)
}

func TestListFiltersAndOutstanding(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	res, err := svc.List(ctx, common.ListQuery{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Equal(t, []string{"INV002", "INV001"}, []string{res.Items[0].ID, res.Items[1].ID})
	require.True(t, dec("38.50").Equal(res.Outstanding))

	res, err = svc.List(ctx, common.ListQuery{Criteria: filter.Criteria{Status: "paid"}, Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.Equal(t, "INV001", res.Items[0].ID)
	require.True(t, res.Outstanding.IsZero())

	res, err = svc.List(ctx, common.ListQuery{Criteria: filter.Criteria{Search: "eric"}, Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.Equal(t, "INV002", res.Items[0].ID)

	res, err = svc.List(ctx, common.ListQuery{Criteria: filter.Criteria{Range: filter.Today}, Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Empty(t, res.Items)
}

func TestInvoiceHandlers(t *testing.T) {
	svc, _ := newService(t)
	h := invoice.NewHandler(invoice.HandlerConfig{Service: svc})
	r := chi.NewRouter()
	r.Get("/api/v1/invoices", h.List)
	r.Post("/api/v1/invoices", h.Create)
	r.Get("/api/v1/invoices/{id}", h.Get)
	r.Post("/api/v1/invoices/{id}/toggle", h.Toggle)
	r.Delete("/api/v1/invoices/{id}", h.Delete)

	t.Run("create", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := `{"customerId":"CUST002","date":"2025-08-05","items":[{"description":"Ironing","quantity":3,"price":"1.50"}]}`
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.Contains(t, rec.Body.String(), `"total":"$4.95"`)
		require.Contains(t, rec.Body.String(), `"dueDate":"2025-09-04T00:00:00Z"`)
	})

	t.Run("validation", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader(`{"customerId":"CUST002","date":"2025-08-05","items":[]}`)))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/invoices?status=unpaid", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "2", rec.Header().Get("X-Total-Count"))
		require.Contains(t, rec.Body.String(), `"outstanding":"$43.45"`)
		require.Contains(t, rec.Body.String(), `"overdue":false`)
	})

	t.Run("toggle", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/invoices/INV001/toggle", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"status":"unpaid"`)
	})

	t.Run("delete", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/invoices/INV404", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
