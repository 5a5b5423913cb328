package quote_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-laundry/internal/excel"
	"github.com/noah-isme/backend-laundry/internal/obs"
	"github.com/noah-isme/backend-laundry/internal/pricing"
	"github.com/noah-isme/backend-laundry/internal/quote"
	"github.com/noah-isme/backend-laundry/internal/store"
)

type quoteResponse struct {
	Data struct {
		Lines []struct {
			UnitPrice decimal.Decimal `json:"unitPrice"`
			LineTotal decimal.Decimal `json:"lineTotal"`
			Display   string          `json:"display"`
		} `json:"lines"`
		Subtotal decimal.Decimal       `json:"subtotal"`
		Tax      decimal.Decimal       `json:"tax"`
		Total    decimal.Decimal       `json:"total"`
		Display  pricing.DisplayTotals `json:"display"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newHandler(t *testing.T) (*quote.Handler, *pricing.Registry, *obs.DomainMetrics) {
	t.Helper()
	ws, err := store.NewWorkspace(store.WorkspaceConfig{Store: store.NewMemory()})
	require.NoError(t, err)
	registry := pricing.NewRegistry(nil)
	metrics := obs.NewDomainMetrics("test", prometheus.NewRegistry())
	h := quote.NewHandler(quote.HandlerConfig{
		Registry:  registry,
		Workspace: ws,
		Metrics:   metrics,
		Logger:    zerolog.Nop(),
	})
	return h, registry, metrics
}

func TestQuoteOrder(t *testing.T) {
	h, _, metrics := newHandler(t)

	body := `{"items":[{"itemType":"Shirt","serviceType":"wash","quantity":3},{"itemType":"Dress","serviceType":"wash","quantity":2}]}`
	rec := httptest.NewRecorder()
	h.QuoteOrder(rec, httptest.NewRequest(http.MethodPost, "/api/v1/quotes/order", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp quoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Lines, 2)
	require.True(t, resp.Data.Lines[0].UnitPrice.Equal(decimal.RequireFromString("3")))
	require.Equal(t, "$9.00", resp.Data.Lines[0].Display)
	require.True(t, resp.Data.Subtotal.Equal(decimal.RequireFromString("21")))
	require.True(t, resp.Data.Tax.Equal(decimal.RequireFromString("2.10")))
	require.Equal(t, pricing.DisplayTotals{Subtotal: "$21.00", Tax: "$2.10", Total: "$23.10"}, resp.Data.Display)
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.QuotesTotal.WithLabelValues("order", "ok")))
}

func TestQuoteOrderErrors(t *testing.T) {
	h, _, metrics := newHandler(t)

	cases := []struct {
		name string
		body string
		code string
	}{
		{"unknown service", `{"items":[{"itemType":"Shirt","serviceType":"starch","quantity":1}]}`, "UNKNOWN_PRICE"},
		{"unknown item", `{"items":[{"itemType":"Hat","serviceType":"wash","quantity":1}]}`, "UNKNOWN_PRICE"},
		{"zero quantity", `{"items":[{"itemType":"Shirt","serviceType":"wash","quantity":0}]}`, "VALIDATION_FAILED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.QuoteOrder(rec, httptest.NewRequest(http.MethodPost, "/api/v1/quotes/order", strings.NewReader(tc.body)))
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Equal(t, tc.code, resp.Error.Code)
		})
	}
	require.Equal(t, float64(2), testutil.ToFloat64(metrics.QuotesTotal.WithLabelValues("order", "error")))
}

func TestQuoteInvoice(t *testing.T) {
	h, _, _ := newHandler(t)

	rec := httptest.NewRecorder()
	body := `{"items":[{"description":"Wedding dress","quantity":1,"price":"25.00"},{"description":"Pickup","quantity":2,"price":2.5}]}`
	h.QuoteInvoice(rec, httptest.NewRequest(http.MethodPost, "/api/v1/quotes/invoice", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp quoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "$33.00", resp.Data.Display.Total)

	rec = httptest.NewRecorder()
	h.QuoteInvoice(rec, httptest.NewRequest(http.MethodPost, "/api/v1/quotes/invoice",
		strings.NewReader(`{"items":[{"description":"Refund","quantity":1,"price":"-5"}]}`)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func pricesCSV(shirtWash string) string {
	var b strings.Builder
	b.WriteString("item,wash,dry_clean,iron\n")
	for _, row := range pricing.DefaultRows() {
		wash := row.Wash.StringFixed(2)
		if row.Item == pricing.Shirt {
			wash = shirtWash
		}
		b.WriteString(string(row.Item) + "," + wash + "," + row.DryClean.StringFixed(2) + "," + row.Iron.StringFixed(2) + "\n")
	}
	return b.String()
}

func TestUploadPricesRawCSV(t *testing.T) {
	h, registry, metrics := newHandler(t)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/prices", strings.NewReader(pricesCSV("3.25")))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	h.UploadPrices(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	price, err := registry.Current().Price(pricing.Shirt, pricing.Wash)
	require.NoError(t, err)
	require.True(t, price.Equal(decimal.RequireFromString("3.25")))
	require.Contains(t, rec.Body.String(), `"wash":"$3.25"`)
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.PriceTableLoads.WithLabelValues("upload", "ok")))
}

func TestUploadPricesRejectsIncompleteTable(t *testing.T) {
	h, registry, _ := newHandler(t)
	before := registry.Current()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/prices", strings.NewReader("item,wash,dry_clean,iron\nShirt,9,9,9\n"))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	h.UploadPrices(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Same(t, before, registry.Current())
}

func TestUploadPricesMultipartWorkbook(t *testing.T) {
	h, registry, _ := newHandler(t)

	rows := pricing.DefaultRows()
	rows[0].Iron = decimal.RequireFromString("2.75")
	var sheet bytes.Buffer
	require.NoError(t, excel.WritePriceTable(&sheet, rows))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "prices.xlsx")
	require.NoError(t, err)
	_, err = part.Write(sheet.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/prices", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.UploadPrices(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	price, err := registry.Current().Price(rows[0].Item, pricing.Iron)
	require.NoError(t, err)
	require.True(t, price.Equal(decimal.RequireFromString("2.75")))
}

func TestPricesList(t *testing.T) {
	h, _, _ := newHandler(t)
	rec := httptest.NewRecorder()
	h.Prices(rec, httptest.NewRequest(http.MethodGet, "/api/v1/prices", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []struct {
			ItemType string            `json:"itemType"`
			Display  map[string]string `json:"display"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, len(pricing.ItemTypes))
	require.Equal(t, "Suit", resp.Data[3].ItemType)
	require.Equal(t, "$0.00", resp.Data[3].Display["wash"])
}
