package quote

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-laundry/internal/common"
	"github.com/noah-isme/backend-laundry/internal/excel"
	"github.com/noah-isme/backend-laundry/internal/laundry"
	"github.com/noah-isme/backend-laundry/internal/obs"
	"github.com/noah-isme/backend-laundry/internal/pricing"
	"github.com/noah-isme/backend-laundry/internal/store"
)

const defaultMaxUpload = 4 << 20

// Handler serves the price list, price table uploads and quotes.
type Handler struct {
	registry  *pricing.Registry
	workspace *store.Workspace
	metrics   *obs.DomainMetrics
	logger    zerolog.Logger
	maxUpload int64
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Registry  *pricing.Registry
	Workspace *store.Workspace
	Metrics   *obs.DomainMetrics
	Logger    zerolog.Logger
	MaxUpload int64
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	maxUpload := cfg.MaxUpload
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &Handler{
		registry:  cfg.Registry,
		workspace: cfg.Workspace,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		maxUpload: maxUpload,
	}
}

type priceRowView struct {
	pricing.Row
	Display map[string]string `json:"display"`
}

type orderQuoteRequest struct {
	Items []OrderLine `json:"items" validate:"dive"`
}

type invoiceQuoteRequest struct {
	Items []InvoiceLine `json:"items" validate:"dive"`
}

// Prices handles GET /api/v1/prices.
func (h *Handler) Prices(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.rowViews(settings.CurrencySymbol)})
}

// PricesWorkbook handles GET /api/v1/prices.xlsx.
func (h *Handler) PricesWorkbook(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := excel.WritePriceTable(&buf, h.registry.Current().Rows()); err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="prices.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// UploadPrices handles PUT /api/v1/prices. The body is either a multipart form with a
// "file" part or the raw XLSX/CSV document. The new table replaces the current one
// only when it is complete.
func (h *Handler) UploadPrices(w http.ResponseWriter, r *http.Request) {
	name, body, err := h.readUpload(w, r)
	if err != nil {
		h.metrics.PriceTableLoad("upload", err)
		common.WriteError(w, err)
		return
	}
	table, err := excel.ParsePriceTable(name, bytes.NewReader(body))
	h.metrics.PriceTableLoad("upload", err)
	if err != nil {
		h.logger.Warn().Err(err).Str("file", name).Msg("price_table_rejected")
		common.WriteError(w, common.NewAppError("INVALID_PRICE_TABLE", err.Error(), http.StatusUnprocessableEntity, err))
		return
	}
	h.registry.Replace(table)
	h.logger.Info().Str("file", name).Msg("price_table_replaced")

	settings, err := h.settings(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.rowViews(settings.CurrencySymbol)})
}

// QuoteOrder handles POST /api/v1/quotes/order.
func (h *Handler) QuoteOrder(w http.ResponseWriter, r *http.Request) {
	var req orderQuoteRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	settings, err := h.settings(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	result, err := PriceOrder(h.registry.Current(), req.Items, settings)
	h.metrics.Quote("order", err)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// QuoteInvoice handles POST /api/v1/quotes/invoice.
func (h *Handler) QuoteInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceQuoteRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	settings, err := h.settings(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	result, err := PriceInvoice(req.Items, settings)
	h.metrics.Quote("invoice", err)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

func (h *Handler) settings(r *http.Request) (laundry.Settings, error) {
	if h.workspace == nil {
		return laundry.DefaultSettings(), nil
	}
	ds, err := h.workspace.Read(r.Context())
	if err != nil {
		return laundry.Settings{}, err
	}
	return ds.Settings, nil
}

func (h *Handler) rowViews(symbol string) []priceRowView {
	rows := h.registry.Current().Rows()
	out := make([]priceRowView, 0, len(rows))
	for _, row := range rows {
		out = append(out, priceRowView{
			Row: row,
			Display: map[string]string{
				string(pricing.Wash):     pricing.Format(symbol, row.Wash),
				string(pricing.DryClean): pricing.Format(symbol, row.DryClean),
				string(pricing.Iron):     pricing.Format(symbol, row.Iron),
			},
		})
	}
	return out
}

func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			return "", nil, common.BadRequest("file", "invalid multipart form", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, common.BadRequest("file", "file part is required", err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", nil, common.BadRequest("file", "read file", err)
		}
		return header.Filename, data, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, common.NewAppError("PAYLOAD_TOO_LARGE", "price file too large", http.StatusRequestEntityTooLarge, err)
		}
		return "", nil, common.BadRequest("body", "read body", err)
	}
	return uploadName(mediaType, time.Now()), data, nil
}

func uploadName(mediaType string, now time.Time) string {
	stamp := now.UTC().Format("20060102T150405")
	switch {
	case mediaType == "text/csv":
		return "prices-" + stamp + ".csv"
	case strings.Contains(mediaType, "spreadsheetml"):
		return "prices-" + stamp + ".xlsx"
	}
	return "prices-" + stamp
}
