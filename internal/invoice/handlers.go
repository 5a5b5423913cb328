package invoice

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-laundry/internal/common"
	"github.com/noah-isme/backend-laundry/internal/laundry"
	"github.com/noah-isme/backend-laundry/internal/pricing"
)

// Handler exposes the invoice endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

type invoiceView struct {
	laundry.Invoice
	Overdue bool                  `json:"overdue"`
	Display pricing.DisplayTotals `json:"display"`
}

func view(inv laundry.Invoice, symbol string, now time.Time) invoiceView {
	return invoiceView{
		Invoice: inv,
		Overdue: inv.Status == laundry.InvoiceUnpaid && inv.DueDate.Before(now),
		Display: pricing.FormatTotals(symbol, pricing.Totals{Subtotal: inv.Subtotal, Tax: inv.Tax, Total: inv.Total}),
	}
}

// List handles GET /api/v1/invoices.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "invoice service not configured", nil)
		return
	}
	q, err := common.ParseListQuery(r, 20)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	res, err := h.service.List(r.Context(), q)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	symbol := h.symbol(r.Context())
	now := h.service.now()
	views := make([]invoiceView, 0, len(res.Items))
	for _, inv := range res.Items {
		views = append(views, view(inv, symbol, now))
	}
	common.WriteList(w, views, res.Total, q, map[string]any{
		"undated":     res.Undated,
		"outstanding": pricing.Format(symbol, res.Outstanding),
	})
}

// Get handles GET /api/v1/invoices/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, inv, err)
}

// Create handles POST /api/v1/invoices.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	inv, err := h.service.Create(r.Context(), in)
	h.respond(w, r, http.StatusCreated, inv, err)
}

// Update handles PUT /api/v1/invoices/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	inv, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	h.respond(w, r, http.StatusOK, inv, err)
}

// Toggle handles POST /api/v1/invoices/{id}/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Toggle(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, inv, err)
}

// Delete handles DELETE /api/v1/invoices/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, inv laundry.Invoice, err error) {
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, status, map[string]any{"data": view(inv, h.symbol(r.Context()), h.service.now())})
}

func (h *Handler) symbol(ctx context.Context) string {
	settings, err := h.service.Settings(ctx)
	if err != nil || settings.CurrencySymbol == "" {
		return laundry.DefaultSettings().CurrencySymbol
	}
	return settings.CurrencySymbol
}
