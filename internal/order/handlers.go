package order

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-laundry/internal/common"
	"github.com/noah-isme/backend-laundry/internal/laundry"
	"github.com/noah-isme/backend-laundry/internal/pricing"
)

// Handler exposes the order console endpoints.
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

type orderView struct {
	laundry.Order
	ItemCount int                   `json:"itemCount"`
	Display   pricing.DisplayTotals `json:"display"`
}

type statusRequest struct {
	Status laundry.OrderStatus `json:"status" validate:"required"`
	Notes  string              `json:"notes" validate:"max=1000"`
}

// List handles GET /api/v1/orders.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order service not configured", nil)
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
	views := make([]orderView, 0, len(res.Items))
	for _, o := range res.Items {
		views = append(views, view(o, symbol))
	}
	common.WriteList(w, views, res.Total, q, map[string]any{"undated": res.Undated})
}

// Get handles GET /api/v1/orders/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, o, err)
}

// Create handles POST /api/v1/orders.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	o, err := h.service.Create(r.Context(), in)
	h.respond(w, r, http.StatusCreated, o, err)
}

// Update handles PUT /api/v1/orders/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	o, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	h.respond(w, r, http.StatusOK, o, err)
}

// Delete handles DELETE /api/v1/orders/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Advance handles POST /api/v1/orders/{id}/advance.
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Advance(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, o, err)
}

// Cancel handles POST /api/v1/orders/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, o, err)
}

// PatchStatus handles PATCH /api/v1/orders/{id}/status from the staff console.
func (h *Handler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	o, err := h.service.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Notes)
	h.respond(w, r, http.StatusOK, o, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, o laundry.Order, err error) {
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, status, map[string]any{"data": view(o, h.symbol(r.Context()))})
}

func (h *Handler) symbol(ctx context.Context) string {
	settings, err := h.service.Settings(ctx)
	if err != nil || settings.CurrencySymbol == "" {
		return laundry.DefaultSettings().CurrencySymbol
	}
	return settings.CurrencySymbol
}

func view(o laundry.Order, symbol string) orderView {
	return orderView{
		Order:     o,
		ItemCount: o.ItemCount(),
		Display:   pricing.FormatTotals(symbol, pricing.Totals{Subtotal: o.Subtotal, Tax: o.Tax, Total: o.Total}),
	}
}
