package inventory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-laundry/internal/common"
	"github.com/noah-isme/backend-laundry/internal/laundry"
)

// Handler exposes the supplies register endpoints.
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

type itemView struct {
	laundry.InventoryItem
	Status      laundry.StockStatus `json:"status"`
	StatusLabel string              `json:"statusLabel"`
	StockValue  string              `json:"stockValue"`
}

func view(it laundry.InventoryItem) itemView {
	status := it.StockStatus()
	return itemView{
		InventoryItem: it,
		Status:        status,
		StatusLabel:   status.Label(),
		StockValue:    it.StockValue().StringFixed(2),
	}
}

func views(items []laundry.InventoryItem) []itemView {
	out := make([]itemView, 0, len(items))
	for _, it := range items {
		out = append(out, view(it))
	}
	return out
}

// List handles GET /api/v1/inventory.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "inventory service not configured", nil)
		return
	}
	q, err := common.ParseListQuery(r, 50)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	res, err := h.service.List(r.Context(), q)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteList(w, views(res.Items), res.Total, q, map[string]any{"summary": res.Summary})
}

// Alerts handles GET /api/v1/inventory/alerts.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Alerts(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": views(items)})
}

// Get handles GET /api/v1/inventory/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	it, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, it, err)
}

// Create handles POST /api/v1/inventory.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	it, err := h.service.Create(r.Context(), in)
	respond(w, http.StatusCreated, it, err)
}

// Update handles PUT /api/v1/inventory/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	it, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	respond(w, http.StatusOK, it, err)
}

// Adjust handles POST /api/v1/inventory/{id}/adjust.
func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	var adj Adjustment
	if err := common.DecodeAndValidate(r, &adj); err != nil {
		common.WriteError(w, err)
		return
	}
	it, err := h.service.Adjust(r.Context(), chi.URLParam(r, "id"), adj)
	respond(w, http.StatusOK, it, err)
}

// Delete handles DELETE /api/v1/inventory/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respond(w http.ResponseWriter, status int, it laundry.InventoryItem, err error) {
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, status, map[string]any{"data": view(it)})
}
