package report

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/noah-isme/backend-laundry/internal/common"
	"github.com/noah-isme/backend-laundry/internal/excel"
	"github.com/noah-isme/backend-laundry/internal/pricing"
)

const defaultMaxImport = 8 << 20

// Handler exposes the dashboard, reports, settings and export endpoints.
type Handler struct {
	service   *Service
	registry  *pricing.Registry
	maxImport int64
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
	// Registry supplies the price sheet of the workbook export.
	Registry  *pricing.Registry
	MaxImport int64
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	registry := cfg.Registry
	if registry == nil {
		registry = pricing.NewRegistry(nil)
	}
	maxImport := cfg.MaxImport
	if maxImport <= 0 {
		maxImport = defaultMaxImport
	}
	return &Handler{service: cfg.Service, registry: registry, maxImport: maxImport}
}

// Dashboard handles GET /api/v1/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Dashboard(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": d})
}

// Reports handles GET /api/v1/reports?days=.
func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	days, err := common.IntInRange("days", r.URL.Query().Get("days"), DefaultRevenueDays, 1, MaxRevenueDays)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	rep, err := h.service.Report(r.Context(), days)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rep})
}

// Settings handles GET /api/v1/settings.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Settings(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": s})
}

// UpdateSettings handles PUT /api/v1/settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in SettingsInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	s, err := h.service.UpdateSettings(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": s})
}

// Export handles GET /api/v1/export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Export(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+h.fileName("json")+`"`)
	common.JSON(w, http.StatusOK, ds)
}

// ExportWorkbook handles GET /api/v1/export.xlsx.
func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Export(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := excel.WriteWorkbook(&buf, ds, h.registry.Current().Rows()); err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+h.fileName("xlsx")+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Import handles POST /api/v1/import with a previously exported JSON document.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxImport))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			common.JSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "import document is too large", nil)
			return
		}
		common.WriteError(w, common.BadRequest("body", "could not read request body", err))
		return
	}
	ds, err := h.service.Import(r.Context(), body)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]int{
		"orders":    len(ds.Orders),
		"customers": len(ds.Customers),
		"invoices":  len(ds.Invoices),
		"inventory": len(ds.Inventory),
	}})
}

func (h *Handler) fileName(ext string) string {
	return "laundry-data-" + h.service.now().In(h.service.loc).Format("2006-01-02") + "." + ext
}
