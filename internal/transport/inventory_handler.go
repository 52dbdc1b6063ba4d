package transport

import (
	"net/http"

	"stock-manager/internal/middleware"
	"stock-manager/internal/repository"
	"stock-manager/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// InventoryHandler serves the inventory views
type InventoryHandler struct {
	reportService service.ReportService
	logger        *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(reportService service.ReportService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes registers all inventory routes
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/inventory", func(r chi.Router) {
		r.Get("/overview", h.Overview)
		r.Get("/filter", h.Filter)
		r.Get("/search", h.Search)
	})
}

// Overview returns inventory totals and value
func (h *InventoryHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.reportService.InventoryOverview(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, overview)
}

// Filter returns products in the requested stock band with status labels
func (h *InventoryHandler) Filter(w http.ResponseWriter, r *http.Request) {
	var filter repository.StockFilter
	switch r.URL.Query().Get("type") {
	case "", "all":
		filter = repository.StockFilterAll
	case "low":
		filter = repository.StockFilterLow
	case "out":
		filter = repository.StockFilterOut
	default:
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid filter type")
		return
	}

	rows, err := h.reportService.FilterInventory(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, rows)
}

// Search matches products by product or category name, with status labels
func (h *InventoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	rows, err := h.reportService.SearchInventory(r.Context(), query)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, rows)
}
