package transport

import (
	"net/http"

	"stock-manager/internal/middleware"
	"stock-manager/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DashboardHandler serves the dashboard aggregates
type DashboardHandler struct {
	reportService service.ReportService
	logger        *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(reportService service.ReportService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes registers all dashboard routes
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/dashboard", func(r chi.Router) {
		r.Get("/overview", h.Overview)
		r.Get("/sales-overview", h.SalesOverview)
		r.Get("/inventory-distribution", h.InventoryDistribution)
		r.Get("/recent-sales", h.RecentSales)
		r.Get("/low-stock", h.LowStock)
	})
}

// Overview returns the headline counts and totals
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.reportService.DashboardOverview(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, overview)
}

// SalesOverview returns recent sale totals in chronological order
func (h *DashboardHandler) SalesOverview(w http.ResponseWriter, r *http.Request) {
	points, err := h.reportService.SalesOverview(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, points)
}

// InventoryDistribution returns product counts per stock band
func (h *DashboardHandler) InventoryDistribution(w http.ResponseWriter, r *http.Request) {
	distribution, err := h.reportService.StockDistribution(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, distribution)
}

// RecentSales returns the latest sales for the dashboard panel
func (h *DashboardHandler) RecentSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.reportService.RecentSalesForDashboard(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sales)
}

// LowStock returns the products closest to running out
func (h *DashboardHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.reportService.LowStockProducts(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}
