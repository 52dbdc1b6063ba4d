package transport

import (
	"net/http"

	"stock-manager/internal/middleware"
	"stock-manager/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CacheHandler exposes manual report cache invalidation
type CacheHandler struct {
	reportService service.ReportService
	logger        *zap.Logger
}

// NewCacheHandler creates a new CacheHandler
func NewCacheHandler(reportService service.ReportService, logger *zap.Logger) *CacheHandler {
	return &CacheHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes registers the cache routes
func (h *CacheHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/cache/clear", h.Clear)
}

// Clear drops every cached report
func (h *CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.reportService.InvalidateReports(r.Context())

	username, _ := middleware.GetUsername(r.Context())
	h.logger.Info("Report cache cleared", zap.String("username", username))

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "cache cleared"})
}
