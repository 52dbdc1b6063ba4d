package transport

import (
	"net/http"

	"stock-manager/internal/middleware"
	"stock-manager/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleLineRequest is one requested product line of a sale
type SaleLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// PostSaleRequest represents the sale posting payload
type PostSaleRequest struct {
	ClientSearch string            `json:"client_search" validate:"required"`
	Products     []SaleLineRequest `json:"products" validate:"required,min=1,dive"`
}

// PostSaleResponse represents a successfully posted sale
type PostSaleResponse struct {
	SaleID     string          `json:"sale_id"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// SaleHandler handles HTTP requests for sales
type SaleHandler struct {
	postingService service.PostingService
	reportService  service.ReportService
	logger         *zap.Logger
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(postingService service.PostingService, reportService service.ReportService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		postingService: postingService,
		reportService:  reportService,
		logger:         logger,
	}
}

// RegisterRoutes registers all sale routes. postingLimiter throttles the
// posting endpoint only; reads are unthrottled.
func (h *SaleHandler) RegisterRoutes(r chi.Router, postingLimiter func(http.Handler) http.Handler) {
	r.Route("/api/sales", func(r chi.Router) {
		r.With(postingLimiter).Post("/", h.PostSale)
		r.Get("/recent", h.RecentSales)
		r.Get("/search", h.SearchSales)
		r.Get("/{id}", h.GetSale)
	})
}

// PostSale posts a sale: stock checks, stock updates, header and line items
// commit atomically.
func (h *SaleHandler) PostSale(w http.ResponseWriter, r *http.Request) {
	var req PostSaleRequest
	if !decodeValidated(w, r, h.logger, &req) {
		return
	}

	lines := make([]service.SaleLine, 0, len(req.Products))
	for _, p := range req.Products {
		productID, err := uuid.Parse(p.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
			return
		}
		lines = append(lines, service.SaleLine{ProductID: productID, Quantity: p.Quantity})
	}

	receipt, err := h.postingService.PostSale(r.Context(), req.ClientSearch, lines)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	// Committed sale changes every aggregate; drop cached reports
	h.reportService.InvalidateReports(r.Context())

	h.logger.Info("Sale posted",
		zap.String("sale_id", receipt.SaleID.String()),
		zap.Int("total_items", receipt.TotalItems),
		zap.String("total_price", receipt.TotalPrice.String()),
	)

	middleware.RespondWithJSON(w, http.StatusCreated, PostSaleResponse{
		SaleID:     receipt.SaleID.String(),
		TotalItems: receipt.TotalItems,
		TotalPrice: receipt.TotalPrice,
	})
}

// RecentSales returns the latest sales with client names
func (h *SaleHandler) RecentSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.reportService.RecentSales(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sales)
}

// SearchSales matches sales by id, client name or client email
func (h *SaleHandler) SearchSales(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	sales, err := h.reportService.SearchSales(r.Context(), query)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sales)
}

// GetSale returns one sale header with its line items
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid sale ID")
		return
	}

	sale, err := h.reportService.SaleDetails(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sale)
}
