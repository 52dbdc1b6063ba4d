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

// PurchaseLineRequest is one requested product line of a purchase
type PurchaseLineRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid4"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

// PostPurchaseRequest represents the purchase posting payload
type PostPurchaseRequest struct {
	Supplier string                `json:"supplier" validate:"required"`
	Items    []PurchaseLineRequest `json:"items" validate:"required,min=1,dive"`
}

// PostPurchaseResponse represents a successfully posted purchase
type PostPurchaseResponse struct {
	PurchaseID string          `json:"purchase_id"`
	ItemsCount int             `json:"items_count"`
	Total      decimal.Decimal `json:"total"`
}

// PurchaseHandler handles HTTP requests for purchases
type PurchaseHandler struct {
	postingService service.PostingService
	reportService  service.ReportService
	logger         *zap.Logger
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(postingService service.PostingService, reportService service.ReportService, logger *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		postingService: postingService,
		reportService:  reportService,
		logger:         logger,
	}
}

// RegisterRoutes registers all purchase routes
func (h *PurchaseHandler) RegisterRoutes(r chi.Router, postingLimiter func(http.Handler) http.Handler) {
	r.Route("/api/purchases", func(r chi.Router) {
		r.With(postingLimiter).Post("/", h.PostPurchase)
		r.Get("/recent", h.RecentPurchases)
		r.Get("/search", h.SearchPurchases)
		r.Get("/{id}", h.GetPurchase)
	})
}

// PostPurchase posts a purchase: stock additions, header and line items
// commit atomically.
func (h *PurchaseHandler) PostPurchase(w http.ResponseWriter, r *http.Request) {
	var req PostPurchaseRequest
	if !decodeValidated(w, r, h.logger, &req) {
		return
	}

	lines := make([]service.PurchaseLine, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
			return
		}
		lines = append(lines, service.PurchaseLine{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	receipt, err := h.postingService.PostPurchase(r.Context(), req.Supplier, lines)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.reportService.InvalidateReports(r.Context())

	h.logger.Info("Purchase posted",
		zap.String("purchase_id", receipt.PurchaseID.String()),
		zap.Int("items_count", receipt.ItemsCount),
		zap.String("total", receipt.Total.String()),
	)

	middleware.RespondWithJSON(w, http.StatusCreated, PostPurchaseResponse{
		PurchaseID: receipt.PurchaseID.String(),
		ItemsCount: receipt.ItemsCount,
		Total:      receipt.Total,
	})
}

// RecentPurchases returns the latest purchases
func (h *PurchaseHandler) RecentPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.reportService.RecentPurchases(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, purchases)
}

// SearchPurchases matches purchases by supplier name
func (h *PurchaseHandler) SearchPurchases(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	purchases, err := h.reportService.SearchPurchases(r.Context(), query)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, purchases)
}

// GetPurchase returns one purchase header with its line items
func (h *PurchaseHandler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid purchase ID")
		return
	}

	purchase, err := h.reportService.PurchaseDetails(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, purchase)
}
