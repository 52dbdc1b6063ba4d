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

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Name           string          `json:"name" validate:"required"`
	CategoryID     string          `json:"category_id" validate:"required,uuid4"`
	Price          decimal.Decimal `json:"price" validate:"required"`
	Stock          int             `json:"stock" validate:"gte=0"`
	AlertThreshold int             `json:"alert_threshold" validate:"gte=0"`
	Description    string          `json:"description"`
}

// UpdateProductRequest represents the product update payload.
// Stock is absent: it only moves through posted sales and purchases.
type UpdateProductRequest struct {
	Name           string          `json:"name" validate:"required"`
	CategoryID     string          `json:"category_id" validate:"required,uuid4"`
	Price          decimal.Decimal `json:"price" validate:"required"`
	AlertThreshold int             `json:"alert_threshold" validate:"gte=0"`
	Description    string          `json:"description"`
}

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CatalogHandler handles HTTP requests for products and categories
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product and category routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/recent", h.RecentProducts)
		r.Get("/search", h.SearchProducts)
		r.Put("/{id}", h.UpdateProduct)
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
	})
}

// CreateProduct adds a product to the catalog
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decodeValidated(w, r, h.logger, &req) {
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	product, err := h.catalogService.AddProduct(r.Context(), service.NewProductInput{
		Name:           req.Name,
		CategoryID:     categoryID,
		Price:          req.Price,
		Stock:          req.Stock,
		AlertThreshold: req.AlertThreshold,
		Description:    req.Description,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct edits a product's non-stock fields
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req UpdateProductRequest
	if !decodeValidated(w, r, h.logger, &req) {
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, service.UpdateProductInput{
		Name:           req.Name,
		CategoryID:     categoryID,
		Price:          req.Price,
		AlertThreshold: req.AlertThreshold,
		Description:    req.Description,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// ListProducts returns all products with category names, name ascending
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.ListProducts(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// RecentProducts returns the latest products
func (h *CatalogHandler) RecentProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.RecentProducts(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// SearchProducts matches products by product or category name
func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	products, err := h.catalogService.SearchProducts(r.Context(), query)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// CreateCategory adds a category
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !decodeValidated(w, r, h.logger, &req) {
		return
	}

	category, err := h.catalogService.AddCategory(r.Context(), req.Name)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Category created", zap.String("category_id", category.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// ListCategories returns all categories with their product counts
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}
