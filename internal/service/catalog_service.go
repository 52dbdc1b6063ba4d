package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"stock-manager/internal/domain"
	"stock-manager/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewProductInput carries the fields of a product to create.
type NewProductInput struct {
	Name           string
	CategoryID     uuid.UUID
	Price          decimal.Decimal
	Stock          int
	AlertThreshold int
	Description    string
}

// UpdateProductInput carries the editable fields of an existing product.
// Stock is absent on purpose: it only moves through posted sales/purchases.
type UpdateProductInput struct {
	Name           string
	CategoryID     uuid.UUID
	Price          decimal.Decimal
	AlertThreshold int
	Description    string
}

// CatalogService manages products and categories.
type CatalogService interface {
	AddCategory(ctx context.Context, name string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.CategorySummary, error)
	AddProduct(ctx context.Context, input NewProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*repository.ProductWithCategory, error)
	RecentProducts(ctx context.Context) ([]*repository.ProductWithCategory, error)
	SearchProducts(ctx context.Context, query string) ([]*repository.ProductWithCategory, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// AddCategory creates a category with a unique name
func (s *catalogService) AddCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErrorf("category name is required")
	}

	category := &domain.Category{
		ID:   uuid.New(),
		Name: name,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.CategorySummary, error) {
	return s.categoryRepo.List(ctx)
}

// AddProduct creates a product after checking its category exists
func (s *catalogService) AddProduct(ctx context.Context, input NewProductInput) (*domain.Product, error) {
	if err := validateProductFields(input.Name, input.Price, input.AlertThreshold); err != nil {
		return nil, err
	}
	if input.Stock < 0 {
		return nil, validationErrorf("stock must not be negative")
	}

	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(input.Name),
		CategoryID:     input.CategoryID,
		Price:          input.Price,
		Stock:          input.Stock,
		AlertThreshold: input.AlertThreshold,
		Description:    input.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// UpdateProduct edits a product's catalog fields, leaving stock untouched
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error) {
	if err := validateProductFields(input.Name, input.Price, input.AlertThreshold); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.CategoryID = input.CategoryID
	product.Price = input.Price
	product.AlertThreshold = input.AlertThreshold
	product.Description = input.Description
	product.UpdatedAt = time.Now().UTC()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]*repository.ProductWithCategory, error) {
	return s.productRepo.ListAll(ctx)
}

func (s *catalogService) RecentProducts(ctx context.Context) ([]*repository.ProductWithCategory, error) {
	return s.productRepo.ListRecent(ctx, recentListLimit)
}

func (s *catalogService) SearchProducts(ctx context.Context, query string) ([]*repository.ProductWithCategory, error) {
	return s.productRepo.Search(ctx, query, recentListLimit)
}

func validateProductFields(name string, price decimal.Decimal, alertThreshold int) error {
	if strings.TrimSpace(name) == "" {
		return validationErrorf("product name is required")
	}
	if !price.IsPositive() {
		return validationErrorf("price must be positive")
	}
	if alertThreshold < 0 {
		return validationErrorf("alert threshold must not be negative")
	}
	return nil
}

// IsDuplicate reports whether err is any of the uniqueness sentinels, so
// handlers can map them to a single conflict response.
func IsDuplicate(err error) bool {
	return errors.Is(err, repository.ErrProductAlreadyExists) ||
		errors.Is(err, repository.ErrCategoryAlreadyExists) ||
		errors.Is(err, repository.ErrClientAlreadyExists) ||
		errors.Is(err, repository.ErrUserAlreadyExists)
}
