package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"stock-manager/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this name already exists")
)

// ProductWithCategory joins a product to its category name for list views.
type ProductWithCategory struct {
	domain.Product
	CategoryName string `json:"category"`
}

// StockFilter selects which stock band an inventory listing covers.
type StockFilter string

const (
	StockFilterAll StockFilter = "all"
	StockFilterLow StockFilter = "low"
	StockFilterOut StockFilter = "out"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	ListAll(ctx context.Context) ([]*ProductWithCategory, error)
	ListRecent(ctx context.Context, limit int) ([]*ProductWithCategory, error)
	Search(ctx context.Context, query string, limit int) ([]*ProductWithCategory, error)
	FilterByStock(ctx context.Context, filter StockFilter, limit int) ([]*ProductWithCategory, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = "id, name, category_id, price, stock, alert_threshold, description, created_at, updated_at"

func scanProduct(row *sql.Row) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.CategoryID,
		&product.Price,
		&product.Stock,
		&product.AlertThreshold,
		&product.Description,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	return product, nil
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, category_id, price, stock, alert_threshold, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.CategoryID,
		product.Price,
		product.Stock,
		product.AlertThreshold,
		product.Description,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update edits a product's catalog fields. Stock is deliberately excluded:
// stock only moves through posted sales and purchases.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, category_id = $3, price = $4, alert_threshold = $5,
		    description = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.CategoryID,
		product.Price,
		product.AlertThreshold,
		product.Description,
		product.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns)
	return scanProduct(r.db.QueryRowContext(ctx, query, id))
}

// FindByName retrieves a product by its unique name
func (r *productRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE name = $1", productColumns)
	return scanProduct(r.db.QueryRowContext(ctx, query, name))
}

// ListAll retrieves every product with its category name, ordered by name
func (r *productRepository) ListAll(ctx context.Context) ([]*ProductWithCategory, error) {
	query := `
		SELECT p.id, p.name, p.category_id, p.price, p.stock, p.alert_threshold,
		       p.description, p.created_at, p.updated_at, c.name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		ORDER BY p.name ASC
	`
	return r.queryProducts(ctx, query)
}

// ListRecent retrieves the most recently added products
func (r *productRepository) ListRecent(ctx context.Context, limit int) ([]*ProductWithCategory, error) {
	query := `
		SELECT p.id, p.name, p.category_id, p.price, p.stock, p.alert_threshold,
		       p.description, p.created_at, p.updated_at, c.name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1
	`
	return r.queryProducts(ctx, query, limit)
}

// Search matches products by product or category name, case-insensitive
func (r *productRepository) Search(ctx context.Context, query string, limit int) ([]*ProductWithCategory, error) {
	if strings.TrimSpace(query) == "" {
		return r.ListRecent(ctx, limit)
	}

	searchPattern := "%" + query + "%"
	sqlQuery := `
		SELECT p.id, p.name, p.category_id, p.price, p.stock, p.alert_threshold,
		       p.description, p.created_at, p.updated_at, c.name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.name ILIKE $1 OR c.name ILIKE $1
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2
	`
	return r.queryProducts(ctx, sqlQuery, searchPattern, limit)
}

// FilterByStock lists products in a stock band. The WHERE clauses mirror
// stock.Classify: out is stock = 0, low is 0 < stock <= alert_threshold.
func (r *productRepository) FilterByStock(ctx context.Context, filter StockFilter, limit int) ([]*ProductWithCategory, error) {
	var where string
	switch filter {
	case StockFilterLow:
		where = "WHERE p.stock > 0 AND p.stock <= p.alert_threshold"
	case StockFilterOut:
		where = "WHERE p.stock = 0"
	default:
		where = ""
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.name, p.category_id, p.price, p.stock, p.alert_threshold,
		       p.description, p.created_at, p.updated_at, c.name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		%s
		ORDER BY p.id DESC
		LIMIT $1
	`, where)

	return r.queryProducts(ctx, query, limit)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*ProductWithCategory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*ProductWithCategory{}
	for rows.Next() {
		p := &ProductWithCategory{}
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.CategoryID,
			&p.Price,
			&p.Stock,
			&p.AlertThreshold,
			&p.Description,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.CategoryName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
