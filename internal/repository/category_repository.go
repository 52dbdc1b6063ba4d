package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stock-manager/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	List(ctx context.Context) ([]*domain.CategorySummary, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	FindByName(ctx context.Context, name string) (*domain.Category, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a new category into the database using parameterized queries
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `INSERT INTO categories (id, name) VALUES ($1, $2)`

	_, err := r.db.ExecContext(ctx, query, category.ID, category.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// List retrieves all categories with their product counts, ordered by name
func (r *categoryRepository) List(ctx context.Context) ([]*domain.CategorySummary, error) {
	query := `
		SELECT c.id, c.name, COUNT(p.id)
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY c.name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.CategorySummary{}
	for rows.Next() {
		category := &domain.CategorySummary{}
		if err := rows.Scan(&category.ID, &category.Name, &category.ProductCount); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// FindByID retrieves a category by ID using parameterized queries
func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return r.findOne(ctx, `SELECT id, name FROM categories WHERE id = $1`, id)
}

// FindByName retrieves a category by its unique name
func (r *categoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.findOne(ctx, `SELECT id, name FROM categories WHERE name = $1`, name)
}

func (r *categoryRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Category, error) {
	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&category.ID, &category.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return category, nil
}
