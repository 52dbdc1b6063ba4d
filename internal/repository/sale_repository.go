package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stock-manager/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrSaleNotFound = errors.New("sale not found")

// SaleSummary is a sale joined to its client's name for list views.
type SaleSummary struct {
	ID         uuid.UUID       `json:"id"`
	ClientName string          `json:"client"`
	Date       time.Time       `json:"date"`
	Total      decimal.Decimal `json:"total_price"`
	ItemsCount int             `json:"total_items"`
}

// SaleDetail is a sale header together with its line items.
type SaleDetail struct {
	domain.Sale
	ClientName string           `json:"client"`
	Items      []SaleDetailItem `json:"items"`
}

// SaleDetailItem is a sale line joined to its product name.
type SaleDetailItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleRepository is the read side of sales; writes go through the ledger.
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SaleDetail, error)
	ListRecent(ctx context.Context, limit int) ([]*SaleSummary, error)
	Search(ctx context.Context, query string, limit int) ([]*SaleSummary, error)
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

// FindByID retrieves a sale header with its items and product names
func (r *saleRepository) FindByID(ctx context.Context, id uuid.UUID) (*SaleDetail, error) {
	detail := &SaleDetail{}
	err := r.db.QueryRowContext(ctx, `
		SELECT s.id, s.client_id, s.date, s.total, s.items_count, c.name
		FROM sales s
		JOIN clients c ON c.id = s.client_id
		WHERE s.id = $1
	`, id).Scan(
		&detail.ID,
		&detail.ClientID,
		&detail.Date,
		&detail.Total,
		&detail.ItemsCount,
		&detail.ClientName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT i.product_id, p.name, i.quantity, i.price
		FROM sale_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.sale_id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale items: %w", err)
	}
	defer rows.Close()

	detail.Items = []SaleDetailItem{}
	for rows.Next() {
		item := SaleDetailItem{}
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		item.Subtotal = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		detail.Items = append(detail.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale items: %w", err)
	}

	return detail, nil
}

// ListRecent retrieves the most recent sales, newest first
func (r *saleRepository) ListRecent(ctx context.Context, limit int) ([]*SaleSummary, error) {
	query := `
		SELECT s.id, c.name, s.date, s.total, s.items_count
		FROM sales s
		JOIN clients c ON c.id = s.client_id
		ORDER BY s.date DESC, s.id DESC
		LIMIT $1
	`
	return r.querySummaries(ctx, query, limit)
}

// Search matches sales by client name or email, case-insensitive
func (r *saleRepository) Search(ctx context.Context, query string, limit int) ([]*SaleSummary, error) {
	searchPattern := "%" + query + "%"
	sqlQuery := `
		SELECT s.id, c.name, s.date, s.total, s.items_count
		FROM sales s
		JOIN clients c ON c.id = s.client_id
		WHERE c.name ILIKE $1 OR c.email ILIKE $1 OR s.id::text ILIKE $1
		ORDER BY s.date DESC, s.id DESC
		LIMIT $2
	`
	return r.querySummaries(ctx, sqlQuery, searchPattern, limit)
}

func (r *saleRepository) querySummaries(ctx context.Context, query string, args ...interface{}) ([]*SaleSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	sales := []*SaleSummary{}
	for rows.Next() {
		sale := &SaleSummary{}
		if err := rows.Scan(&sale.ID, &sale.ClientName, &sale.Date, &sale.Total, &sale.ItemsCount); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	return sales, nil
}
