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

var ErrPurchaseNotFound = errors.New("purchase not found")

// PurchaseSummary is a purchase header for list views.
type PurchaseSummary struct {
	ID         uuid.UUID       `json:"id"`
	Supplier   string          `json:"supplier"`
	Date       time.Time       `json:"date"`
	Total      decimal.Decimal `json:"total"`
	ItemsCount int             `json:"items_count"`
}

// PurchaseDetail is a purchase header together with its line items.
type PurchaseDetail struct {
	domain.Purchase
	Items []PurchaseDetailItem `json:"items"`
}

// PurchaseDetailItem is a purchase line joined to its product name.
type PurchaseDetailItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// PurchaseRepository is the read side of purchases; writes go through the ledger.
type PurchaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseDetail, error)
	ListRecent(ctx context.Context, limit int) ([]*PurchaseSummary, error)
	Search(ctx context.Context, query string, limit int) ([]*PurchaseSummary, error)
}

type purchaseRepository struct {
	db *sql.DB
}

// NewPurchaseRepository creates a new instance of PurchaseRepository
func NewPurchaseRepository(db *sql.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

// FindByID retrieves a purchase header with its items and product names
func (r *purchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*PurchaseDetail, error) {
	detail := &PurchaseDetail{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, supplier, date, total, items_count
		FROM purchases
		WHERE id = $1
	`, id).Scan(
		&detail.ID,
		&detail.Supplier,
		&detail.Date,
		&detail.Total,
		&detail.ItemsCount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to find purchase: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT i.product_id, p.name, i.quantity, i.unit_price
		FROM purchase_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.purchase_id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase items: %w", err)
	}
	defer rows.Close()

	detail.Items = []PurchaseDetailItem{}
	for rows.Next() {
		item := PurchaseDetailItem{}
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan purchase item: %w", err)
		}
		item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		detail.Items = append(detail.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase items: %w", err)
	}

	return detail, nil
}

// ListRecent retrieves the most recent purchases, newest first
func (r *purchaseRepository) ListRecent(ctx context.Context, limit int) ([]*PurchaseSummary, error) {
	query := `
		SELECT id, supplier, date, total, items_count
		FROM purchases
		ORDER BY date DESC, id DESC
		LIMIT $1
	`
	return r.querySummaries(ctx, query, limit)
}

// Search matches purchases by supplier name, case-insensitive
func (r *purchaseRepository) Search(ctx context.Context, query string, limit int) ([]*PurchaseSummary, error) {
	searchPattern := "%" + query + "%"
	sqlQuery := `
		SELECT id, supplier, date, total, items_count
		FROM purchases
		WHERE supplier ILIKE $1
		ORDER BY date DESC, id DESC
		LIMIT $2
	`
	return r.querySummaries(ctx, sqlQuery, searchPattern, limit)
}

func (r *purchaseRepository) querySummaries(ctx context.Context, query string, args ...interface{}) ([]*PurchaseSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	purchases := []*PurchaseSummary{}
	for rows.Next() {
		purchase := &PurchaseSummary{}
		if err := rows.Scan(&purchase.ID, &purchase.Supplier, &purchase.Date, &purchase.Total, &purchase.ItemsCount); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, purchase)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchases: %w", err)
	}

	return purchases, nil
}
