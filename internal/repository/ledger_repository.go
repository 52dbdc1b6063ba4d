package repository

import (
	"context"
	"database/sql"
	"fmt"

	"stock-manager/internal/domain"

	"github.com/google/uuid"
)

// LedgerRepository opens the unit of work a sale or purchase is posted in.
// The posting service is its only consumer; nothing else writes stock.
type LedgerRepository interface {
	Begin(ctx context.Context) (LedgerTx, error)
}

// LedgerTx is one all-or-nothing posting. GetProductForUpdate takes a row
// lock on the product, so two concurrent postings against the same product
// serialize at the database rather than in the application. Rollback after
// Commit is a no-op, which makes `defer tx.Rollback()` safe.
type LedgerTx interface {
	GetProductForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	UpdateProductStock(ctx context.Context, id uuid.UUID, stock int) error
	InsertSale(ctx context.Context, sale *domain.Sale) error
	InsertSaleItems(ctx context.Context, items []domain.SaleItem) error
	InsertPurchase(ctx context.Context, purchase *domain.Purchase) error
	InsertPurchaseItems(ctx context.Context, items []domain.PurchaseItem) error
	Commit() error
	Rollback() error
}

type ledgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new instance of LedgerRepository
func NewLedgerRepository(db *sql.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Begin(ctx context.Context) (LedgerTx, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin posting transaction: %w", err)
	}
	return &ledgerTx{tx: tx}, nil
}

type ledgerTx struct {
	tx *sql.Tx
}

// GetProductForUpdate reads a product and locks its row for the remainder of
// the transaction.
func (t *ledgerTx) GetProductForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, category_id, price, stock, alert_threshold, description, created_at, updated_at
		FROM products
		WHERE id = $1
		FOR UPDATE
	`

	product := &domain.Product{}
	err := t.tx.QueryRowContext(ctx, query, id).Scan(
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
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	return product, nil
}

func (t *ledgerTx) UpdateProductStock(ctx context.Context, id uuid.UUID, stock int) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET stock = $2, updated_at = NOW()
		WHERE id = $1
	`, id, stock)
	if err != nil {
		return fmt.Errorf("failed to update product stock: %w", err)
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

func (t *ledgerTx) InsertSale(ctx context.Context, sale *domain.Sale) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO sales (id, client_id, date, total, items_count)
		VALUES ($1, $2, $3, $4, $5)
	`, sale.ID, sale.ClientID, sale.Date, sale.Total, sale.ItemsCount)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return nil
}

func (t *ledgerTx) InsertSaleItems(ctx context.Context, items []domain.SaleItem) error {
	for _, item := range items {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO sale_items (id, sale_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, item.SaleID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return fmt.Errorf("failed to insert sale item: %w", err)
		}
	}
	return nil
}

func (t *ledgerTx) InsertPurchase(ctx context.Context, purchase *domain.Purchase) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO purchases (id, supplier, date, total, items_count)
		VALUES ($1, $2, $3, $4, $5)
	`, purchase.ID, purchase.Supplier, purchase.Date, purchase.Total, purchase.ItemsCount)
	if err != nil {
		return fmt.Errorf("failed to insert purchase: %w", err)
	}
	return nil
}

func (t *ledgerTx) InsertPurchaseItems(ctx context.Context, items []domain.PurchaseItem) error {
	for _, item := range items {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO purchase_items (id, purchase_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, item.PurchaseID, item.ProductID, item.Quantity, item.UnitPrice)
		if err != nil {
			return fmt.Errorf("failed to insert purchase item: %w", err)
		}
	}
	return nil
}

func (t *ledgerTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit posting transaction: %w", err)
	}
	return nil
}

func (t *ledgerTx) Rollback() error {
	err := t.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}
