package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DashboardOverview is the headline numbers on the dashboard.
type DashboardOverview struct {
	TotalClients  int             `json:"total_clients"`
	TotalProducts int             `json:"total_products"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	LowStockItems int             `json:"low_stock_items"`
}

// SalesPoint is one bar of the sales-overview graph.
type SalesPoint struct {
	Date  time.Time       `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// StockDistribution counts products per stock band.
type StockDistribution struct {
	InStock    int `json:"in_stock"`
	LowStock   int `json:"low_stock"`
	OutOfStock int `json:"out_of_stock"`
}

// InventoryOverview is the headline numbers on the inventory page.
type InventoryOverview struct {
	TotalProducts  int             `json:"total_products"`
	LowStock       int             `json:"low_stock"`
	OutOfStock     int             `json:"out_of_stock"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
}

// LowStockProduct is one row of the dashboard's low-stock list.
type LowStockProduct struct {
	Name           string          `json:"name"`
	CategoryName   string          `json:"category"`
	Stock          int             `json:"stock"`
	AlertThreshold int             `json:"alert_threshold"`
	Price          decimal.Decimal `json:"price"`
}

// ReportRepository computes read-only aggregates from committed state. Every
// stock-band condition here mirrors stock.Classify exactly: out of stock is
// stock = 0, low is 0 < stock <= alert_threshold.
type ReportRepository interface {
	DashboardOverview(ctx context.Context) (*DashboardOverview, error)
	SalesOverview(ctx context.Context, limit int) ([]*SalesPoint, error)
	StockDistribution(ctx context.Context) (*StockDistribution, error)
	InventoryOverview(ctx context.Context) (*InventoryOverview, error)
	LowStockProducts(ctx context.Context, limit int) ([]*LowStockProduct, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) DashboardOverview(ctx context.Context) (*DashboardOverview, error) {
	overview := &DashboardOverview{}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM clients),
			(SELECT COUNT(*) FROM products),
			(SELECT COALESCE(SUM(total), 0) FROM sales),
			(SELECT COUNT(*) FROM products WHERE stock <= alert_threshold)
	`).Scan(
		&overview.TotalClients,
		&overview.TotalProducts,
		&overview.TotalSales,
		&overview.LowStockItems,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard overview: %w", err)
	}
	return overview, nil
}

// SalesOverview returns the totals of the last N sales in chronological
// order, ready for the bar graph.
func (r *reportRepository) SalesOverview(ctx context.Context, limit int) ([]*SalesPoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, total FROM (
			SELECT date, total, id
			FROM sales
			ORDER BY date DESC, id DESC
			LIMIT $1
		) recent
		ORDER BY date ASC, id ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales overview: %w", err)
	}
	defer rows.Close()

	points := []*SalesPoint{}
	for rows.Next() {
		point := &SalesPoint{}
		if err := rows.Scan(&point.Date, &point.Total); err != nil {
			return nil, fmt.Errorf("failed to scan sales point: %w", err)
		}
		points = append(points, point)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales points: %w", err)
	}

	return points, nil
}

func (r *reportRepository) StockDistribution(ctx context.Context) (*StockDistribution, error) {
	distribution := &StockDistribution{}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE stock > alert_threshold),
			COUNT(*) FILTER (WHERE stock > 0 AND stock <= alert_threshold),
			COUNT(*) FILTER (WHERE stock = 0)
		FROM products
	`).Scan(
		&distribution.InStock,
		&distribution.LowStock,
		&distribution.OutOfStock,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock distribution: %w", err)
	}
	return distribution, nil
}

func (r *reportRepository) InventoryOverview(ctx context.Context) (*InventoryOverview, error) {
	overview := &InventoryOverview{}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE stock > 0 AND stock <= alert_threshold),
			COUNT(*) FILTER (WHERE stock = 0),
			COALESCE(SUM(stock * price), 0)
		FROM products
	`).Scan(
		&overview.TotalProducts,
		&overview.LowStock,
		&overview.OutOfStock,
		&overview.InventoryValue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory overview: %w", err)
	}
	return overview, nil
}

// LowStockProducts returns low or out-of-stock products, emptiest first.
func (r *reportRepository) LowStockProducts(ctx context.Context, limit int) ([]*LowStockProduct, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.name, c.name, p.stock, p.alert_threshold, p.price
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.stock <= p.alert_threshold
		ORDER BY p.stock ASC, p.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock products: %w", err)
	}
	defer rows.Close()

	products := []*LowStockProduct{}
	for rows.Next() {
		product := &LowStockProduct{}
		err := rows.Scan(
			&product.Name,
			&product.CategoryName,
			&product.Stock,
			&product.AlertThreshold,
			&product.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan low stock product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating low stock products: %w", err)
	}

	return products, nil
}
