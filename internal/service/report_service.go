package service

import (
	"context"
	"fmt"
	"time"

	"stock-manager/internal/cache"
	"stock-manager/internal/repository"
	"stock-manager/internal/stock"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cache TTLs follow how volatile each view is: recent sales churn fastest,
// the sales graph slowest.
const (
	overviewTTL     = 60 * time.Second
	salesGraphTTL   = 120 * time.Second
	recentSalesTTL  = 30 * time.Second
	distributionTTL = 60 * time.Second

	reportKeyPrefix = "report:"
)

// InventoryRow is a product with its derived stock status, as shown on the
// inventory screens.
type InventoryRow struct {
	*repository.ProductWithCategory
	Status string `json:"status"`
}

// ReportService is the read-only reporting layer: dashboard aggregates,
// inventory views, and sale/purchase history. Results reflect committed
// state only; a cache miss is always answered from the database.
type ReportService interface {
	DashboardOverview(ctx context.Context) (*repository.DashboardOverview, error)
	SalesOverview(ctx context.Context) ([]*repository.SalesPoint, error)
	StockDistribution(ctx context.Context) (*repository.StockDistribution, error)
	RecentSalesForDashboard(ctx context.Context) ([]*repository.SaleSummary, error)
	LowStockProducts(ctx context.Context) ([]*repository.LowStockProduct, error)

	InventoryOverview(ctx context.Context) (*repository.InventoryOverview, error)
	FilterInventory(ctx context.Context, filter repository.StockFilter) ([]*InventoryRow, error)
	SearchInventory(ctx context.Context, query string) ([]*InventoryRow, error)

	RecentSales(ctx context.Context) ([]*repository.SaleSummary, error)
	SearchSales(ctx context.Context, query string) ([]*repository.SaleSummary, error)
	SaleDetails(ctx context.Context, id uuid.UUID) (*repository.SaleDetail, error)
	RecentPurchases(ctx context.Context) ([]*repository.PurchaseSummary, error)
	SearchPurchases(ctx context.Context, query string) ([]*repository.PurchaseSummary, error)
	PurchaseDetails(ctx context.Context, id uuid.UUID) (*repository.PurchaseDetail, error)

	// InvalidateReports drops every cached report; called after a posting
	// commits so aggregates never serve pre-posting numbers past the TTL.
	InvalidateReports(ctx context.Context)
}

const (
	recentListLimit    = 7
	dashboardListLimit = 5
)

type reportService struct {
	reportRepo   repository.ReportRepository
	saleRepo     repository.SaleRepository
	purchaseRepo repository.PurchaseRepository
	productRepo  repository.ProductRepository
	cache        cache.Cache
	logger       *zap.Logger
}

// NewReportService creates a new instance of ReportService
func NewReportService(
	reportRepo repository.ReportRepository,
	saleRepo repository.SaleRepository,
	purchaseRepo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
	c cache.Cache,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		reportRepo:   reportRepo,
		saleRepo:     saleRepo,
		purchaseRepo: purchaseRepo,
		productRepo:  productRepo,
		cache:        c,
		logger:       logger,
	}
}

// cached runs load on a cache miss and stores the result. Cache failures are
// logged and treated as misses; reporting never fails because Redis did.
func cached[T any](s *reportService, ctx context.Context, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var result T

	hit, err := s.cache.Get(ctx, key, &result)
	if err != nil {
		s.logger.Warn("Report cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		return result, nil
	}

	result, err = load()
	if err != nil {
		return result, err
	}

	if err := s.cache.Set(ctx, key, result, ttl); err != nil {
		s.logger.Warn("Report cache write failed", zap.String("key", key), zap.Error(err))
	}

	return result, nil
}

func (s *reportService) DashboardOverview(ctx context.Context) (*repository.DashboardOverview, error) {
	return cached(s, ctx, reportKeyPrefix+"dashboard:overview", overviewTTL, func() (*repository.DashboardOverview, error) {
		return s.reportRepo.DashboardOverview(ctx)
	})
}

func (s *reportService) SalesOverview(ctx context.Context) ([]*repository.SalesPoint, error) {
	return cached(s, ctx, reportKeyPrefix+"dashboard:sales-overview", salesGraphTTL, func() ([]*repository.SalesPoint, error) {
		return s.reportRepo.SalesOverview(ctx, recentListLimit)
	})
}

func (s *reportService) StockDistribution(ctx context.Context) (*repository.StockDistribution, error) {
	return cached(s, ctx, reportKeyPrefix+"dashboard:inventory-distribution", distributionTTL, func() (*repository.StockDistribution, error) {
		return s.reportRepo.StockDistribution(ctx)
	})
}

func (s *reportService) RecentSalesForDashboard(ctx context.Context) ([]*repository.SaleSummary, error) {
	return cached(s, ctx, reportKeyPrefix+"dashboard:recent-sales", recentSalesTTL, func() ([]*repository.SaleSummary, error) {
		return s.saleRepo.ListRecent(ctx, dashboardListLimit)
	})
}

func (s *reportService) LowStockProducts(ctx context.Context) ([]*repository.LowStockProduct, error) {
	return cached(s, ctx, reportKeyPrefix+"dashboard:low-stock", overviewTTL, func() ([]*repository.LowStockProduct, error) {
		return s.reportRepo.LowStockProducts(ctx, dashboardListLimit)
	})
}

func (s *reportService) InventoryOverview(ctx context.Context) (*repository.InventoryOverview, error) {
	return cached(s, ctx, reportKeyPrefix+"inventory:overview", overviewTTL, func() (*repository.InventoryOverview, error) {
		return s.reportRepo.InventoryOverview(ctx)
	})
}

func (s *reportService) FilterInventory(ctx context.Context, filter repository.StockFilter) ([]*InventoryRow, error) {
	key := fmt.Sprintf("%sinventory:filter:%s", reportKeyPrefix, filter)
	return cached(s, ctx, key, recentSalesTTL, func() ([]*InventoryRow, error) {
		products, err := s.productRepo.FilterByStock(ctx, filter, recentListLimit)
		if err != nil {
			return nil, err
		}
		return toInventoryRows(products), nil
	})
}

// SearchInventory is not cached: the key space of free-text queries is
// unbounded.
func (s *reportService) SearchInventory(ctx context.Context, query string) ([]*InventoryRow, error) {
	products, err := s.productRepo.Search(ctx, query, recentListLimit)
	if err != nil {
		return nil, err
	}
	return toInventoryRows(products), nil
}

func (s *reportService) RecentSales(ctx context.Context) ([]*repository.SaleSummary, error) {
	return cached(s, ctx, reportKeyPrefix+"sales:recent", recentSalesTTL, func() ([]*repository.SaleSummary, error) {
		return s.saleRepo.ListRecent(ctx, recentListLimit)
	})
}

func (s *reportService) SearchSales(ctx context.Context, query string) ([]*repository.SaleSummary, error) {
	return s.saleRepo.Search(ctx, query, recentListLimit)
}

func (s *reportService) SaleDetails(ctx context.Context, id uuid.UUID) (*repository.SaleDetail, error) {
	return s.saleRepo.FindByID(ctx, id)
}

func (s *reportService) RecentPurchases(ctx context.Context) ([]*repository.PurchaseSummary, error) {
	return cached(s, ctx, reportKeyPrefix+"purchases:recent", recentSalesTTL, func() ([]*repository.PurchaseSummary, error) {
		return s.purchaseRepo.ListRecent(ctx, recentListLimit)
	})
}

func (s *reportService) SearchPurchases(ctx context.Context, query string) ([]*repository.PurchaseSummary, error) {
	return s.purchaseRepo.Search(ctx, query, recentListLimit)
}

func (s *reportService) PurchaseDetails(ctx context.Context, id uuid.UUID) (*repository.PurchaseDetail, error) {
	return s.purchaseRepo.FindByID(ctx, id)
}

func (s *reportService) InvalidateReports(ctx context.Context) {
	if err := s.cache.InvalidatePattern(ctx, reportKeyPrefix+"*"); err != nil {
		s.logger.Warn("Report cache invalidation failed", zap.Error(err))
	}
}

func toInventoryRows(products []*repository.ProductWithCategory) []*InventoryRow {
	rows := make([]*InventoryRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, &InventoryRow{
			ProductWithCategory: p,
			Status:              stock.Classify(p.Stock, p.AlertThreshold).Label(),
		})
	}
	return rows
}
