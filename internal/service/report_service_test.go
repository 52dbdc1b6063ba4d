package service

import (
	"context"
	"testing"

	"stock-manager/internal/cache"
	"stock-manager/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Counting report repository: every call that reaches the database bumps a
// counter, so cache hits are observable.
type countingReportRepository struct {
	calls    int
	overview repository.DashboardOverview
}

func (m *countingReportRepository) DashboardOverview(ctx context.Context) (*repository.DashboardOverview, error) {
	m.calls++
	copied := m.overview
	return &copied, nil
}

func (m *countingReportRepository) SalesOverview(ctx context.Context, limit int) ([]*repository.SalesPoint, error) {
	m.calls++
	return []*repository.SalesPoint{}, nil
}

func (m *countingReportRepository) StockDistribution(ctx context.Context) (*repository.StockDistribution, error) {
	m.calls++
	return &repository.StockDistribution{}, nil
}

func (m *countingReportRepository) InventoryOverview(ctx context.Context) (*repository.InventoryOverview, error) {
	m.calls++
	return &repository.InventoryOverview{}, nil
}

func (m *countingReportRepository) LowStockProducts(ctx context.Context, limit int) ([]*repository.LowStockProduct, error) {
	m.calls++
	return []*repository.LowStockProduct{}, nil
}

type stubSaleRepository struct{}

func (stubSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*repository.SaleDetail, error) {
	return nil, repository.ErrSaleNotFound
}

func (stubSaleRepository) ListRecent(ctx context.Context, limit int) ([]*repository.SaleSummary, error) {
	return []*repository.SaleSummary{}, nil
}

func (stubSaleRepository) Search(ctx context.Context, query string, limit int) ([]*repository.SaleSummary, error) {
	return []*repository.SaleSummary{}, nil
}

type stubPurchaseRepository struct{}

func (stubPurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*repository.PurchaseDetail, error) {
	return nil, repository.ErrPurchaseNotFound
}

func (stubPurchaseRepository) ListRecent(ctx context.Context, limit int) ([]*repository.PurchaseSummary, error) {
	return []*repository.PurchaseSummary{}, nil
}

func (stubPurchaseRepository) Search(ctx context.Context, query string, limit int) ([]*repository.PurchaseSummary, error) {
	return []*repository.PurchaseSummary{}, nil
}

func newTestReportService(t *testing.T, reportRepo repository.ReportRepository, c cache.Cache) ReportService {
	t.Helper()
	return NewReportService(
		reportRepo,
		stubSaleRepository{},
		stubPurchaseRepository{},
		&memProductRepository{store: newMemStore()},
		c,
		zap.NewNop(),
	)
}

func miniredisCache(t *testing.T) cache.Cache {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return cache.NewRedis(client)
}

func TestDashboardOverviewIsServedFromCache(t *testing.T) {
	repo := &countingReportRepository{overview: repository.DashboardOverview{
		TotalClients:  4,
		TotalProducts: 12,
		TotalSales:    decimal.RequireFromString("99.50"),
		LowStockItems: 2,
	}}
	svc := newTestReportService(t, repo, miniredisCache(t))
	ctx := context.Background()

	first, err := svc.DashboardOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)

	second, err := svc.DashboardOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls, "second read must come from the cache")

	assert.Equal(t, first.TotalClients, second.TotalClients)
	assert.True(t, first.TotalSales.Equal(second.TotalSales))
}

func TestInvalidateReportsForcesReload(t *testing.T) {
	repo := &countingReportRepository{}
	svc := newTestReportService(t, repo, miniredisCache(t))
	ctx := context.Background()

	_, err := svc.DashboardOverview(ctx)
	require.NoError(t, err)
	_, err = svc.StockDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)

	svc.InvalidateReports(ctx)

	_, err = svc.DashboardOverview(ctx)
	require.NoError(t, err)
	_, err = svc.StockDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, repo.calls, "invalidation must drop every report key")
}

func TestReportsWorkWithoutRedis(t *testing.T) {
	repo := &countingReportRepository{}
	svc := newTestReportService(t, repo, &cache.Noop{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.DashboardOverview(ctx)
		require.NoError(t, err)
	}

	// Every read goes to the database when caching is disabled
	assert.Equal(t, 3, repo.calls)
}
