package repository

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"testing"
	"time"

	"stock-manager/internal/database"
	"stock-manager/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	// The real schema, via the real migration runner
	if err := database.RunMigrations(testDB, "../../migrations", zap.NewNop()); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func wipePostings(t *testing.T) {
	t.Helper()
	for _, table := range []string{"sale_items", "sales", "purchase_items", "purchases", "products", "clients", "categories"} {
		_, err := testDB.Exec("DELETE FROM " + table)
		require.NoError(t, err)
	}
}

func seedProduct(t *testing.T, name string, price string, stock, threshold int) *domain.Product {
	t.Helper()

	categoryRepo := NewCategoryRepository(testDB)
	category := &domain.Category{ID: uuid.New(), Name: name + " category"}
	require.NoError(t, categoryRepo.Create(context.Background(), category))

	product := &domain.Product{
		ID:             uuid.New(),
		Name:           name,
		CategoryID:     category.ID,
		Price:          decimal.RequireFromString(price),
		Stock:          stock,
		AlertThreshold: threshold,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	require.NoError(t, NewProductRepository(testDB).Create(context.Background(), product))
	return product
}

func seedClient(t *testing.T, name string) *domain.Client {
	t.Helper()

	client := &domain.Client{
		ID:        uuid.New(),
		Name:      name,
		Email:     name + "@example.com",
		Phone:     "555-" + uuid.NewString()[:8],
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, NewClientRepository(testDB).Create(context.Background(), client))
	return client
}

func TestPostedSaleRoundTrip(t *testing.T) {
	wipePostings(t)
	ctx := context.Background()

	product := seedProduct(t, "Widget", "10.00", 100, 5)
	client := seedClient(t, "acme")

	ledger := NewLedgerRepository(testDB)
	tx, err := ledger.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	locked, err := tx.GetProductForUpdate(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, locked.Stock)

	require.NoError(t, tx.UpdateProductStock(ctx, product.ID, 98))

	sale := &domain.Sale{
		ID:         uuid.New(),
		ClientID:   client.ID,
		Date:       time.Now().UTC(),
		Total:      decimal.RequireFromString("20.00"),
		ItemsCount: 2,
	}
	require.NoError(t, tx.InsertSale(ctx, sale))
	require.NoError(t, tx.InsertSaleItems(ctx, []domain.SaleItem{{
		ID:        uuid.New(),
		SaleID:    sale.ID,
		ProductID: product.ID,
		Quantity:  2,
		Price:     product.Price,
	}}))
	require.NoError(t, tx.Commit())

	// Read side sees the committed sale
	detail, err := NewSaleRepository(testDB).FindByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, client.Name, detail.ClientName)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "Widget", detail.Items[0].ProductName)
	assert.True(t, detail.Items[0].Subtotal.Equal(decimal.RequireFromString("20.00")))

	stored, err := NewProductRepository(testDB).FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 98, stored.Stock)
}

func TestDashboardReflectsSaleExactlyOnce(t *testing.T) {
	wipePostings(t)
	ctx := context.Background()

	product := seedProduct(t, "Gadget", "5.00", 10, 3)
	client := seedClient(t, "globex")

	reports := NewReportRepository(testDB)

	before, err := reports.DashboardOverview(ctx)
	require.NoError(t, err)
	assert.True(t, before.TotalSales.IsZero())

	ledger := NewLedgerRepository(testDB)
	tx, err := ledger.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, tx.UpdateProductStock(ctx, product.ID, 7))
	sale := &domain.Sale{
		ID:         uuid.New(),
		ClientID:   client.ID,
		Date:       time.Now().UTC(),
		Total:      decimal.RequireFromString("15.00"),
		ItemsCount: 3,
	}
	require.NoError(t, tx.InsertSale(ctx, sale))
	require.NoError(t, tx.InsertSaleItems(ctx, []domain.SaleItem{{
		ID:        uuid.New(),
		SaleID:    sale.ID,
		ProductID: product.ID,
		Quantity:  3,
		Price:     product.Price,
	}}))
	require.NoError(t, tx.Commit())

	after, err := reports.DashboardOverview(ctx)
	require.NoError(t, err)
	assert.True(t, after.TotalSales.Equal(decimal.RequireFromString("15.00")),
		"expected dashboard total 15.00, got %s", after.TotalSales)

	points, err := reports.SalesOverview(ctx, 7)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.True(t, points[0].Total.Equal(sale.Total))
}

func TestRolledBackPostingLeavesNoTrace(t *testing.T) {
	wipePostings(t)
	ctx := context.Background()

	product := seedProduct(t, "Sprocket", "2.50", 4, 2)
	client := seedClient(t, "initech")

	ledger := NewLedgerRepository(testDB)
	tx, err := ledger.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.UpdateProductStock(ctx, product.ID, 1))
	sale := &domain.Sale{
		ID:         uuid.New(),
		ClientID:   client.ID,
		Date:       time.Now().UTC(),
		Total:      decimal.RequireFromString("7.50"),
		ItemsCount: 3,
	}
	require.NoError(t, tx.InsertSale(ctx, sale))
	require.NoError(t, tx.Rollback())

	stored, err := NewProductRepository(testDB).FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Stock)

	_, err = NewSaleRepository(testDB).FindByID(ctx, sale.ID)
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

// Two transactions lock the same product row; the second must observe the
// first one's committed stock, not the stale value it would have read
// without FOR UPDATE.
func TestRowLockSerializesConcurrentPostings(t *testing.T) {
	wipePostings(t)
	ctx := context.Background()

	product := seedProduct(t, "Doohickey", "1.00", 10, 2)
	ledger := NewLedgerRepository(testDB)

	sellSix := func() (bool, error) {
		tx, err := ledger.Begin(ctx)
		if err != nil {
			return false, err
		}
		defer tx.Rollback()

		locked, err := tx.GetProductForUpdate(ctx, product.ID)
		if err != nil {
			return false, err
		}

		if locked.Stock < 6 {
			return false, nil
		}
		if err := tx.UpdateProductStock(ctx, product.ID, locked.Stock-6); err != nil {
			return false, err
		}
		return true, tx.Commit()
	}

	var wg sync.WaitGroup
	results := make([]bool, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = sellSix()
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i, ok := range results {
		require.NoError(t, errs[i])
		if ok {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "only one of two 6-unit sales can fit in stock 10")

	stored, err := NewProductRepository(testDB).FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Stock)
}

func TestFilterByStockMirrorsClassification(t *testing.T) {
	wipePostings(t)
	ctx := context.Background()

	seedProduct(t, "Plenty", "1.00", 50, 5)
	seedProduct(t, "Scarce", "1.00", 3, 5)
	seedProduct(t, "Boundary", "1.00", 5, 5)
	seedProduct(t, "Gone", "1.00", 0, 5)

	repo := NewProductRepository(testDB)

	low, err := repo.FilterByStock(ctx, StockFilterLow, 10)
	require.NoError(t, err)
	names := productNames(low)
	assert.ElementsMatch(t, []string{"Scarce", "Boundary"}, names, "stock equal to threshold is low, zero is not")

	out, err := repo.FilterByStock(ctx, StockFilterOut, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Gone"}, productNames(out))

	all, err := repo.FilterByStock(ctx, StockFilterAll, 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	distribution, err := NewReportRepository(testDB).StockDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, distribution.InStock)
	assert.Equal(t, 2, distribution.LowStock)
	assert.Equal(t, 1, distribution.OutOfStock)
}

func productNames(products []*ProductWithCategory) []string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return names
}
