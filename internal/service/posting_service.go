package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-manager/internal/domain"
	"stock-manager/internal/repository"
	"stock-manager/internal/stock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLine is one requested product line of a sale. The unit price is not
// part of the request: it is snapshotted from the catalog inside the posting
// transaction.
type SaleLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// PurchaseLine is one requested product line of a purchase, priced at what
// the supplier charged.
type PurchaseLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// SaleReceipt is the result of a successfully posted sale.
type SaleReceipt struct {
	SaleID     uuid.UUID
	TotalItems int
	TotalPrice decimal.Decimal
}

// PurchaseReceipt is the result of a successfully posted purchase.
type PurchaseReceipt struct {
	PurchaseID uuid.UUID
	ItemsCount int
	Total      decimal.Decimal
}

// PostingService posts sales and purchases as all-or-nothing operations:
// header row, line items, and stock updates commit together or not at all.
type PostingService interface {
	PostSale(ctx context.Context, clientRef string, lines []SaleLine) (*SaleReceipt, error)
	PostPurchase(ctx context.Context, supplier string, lines []PurchaseLine) (*PurchaseReceipt, error)
}

type postingService struct {
	ledger      repository.LedgerRepository
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
}

// NewPostingService creates a new instance of PostingService
func NewPostingService(
	ledger repository.LedgerRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
) PostingService {
	return &postingService{
		ledger:      ledger,
		clientRepo:  clientRepo,
		productRepo: productRepo,
	}
}

// PostSale posts one sale for the client matching clientRef (exact name,
// email, or phone). Stock is read and decremented under row locks inside a
// single transaction, so concurrent sales against the same product cannot
// jointly oversell it.
func (s *postingService) PostSale(ctx context.Context, clientRef string, lines []SaleLine) (*SaleReceipt, error) {
	if strings.TrimSpace(clientRef) == "" {
		return nil, validationErrorf("client reference is required")
	}
	if len(lines) == 0 {
		return nil, validationErrorf("a sale requires at least one item")
	}
	for i, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, validationErrorf("item %d: product id is required", i+1)
		}
		if line.Quantity <= 0 {
			return nil, validationErrorf("item %d: quantity must be a positive integer", i+1)
		}
	}

	client, err := s.clientRepo.FindByRef(ctx, clientRef)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return nil, err
		}
		return nil, &StorageError{Op: "client lookup", Err: err}
	}

	// Fail fast on unknown products before opening the transaction.
	for _, line := range lines {
		if _, err := s.productRepo.FindByID(ctx, line.ProductID); err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, fmt.Errorf("product %s: %w", line.ProductID, repository.ErrProductNotFound)
			}
			return nil, &StorageError{Op: "product lookup", Err: err}
		}
	}

	tx, err := s.ledger.Begin(ctx)
	if err != nil {
		return nil, &StorageError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	sale := &domain.Sale{
		ID:       uuid.New(),
		ClientID: client.ID,
		Date:     time.Now().UTC(),
		Total:    decimal.Zero,
	}

	items := make([]domain.SaleItem, 0, len(lines))
	for _, line := range lines {
		product, err := tx.GetProductForUpdate(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, fmt.Errorf("product %s: %w", line.ProductID, repository.ErrProductNotFound)
			}
			return nil, &StorageError{Op: "product lock", Err: err}
		}

		newStock, err := stock.ApplyTo(product.ID, product.Name, product.Stock, -line.Quantity)
		if err != nil {
			return nil, err
		}

		if err := tx.UpdateProductStock(ctx, product.ID, newStock); err != nil {
			return nil, &StorageError{Op: "stock update", Err: err}
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		sale.Total = sale.Total.Add(lineTotal)
		sale.ItemsCount += line.Quantity

		items = append(items, domain.SaleItem{
			ID:        uuid.New(),
			SaleID:    sale.ID,
			ProductID: product.ID,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
	}

	if err := tx.InsertSale(ctx, sale); err != nil {
		return nil, &StorageError{Op: "sale insert", Err: err}
	}
	if err := tx.InsertSaleItems(ctx, items); err != nil {
		return nil, &StorageError{Op: "sale items insert", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &StorageError{Op: "commit", Err: err}
	}

	return &SaleReceipt{
		SaleID:     sale.ID,
		TotalItems: sale.ItemsCount,
		TotalPrice: sale.Total,
	}, nil
}

// PostPurchase posts one purchase from a supplier, incrementing stock for
// every line inside a single transaction.
func (s *postingService) PostPurchase(ctx context.Context, supplier string, lines []PurchaseLine) (*PurchaseReceipt, error) {
	if strings.TrimSpace(supplier) == "" {
		return nil, validationErrorf("supplier name is required")
	}
	if len(lines) == 0 {
		return nil, validationErrorf("a purchase requires at least one item")
	}
	for i, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, validationErrorf("item %d: product id is required", i+1)
		}
		if line.Quantity <= 0 {
			return nil, validationErrorf("item %d: quantity must be a positive integer", i+1)
		}
		if !line.UnitPrice.IsPositive() {
			return nil, validationErrorf("item %d: unit price must be positive", i+1)
		}
	}

	for _, line := range lines {
		if _, err := s.productRepo.FindByID(ctx, line.ProductID); err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, fmt.Errorf("product %s: %w", line.ProductID, repository.ErrProductNotFound)
			}
			return nil, &StorageError{Op: "product lookup", Err: err}
		}
	}

	tx, err := s.ledger.Begin(ctx)
	if err != nil {
		return nil, &StorageError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	purchase := &domain.Purchase{
		ID:       uuid.New(),
		Supplier: supplier,
		Date:     time.Now().UTC(),
		Total:    decimal.Zero,
		// a purchase counts lines, not summed quantities
		ItemsCount: len(lines),
	}

	items := make([]domain.PurchaseItem, 0, len(lines))
	for _, line := range lines {
		product, err := tx.GetProductForUpdate(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, fmt.Errorf("product %s: %w", line.ProductID, repository.ErrProductNotFound)
			}
			return nil, &StorageError{Op: "product lock", Err: err}
		}

		// receiving stock has no upper bound
		newStock, err := stock.ApplyTo(product.ID, product.Name, product.Stock, line.Quantity)
		if err != nil {
			return nil, err
		}

		if err := tx.UpdateProductStock(ctx, product.ID, newStock); err != nil {
			return nil, &StorageError{Op: "stock update", Err: err}
		}

		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		purchase.Total = purchase.Total.Add(lineTotal)

		items = append(items, domain.PurchaseItem{
			ID:         uuid.New(),
			PurchaseID: purchase.ID,
			ProductID:  product.ID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
		})
	}

	if err := tx.InsertPurchase(ctx, purchase); err != nil {
		return nil, &StorageError{Op: "purchase insert", Err: err}
	}
	if err := tx.InsertPurchaseItems(ctx, items); err != nil {
		return nil, &StorageError{Op: "purchase items insert", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &StorageError{Op: "commit", Err: err}
	}

	return &PurchaseReceipt{
		PurchaseID: purchase.ID,
		ItemsCount: purchase.ItemsCount,
		Total:      purchase.Total,
	}, nil
}
