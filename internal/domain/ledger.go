package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is the header row of a posted sale. Total always equals the sum of its
// items' line totals and ItemsCount the sum of their quantities; both are
// written in the same transaction as the items.
type Sale struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ClientID   uuid.UUID       `json:"client_id" db:"client_id"`
	Date       time.Time       `json:"date" db:"date"`
	Total      decimal.Decimal `json:"total" db:"total"`
	ItemsCount int             `json:"items_count" db:"items_count"`
}

// SaleItem is one product line of a sale. Price is the product's unit price
// snapshotted at posting time; later price edits never touch it.
type SaleItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	SaleID    uuid.UUID       `json:"sale_id" db:"sale_id"`
	ProductID uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// Purchase is the header row of a posted purchase from a supplier. Unlike a
// sale, ItemsCount is the number of lines, not the summed quantity.
type Purchase struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Supplier   string          `json:"supplier" db:"supplier"`
	Date       time.Time       `json:"date" db:"date"`
	Total      decimal.Decimal `json:"total" db:"total"`
	ItemsCount int             `json:"items_count" db:"items_count"`
}

// PurchaseItem is one product line of a purchase. UnitPrice is what was paid
// to the supplier, not the catalog price.
type PurchaseItem struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	PurchaseID uuid.UUID       `json:"purchase_id" db:"purchase_id"`
	ProductID  uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
}
