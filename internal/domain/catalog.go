package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a stocked catalog item. Stock is only ever mutated inside a
// posting transaction; every other field can be edited directly.
type Product struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	CategoryID     uuid.UUID       `json:"category_id" db:"category_id"`
	Price          decimal.Decimal `json:"price" db:"price"`
	Stock          int             `json:"stock" db:"stock"`
	AlertThreshold int             `json:"alert_threshold" db:"alert_threshold"`
	Description    string          `json:"description" db:"description"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Category groups products. Names are unique.
type Category struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

// CategorySummary is a category together with how many products reference it.
type CategorySummary struct {
	Category
	ProductCount int `json:"product_count"`
}
