// Package stock holds the pure stock arithmetic shared by the posting path,
// the inventory views, and the dashboard: applying a quantity delta to a stock
// level, and classifying a stock level against its alert threshold.
package stock

import (
	"fmt"

	"github.com/google/uuid"
)

// Status classifies a product's stock level against its alert threshold.
type Status string

const (
	StatusInStock    Status = "in_stock"
	StatusLowStock   Status = "low_stock"
	StatusOutOfStock Status = "out_of_stock"
)

// InsufficientStockError reports a sale line that would drive stock negative.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// Apply returns the stock level after applying delta (negative for a sale,
// positive for a purchase). It fails if the result would be negative; callers
// wanting the product identified in the error use ApplyTo.
func Apply(current, delta int) (int, error) {
	next := current + delta
	if next < 0 {
		return current, &InsufficientStockError{Available: current, Requested: -delta}
	}
	return next, nil
}

// ApplyTo is Apply with product identity attached to any failure.
func ApplyTo(productID uuid.UUID, productName string, current, delta int) (int, error) {
	next, err := Apply(current, delta)
	if err != nil {
		return current, &InsufficientStockError{
			ProductID:   productID,
			ProductName: productName,
			Available:   current,
			Requested:   -delta,
		}
	}
	return next, nil
}

// Classify maps a stock level to its status: zero is out of stock, anything
// up to and including the threshold is low, everything above is in stock.
// The SQL filters in the repository layer mirror these exact boundaries.
func Classify(stock, threshold int) Status {
	switch {
	case stock == 0:
		return StatusOutOfStock
	case stock <= threshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// Label is the human-readable form used by the inventory endpoints.
func (s Status) Label() string {
	switch s {
	case StatusOutOfStock:
		return "Out of Stock"
	case StatusLowStock:
		return "Low Stock"
	default:
		return "In Stock"
	}
}
