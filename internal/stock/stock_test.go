package stock

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		stock     int
		threshold int
		want      Status
	}{
		{"zero stock is out regardless of threshold", 0, 5, StatusOutOfStock},
		{"zero stock with zero threshold", 0, 0, StatusOutOfStock},
		{"at threshold is low", 5, 5, StatusLowStock},
		{"below threshold is low", 1, 5, StatusLowStock},
		{"above threshold is in stock", 6, 5, StatusInStock},
		{"positive stock with zero threshold is in stock", 1, 0, StatusInStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.stock, tt.threshold))
		})
	}
}

func TestProperty_ClassifyPartitionsStockLevels(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every (stock, threshold) pair maps to exactly the expected band", prop.ForAll(
		func(stock int, threshold int) bool {
			status := Classify(stock, threshold)
			switch {
			case stock == 0:
				return status == StatusOutOfStock
			case stock <= threshold:
				return status == StatusLowStock
			default:
				return status == StatusInStock
			}
		},
		gen.IntRange(0, 100000),
		gen.IntRange(0, 100000),
	))

	properties.TestingRun(t)
}

func TestApply(t *testing.T) {
	next, err := Apply(10, -6)
	require.NoError(t, err)
	assert.Equal(t, 4, next)

	next, err = Apply(3, 5)
	require.NoError(t, err)
	assert.Equal(t, 8, next)

	// draining to exactly zero is allowed
	next, err = Apply(4, -4)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	_, err = Apply(4, -5)
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 4, insufficient.Available)
	assert.Equal(t, 5, insufficient.Requested)
}

func TestApplyToCarriesProductIdentity(t *testing.T) {
	id := uuid.New()

	_, err := ApplyTo(id, "Laptop", 2, -7)
	var insufficient *InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, id, insufficient.ProductID)
	assert.Equal(t, "Laptop", insufficient.ProductName)
	assert.Contains(t, insufficient.Error(), "Laptop")
}

func TestProperty_ApplyNeverReturnsNegativeStock(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("successful applies preserve non-negative stock", prop.ForAll(
		func(current int, delta int) bool {
			next, err := Apply(current, delta)
			if err != nil {
				// the failed value must be the untouched current stock
				return next == current && current+delta < 0
			}
			return next == current+delta && next >= 0
		},
		gen.IntRange(0, 1000),
		gen.IntRange(-2000, 2000),
	))

	properties.TestingRun(t)
}
