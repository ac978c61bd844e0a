package finance

import (
	"fmt"
	"math"
)

// Deposit computes the deposit for a selected price, rounded to the nearest
// whole currency unit. Percent must lie in (0, 100].
func (e Engine) Deposit(price int64, percent float64) (int64, error) {
	if price <= 0 {
		return 0, fmt.Errorf("price must be positive, got %d: %w", price, ErrInvalidInput)
	}
	if percent <= 0 || percent > 100 {
		return 0, fmt.Errorf("deposit percent must be in (0, 100], got %g: %w", percent, ErrInvalidInput)
	}
	return int64(math.Round(float64(price) * percent / 100)), nil
}

// SelectPrice picks a working price from a quoted range, sitting a fifth of
// the way up from the minimum. A single-value range returns that value.
func (e Engine) SelectPrice(minPrice, maxPrice int64) (int64, error) {
	if minPrice <= 0 {
		return 0, fmt.Errorf("minimum price must be positive, got %d: %w", minPrice, ErrInvalidInput)
	}
	if maxPrice < minPrice {
		return 0, fmt.Errorf("price range inverted (%d > %d): %w", minPrice, maxPrice, ErrInvalidInput)
	}
	return int64(math.Ceil(float64(minPrice) + float64(maxPrice-minPrice)/5)), nil
}
