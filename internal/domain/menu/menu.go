// Package menu defines the restaurant catalog: categories, items and unit prices.
package menu

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Category groups menu items for display and per-category bill totals.
type Category string

const (
	// CategoryFood holds dishes.
	CategoryFood Category = "Food"
	// CategoryDrinks holds beverages.
	CategoryDrinks Category = "Drinks"
)

// Categories lists every supported category in display order.
var Categories = []Category{CategoryFood, CategoryDrinks}

// Valid reports whether c is one of the supported categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Item is a single catalog entry.
type Item struct {
	Name     string
	Category Category
	Price    decimal.Decimal
}

// InvalidItemError indicates a catalog entry that cannot be accepted.
type InvalidItemError struct {
	Name   string
	Reason string
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("invalid menu item %q: %s", e.Name, e.Reason)
}

// Repository provides the raw list of menu items a Catalog is built from.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
}
