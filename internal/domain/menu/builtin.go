package menu

import (
	"context"

	"github.com/shopspring/decimal"
)

var builtinItems = []Item{
	{Name: "Pizza", Category: CategoryFood, Price: decimal.NewFromInt(599)},
	{Name: "Burger", Category: CategoryFood, Price: decimal.NewFromInt(299)},
	{Name: "Pasta", Category: CategoryFood, Price: decimal.NewFromInt(499)},
	{Name: "Coke", Category: CategoryDrinks, Price: decimal.NewFromInt(99)},
	{Name: "Coffee", Category: CategoryDrinks, Price: decimal.NewFromInt(149)},
	{Name: "Tea", Category: CategoryDrinks, Price: decimal.NewFromInt(79)},
}

var _ Repository = StaticRepository(nil)

// StaticRepository serves a fixed item list from memory.
type StaticRepository []Item

// Builtin returns the house menu compiled into the binary.
func Builtin() StaticRepository {
	return StaticRepository(builtinItems)
}

// List returns a copy of the static items.
func (r StaticRepository) List(_ context.Context) ([]Item, error) {
	out := make([]Item, len(r))
	copy(out, r)
	return out, nil
}

// Default builds the catalog for the house menu.
func Default() *Catalog {
	c, err := NewCatalog(builtinItems)
	if err != nil {
		panic(err)
	}
	return c
}
