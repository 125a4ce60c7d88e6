package order

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/tablebill/internal/domain/menu"
)

// Sentinel errors for order validation.
var (
	ErrEmptyOrder   = errors.New("please select at least one item")
	ErrNameRequired = errors.New("customer name is required")
)

// UnknownItemError indicates a selection that names no catalog item.
type UnknownItemError struct {
	Item string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("menu item %s not found", e.Item)
}

// InvalidQuantityError indicates a selection with a negative quantity.
type InvalidQuantityError struct {
	Item     string
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity for %s must not be negative, got %d", e.Item, e.Quantity)
}

// Build converts a form submission into an Order.
//
// Selections map item names to quantities; zero entries are ignored. An empty
// or blank name is replaced with defaultName. Line items follow catalog
// order, so the result does not depend on map iteration.
func Build(name string, selections map[string]int, catalog *menu.Catalog, defaultName string) (*Order, error) {
	// Sorted so that the reported error is stable when several entries are bad.
	for _, item := range slices.Sorted(maps.Keys(selections)) {
		qty := selections[item]
		if qty == 0 {
			continue
		}
		if qty < 0 {
			return nil, &InvalidQuantityError{Item: item, Quantity: qty}
		}
		if _, ok := catalog.Lookup(item); !ok {
			return nil, &UnknownItemError{Item: item}
		}
	}

	o := &Order{
		FoodTotal:  decimal.Zero,
		DrinkTotal: decimal.Zero,
		Subtotal:   decimal.Zero,
	}
	for _, it := range catalog.Items() {
		qty := selections[it.Name]
		if qty <= 0 {
			continue
		}

		lineTotal := it.Price.Mul(decimal.NewFromInt(int64(qty)))
		o.Items = append(o.Items, LineItem{
			Item:      it.Name,
			Category:  it.Category,
			Quantity:  qty,
			UnitPrice: it.Price,
			LineTotal: lineTotal,
		})

		switch it.Category {
		case menu.CategoryFood:
			o.FoodTotal = o.FoodTotal.Add(lineTotal)
		case menu.CategoryDrinks:
			o.DrinkTotal = o.DrinkTotal.Add(lineTotal)
		}
	}
	if len(o.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	o.Subtotal = o.FoodTotal.Add(o.DrinkTotal)

	o.Name = strings.TrimSpace(name)
	if o.Name == "" {
		o.Name = strings.TrimSpace(defaultName)
	}
	if o.Name == "" {
		return nil, ErrNameRequired
	}

	o.ID = uuid.New().String()
	return o, nil
}

// FromChoices converts a multi-select submission into selections where every
// chosen item has quantity 1. Repeated choices still count once.
func FromChoices(choices []string) map[string]int {
	selections := make(map[string]int, len(choices))
	for _, c := range choices {
		selections[c] = 1
	}
	return selections
}
