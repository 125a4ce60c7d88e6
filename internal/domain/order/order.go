package order

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/tablebill/internal/domain/menu"
)

// Order is one customer's bill. It is never mutated after Build returns it.
type Order struct {
	ID         string
	Name       string
	Items      []LineItem
	FoodTotal  decimal.Decimal
	DrinkTotal decimal.Decimal
	Subtotal   decimal.Decimal
}

// LineItem represents a single menu item in an order.
type LineItem struct {
	Item      string
	Category  menu.Category
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Quantity returns the total number of units across all line items.
func (o *Order) Quantity() int {
	n := 0
	for _, li := range o.Items {
		n += li.Quantity
	}
	return n
}
