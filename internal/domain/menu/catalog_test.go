package menu

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct{ err error }

func (r failingRepo) List(_ context.Context) ([]Item, error) { return nil, r.err }

func names(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, 6, c.Len())
	assert.Equal(t, []string{"Pizza", "Burger", "Pasta"}, names(c.InCategory(CategoryFood)))
	assert.Equal(t, []string{"Coke", "Coffee", "Tea"}, names(c.InCategory(CategoryDrinks)))

	pizza, ok := c.Lookup("Pizza")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(599).Equal(pizza.Price))
	assert.Equal(t, CategoryFood, pizza.Category)

	_, ok = c.Lookup("pizza")
	assert.False(t, ok, "lookup is case-sensitive")
}

func TestNewCatalog_OrdersFoodBeforeDrinks(t *testing.T) {
	c, err := NewCatalog([]Item{
		{Name: "Tea", Category: CategoryDrinks, Price: decimal.NewFromInt(79)},
		{Name: "Pasta", Category: CategoryFood, Price: decimal.NewFromInt(499)},
		{Name: "Coke", Category: CategoryDrinks, Price: decimal.NewFromInt(99)},
		{Name: "Pizza", Category: CategoryFood, Price: decimal.NewFromInt(599)},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Pasta", "Pizza", "Tea", "Coke"}, names(c.Items()))

	coke, ok := c.Lookup("Coke")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(99).Equal(coke.Price))
}

func TestNewCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		items  []Item
		reason string
	}{
		{
			name:   "empty name",
			items:  []Item{{Name: " ", Category: CategoryFood}},
			reason: "name is required",
		},
		{
			name:   "padded name",
			items:  []Item{{Name: "Tea ", Category: CategoryDrinks}},
			reason: "name has surrounding whitespace",
		},
		{
			name:   "unknown category",
			items:  []Item{{Name: "Cake", Category: "Dessert"}},
			reason: "unknown category Dessert",
		},
		{
			name:   "negative price",
			items:  []Item{{Name: "Tea", Category: CategoryDrinks, Price: decimal.NewFromInt(-1)}},
			reason: "price must not be negative",
		},
		{
			name: "name reused across categories",
			items: []Item{
				{Name: "Lemonade", Category: CategoryFood, Price: decimal.NewFromInt(1)},
				{Name: "Lemonade", Category: CategoryDrinks, Price: decimal.NewFromInt(2)},
			},
			reason: "duplicate item name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.items)

			var itemErr *InvalidItemError
			require.ErrorAs(t, err, &itemErr)
			assert.Equal(t, tt.reason, itemErr.Reason)
		})
	}
}

func TestItems_ReturnsCopy(t *testing.T) {
	c := Default()
	items := c.Items()
	items[0].Name = "Changed"

	assert.Equal(t, "Pizza", c.Items()[0].Name)
}

func TestLoad(t *testing.T) {
	t.Run("builtin", func(t *testing.T) {
		c, err := Load(context.Background(), Builtin())
		require.NoError(t, err)
		assert.Equal(t, Default().Items(), c.Items())
	})

	t.Run("repository error", func(t *testing.T) {
		_, err := Load(context.Background(), failingRepo{err: errors.New("db down")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "list menu items")
	})

	t.Run("empty menu", func(t *testing.T) {
		_, err := Load(context.Background(), StaticRepository{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "menu is empty")
	})
}
