package menu

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

// Catalog is an immutable, ordered menu. Items are ordered by category
// (Food before Drinks) and then by declaration order within a category.
type Catalog struct {
	items  []Item
	byName map[string]int
}

// NewCatalog validates items and builds a Catalog from them.
//
// Selections reference items by name only, so a name may appear once across
// the whole catalog, not just once per category.
func NewCatalog(items []Item) (*Catalog, error) {
	ordered := make([]Item, 0, len(items))
	for _, cat := range Categories {
		for _, it := range items {
			if it.Category == cat {
				ordered = append(ordered, it)
			}
		}
	}

	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		switch {
		case name == "":
			return nil, &InvalidItemError{Name: it.Name, Reason: "name is required"}
		case name != it.Name:
			return nil, &InvalidItemError{Name: it.Name, Reason: "name has surrounding whitespace"}
		case !it.Category.Valid():
			return nil, &InvalidItemError{Name: it.Name, Reason: "unknown category " + string(it.Category)}
		case it.Price.IsNegative():
			return nil, &InvalidItemError{Name: it.Name, Reason: "price must not be negative"}
		}
		if _, dup := seen[it.Name]; dup {
			return nil, &InvalidItemError{Name: it.Name, Reason: "duplicate item name"}
		}
		seen[it.Name] = struct{}{}
	}

	byName := make(map[string]int, len(ordered))
	for i, it := range ordered {
		byName[it.Name] = i
	}

	return &Catalog{items: ordered, byName: byName}, nil
}

// Load reads every item from repo and builds a Catalog.
func Load(ctx context.Context, repo Repository) (*Catalog, error) {
	items, err := repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list menu items")
	}
	if len(items) == 0 {
		return nil, errors.New("menu is empty")
	}
	return NewCatalog(items)
}

// Items returns a copy of all items in catalog order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// InCategory returns the items of a single category in declaration order.
func (c *Catalog) InCategory(cat Category) []Item {
	var out []Item
	for _, it := range c.items {
		if it.Category == cat {
			out = append(out, it)
		}
	}
	return out
}

// Lookup finds an item by name.
func (c *Catalog) Lookup(name string) (Item, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Len returns the number of items in the catalog.
func (c *Catalog) Len() int {
	return len(c.items)
}
