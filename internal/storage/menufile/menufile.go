// Package menufile reads and writes menus as YAML documents.
//
// A menu file lists categories in order, each with its items:
//
//	categories:
//	  - name: Food
//	    items:
//	      - name: Pizza
//	        price: 599
//
// Files ending in ".gz" are gzip-compressed.
package menufile

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/xenking/tablebill/internal/domain/menu"
)

type document struct {
	Categories []categoryDoc `yaml:"categories"`
}

type categoryDoc struct {
	Name  string    `yaml:"name"`
	Items []itemDoc `yaml:"items"`
}

type itemDoc struct {
	Name string `yaml:"name"`
	// Price is kept as text so that no float conversion happens on decode.
	Price string `yaml:"price"`
}

var _ menu.Repository = (*Repository)(nil)

// Repository implements menu.Repository over a YAML file.
type Repository struct {
	path string
}

// NewRepository returns a Repository reading from path.
func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

// List reads the file and returns its items.
func (r *Repository) List(_ context.Context) ([]menu.Item, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, errors.Wrap(err, "open menu file")
	}
	defer func() { _ = f.Close() }()

	var src io.Reader = f
	if strings.HasSuffix(r.path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip stream")
		}
		defer func() { _ = zr.Close() }()
		src = zr
	}

	items, err := Decode(src)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", r.path)
	}
	return items, nil
}

// Decode parses a YAML menu document.
func Decode(r io.Reader) ([]menu.Item, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}

	var items []menu.Item
	for _, c := range doc.Categories {
		for _, it := range c.Items {
			price, err := decimal.NewFromString(strings.TrimSpace(it.Price))
			if err != nil {
				return nil, errors.Wrapf(err, "price of %s", it.Name)
			}
			items = append(items, menu.Item{
				Name:     it.Name,
				Category: menu.Category(c.Name),
				Price:    price,
			})
		}
	}
	return items, nil
}

// Encode writes items as a YAML menu document, grouping them by category
// in first-seen order.
func Encode(w io.Writer, items []menu.Item) error {
	var doc document
	index := make(map[menu.Category]int)
	for _, it := range items {
		i, ok := index[it.Category]
		if !ok {
			i = len(doc.Categories)
			index[it.Category] = i
			doc.Categories = append(doc.Categories, categoryDoc{Name: string(it.Category)})
		}
		doc.Categories[i].Items = append(doc.Categories[i].Items, itemDoc{
			Name:  it.Name,
			Price: it.Price.String(),
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "encode yaml")
	}
	return enc.Close()
}
