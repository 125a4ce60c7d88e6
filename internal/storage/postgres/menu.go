package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/tablebill/internal/domain/menu"
)

const listMenuItemsSQL = `SELECT name, category, price FROM menu_items
	ORDER BY CASE category WHEN 'Food' THEN 0 ELSE 1 END, position, name`

var menuItemColumns = []string{"name", "category", "price", "position"}

var _ menu.Repository = (*MenuRepository)(nil)

// MenuRepository implements menu.Repository backed by PostgreSQL.
type MenuRepository struct {
	pool *pgxpool.Pool
}

// NewMenuRepository returns a MenuRepository that uses the given pool.
func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

// List returns all menu items, food first, each category in position order.
func (r *MenuRepository) List(ctx context.Context) ([]menu.Item, error) {
	rows, err := r.pool.Query(ctx, listMenuItemsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query menu items")
	}
	items, err := pgx.CollectRows(rows, scanMenuItem)
	if err != nil {
		return nil, errors.Wrap(err, "scan menu items")
	}
	return items, nil
}

// Replace swaps the whole menu for items in one transaction. Item positions
// follow their order in the slice.
func (r *MenuRepository) Replace(ctx context.Context, items []menu.Item) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM menu_items`); err != nil {
		return errors.Wrap(err, "clear menu items")
	}

	rows := make([][]any, len(items))
	for i, it := range items {
		rows[i] = []any{it.Name, string(it.Category), it.Price, i}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"menu_items"}, menuItemColumns, pgx.CopyFromRows(rows)); err != nil {
		return errors.Wrap(err, "copy menu items")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

func scanMenuItem(row pgx.CollectableRow) (menu.Item, error) {
	var (
		it       menu.Item
		category string
		price    decimal.Decimal
	)
	if err := row.Scan(&it.Name, &category, &price); err != nil {
		return menu.Item{}, err
	}
	it.Category = menu.Category(category)
	it.Price = price
	return it, nil
}
