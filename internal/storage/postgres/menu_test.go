//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/xenking/tablebill/internal/domain/menu"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := tcpostgres.Run(ctx, "postgres:17-alpine",
		tcpostgres.WithDatabase("tablebill"),
		tcpostgres.WithUsername("tablebill"),
		tcpostgres.WithPassword("tablebill"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(ctx, pool))
	require.NoError(t, RunMigrations(ctx, pool), "schema must be re-runnable")
	return pool
}

func TestMenuRepository(t *testing.T) {
	pool := startPostgres(t)
	repo := NewMenuRepository(pool)
	ctx := context.Background()

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	builtin, err := menu.Builtin().List(ctx)
	require.NoError(t, err)
	// Store drinks first to check that List restores category order.
	reordered := append(append([]menu.Item{}, builtin[3:]...), builtin[:3]...)
	require.NoError(t, repo.Replace(ctx, reordered))

	items, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, len(builtin))
	for i := range builtin {
		assert.Equal(t, builtin[i].Name, items[i].Name)
		assert.Equal(t, builtin[i].Category, items[i].Category)
		assert.True(t, builtin[i].Price.Equal(items[i].Price))
	}

	c, err := menu.Load(ctx, repo)
	require.NoError(t, err)
	pizza, ok := c.Lookup("Pizza")
	require.True(t, ok)
	assert.True(t, pizza.Price.Equal(decimal.NewFromInt(599)))
}

func TestMenuRepository_ReplaceOverwrites(t *testing.T) {
	pool := startPostgres(t)
	repo := NewMenuRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.Replace(ctx, []menu.Item{
		{Name: "Soup", Category: menu.CategoryFood, Price: decimal.RequireFromString("3.50")},
	}))
	require.NoError(t, repo.Replace(ctx, []menu.Item{
		{Name: "Juice", Category: menu.CategoryDrinks, Price: decimal.NewFromInt(4)},
	}))

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Juice", items[0].Name)
}

func TestMenuRepository_RejectsBadCategory(t *testing.T) {
	pool := startPostgres(t)
	repo := NewMenuRepository(pool)

	err := repo.Replace(context.Background(), []menu.Item{
		{Name: "Cake", Category: "Dessert", Price: decimal.NewFromInt(5)},
	})
	require.Error(t, err)
}
