// Command seed-menu loads menu items into PostgreSQL, or dumps a menu as YAML.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/tablebill/internal/domain/menu"
	"github.com/xenking/tablebill/internal/storage/menufile"
	"github.com/xenking/tablebill/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		menuFile    string
		dump        bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&menuFile, "menu-file", "", "YAML menu file, optionally .gz (default: built-in menu)")
	flag.BoolVar(&dump, "dump", false, "write the menu as YAML to stdout instead of seeding")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var repo menu.Repository = menu.Builtin()
	if menuFile != "" {
		repo = menufile.NewRepository(menuFile)
	}

	if dump {
		if err := dumpMenu(ctx, repo); err != nil {
			slog.Error("dump failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	if err := run(ctx, databaseURL, repo); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string, repo menu.Repository) error {
	// Validate before touching the database.
	catalog, err := menu.Load(ctx, repo)
	if err != nil {
		return errors.Wrap(err, "load menu")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	items := catalog.Items()
	slog.Info("replacing menu items", slog.Int("count", len(items)))

	if err := postgres.NewMenuRepository(pool).Replace(ctx, items); err != nil {
		return errors.Wrap(err, "replace menu")
	}

	for _, it := range items {
		slog.Info("seeded item",
			slog.String("name", it.Name),
			slog.String("category", string(it.Category)),
			slog.String("price", it.Price.String()),
		)
	}
	return nil
}

func dumpMenu(ctx context.Context, repo menu.Repository) error {
	catalog, err := menu.Load(ctx, repo)
	if err != nil {
		return errors.Wrap(err, "load menu")
	}
	return menufile.Encode(os.Stdout, catalog.Items())
}
