package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/tablebill/internal/domain/menu"
	"github.com/xenking/tablebill/internal/handler"
	"github.com/xenking/tablebill/internal/live"
	"github.com/xenking/tablebill/internal/receipt"
	"github.com/xenking/tablebill/internal/session"
	"github.com/xenking/tablebill/internal/storage/menufile"
	"github.com/xenking/tablebill/internal/storage/postgres"
	"github.com/xenking/tablebill/pkg/health"
	"github.com/xenking/tablebill/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	ctx = zctx.Base(ctx, lg)
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("menu_source", cfg.Menu.Source),
	)

	healthSvc := health.New()
	healthSvc.AddLivenessCheck(health.Check{
		Name:    "goroutines",
		Timeout: time.Second,
		Func:    health.GoroutineCountCheck(10000),
	})

	catalog, closeMenu, err := loadCatalog(ctx, cfg.Menu, healthSvc)
	if err != nil {
		return errors.Wrap(err, "load menu")
	}
	defer closeMenu()
	lg.Info("Menu loaded", zap.Int("items", catalog.Len()))

	// Sessions and live updates.
	hub := live.NewHub()
	store, err := session.NewStore(session.StoreConfig{
		Catalog:  catalog,
		Defaults: cfg.BillSettings(),
		TTL:      cfg.Session.TTL,
		Notifier: handler.LiveNotifier(hub),
		Meter:    m.MeterProvider().Meter("tablebill"),
	})
	if err != nil {
		return errors.Wrap(err, "create session store")
	}
	tokens, err := session.NewTokens(cfg.SessionSecret, cfg.Session.TokenTTL)
	if err != nil {
		return errors.Wrap(err, "create token issuer")
	}

	h := handler.NewHandler(
		catalog,
		store,
		tokens,
		receipt.NewFormatter(cfg.Receipt.Width, cfg.Receipt.Currency),
		hub,
	)

	limiter := httpmiddleware.NewRateLimiter(httpmiddleware.RateLimitConfig{
		RPS:   cfg.RateLimit.RPS,
		Burst: cfg.RateLimit.Burst,
	})

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: newServerHandler(serverDeps{
			Config:         cfg,
			Logger:         lg,
			TracerProvider: m.TracerProvider(),
			MeterProvider:  m.MeterProvider(),
			Health:         healthSvc,
			Limiter:        limiter,
			API:            h.RegisterRoutes,
		}),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return healthSvc.Run(gctx, 10*time.Second) })
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return store.RunJanitor(gctx, cfg.Session.JanitorInterval) })
	g.Go(func() error { return limiter.Run(gctx) })
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	// Graceful shutdown: fail readiness, drain, then stop the server.
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})

	healthSvc.SetReady(true)
	return g.Wait()
}

// loadCatalog builds the catalog from the configured source. The returned
// func releases the source's resources.
func loadCatalog(ctx context.Context, cfg MenuConfig, healthSvc *health.Health) (*menu.Catalog, func(), error) {
	var (
		repo    menu.Repository
		closeFn = func() {}
	)
	switch cfg.Source {
	case MenuSourceFile:
		repo = menufile.NewRepository(cfg.File)
	case MenuSourcePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck(health.Check{
			Name:    "postgres",
			Timeout: 5 * time.Second,
			Func:    health.PingCheck(pool),
		})
		repo = postgres.NewMenuRepository(pool)
		closeFn = pool.Close
	default:
		repo = menu.Builtin()
	}

	catalog, err := menu.Load(ctx, repo)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return catalog, closeFn, nil
}

type serverDeps struct {
	Config         *Config
	Logger         *zap.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Health         *health.Health
	Limiter        *httpmiddleware.RateLimiter
	API            func(chi.Router)
}

// newServerHandler mounts health probes and the API on one router and wraps
// it with the outer middleware chain.
func newServerHandler(d serverDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		httpmiddleware.RequestID(),
		httpmiddleware.LogRequests(),
		httpmiddleware.Labeler(),
	)
	r.Get("/livez", d.Health.LiveEndpoint)
	r.Get("/readyz", d.Health.ReadyEndpoint)
	r.Route("/api", d.API)

	return httpmiddleware.Wrap(r,
		httpmiddleware.Instrument("tablebill-api", d.TracerProvider, d.MeterProvider),
		httpmiddleware.InjectLogger(d.Logger),
		httpmiddleware.Recovery(),
		cors.Handler(cors.Options{
			AllowedOrigins:   d.Config.CORS.Origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Authorization", httpmiddleware.RequestIDHeader},
			ExposedHeaders:   []string{"Content-Disposition", httpmiddleware.RequestIDHeader},
			AllowCredentials: d.Config.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		d.Limiter.Middleware(),
	)
}
