package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/dvalenzuela/retrade-backend/api"
	"github.com/dvalenzuela/retrade-backend/api/routes"
	"github.com/dvalenzuela/retrade-backend/internal/catalog"
	"github.com/dvalenzuela/retrade-backend/internal/orders"
	"github.com/dvalenzuela/retrade-backend/internal/quotecart"
	"github.com/dvalenzuela/retrade-backend/pkg/config"
	"github.com/dvalenzuela/retrade-backend/pkg/db"
	"github.com/dvalenzuela/retrade-backend/pkg/logger"
	"github.com/dvalenzuela/retrade-backend/pkg/metrics"
	"github.com/dvalenzuela/retrade-backend/pkg/migrate"
	pkgredis "github.com/dvalenzuela/retrade-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := pkgredis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cartMetrics := metrics.NewCartMetrics(registry)

	adapterFactory, err := cartAdapterFactory(cfg, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to configure cart backend", err)
		os.Exit(1)
	}
	carts := quotecart.NewManager(adapterFactory, quotecart.Options{
		MaxItems: cfg.Cart.MaxItems,
		Metrics:  cartMetrics,
	}, logg)

	catalogSvc := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	ordersSvc := orders.NewService(orders.NewRepository(dbClient.DB()), carts, cfg.Orders.NumberPrefix)

	router := routes.NewRouter(routes.Deps{
		Config:  cfg,
		Logger:  logg,
		DB:      dbClient,
		Redis:   redisClient,
		Carts:   carts,
		Catalog: catalogSvc,
		Orders:  ordersSvc,
		Metrics: registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	server := api.NewServer(port, router)

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": ":" + port,
	})
	logg.Info(ctx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	stop, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop.Done():
		logg.Info(ctx, "shutdown signal received, draining requests")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "shutdown did not complete cleanly", err)
		}
	}

	if err := multierr.Append(redisClient.Close(), dbClient.Close()); err != nil {
		logg.Error(ctx, "error closing resources", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

// cartAdapterFactory binds the configured persistence backend. Unknown values
// fail at boot rather than on the first cart access.
func cartAdapterFactory(cfg *config.Config, redisClient *pkgredis.Client) (quotecart.AdapterFactory, error) {
	switch cfg.Cart.Backend {
	case "redis":
		return func(sessionID string) (quotecart.Adapter, error) {
			return quotecart.NewRedisAdapter(redisClient, sessionID, cfg.Cart.SnapshotTTL)
		}, nil
	case "file":
		if err := os.MkdirAll(cfg.Cart.FileDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cart file dir: %w", err)
		}
		return func(sessionID string) (quotecart.Adapter, error) {
			return quotecart.NewFileAdapter(cfg.Cart.FileDir, sessionID)
		}, nil
	case "memory":
		return func(string) (quotecart.Adapter, error) {
			return quotecart.NewMemoryAdapter(), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown cart backend %q", cfg.Cart.Backend)
	}
}
