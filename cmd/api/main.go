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

	"github.com/jackc/pgx/v5/pgxpool"

	"autoshop_backend/internal/adapters"
	"autoshop_backend/internal/appointments"
	"autoshop_backend/internal/catalog"
	"autoshop_backend/internal/customers"
	apphttp "autoshop_backend/internal/http"
	"autoshop_backend/internal/http/router"
	"autoshop_backend/internal/pricingapi"
	sharedvalidator "autoshop_backend/internal/shared/validator"
	"autoshop_backend/migrations"
	"autoshop_backend/platform/cache"
	"autoshop_backend/platform/config"
	"autoshop_backend/platform/db"
	"autoshop_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	applied, err := db.RunMigrations(ctx, pool, migrations.FS)
	if err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete", "applied", applied)

	appCache, closeCache := initCache(ctx, cfg, log)
	if closeCache != nil {
		defer closeCache()
	}

	// Shared validator with the domain tags registered
	val := sharedvalidator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	pricingModule := pricingapi.NewModule(val, cfg)
	catalogModule := catalog.NewModule(pool, appCache, val, cfg, log)
	customersModule := customers.NewModule(pool, val, log)

	// Wire catalog reader: appointments → catalog (for line item snapshots)
	catalogReader := adapters.NewCatalogServiceReader(catalogModule.Service())
	appointmentsModule := appointments.NewModule(pool, catalogReader, customersModule.Service(), val, cfg, log)

	if seeded, err := catalogModule.Seed(ctx); err != nil {
		log.Error("failed to seed service catalogue", "error", err)
	} else if seeded > 0 {
		log.Info("service catalogue seeded", "services", seeded)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			pricingModule,
			catalogModule,
			customersModule,
			appointmentsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initCache connects to Redis when configured. Without it the catalogue is
// served straight from Postgres.
func initCache(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (cache.Cache, func()) {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; catalogue caching disabled")
		return nil, nil
	}

	var redisCache *cache.RedisCache
	if err := withRetry(ctx, log, "redis connection", 3, time.Second, func() error {
		c, err := cache.NewRedis(ctx, cfg.GetRedisURL(), "autoshop")
		if err != nil {
			return err
		}
		redisCache = c
		return nil
	}); err != nil {
		log.Error("failed to initialize redis cache", "error", err)
		return nil, nil
	}

	log.Info("redis cache initialized", "ttl", cfg.GetCatalogCacheTTL())
	return redisCache, func() {
		_ = redisCache.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
