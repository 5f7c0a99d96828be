package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/config"
	"github.com/fjod/go_storefront/internal/filter"
	"github.com/fjod/go_storefront/internal/httpapi"
	"github.com/fjod/go_storefront/internal/identity"
	"github.com/fjod/go_storefront/internal/logger"
	"github.com/fjod/go_storefront/internal/metrics"
	"github.com/fjod/go_storefront/internal/session"
)

func main() {
	logger.SetupDefault(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// Catalog client, optionally backed by a redis response cache.
	clientOpts := []catalog.ClientOption{
		catalog.WithRateLimit(cfg.CatalogRPS, cfg.CatalogBurst),
	}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		clientOpts = append(clientOpts, catalog.WithCache(catalog.NewCache(redisClient)))
		slog.Info("catalog response cache enabled", "addr", cfg.RedisAddr)
	}
	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, clientOpts...)

	store := catalog.NewStore(catalogClient,
		catalog.WithStoreCollector(collector),
		catalog.WithFetchTimeout(cfg.FetchTimeout),
	)
	resolver := filter.NewResolver(store)
	ledger := cart.NewLedger(cart.WithCollector(collector))

	checkoutOpts := []checkout.Option{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := checkout.NewKafkaPublisher(cfg.KafkaBrokers...)
		defer publisher.Close()
		checkoutOpts = append(checkoutOpts, checkout.WithPublisher(publisher))
		slog.Info("order event publishing enabled", "brokers", cfg.KafkaBrokers)
	}
	orchestrator := checkout.New(ledger, checkoutOpts...)

	provider := identity.NewClient(cfg.IdentityBaseURL, cfg.IdentityAnonKey)
	gate := session.NewGate(slog.Default())
	unbind := gate.Bind(provider)
	defer unbind()

	// Replay any session the provider restored before the gate was bound.
	provider.EmitInitialSession()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httpapi.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.SetupMetricsRoute(registry))
	r.Mount("/api/v1", httpapi.Routes(
		httpapi.NewCatalogHandler(store, resolver),
		httpapi.NewCartHandler(ledger, store),
		httpapi.NewCheckoutHandler(orchestrator),
		httpapi.NewAuthHandler(provider, gate),
	))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("storefront engine starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited")
}
