package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/enhancv/go-subscriptions/pkg/api"
	"github.com/enhancv/go-subscriptions/pkg/billing"
	"github.com/enhancv/go-subscriptions/pkg/config"
	"github.com/enhancv/go-subscriptions/pkg/customer"
	"github.com/enhancv/go-subscriptions/pkg/observability"
	"github.com/enhancv/go-subscriptions/pkg/processor"
	"github.com/enhancv/go-subscriptions/pkg/storage"
	"github.com/enhancv/go-subscriptions/pkg/storage/postgres"
)

var (
	initSchema = flag.Bool("init-schema", false, "Create database tables before serving")
	sweepOnce  = flag.Bool("sweep-once", false, "Run the expired-coupon sweep once and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	registry := customer.NewRegistry()

	store, err := postgres.NewStore(cfg.Storage, registry, metrics)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer store.Close()

	if *initSchema {
		if err := store.InitSchema(context.Background()); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		log.Println("Database schema initialized")
	}

	couponStore := store.Coupons()

	// Run once mode (for cron-less deployments)
	if *sweepOnce {
		deleted, err := couponStore.SweepExpired(context.Background(), time.Now().UTC())
		if err != nil {
			log.Fatalf("Coupon sweep failed: %v", err)
		}
		log.Printf("Coupon sweep completed, %d expired coupons removed", deleted)
		return
	}

	var customers storage.CustomerStore = store
	health := observability.NewHealthChecker(cfg.Storage.PostgresTimeout)
	health.Register("postgres", store.HealthCheck)

	if cfg.Storage.CacheEnabled {
		client, err := postgres.NewRedisClient(cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		customers = postgres.NewCustomerCache(store, client, registry, cfg.Storage.CacheTTL, metrics)
		health.Register("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		log.Println("Customer read-through cache enabled")
	}

	catalog, err := billing.LoadCatalog(cfg.Billing.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load plan catalog: %v", err)
	}
	log.Printf("Plan catalog loaded from %s (%d plans)", cfg.Billing.CatalogPath, len(catalog.Plans()))

	coupons := billing.NewCachedCouponRepository(couponStore, cfg.Billing.CouponCacheSize, cfg.Billing.CouponCacheTTL)
	factory := billing.NewFactory(coupons)

	// The in-process gateway confirms everything locally; a deployment
	// against a real payment processor replaces this with its own
	// processor.Gateway implementation.
	gateway := processor.NewLocalGateway(registry)

	sync, err := processor.NewSync(processor.SyncConfig{
		Gateway:  gateway,
		Store:    customers,
		Registry: registry,
		Coupons:  coupons,
		Logger:   logger,
		Metrics:  metrics,
	})
	if err != nil {
		log.Fatalf("Failed to build sync orchestrator: %v", err)
	}

	server, err := api.NewServer(api.Config{
		Store:         customers,
		Coupons:       couponStore,
		Catalog:       catalog,
		Factory:       factory,
		Sync:          sync,
		Registry:      registry,
		ServiceLogger: logger,
		Metrics:       metrics,
	})
	if err != nil {
		log.Fatalf("Failed to build API server: %v", err)
	}

	// Background sweep and gauge refresh.
	scheduler := cron.New()
	if cfg.Billing.CouponSweepSpec != "" {
		_, err = scheduler.AddFunc(cfg.Billing.CouponSweepSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Storage.PostgresTimeout)
			defer cancel()

			deleted, err := couponStore.SweepExpired(ctx, time.Now().UTC())
			if err != nil {
				logger.WithError(err).Warn("expired-coupon sweep failed")
				return
			}
			if deleted > 0 {
				logger.WithField("deleted", deleted).Info("expired coupons removed")
			}
			refreshGauges(ctx, customers, couponStore, metrics, logger)
		})
		if err != nil {
			log.Fatalf("Failed to schedule coupon sweep: %v", err)
		}
		scheduler.Start()
		log.Printf("Coupon sweep schedule: %s", cfg.Billing.CouponSweepSpec)
	}
	refreshGauges(context.Background(), customers, couponStore, metrics, logger)

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", health.LivenessHandler())
	healthMux.HandleFunc("/readyz", health.ReadinessHandler())
	if metrics != nil {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthSrv := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthMux,
	}
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Health server failed: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	go func() {
		log.Printf("Subscriptions server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Health server shutdown failed: %v", err)
	}

	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	log.Println("Server stopped")
}

// refreshGauges recomputes the customer and active-coupon gauges from the
// stores. Failures are logged and skipped; gauges catch up on the next
// sweep.
func refreshGauges(ctx context.Context, customers storage.CustomerStore, coupons storage.CouponStore, metrics *observability.Metrics, logger *observability.Logger) {
	if metrics == nil {
		return
	}

	if _, total, err := customers.List(ctx, 1, 0); err != nil {
		logger.WithError(err).Warn("customer gauge refresh failed")
	} else {
		metrics.CustomersTotal.Set(float64(total))
	}

	all, err := coupons.List(ctx)
	if err != nil {
		logger.WithError(err).Warn("coupon gauge refresh failed")
		return
	}
	now := time.Now().UTC()
	active := 0
	for _, c := range all {
		if c.Exhausted() {
			continue
		}
		if c.StartAt != nil && now.Before(*c.StartAt) {
			continue
		}
		if c.ExpireAt != nil && now.After(*c.ExpireAt) {
			continue
		}
		active++
	}
	metrics.CouponsActive.Set(float64(active))
}
