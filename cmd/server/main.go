package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/good2go/storefront/app/catalog"
	"github.com/good2go/storefront/app/categories"
	"github.com/good2go/storefront/app/checkout"
	"github.com/good2go/storefront/app/orders"
	"github.com/good2go/storefront/app/session"
	"github.com/good2go/storefront/app/trays"
	"github.com/good2go/storefront/config"
	"github.com/good2go/storefront/handoff"
	"github.com/good2go/storefront/models"
	"github.com/good2go/storefront/pickup"
	"github.com/good2go/storefront/pkg/idempotency"
	"github.com/good2go/storefront/pkg/logging"
	"github.com/good2go/storefront/pkg/shutdown"
	"github.com/good2go/storefront/tray"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("load config failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	loc, err := cfg.Location()
	if err != nil {
		log.Error("load timezone failed", "tz", cfg.Timezone, "err", err)
		os.Exit(1)
	}
	schedule, err := pickup.NewSchedule(cfg.PickupSlots, cfg.PickupLeadTime, loc)
	if err != nil {
		log.Error("invalid pickup slots", "err", err)
		os.Exit(1)
	}

	// Postgres
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	if err := models.Migrate(db); err != nil {
		log.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	// Redis backs session trays and idempotency keys
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis ping failed", "addr", cfg.RedisAddr, "err", err)
	}
	trayStore := tray.NewRedisStore(rdb, "storefront:", cfg.TrayTTL)
	idem := idempotency.NewStore(rdb, cfg.IdempotencyTTL)

	products := models.NewProductsRepository(db)
	orderRepo := models.NewOrdersRepository(db)
	composer := handoff.NewComposer(cfg.WhatsAppPhone, cfg.Brand)
	checkoutSvc := checkout.NewService(log, orderRepo, trayStore, schedule, composer, cfg.SubmitTimeout)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(session.Middleware)

	r.Mount("/catalog", catalog.NewCatalogHandler(log, products, trayStore).Routes())
	r.Mount("/categories", categories.NewCategoryHandler(log, products).Routes())
	r.Mount("/tray", trays.NewTrayHandler(log, products, trayStore).Routes())
	r.Mount("/checkout", checkout.NewHandler(log, checkoutSvc, idem).Routes())
	r.Mount("/orders", orders.NewOrderHandler(log, orderRepo, composer).Routes())

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.SubmitTimeout + 5*time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	// In-flight checkouts run detached for up to SubmitTimeout.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.SubmitTimeout+5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	log.Info("storefront shutdown complete")
}
