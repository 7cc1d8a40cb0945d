package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/storefront-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/shopper"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

func main() {
	cfg := config.Load()

	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.Lmicroseconds)

	// Money goes over the wire as JSON numbers, like the backend sends it
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- storage ---
	var (
		store   storage.Store
		seqRepo events.SequenceRepository
	)
	if cfg.DatabaseDSN != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatalf("db connect: %v", err)
		}
		defer pool.Close()

		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				logger.Fatalf("db migrate: %v", err)
			}
		}
		store = storage.NewPostgresStore(pool)
		seqRepo = events.NewPostgresSequence(pool)
	} else {
		logger.Printf("DATABASE_DSN not set: shopper state kept in memory")
		store = storage.NewMemoryStore()
		seqRepo = events.NewMemorySequence()
	}

	// --- events ---
	var publisher events.Publisher = events.NewLoggingPublisher(logger)
	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL, 10, 2*time.Second)
		if err != nil {
			logger.Fatalf("amqp connect: %v", err)
		}
		defer conn.Close()

		amqpPub, err := events.NewAMQPPublisher(conn, seqRepo)
		if err != nil {
			logger.Fatalf("amqp publisher: %v", err)
		}
		publisher = amqpPub
	}
	defer publisher.Close()

	// Base HTTP client (shared)
	sharedHTTP := &http.Client{
		Timeout: cfg.UpstreamTimeout,
	}
	backend := clients.NewClient("food-delivery-backend", cfg.BackendURL, sharedHTTP)

	// Typed clients
	auth := clients.NewAuthClient(backend)
	restaurants := clients.NewRestaurantClient(backend)
	menu := clients.NewMenuClient(backend)
	categories := clients.NewCategoryClient(backend)
	orders := clients.NewOrderClient(backend)
	payments := clients.NewPaymentClient(backend)
	addresses := clients.NewAddressClient(backend)

	fees := cart.Fees{
		DefaultDeliveryFee: cfg.DefaultDeliveryFee,
		PlatformFee:        cfg.PlatformFee,
		TaxRate:            cfg.TaxRate,
	}

	registry := shopper.NewRegistry(shopper.Options{
		Store: store,
		Backend: shopper.Backend{
			Auth:      auth,
			Orders:    orders,
			Payments:  payments,
			Addresses: addresses,
		},
		Events:   publisher,
		Fees:     fees,
		ToastTTL: cfg.ToastTTL,
		Logger:   logger,
	})
	go sweepShoppers(ctx, registry, cfg.ShopperIdleTTL, logger)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:       logger,
		Cfg:          cfg,
		Shoppers:     registry,
		Fees:         fees,
		Restaurants:  restaurants,
		Menu:         menu,
		Categories:   categories,
		Orders:       orders,
		Addresses:    addresses,
		HealthProbes: []clients.HealthProbe{{Name: "food-delivery-backend", Client: backend, Path: cfg.BackendHealthPath}},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on :%s (backend %s)", cfg.Port, cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	select {
	case <-ctx.Done():
		logger.Printf("shutdown requested")
	case err := <-errCh:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown error: %v", err)
	}
	logger.Printf("shutdown complete")
}

// sweepShoppers evicts idle shoppers from memory. Their state stays in
// storage and is restored on their next request.
func sweepShoppers(ctx context.Context, reg *shopper.Registry, idle time.Duration, logger *log.Logger) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(max(idle/2, time.Minute))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := reg.Sweep(idle); n > 0 {
				logger.Printf("evicted %d idle shoppers (%d active)", n, reg.Len())
			}
		}
	}
}
