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

	"github.com/ikkim/agroshop-backend/config"
	"github.com/ikkim/agroshop-backend/internal/app/controller"
	"github.com/ikkim/agroshop-backend/internal/app/repository"
	"github.com/ikkim/agroshop-backend/internal/app/service"
	"github.com/ikkim/agroshop-backend/internal/db"
	"github.com/ikkim/agroshop-backend/internal/events"
	"github.com/ikkim/agroshop-backend/internal/idempotency"
	"github.com/ikkim/agroshop-backend/internal/middleware"
	"github.com/ikkim/agroshop-backend/internal/router"
	"github.com/ikkim/agroshop-backend/internal/scheduler"
	"github.com/ikkim/agroshop-backend/internal/storage"
	"github.com/ikkim/agroshop-backend/internal/websocket"
	"github.com/ikkim/agroshop-backend/pkg/logger"
	"github.com/ikkim/agroshop-backend/pkg/payment/stripe"
	"github.com/ikkim/agroshop-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := cfg.Log.Level
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Server.Environment == "development",
		Service:     "agroshop-api",
	})

	logger.Info("Starting Agroshop Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Checkout replays go to Redis when enabled so every instance sees them
	var replays idempotency.Store = idempotency.NewMemoryStore(cfg.Redis.ReplayTTL)
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, using in-memory checkout replay store", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			replays = idempotency.NewRedisStore(redis.GetClient(), cfg.Redis.ReplayTTL)
			defer redis.Close()
		}
	}

	// Order events go to the browser sessions of the owner and, when
	// brokers are configured, to Kafka
	hub := websocket.NewHub()
	go hub.Run()

	publisher := events.Fanout{hub}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
		if err != nil {
			logger.Fatal("Failed to create order event publisher", err)
		}
		publisher = append(publisher, kafkaPublisher)
	}
	defer publisher.Close()

	var images storage.ImageResolver = storage.StaticResolver{BaseURL: cfg.S3.BaseURL}
	if cfg.S3.Bucket != "" {
		images = storage.NewS3Storage(cfg.S3)
	}

	processor, err := stripe.NewClient(stripe.Config{
		SecretKey:      cfg.Payment.SecretKey,
		PublishableKey: cfg.Payment.PublishableKey,
		BaseURL:        cfg.Payment.BaseURL,
		Timeout:        cfg.Payment.Timeout,
	})
	if err != nil {
		logger.Fatal("Failed to create payment processor client", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Initialize services
	productService := service.NewProductService(productRepo, cfg.Shop.ApplyTierPricing)
	cartService := service.NewCartService(cartRepo, productRepo, cfg.Shop.ApplyTierPricing)
	orderService := service.NewOrderService(db.GetDB(), orderRepo, cartRepo, productRepo, service.OrderOptions{
		ShippingCost:    cfg.Shop.ShippingCost,
		RevalidateStock: cfg.Shop.RevalidateStock,
	})
	paymentService := service.NewPaymentService(processor, cfg.Shop.Currency)
	checkoutService := service.NewCheckoutService(orderService, paymentService, publisher)

	// Initialize controllers
	presenter := controller.NewPresenter(images)
	productController := controller.NewProductController(productService, presenter)
	cartController := controller.NewCartController(cartService, presenter)
	checkoutController := controller.NewCheckoutController(checkoutService, replays, presenter)
	orderController := controller.NewOrderController(orderService, presenter)
	adminController := controller.NewAdminController(orderService, presenter, cfg.Scheduler.UnlinkedOrderAfter)
	streamController := controller.NewOrderStreamController(hub, cfg.CORS.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	r := router.NewRouter(
		productController,
		cartController,
		checkoutController,
		orderController,
		adminController,
		streamController,
		authMiddleware,
		cfg,
	)

	if cfg.Scheduler.Enabled {
		reconciler := scheduler.NewReconcileScheduler(orderService, cfg.Scheduler.ReconcileSpec, cfg.Scheduler.UnlinkedOrderAfter)
		if err := reconciler.Start(); err != nil {
			logger.Fatal("Failed to start reconciliation scheduler", err)
		}
		defer reconciler.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r.Setup(),
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}
