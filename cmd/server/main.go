package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samnasalta/orderbot-backend/config"
	"github.com/samnasalta/orderbot-backend/internal/app/controller"
	"github.com/samnasalta/orderbot-backend/internal/app/repository"
	"github.com/samnasalta/orderbot-backend/internal/app/service"
	"github.com/samnasalta/orderbot-backend/internal/db"
	"github.com/samnasalta/orderbot-backend/internal/middleware"
	"github.com/samnasalta/orderbot-backend/internal/notify"
	"github.com/samnasalta/orderbot-backend/internal/router"
	"github.com/samnasalta/orderbot-backend/internal/scheduler"
	"github.com/samnasalta/orderbot-backend/internal/storage"
	"github.com/samnasalta/orderbot-backend/internal/websocket"
	"github.com/samnasalta/orderbot-backend/pkg/logger"
	"github.com/samnasalta/orderbot-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Samna Salta Backend Server", map[string]interface{}{
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

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed the default catalog on first boot
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis is a cache only; the server runs without it
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, menu caching disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer redis.Close()
	}

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Telegram gateway for customer and admin notifications
	var gateway notify.Gateway
	if cfg.Telegram.BotToken != "" {
		gateway = notify.NewTelegramGateway(cfg.Telegram.APIBaseURL, cfg.Telegram.BotToken, cfg.Telegram.SendTimeout)
	} else {
		logger.Warn("Bot token not configured, notifications disabled", nil)
		gateway = notify.NopGateway{}
	}

	// Initialize services
	customerService := service.NewCustomerService(customerRepo)
	productService := service.NewProductService(productRepo, cfg.Business.MenuCacheExpiry)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, customerRepo, db.GetDB(), gateway, cfg)

	// Live order feed for the dashboard
	hub := websocket.NewHub()
	go hub.Run()

	// Product image uploads
	var s3Storage *storage.S3Storage
	if cfg.S3.Bucket != "" {
		s3Storage = storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
	}

	// Purge carts that have sat idle past the expiry window
	cartCleanup := scheduler.NewCartCleanupScheduler(cartRepo, cfg.Business.CartIdleExpiry)
	if err := cartCleanup.Start(); err != nil {
		logger.Error("Failed to start cart cleanup scheduler", err)
	}
	defer cartCleanup.Stop()

	// Initialize controllers
	authController := controller.NewAuthController(customerService, cfg)
	customerController := controller.NewCustomerController(customerService)
	productController := controller.NewProductController(productService, s3Storage)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService, customerService, hub)
	wsController := controller.NewWSController(hub)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		customerController,
		productController,
		cartController,
		orderController,
		wsController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
