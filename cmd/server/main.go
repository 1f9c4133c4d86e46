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

	"github.com/aldenair/storefront-backend/config"
	"github.com/aldenair/storefront-backend/internal/app/controller"
	"github.com/aldenair/storefront-backend/internal/app/repository"
	"github.com/aldenair/storefront-backend/internal/app/service"
	"github.com/aldenair/storefront-backend/internal/db"
	"github.com/aldenair/storefront-backend/internal/middleware"
	"github.com/aldenair/storefront-backend/internal/router"
	"github.com/aldenair/storefront-backend/internal/scheduler"
	"github.com/aldenair/storefront-backend/internal/storage"
	ws "github.com/aldenair/storefront-backend/internal/websocket"
	"github.com/aldenair/storefront-backend/pkg/logger"
	"github.com/aldenair/storefront-backend/pkg/ratelimit"
	appredis "github.com/aldenair/storefront-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Server.LogFormat,
		EnableColor: cfg.Server.Environment == "development",
		Service:     "aldenair-storefront",
	})

	logger.Info("Starting ALDENAIR storefront backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(cfg.Cart.BundlesFile); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional: without it carts live in memory only, rate limits
	// are per instance and logout cannot revoke tokens server side.
	var (
		persister   service.CartPersister
		revocations middleware.TokenRevocations
		revoker     controller.TokenRevoker
		limiter     ratelimit.Limiter
		pruner      scheduler.Pruner
	)
	if cfg.Redis.Enabled {
		if err := appredis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, falling back to in-memory state", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer appredis.Close()
			client := appredis.GetClient()
			persister = appredis.NewCartSnapshotStore(client, cfg.Cart.SessionTTL)
			blacklist := appredis.NewTokenBlacklist(client)
			revocations, revoker = blacklist, blacklist
			if cfg.RateLimit.Enabled {
				limiter = ratelimit.NewRedisLimiter(client, "ratelimit", cfg.RateLimit.Requests, cfg.RateLimit.Window)
			}
		}
	}
	if limiter == nil && cfg.RateLimit.Enabled {
		memLimiter := ratelimit.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		limiter, pruner = memLimiter, memLimiter
	}

	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	gormDB := db.GetDB()
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	bundleRepo := repository.NewBundleRepository(gormDB)
	orderRepo := repository.NewOrderRepository(gormDB)
	partnerRepo := repository.NewPartnerRepository(gormDB)

	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	catalogService := service.NewCatalogService(productRepo)
	bundleService := service.NewBundleService(bundleRepo)
	cartService := service.NewCartService(catalogService, bundleService, persister, hub)
	loyaltyService := service.NewLoyaltyService(userRepo)
	checkoutService := service.NewCheckoutService(cartService, orderRepo, loyaltyService, cfg.Cart.Currency)
	partnerService := service.NewPartnerService(partnerRepo)

	controllers := router.Controllers{
		Auth:     controller.NewAuthController(authService, revoker, cfg.JWT.AccessTokenExpiry),
		Product:  controller.NewProductController(catalogService),
		Cart:     controller.NewCartController(cartService, bundleService, hub, cfg.Cart.Currency, cfg.CORS.AllowedOrigins),
		Bundle:   controller.NewBundleController(bundleService),
		Checkout: controller.NewCheckoutController(checkoutService),
		Loyalty:  controller.NewLoyaltyController(loyaltyService),
		Partner:  controller.NewPartnerController(partnerService),
	}

	if cfg.S3.Bucket != "" {
		s3Storage, err := storage.NewS3Storage(context.Background(), cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, cfg.S3.BaseURL)
		if err != nil {
			logger.Warn("S3 storage unavailable, image uploads disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			controllers.Upload = controller.NewUploadController(s3Storage)
		}
	}

	sweeper := scheduler.NewCartSessionScheduler(cartService, cfg.Cart.SweepSchedule, cfg.Cart.SessionTTL, pruner)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start cart session scheduler", err)
	}
	defer sweeper.Stop()

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, revocations)
	engine := router.NewRouter(controllers, authMiddleware, limiter, cfg).Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shut down", err)
	}
	if err := cartService.Flush(ctx); err != nil {
		logger.Error("Cart snapshots not fully persisted", err)
	}
	logger.Info("Server stopped", map[string]interface{}{
		"open_cart_sessions": cartService.ActiveSessions(),
	})
}
