package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/api"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/config"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/repository"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/service"
	internalgrpc "github.com/OnlyUp2219/TimeCafe-sub002/internal/grpc"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/handler"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/logger"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/middleware"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/worker"
)

func main() {
	// 1. Config
	cfg := config.LoadConfig()

	// 2. Logger
	appLogger := logger.New(cfg)

	appLogger.Info("🚀 [Go] Starting TimeCafe auth service...",
		"environment", cfg.AppEnv,
	)

	if cfg.IsProduction() && cfg.JWTSecret == "timecafe_secret" {
		appLogger.Error("❌ JWT_SECRET must be set in production")
		os.Exit(1)
	}

	// 3. Connect to Database
	db, err := database.ConnectDatabase(cfg, appLogger)
	if err != nil {
		appLogger.Error("❌ Failed to connect to database", "error", err)
		os.Exit(1)
	}

	// 4. Initialize Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	securityEventRepo := repository.NewSecurityEventRepository(db)

	// 5. Background workers
	pool := worker.NewPool(10*time.Second, appLogger)

	// 6. Initialize Services
	events := service.NewSecurityEventRecorder(securityEventRepo, pool, appLogger)
	tokenService := service.NewTokenService(userRepo, refreshTokenRepo, events, cfg, appLogger)
	authService := service.NewAuthService(userRepo, tokenService, int(cfg.BcryptCost), appLogger)

	// 7. Initialize Rate Limiter
	var rateLimiter middleware.RateLimiter
	redisClient, err := database.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Warn("⚠️ Failed to connect to Redis, using no-op rate limiter", "error", err)
		rateLimiter = middleware.NewNoOpRateLimiter(appLogger)
	} else {
		rateLimiter = middleware.NewRateLimiter(redisClient, cfg.AuthRateLimit, cfg.RateWindow(), appLogger)
	}
	defer rateLimiter.Close()

	// 8. Initialize Handlers & Middleware
	authHandler := handler.NewAuthHandler(authService, appLogger)
	userHandler := handler.NewUserHandler(authService, appLogger)
	adminHandler := handler.NewAdminHandler(tokenService, securityEventRepo, appLogger)
	authMiddleware := middleware.NewAuthMiddleware(authService, appLogger)

	r := api.SetupRouter(authHandler, userHandler, adminHandler, authMiddleware, rateLimiter, appLogger)

	// 9. Start gRPC health server
	healthServer := internalgrpc.NewHealthServer(appLogger)
	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.ApiGrpcPort))
	if err != nil {
		appLogger.Error("❌ Failed to listen for gRPC", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := healthServer.Serve(grpcListener); err != nil {
			appLogger.Error("❌ gRPC Server failed", "error", err)
		}
	}()

	// 10. Start HTTP Server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ApiServicePort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("🌍 [Go] HTTP Server running on port...", "port", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("❌ HTTP Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	healthServer.SetServing(true)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("🛑 [Go] Shutting down...")
	healthServer.SetServing(false)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTTL())
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("❌ HTTP Server forced to shutdown", "error", err)
	}

	healthServer.Stop()
	pool.Shutdown(cfg.ShutdownTTL())

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	appLogger.Info("👋 [Go] Server exited")
}
