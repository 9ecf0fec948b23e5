package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/models"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/handler"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/middleware"
)

// Rate limit scopes
const (
	ScopeLogin   = "login"
	ScopeRefresh = "refresh"
)

func SetupRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	adminHandler *handler.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter middleware.RateLimiter,
	logger *slog.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	r.SetTrustedProxies(nil)

	// Public routes
	r.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Auth routes (Public)
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/register", middleware.RateLimit(rateLimiter, ScopeLogin, logger), authHandler.Register)
		authGroup.POST("/login", middleware.RateLimit(rateLimiter, ScopeLogin, logger), authHandler.Login)
		authGroup.POST("/refresh", middleware.RateLimit(rateLimiter, ScopeRefresh, logger), authHandler.RefreshToken)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Protected API routes
	api := r.Group("/api/v1")
	api.Use(authMiddleware.RequireAuth())
	{
		api.POST("/auth/logout-all", authHandler.LogoutAll)
		api.POST("/auth/change-password", authHandler.ChangePassword)
		api.GET("/auth/sessions", authHandler.ListSessions)
		api.GET("/users/me", userHandler.GetProfile)
	}

	admin := api.Group("/admin")
	admin.Use(authMiddleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/users/:id/revoke-tokens", adminHandler.RevokeUserTokens)
		admin.GET("/users/:id/security-events", adminHandler.ListSecurityEvents)
	}

	return r
}
