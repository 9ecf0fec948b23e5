package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/repository"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/service"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/middleware"
)

// UserHandler handles user API requests
type UserHandler struct {
	service service.AuthService
	logger  *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(service service.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// GetProfile handles GET /users/me - returns the current user's account
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		h.logger.Error("❌ [UserHandler] User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.Error("❌ [UserHandler] Failed to get user", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"role":       user.PrimaryRole(),
			"created_at": user.CreatedAt,
			"updated_at": user.UpdatedAt,
		},
	})
}
