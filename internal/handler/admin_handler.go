package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/repository"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/service"
)

const defaultEventLimit = 50

// AdminHandler handles admin API requests for session management
type AdminHandler struct {
	tokens service.TokenService
	events repository.SecurityEventRepository
	logger *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(tokens service.TokenService, events repository.SecurityEventRepository, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		tokens: tokens,
		events: events,
		logger: logger,
	}
}

// RevokeUserTokens handles POST /admin/users/:id/revoke-tokens
func (h *AdminHandler) RevokeUserTokens(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	h.logger.Info("🔒 [AdminHandler] Revoking all tokens", "user_id", userID)

	count, err := h.tokens.RevokeAllForUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("❌ [AdminHandler] Failed to revoke tokens", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "revoked": count})
}

// ListSecurityEvents handles GET /admin/users/:id/security-events
func (h *AdminHandler) ListSecurityEvents(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	events, err := h.events.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("❌ [AdminHandler] Failed to list security events", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list security events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *AdminHandler) parseUserID(c *gin.Context) (uint, bool) {
	userIDStr := c.Param("id")
	userID, err := strconv.ParseUint(userIDStr, 10, 64)
	if err != nil || userID == 0 {
		h.logger.Error("❌ [AdminHandler] Invalid user ID", "user_id", userIDStr, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return 0, false
	}
	return uint(userID), true
}
