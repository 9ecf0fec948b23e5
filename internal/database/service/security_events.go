package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/models"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/repository"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/worker"
)

// SecurityEventRecorder writes audit rows in the background. Failures are
// logged and never reach the request that triggered the event.
type SecurityEventRecorder struct {
	repo   repository.SecurityEventRepository
	pool   worker.Submitter
	logger *slog.Logger
}

// NewSecurityEventRecorder creates a recorder that runs writes on pool
func NewSecurityEventRecorder(repo repository.SecurityEventRepository, pool worker.Submitter, logger *slog.Logger) *SecurityEventRecorder {
	return &SecurityEventRecorder{
		repo:   repo,
		pool:   pool,
		logger: logger,
	}
}

// Record schedules an audit row. A nil recorder does nothing.
func (r *SecurityEventRecorder) Record(eventType string, userID uint, affected int64, meta ClientMeta) {
	if r == nil {
		return
	}

	event := &models.SecurityEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		EventType: eventType,
		Affected:  affected,
		ClientIP:  truncate(meta.IP, 64),
		UserAgent: truncate(meta.UserAgent, 255),
	}

	r.pool.Submit("security_event:"+eventType, func(ctx context.Context) {
		if err := r.repo.Create(ctx, event); err != nil {
			r.logger.Error("❌ [SecurityEvents] Failed to record event",
				"event_type", eventType,
				"user_id", userID,
				"error", err,
			)
			return
		}

		r.logger.Debug("📝 [SecurityEvents] Recorded event",
			"event_id", event.EventID,
			"event_type", eventType,
			"user_id", userID,
		)
	})
}
