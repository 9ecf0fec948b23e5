package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/models"
)

// SecurityEventRepository stores the token revocation audit trail
type SecurityEventRepository interface {
	Create(ctx context.Context, event *models.SecurityEvent) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.SecurityEvent, error)
}

type securityEventRepository struct {
	db *gorm.DB
}

// NewSecurityEventRepository creates a new security event repository instance
func NewSecurityEventRepository(db *gorm.DB) SecurityEventRepository {
	return &securityEventRepository{db: db}
}

func (r *securityEventRepository) Create(ctx context.Context, event *models.SecurityEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *securityEventRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.SecurityEvent, error) {
	var events []models.SecurityEvent
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&events).Error
	return events, err
}
