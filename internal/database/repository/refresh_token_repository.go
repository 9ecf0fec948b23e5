package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/models"
)

// RefreshTokenRepository defines the interface for refresh token operations
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	// FindByToken returns the record whether or not it is revoked or expired
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	// FindPredecessor returns the record that was rotated into token
	FindPredecessor(ctx context.Context, token string) (*models.RefreshToken, error)
	// MarkRotated revokes token and links it to replacedBy, only if it is still live
	MarkRotated(ctx context.Context, token, replacedBy string, at time.Time) error
	RevokeToken(ctx context.Context, token string, at time.Time) (bool, error)
	RevokeTokens(ctx context.Context, tokens []string, at time.Time) (int64, error)
	RevokeAllUserTokens(ctx context.Context, userID uint, at time.Time) (int64, error)
	ListActiveByUser(ctx context.Context, userID uint, now time.Time) ([]models.RefreshToken, error)
	// Transaction runs fn with a repository bound to a single database transaction
	Transaction(ctx context.Context, fn func(repo RefreshTokenRepository) error) error
}

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new refresh token repository instance
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *refreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&refreshToken).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	return &refreshToken, nil
}

func (r *refreshTokenRepository) FindPredecessor(ctx context.Context, token string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("replaced_by_token = ?", token).
		First(&refreshToken).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	return &refreshToken, nil
}

func (r *refreshTokenRepository) MarkRotated(ctx context.Context, token, replacedBy string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND is_revoked = ? AND replaced_by_token IS NULL", token, false).
		Updates(map[string]interface{}{
			"is_revoked":        true,
			"revoked_at":        at,
			"replaced_by_token": replacedBy,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrTokenAlreadyRevoked
	}

	return nil
}

func (r *refreshTokenRepository) RevokeToken(ctx context.Context, token string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND is_revoked = ?", token, false).
		Updates(map[string]interface{}{
			"is_revoked": true,
			"revoked_at": at,
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *refreshTokenRepository) RevokeTokens(ctx context.Context, tokens []string, at time.Time) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token IN ?", tokens).
		Updates(map[string]interface{}{
			"is_revoked": true,
			"revoked_at": gorm.Expr("COALESCE(revoked_at, ?)", at),
		})

	return result.RowsAffected, result.Error
}

func (r *refreshTokenRepository) RevokeAllUserTokens(ctx context.Context, userID uint, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Updates(map[string]interface{}{
			"is_revoked": true,
			"revoked_at": at,
		})

	return result.RowsAffected, result.Error
}

func (r *refreshTokenRepository) ListActiveByUser(ctx context.Context, userID uint, now time.Time) ([]models.RefreshToken, error) {
	var tokens []models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_revoked = ? AND expires_at > ?", userID, false, now).
		Order("created_at DESC").
		Find(&tokens).Error

	return tokens, err
}

func (r *refreshTokenRepository) Transaction(ctx context.Context, fn func(repo RefreshTokenRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&refreshTokenRepository{db: tx})
	})
}

// Repository errors
var (
	ErrTokenNotFound       = errors.New("token not found")
	ErrTokenAlreadyRevoked = errors.New("token already revoked")
)
