package service

import (
	"context"
	"fmt"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/models"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/repository"
)

func (s *tokenService) RevokeOne(ctx context.Context, refreshToken string) (bool, error) {
	if refreshToken == "" {
		return false, nil
	}

	revoked, err := s.tokenRepo.RevokeToken(ctx, refreshToken, s.now())
	if err != nil {
		s.logger.Error("❌ [TokenService] Failed to revoke refresh token", "error", err)
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}

	return revoked, nil
}

func (s *tokenService) RevokeAllForUser(ctx context.Context, userID uint) (int64, error) {
	count, err := s.tokenRepo.RevokeAllUserTokens(ctx, userID, s.now())
	if err != nil {
		s.logger.Error("❌ [TokenService] Failed to revoke user tokens", "user_id", userID, "error", err)
		return 0, fmt.Errorf("revoke user tokens: %w", err)
	}

	if count > 0 {
		s.logger.Info("🔒 [TokenService] Revoked all refresh tokens", "user_id", userID, "tokens", count)
		s.events.Record(models.EventUserTokensRevoked, userID, count, ClientMeta{})
	}

	return count, nil
}

func (s *tokenService) ReplaceCredentials(ctx context.Context, userID uint, update func(ctx context.Context, users repository.UserRepository) error) (int64, error) {
	var count int64

	err := s.userRepo.Transaction(ctx, func(users repository.UserRepository, tokens repository.RefreshTokenRepository) error {
		if err := update(ctx, users); err != nil {
			return err
		}

		var err error
		count, err = tokens.RevokeAllUserTokens(ctx, userID, s.now())
		if err != nil {
			return fmt.Errorf("revoke user tokens: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("❌ [TokenService] Failed to replace credentials", "user_id", userID, "error", err)
		return 0, err
	}

	if count > 0 {
		s.logger.Info("🔒 [TokenService] Revoked all refresh tokens", "user_id", userID, "tokens", count)
		s.events.Record(models.EventUserTokensRevoked, userID, count, ClientMeta{})
	}

	return count, nil
}

func (s *tokenService) ListActiveSessions(ctx context.Context, userID uint) ([]models.RefreshToken, error) {
	tokens, err := s.tokenRepo.ListActiveByUser(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return tokens, nil
}
