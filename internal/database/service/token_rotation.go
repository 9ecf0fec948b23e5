package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/models"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/repository"
)

func (s *tokenService) Refresh(ctx context.Context, refreshToken string, meta ClientMeta) (*TokenPair, error) {
	s.logger.Info("🔄 [TokenService] Token refresh attempt")

	if refreshToken == "" {
		return nil, ErrInvalidToken
	}

	stored, err := s.tokenRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			s.logger.Warn("⚠️ [TokenService] Unknown refresh token")
			return nil, ErrInvalidToken
		}
		s.logger.Error("❌ [TokenService] Database error", "error", err)
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}

	now := s.now()

	if stored.IsExpired(now) {
		s.logger.Warn("⚠️ [TokenService] Expired refresh token", "user_id", stored.UserID)
		return nil, ErrInvalidToken
	}

	if stored.IsRevoked {
		s.logger.Warn("🚨 [TokenService] Revoked refresh token replayed, revoking token family",
			"user_id", stored.UserID,
			"client_ip", meta.IP,
		)
		if err := s.containReuse(ctx, stored, meta); err != nil {
			return nil, err
		}
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("⚠️ [TokenService] Refresh token owner no longer exists", "user_id", stored.UserID)
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup token owner: %w", err)
	}

	accessToken, err := s.signAccessToken(user, now)
	if err != nil {
		return nil, err
	}

	successor, err := s.newRefreshRecord(user.ID, now, meta)
	if err != nil {
		return nil, err
	}

	// The successor row must exist before the predecessor points at it.
	err = s.tokenRepo.Transaction(ctx, func(repo repository.RefreshTokenRepository) error {
		if err := repo.Create(ctx, successor); err != nil {
			return fmt.Errorf("store successor refresh token: %w", err)
		}
		return repo.MarkRotated(ctx, stored.Token, successor.Token, now)
	})
	if err != nil {
		if errors.Is(err, repository.ErrTokenAlreadyRevoked) {
			// Another request rotated this token between our read and write.
			s.logger.Warn("🚨 [TokenService] Concurrent reuse of refresh token, revoking token family",
				"user_id", stored.UserID,
				"client_ip", meta.IP,
			)
			if err := s.containReuse(ctx, stored, meta); err != nil {
				return nil, err
			}
			return nil, ErrInvalidToken
		}
		s.logger.Error("❌ [TokenService] Failed to rotate refresh token", "user_id", stored.UserID, "error", err)
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	s.logger.Info("✅ [TokenService] Token refreshed successfully", "user_id", user.ID)
	return s.pair(accessToken, successor, user), nil
}

func (s *tokenService) RevokeFamily(ctx context.Context, refreshToken string) (int64, error) {
	var (
		revoked int64
		userID  uint
	)

	err := s.tokenRepo.Transaction(ctx, func(repo repository.RefreshTokenRepository) error {
		chain, err := collectFamily(ctx, repo, refreshToken)
		if err != nil {
			return err
		}
		if len(chain) == 0 {
			return nil
		}

		tokens := make([]string, 0, len(chain))
		for _, record := range chain {
			tokens = append(tokens, record.Token)
		}

		now := s.now()
		if _, err := repo.RevokeTokens(ctx, tokens, now); err != nil {
			return err
		}

		extra, err := revokeLateSuccessors(ctx, repo, chain, now)
		if err != nil {
			return err
		}

		userID = chain[0].UserID
		revoked = int64(len(chain)) + extra
		return nil
	})
	if err != nil {
		s.logger.Error("❌ [TokenService] Failed to revoke token family", "error", err)
		return 0, fmt.Errorf("revoke token family: %w", err)
	}

	if revoked > 0 {
		s.logger.Warn("🔒 [TokenService] Token family revoked", "user_id", userID, "tokens", revoked)
		s.events.Record(models.EventTokenFamilyRevoked, userID, revoked, ClientMeta{})
	}

	return revoked, nil
}

func (s *tokenService) containReuse(ctx context.Context, stored *models.RefreshToken, meta ClientMeta) error {
	revoked, err := s.RevokeFamily(ctx, stored.Token)
	if err != nil {
		return err
	}

	s.events.Record(models.EventRefreshTokenReuse, stored.UserID, revoked, meta)
	return nil
}

// collectFamily returns every record of the rotation chain containing token,
// from the login-issued root to the newest descendant. Unknown tokens yield an
// empty chain.
func collectFamily(ctx context.Context, repo repository.RefreshTokenRepository, token string) ([]*models.RefreshToken, error) {
	current, err := repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, nil
		}
		return nil, err
	}

	// Walk back to the root. The seen set stops on corrupted cyclic links.
	seen := map[string]struct{}{current.Token: {}}
	for {
		prev, err := repo.FindPredecessor(ctx, current.Token)
		if err != nil {
			if errors.Is(err, repository.ErrTokenNotFound) {
				break
			}
			return nil, err
		}
		if _, ok := seen[prev.Token]; ok {
			break
		}
		seen[prev.Token] = struct{}{}
		current = prev
	}

	chain := []*models.RefreshToken{current}
	visited := map[string]struct{}{current.Token: {}}
	for current.ReplacedByToken != nil {
		next, err := repo.FindByToken(ctx, *current.ReplacedByToken)
		if err != nil {
			if errors.Is(err, repository.ErrTokenNotFound) {
				break
			}
			return nil, err
		}
		if _, ok := visited[next.Token]; ok {
			break
		}
		visited[next.Token] = struct{}{}
		chain = append(chain, next)
		current = next
	}

	return chain, nil
}

// revokeLateSuccessors follows the tip of an already revoked chain and revokes
// any successor that a rotation committed after the chain was read. Once the
// tip is revoked no further rotation of it can succeed, so the loop ends when
// the tip has no successor.
func revokeLateSuccessors(ctx context.Context, repo repository.RefreshTokenRepository, chain []*models.RefreshToken, at time.Time) (int64, error) {
	visited := make(map[string]struct{}, len(chain))
	for _, record := range chain {
		visited[record.Token] = struct{}{}
	}

	var revoked int64
	tip := chain[len(chain)-1].Token
	for {
		current, err := repo.FindByToken(ctx, tip)
		if err != nil {
			return 0, err
		}
		if current.ReplacedByToken == nil {
			return revoked, nil
		}

		next := *current.ReplacedByToken
		if _, ok := visited[next]; ok {
			return revoked, nil
		}
		visited[next] = struct{}{}

		if _, err := repo.FindByToken(ctx, next); err != nil {
			if errors.Is(err, repository.ErrTokenNotFound) {
				return revoked, nil
			}
			return 0, err
		}
		if _, err := repo.RevokeTokens(ctx, []string{next}, at); err != nil {
			return 0, err
		}
		revoked++
		tip = next
	}
}
