package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/config"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/models"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/repository"
)

// TokenService manages the refresh token lifecycle: issuance, rotation with
// replay detection, family revocation and explicit revocation.
type TokenService interface {
	IssueForUser(ctx context.Context, user *models.User, meta ClientMeta) (*TokenPair, error)
	// Refresh exchanges a refresh token for a new pair. Every validity failure
	// (unknown, expired, replayed) is reported as ErrInvalidToken.
	Refresh(ctx context.Context, refreshToken string, meta ClientMeta) (*TokenPair, error)
	RevokeFamily(ctx context.Context, refreshToken string) (int64, error)
	RevokeOne(ctx context.Context, refreshToken string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uint) (int64, error)
	// ReplaceCredentials applies update and revokes every refresh token of the
	// user in one transaction. Neither write lands if either fails.
	ReplaceCredentials(ctx context.Context, userID uint, update func(ctx context.Context, users repository.UserRepository) error) (int64, error)
	ListActiveSessions(ctx context.Context, userID uint) ([]models.RefreshToken, error)
	ValidateAccessToken(tokenString string) (*AccessClaims, error)
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	Role         string
}

// ClientMeta describes the client presenting a credential
type ClientMeta struct {
	IP        string
	UserAgent string
}

type tokenService struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.RefreshTokenRepository
	events     *SecurityEventRecorder
	jwtSecret  []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// TokenServiceOption customises a token service
type TokenServiceOption func(*tokenService)

// WithClock overrides the time source
func WithClock(now func() time.Time) TokenServiceOption {
	return func(s *tokenService) {
		s.now = now
	}
}

// NewTokenService creates a new token service instance. events may be nil.
func NewTokenService(
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	events *SecurityEventRecorder,
	cfg *config.Config,
	logger *slog.Logger,
	opts ...TokenServiceOption,
) TokenService {
	s := &tokenService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		events:     events,
		jwtSecret:  []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		audience:   cfg.JWTAudience,
		accessTTL:  cfg.AccessTokenTTL(),
		refreshTTL: cfg.RefreshTokenTTL(),
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ErrInvalidToken is returned for every refresh token that cannot be exchanged,
// whatever the reason.
var ErrInvalidToken = errors.New("invalid or expired token")
