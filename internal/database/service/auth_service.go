package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/models"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/repository"
)

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, email, password string, meta ClientMeta) (*models.User, *TokenPair, error)
	Login(ctx context.Context, email, password string, meta ClientMeta) (*models.User, *TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string, meta ClientMeta) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) (bool, error)
	LogoutAll(ctx context.Context, userID uint) (int64, error)
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) (int64, error)
	ListSessions(ctx context.Context, userID uint) ([]models.RefreshToken, error)
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	ValidateAccessToken(tokenString string) (*AccessClaims, error)
}

type authService struct {
	userRepo   repository.UserRepository
	tokens     TokenService
	bcryptCost int
	dummyHash  []byte
	logger     *slog.Logger
}

// NewAuthService creates a new authentication service instance
func NewAuthService(
	userRepo repository.UserRepository,
	tokens TokenService,
	bcryptCost int,
	logger *slog.Logger,
) AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	// Compared against when the email is unknown so both paths cost one bcrypt check.
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("timecafe-dummy-password"), bcryptCost)

	return &authService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		dummyHash:  dummyHash,
		logger:     logger,
	}
}

func (s *authService) Register(ctx context.Context, email, password string, meta ClientMeta) (*models.User, *TokenPair, error) {
	s.logger.Info("📝 [AuthService] Registration attempt", "email", email)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to hash password", "error", err)
		return nil, nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleClient,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			s.logger.Warn("⚠️ [AuthService] Email already registered", "email", email)
			return nil, nil, ErrEmailAlreadyExists
		}
		s.logger.Error("❌ [AuthService] Failed to create user", "error", err)
		return nil, nil, err
	}

	tokens, err := s.tokens.IssueForUser(ctx, user, meta)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate tokens", "error", err)
		return nil, nil, err
	}

	s.logger.Info("✅ [AuthService] User registered successfully", "user_id", user.ID)
	return user, tokens, nil
}

func (s *authService) Login(ctx context.Context, email, password string, meta ClientMeta) (*models.User, *TokenPair, error) {
	s.logger.Info("🔐 [AuthService] Login attempt", "email", email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			s.logger.Warn("⚠️ [AuthService] User not found", "email", email)
			return nil, nil, ErrInvalidCredentials
		}
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("⚠️ [AuthService] Invalid password", "email", email)
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.tokens.IssueForUser(ctx, user, meta)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate tokens", "error", err)
		return nil, nil, err
	}

	s.logger.Info("✅ [AuthService] User logged in successfully", "user_id", user.ID)
	return user, tokens, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string, meta ClientMeta) (*TokenPair, error) {
	return s.tokens.Refresh(ctx, refreshToken, meta)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) (bool, error) {
	s.logger.Info("👋 [AuthService] Logout attempt")

	revoked, err := s.tokens.RevokeOne(ctx, refreshToken)
	if err != nil {
		return false, err
	}

	if revoked {
		s.logger.Info("✅ [AuthService] User logged out successfully")
	} else {
		s.logger.Debug("ℹ️ [AuthService] Logout with unknown or already revoked token")
	}

	return revoked, nil
}

func (s *authService) LogoutAll(ctx context.Context, userID uint) (int64, error) {
	s.logger.Info("👋 [AuthService] Logout from all sessions", "user_id", userID)
	return s.tokens.RevokeAllForUser(ctx, userID)
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) (int64, error) {
	s.logger.Info("🔑 [AuthService] Password change attempt", "user_id", userID)

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		s.logger.Warn("⚠️ [AuthService] Invalid current password", "user_id", userID)
		return 0, ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return 0, err
	}

	// Every outstanding session was opened with the old password.
	revoked, err := s.tokens.ReplaceCredentials(ctx, userID, func(ctx context.Context, users repository.UserRepository) error {
		user.PasswordHash = string(hashedPassword)
		if err := users.Update(ctx, user); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to change password", "user_id", userID, "error", err)
		return 0, err
	}

	s.logger.Info("✅ [AuthService] Password changed", "user_id", userID, "revoked_sessions", revoked)
	return revoked, nil
}

func (s *authService) ListSessions(ctx context.Context, userID uint) ([]models.RefreshToken, error) {
	return s.tokens.ListActiveSessions(ctx, userID)
}

func (s *authService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *authService) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	return s.tokens.ValidateAccessToken(tokenString)
}

// Service errors
var (
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
