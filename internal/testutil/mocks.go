package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/models"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/repository"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/service"
)

// ==================== MOCK USER REPOSITORY ====================

// MockUserRepository implements repository.UserRepository for testing.
// Transaction runs the callback against the mock and Tokens.
type MockUserRepository struct {
	mock.Mock
	Tokens repository.RefreshTokenRepository
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Transaction(ctx context.Context, fn func(users repository.UserRepository, tokens repository.RefreshTokenRepository) error) error {
	return fn(m, m.Tokens)
}

// ==================== MOCK REFRESH TOKEN REPOSITORY ====================

// MockRefreshTokenRepository implements repository.RefreshTokenRepository for testing.
// Transaction runs the callback against the mock itself.
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) FindPredecessor(ctx context.Context, token string) (*models.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) MarkRotated(ctx context.Context, token, replacedBy string, at time.Time) error {
	args := m.Called(ctx, token, replacedBy, at)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) RevokeToken(ctx context.Context, token string, at time.Time) (bool, error) {
	args := m.Called(ctx, token, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockRefreshTokenRepository) RevokeTokens(ctx context.Context, tokens []string, at time.Time) (int64, error) {
	args := m.Called(ctx, tokens, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRefreshTokenRepository) RevokeAllUserTokens(ctx context.Context, userID uint, at time.Time) (int64, error) {
	args := m.Called(ctx, userID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRefreshTokenRepository) ListActiveByUser(ctx context.Context, userID uint, now time.Time) ([]models.RefreshToken, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Transaction(ctx context.Context, fn func(repo repository.RefreshTokenRepository) error) error {
	return fn(m)
}

// ==================== MOCK AUTH SERVICE ====================

// MockAuthService implements service.AuthService for testing
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password string, meta service.ClientMeta) (*models.User, *service.TokenPair, error) {
	args := m.Called(ctx, email, password, meta)
	var user *models.User
	var tokens *service.TokenPair
	if args.Get(0) != nil {
		user = args.Get(0).(*models.User)
	}
	if args.Get(1) != nil {
		tokens = args.Get(1).(*service.TokenPair)
	}
	return user, tokens, args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string, meta service.ClientMeta) (*models.User, *service.TokenPair, error) {
	args := m.Called(ctx, email, password, meta)
	var user *models.User
	var tokens *service.TokenPair
	if args.Get(0) != nil {
		user = args.Get(0).(*models.User)
	}
	if args.Get(1) != nil {
		tokens = args.Get(1).(*service.TokenPair)
	}
	return user, tokens, args.Error(2)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string, meta service.ClientMeta) (*service.TokenPair, error) {
	args := m.Called(ctx, refreshToken, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenPair), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) (bool, error) {
	args := m.Called(ctx, refreshToken)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthService) LogoutAll(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) (int64, error) {
	args := m.Called(ctx, userID, currentPassword, newPassword)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuthService) ListSessions(ctx context.Context, userID uint) ([]models.RefreshToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RefreshToken), args.Error(1)
}

func (m *MockAuthService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) ValidateAccessToken(tokenString string) (*service.AccessClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AccessClaims), args.Error(1)
}
