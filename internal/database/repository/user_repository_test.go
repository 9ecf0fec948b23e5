package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/models"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/repository"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/testutil"
)

func TestUserRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *models.User
		wantErr error
	}{
		{
			name: "success",
			user: &models.User{
				Email:        "Test@Example.com",
				PasswordHash: "hashedpassword",
			},
		},
		{
			name: "duplicate email with different case",
			user: &models.User{
				Email:        "test@example.COM",
				PasswordHash: "hashedpassword",
			},
			wantErr: repository.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotZero(t, tt.user.ID)
				assert.Equal(t, "test@example.com", tt.user.Email)
			}
		})
	}
}

func TestUserRepository_ConcurrentCreateSameEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)

	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		taken   int
		other   []error
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(context.Background(), &models.User{Email: "race@example.com", PasswordHash: "hash"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, repository.ErrEmailTaken):
				taken++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, taken)
	assert.Empty(t, other)
}

func TestUserRepository_TransactionIsAtomic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "atomic@example.com", PasswordHash: "old"}
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, tokenRepo.Create(ctx, &models.RefreshToken{
		UserID:    user.ID,
		Token:     "session",
		ExpiresAt: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	}))

	failure := errors.New("abort")
	err := repo.Transaction(ctx, func(users repository.UserRepository, tokens repository.RefreshTokenRepository) error {
		user.PasswordHash = "new"
		if err := users.Update(ctx, user); err != nil {
			return err
		}
		if _, err := tokens.RevokeAllUserTokens(ctx, user.ID, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)); err != nil {
			return err
		}
		return failure
	})
	assert.ErrorIs(t, err, failure)

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "old", reloaded.PasswordHash)

	session, err := tokenRepo.FindByToken(ctx, "session")
	require.NoError(t, err)
	assert.False(t, session.IsRevoked)

	err = repo.Transaction(ctx, func(users repository.UserRepository, tokens repository.RefreshTokenRepository) error {
		user.PasswordHash = "new"
		if err := users.Update(ctx, user); err != nil {
			return err
		}
		_, err := tokens.RevokeAllUserTokens(ctx, user.ID, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
		return err
	})
	require.NoError(t, err)

	reloaded, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", reloaded.PasswordHash)

	session, err = tokenRepo.FindByToken(ctx, "session")
	require.NoError(t, err)
	assert.True(t, session.IsRevoked)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "find@example.com", PasswordHash: "hash"}))

	user, err := repo.FindByEmail(ctx, "  FIND@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "find@example.com", user.Email)
	assert.Equal(t, models.RoleClient, user.PrimaryRole())

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_FindByIDAndUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "update@example.com", PasswordHash: "old", Role: models.RoleAdmin}
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, found.Role)

	found.PasswordHash = "new"
	require.NoError(t, repo.Update(ctx, found))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", reloaded.PasswordHash)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestSecurityEventRepository_ListByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSecurityEventRepository(db)
	ctx := context.Background()

	for i, eventType := range []string{models.EventRefreshTokenReuse, models.EventTokenFamilyRevoked, models.EventUserTokensRevoked} {
		require.NoError(t, repo.Create(ctx, &models.SecurityEvent{
			EventID:   eventType,
			UserID:    7,
			EventType: eventType,
			Affected:  int64(i + 1),
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.SecurityEvent{EventID: "other", UserID: 8, EventType: models.EventUserTokensRevoked}))

	events, err := repo.ListByUser(ctx, 7, 0)
	require.NoError(t, err)
	assert.Len(t, events, 3)

	limited, err := repo.ListByUser(ctx, 7, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
