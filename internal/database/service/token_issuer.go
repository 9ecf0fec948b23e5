package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/models"
)

// refreshTokenBytes is 384 bits of randomness
const refreshTokenBytes = 48

// AccessClaims are the claims carried by access tokens
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim
func (c *AccessClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject %q: %w", c.Subject, err)
	}
	return uint(id), nil
}

func (s *tokenService) IssueForUser(ctx context.Context, user *models.User, meta ClientMeta) (*TokenPair, error) {
	now := s.now()

	accessToken, err := s.signAccessToken(user, now)
	if err != nil {
		return nil, err
	}

	record, err := s.newRefreshRecord(user.ID, now, meta)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	s.logger.Debug("🎟️ [TokenService] Issued token pair", "user_id", user.ID)

	return s.pair(accessToken, record, user), nil
}

func (s *tokenService) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if _, err := claims.UserID(); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *tokenService) signAccessToken(user *models.User, now time.Time) (string, error) {
	claims := AccessClaims{
		Email: user.Email,
		Role:  user.PrimaryRole(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return signed, nil
}

func (s *tokenService) newRefreshRecord(userID uint, now time.Time, meta ClientMeta) (*models.RefreshToken, error) {
	value, err := generateRefreshTokenValue()
	if err != nil {
		return nil, err
	}

	return &models.RefreshToken{
		UserID:      userID,
		Token:       value,
		ExpiresAt:   now.Add(s.refreshTTL),
		IsRevoked:   false,
		CreatedByIP: truncate(meta.IP, 64),
		UserAgent:   truncate(meta.UserAgent, 255),
		CreatedAt:   now,
	}, nil
}

func (s *tokenService) pair(accessToken string, record *models.RefreshToken, user *models.User) *TokenPair {
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: record.Token,
		ExpiresIn:    int64(s.accessTTL / time.Second),
		Role:         user.PrimaryRole(),
	}
}

func generateRefreshTokenValue() (string, error) {
	tokenBytes := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(tokenBytes), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
