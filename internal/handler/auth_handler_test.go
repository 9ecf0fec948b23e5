package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/models"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/repository"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database/service"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/handler"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/middleware"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withUser stands in for RequireAuth on protected routes
func withUser(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Next()
	}
}

func setupAuthRouter(svc service.AuthService, userID uint) *gin.Engine {
	h := handler.NewAuthHandler(svc, testutil.TestLogger())

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.RefreshToken)
	r.POST("/auth/logout", h.Logout)

	protected := r.Group("/auth")
	if userID != 0 {
		protected.Use(withUser(userID))
	}
	protected.POST("/logout-all", h.LogoutAll)
	protected.POST("/change-password", h.ChangePassword)
	protected.GET("/sessions", h.ListSessions)

	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	switch b := body.(type) {
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func testPair() *service.TokenPair {
	return &service.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresIn:    900,
		Role:         models.RoleClient,
	}
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		setup      func(m *testutil.MockAuthService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "success",
			body: map[string]string{"email": "new@example.com", "password": "password123"},
			setup: func(m *testutil.MockAuthService) {
				m.On("Register", mock.Anything, "new@example.com", "password123", mock.AnythingOfType("service.ClientMeta")).
					Return(&models.User{ID: 1, Email: "new@example.com", Role: models.RoleClient}, testPair(), nil)
			},
			wantStatus: http.StatusCreated,
			wantBody:   "refresh-token",
		},
		{
			name:       "invalid json",
			body:       "invalid json",
			wantStatus: http.StatusBadRequest,
			wantBody:   "error",
		},
		{
			name:       "short password",
			body:       map[string]string{"email": "new@example.com", "password": "short"},
			wantStatus: http.StatusBadRequest,
			wantBody:   "min 8 chars",
		},
		{
			name:       "invalid email",
			body:       map[string]string{"email": "not-an-email", "password": "password123"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "email taken",
			body: map[string]string{"email": "taken@example.com", "password": "password123"},
			setup: func(m *testutil.MockAuthService) {
				m.On("Register", mock.Anything, "taken@example.com", "password123", mock.Anything).
					Return(nil, nil, service.ErrEmailAlreadyExists)
			},
			wantStatus: http.StatusConflict,
			wantBody:   "Email already registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(testutil.MockAuthService)
			if tt.setup != nil {
				tt.setup(m)
			}

			w := postJSON(t, setupAuthRouter(m, 0), "/auth/register", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
			m.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_LoginResponseShape(t *testing.T) {
	m := new(testutil.MockAuthService)
	m.On("Login", mock.Anything, "user@example.com", "password123", mock.Anything).
		Return(&models.User{ID: 7, Email: "user@example.com", PasswordHash: "secret-hash", Role: models.RoleClient}, testPair(), nil)

	w := postJSON(t, setupAuthRouter(m, 0), "/auth/login", map[string]string{"email": "user@example.com", "password": "password123"})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "access-token", body["access_token"])
	assert.Equal(t, "refresh-token", body["refresh_token"])
	assert.Equal(t, "Bearer", body["token_type"])
	assert.Equal(t, float64(900), body["expires_in"])
	assert.Equal(t, models.RoleClient, body["role"])
	assert.NotContains(t, w.Body.String(), "secret-hash")
}

func TestAuthHandler_LoginInvalidCredentials(t *testing.T) {
	m := new(testutil.MockAuthService)
	m.On("Login", mock.Anything, "user@example.com", "wrong", mock.Anything).
		Return(nil, nil, service.ErrInvalidCredentials)

	w := postJSON(t, setupAuthRouter(m, 0), "/auth/login", map[string]string{"email": "user@example.com", "password": "wrong"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		serviceErr error
		wantStatus int
		wantBody   string
	}{
		{name: "success", body: map[string]string{"refresh_token": "old"}, wantStatus: http.StatusOK, wantBody: "refresh-token"},
		{name: "missing token", body: map[string]string{}, wantStatus: http.StatusBadRequest, wantBody: "Refresh token required"},
		{name: "invalid token", body: map[string]string{"refresh_token": "old"}, serviceErr: service.ErrInvalidToken, wantStatus: http.StatusUnauthorized, wantBody: "Invalid or expired token"},
		{name: "database failure", body: map[string]string{"refresh_token": "old"}, serviceErr: errors.New("db down"), wantStatus: http.StatusInternalServerError, wantBody: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(testutil.MockAuthService)
			if tt.serviceErr != nil {
				m.On("RefreshToken", mock.Anything, "old", mock.Anything).Return(nil, tt.serviceErr)
			} else {
				m.On("RefreshToken", mock.Anything, "old", mock.Anything).Return(testPair(), nil).Maybe()
			}

			w := postJSON(t, setupAuthRouter(m, 0), "/auth/refresh", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			assert.NotContains(t, w.Body.String(), "db down")
		})
	}
}

func TestAuthHandler_LogoutIsIdempotent(t *testing.T) {
	m := new(testutil.MockAuthService)
	m.On("Logout", mock.Anything, "live").Return(true, nil)
	m.On("Logout", mock.Anything, "gone").Return(false, nil)
	r := setupAuthRouter(m, 0)

	w := postJSON(t, r, "/auth/logout", map[string]string{"refresh_token": "live"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["revoked"])

	w = postJSON(t, r, "/auth/logout", map[string]string{"refresh_token": "gone"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["revoked"])
}

func TestAuthHandler_LogoutAll(t *testing.T) {
	m := new(testutil.MockAuthService)
	m.On("LogoutAll", mock.Anything, uint(5)).Return(int64(3), nil)

	w := postJSON(t, setupAuthRouter(m, 5), "/auth/logout-all", map[string]string{})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode(t, w)["revoked"])
}

func TestAuthHandler_LogoutAllWithoutUser(t *testing.T) {
	m := new(testutil.MockAuthService)

	w := postJSON(t, setupAuthRouter(m, 0), "/auth/logout-all", map[string]string{})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	m.AssertNotCalled(t, "LogoutAll", mock.Anything, mock.Anything)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		setup      func(m *testutil.MockAuthService)
		wantStatus int
	}{
		{
			name: "success",
			body: map[string]string{"current_password": "password123", "new_password": "newpassword123"},
			setup: func(m *testutil.MockAuthService) {
				m.On("ChangePassword", mock.Anything, uint(5), "password123", "newpassword123").Return(int64(2), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "wrong current password",
			body: map[string]string{"current_password": "nope", "new_password": "newpassword123"},
			setup: func(m *testutil.MockAuthService) {
				m.On("ChangePassword", mock.Anything, uint(5), "nope", "newpassword123").Return(int64(0), service.ErrInvalidCredentials)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "new password too short",
			body:       map[string]string{"current_password": "password123", "new_password": "short"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "user deleted",
			body: map[string]string{"current_password": "password123", "new_password": "newpassword123"},
			setup: func(m *testutil.MockAuthService) {
				m.On("ChangePassword", mock.Anything, uint(5), "password123", "newpassword123").Return(int64(0), repository.ErrUserNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(testutil.MockAuthService)
			if tt.setup != nil {
				tt.setup(m)
			}

			w := postJSON(t, setupAuthRouter(m, 5), "/auth/change-password", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			m.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_ListSessions(t *testing.T) {
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	m := new(testutil.MockAuthService)
	m.On("ListSessions", mock.Anything, uint(5)).Return([]models.RefreshToken{
		{ID: 11, UserID: 5, Token: "secret-value", CreatedAt: created, ExpiresAt: created.Add(time.Hour), CreatedByIP: "10.0.0.1", UserAgent: "phone"},
	}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/auth/sessions", nil)
	w := httptest.NewRecorder()
	setupAuthRouter(m, 5).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_agent":"phone"`)
	assert.NotContains(t, w.Body.String(), "secret-value")

	var body struct {
		Sessions []handler.SessionResponse `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Sessions, 1)
	assert.Equal(t, uint(11), body.Sessions[0].ID)
}
