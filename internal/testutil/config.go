package testutil

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/config"
)

// TestConfig returns a test configuration
func TestConfig() *config.Config {
	return &config.Config{
		ApiServicePort:         "8080",
		ApiGrpcPort:            "50052",
		AccessTokenExpiration:  900,
		RefreshTokenExpiration: 2592000,
		JWTSecret:              "test-secret-key-for-testing-purposes",
		JWTIssuer:              "timecafe-auth-test",
		JWTAudience:            "timecafe-api-test",
		AuthRateLimit:          5,
		AuthRateWindow:         60,
		ShutdownTimeout:        1,
		BcryptCost:             4,
	}
}

// TestLogger returns a silent logger for testing
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// InlineSubmitter runs submitted tasks synchronously on the caller's goroutine
type InlineSubmitter struct {
	mu    sync.Mutex
	Tasks []string
}

func (s *InlineSubmitter) Submit(name string, task func(ctx context.Context)) bool {
	s.mu.Lock()
	s.Tasks = append(s.Tasks, name)
	s.mu.Unlock()

	task(context.Background())
	return true
}

// Clock is a manually advanced time source
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock frozen at start
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
