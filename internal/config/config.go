package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv                 string
	LogLevel               slog.Level
	ApiServicePort         string
	ApiGrpcPort            string
	PostgreSQLHost         string
	PostgreSQLPort         int64
	PostgreSQLUser         string
	PostgreSQLPassword     string
	PostgreSQLDatabase     string
	JWTSecret              string
	JWTIssuer              string
	JWTAudience            string
	AccessTokenExpiration  int64 // Access token lifetime in seconds
	RefreshTokenExpiration int64 // Refresh token lifetime in seconds
	RedisHost              string
	RedisPort              int64
	RedisPassword          string
	RedisDatabase          int64
	AuthRateLimit          int64 // Requests per window on login/refresh, 0 disables
	AuthRateWindow         int64 // Rate limit window in seconds
	ShutdownTimeout        int64 // Graceful shutdown timeout in seconds
	BcryptCost             int64
}

func LoadConfig() *Config {
	return &Config{
		AppEnv:                 getEnv("APP_ENV", "development"),                   // Default development
		LogLevel:               getLogLevel(),                                      // Default INFO
		ApiServicePort:         getEnv("API_SERVICE_PORT", "8080"),                 // Default 8080
		ApiGrpcPort:            getEnv("API_GRPC_PORT", "50052"),                   // Default 50052 (gRPC health)
		PostgreSQLHost:         getEnv("POSTGRESQL_HOST", "db"),                    // Default db
		PostgreSQLPort:         getEnvAsInt64("POSTGRESQL_PORT", 5432),             // Default 5432
		PostgreSQLUser:         getEnv("POSTGRESQL_USER", "timecafe_user"),         // Default user
		PostgreSQLPassword:     getEnv("POSTGRESQL_PASSWORD", "timecafe_password"), // Default password
		PostgreSQLDatabase:     getEnv("POSTGRESQL_DATABASE", "timecafe_auth"),     // Default database name
		JWTSecret:              getEnv("JWT_SECRET", "timecafe_secret"),            // Default secret key
		JWTIssuer:              getEnv("JWT_ISSUER", "timecafe-auth"),              // Default issuer
		JWTAudience:            getEnv("JWT_AUDIENCE", "timecafe-api"),             // Default audience
		AccessTokenExpiration:  getEnvAsInt64("ACCESS_TOKEN_EXPIRATION", 900),      // Default 15 minutes
		RefreshTokenExpiration: getEnvAsInt64("REFRESH_TOKEN_EXPIRATION", 2592000), // Default 30 days
		RedisHost:              getEnv("REDIS_HOST", "redis"),                      // Default redis
		RedisPort:              getEnvAsInt64("REDIS_PORT", 6379),                  // Default 6379
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),                       // Default empty
		RedisDatabase:          getEnvAsInt64("REDIS_DATABASE", 0),                 // Default 0
		AuthRateLimit:          getEnvAsInt64("AUTH_RATE_LIMIT", 20),               // Default 20 requests
		AuthRateWindow:         getEnvAsInt64("AUTH_RATE_WINDOW", 60),              // Default 1 minute
		ShutdownTimeout:        getEnvAsInt64("SHUTDOWN_TIMEOUT", 10),              // Default 10 seconds
		BcryptCost:             getEnvAsInt64("BCRYPT_COST", 10),                   // Default bcrypt.DefaultCost
	}
}

// AccessTokenTTL returns the access token lifetime as a duration
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpiration) * time.Second
}

// RefreshTokenTTL returns the refresh token lifetime as a duration
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpiration) * time.Second
}

func (c *Config) RateWindow() time.Duration {
	return time.Duration(c.AuthRateWindow) * time.Second
}

func (c *Config) ShutdownTTL() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// IsProduction reports whether the service runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.AppEnv) == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return fallback
}

func getLogLevel() slog.Level {
	levelStr := getEnv("LOG_LEVEL", "INFO")

	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
