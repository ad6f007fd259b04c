// Package config reads service configuration from the environment, with
// defaults that match the local docker-compose setup.
package config

import (
	"os"
	"time"
)

const (
	// TokenTTL is the lifetime of issued access tokens.
	TokenTTL = 72 * time.Hour
	// TokenIssuer names this service in issued tokens.
	TokenIssuer = "chatline-service"

	ReadTimeout  = 10 * time.Second
	WriteTimeout = 10 * time.Second
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ListenAddr is the HTTP listen address.
func ListenAddr() string {
	return getenv("LISTEN_ADDR", ":8080")
}

// PostgresDSN is the connection string for the message store.
func PostgresDSN() string {
	return getenv("POSTGRES_DSN",
		"host=localhost user=user password=password dbname=chatlinedb port=5432 sslmode=disable")
}

// RedisAddr is the address of the Redis instance holding unread counters.
func RedisAddr() string {
	return getenv("REDIS_ADDR", "localhost:6379")
}

// JWTSecret is the HS256 signing key for access tokens.
func JWTSecret() []byte {
	return []byte(getenv("JWT_SECRET", "dev-only-secret"))
}
