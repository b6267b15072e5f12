package handlers

import (
	"database/sql"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB  *sql.DB       // Shared connection pool
	RDB *redis.Client // Session revocation store; may be nil in tests
}
