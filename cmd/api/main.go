package main

import (
	"context"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/gosimple/slug"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/strideline/footwear-golang/internal/database"
	"github.com/strideline/footwear-golang/internal/handlers"
	"github.com/strideline/footwear-golang/internal/models"
	"github.com/strideline/footwear-golang/internal/routes"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("no .env file found, relying on system environment variables")
	}

	// 1. --- Database Connection ---
	db, err := database.OpenDB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// 2. --- Schema & Seed Data ---
	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run schema migration")
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
		logger.Warn().Msg("ADMIN_PASSWORD not set, using the default bootstrap password")
	}
	var password models.Password
	if err := password.Set(adminPassword); err != nil {
		logger.Fatal().Err(err).Msg("failed to hash admin password")
	}
	if err := database.SeedAdmin(ctx, db, "admin", "admin@footwear.com", password.Hash); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed admin account")
	}
	if err := database.SeedProducts(ctx, db, slug.Make); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed sample products")
	}

	// 3. --- Redis (Session Revocation) ---
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Logout revocation degrades gracefully without Redis; everything
		// else works, so this is a warning rather than a fatal error.
		logger.Warn().Err(err).Str("addr", redisAddr).Msg("redis unavailable, logout revocation disabled")
		rdb = nil
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:  db,
		RDB: rdb,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	logger.Info().Str("addr", addr).Msg("starting footwear store API server")
	if err := router.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
