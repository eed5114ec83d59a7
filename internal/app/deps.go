package app

import (
	"time"

	"github.com/tripmates/backend/internal/auth"
	"github.com/tripmates/backend/internal/config"
	"github.com/tripmates/backend/internal/db"
	"github.com/tripmates/backend/internal/directory"
	"github.com/tripmates/backend/internal/handlers"
	"github.com/tripmates/backend/internal/middleware"
	"github.com/tripmates/backend/internal/relationship"
	"github.com/tripmates/backend/internal/repositories"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(pool db.Pool, cfg config.Config) handlers.Dependencies {
	users := repositories.NewPostgresUserRepository(pool)
	requests := repositories.NewPostgresRequestRepository(pool)
	friendSets := repositories.NewPostgresFriendSetRepository(pool)
	sessionStore := repositories.NewPostgresSessionStore(pool)

	hub := relationship.NewHub(requests)
	manager := relationship.NewManager(requests, friendSets, hub)

	dir := directory.NewCachingProvider(directory.NewService(users), cfg.DirectoryCacheTTL)

	authLimiter := middleware.NewIPRateLimiter(
		cfg.AuthRateRequests,
		cfg.AuthRateWindow,
		cfg.AuthRateBurst,
		5*time.Minute,
	)

	return handlers.Dependencies{
		Users:         users,
		Sessions:      auth.NewManager(cfg.AccessTokenTTL, cfg.RefreshTokenTTL, sessionStore),
		Relationships: manager,
		Subscriptions: hub,
		Directory:     dir,
		AuthLimiter:   authLimiter,
	}
}
