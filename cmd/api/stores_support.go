package main

import (
	"context"
	"log"

	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/blog-api/internal/auth"
	"github.com/yourusername/blog-api/internal/config"
	"github.com/yourusername/blog-api/internal/maintenance"
	"github.com/yourusername/blog-api/internal/session"
	"github.com/yourusername/blog-api/internal/users"
)

// setupUserStore はユーザーストアを初期化します。
// DATABASE_DSN が設定されていれば PostgreSQL、無ければインメモリを使います。
func setupUserStore(ctx context.Context, cfg *config.Config) (users.Store, error) {
	if cfg.DatabaseDSN == "" {
		log.Printf("DATABASE_DSN not set, using in-memory user store")
		return users.NewMemoryStore(), nil
	}

	store, err := users.OpenPostgres(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := store.RunMigrations(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// setupRefreshStore は RefreshToken の保存先を初期化します。
func setupRefreshStore(cfg *config.Config, userStore users.Store) (session.RefreshStore, error) {
	if cfg.SessionStore == "redis" {
		opt, err := redis.ParseURL(cfg.SessionRedisURL)
		if err != nil {
			return nil, err
		}
		return session.NewRedisStore(redis.NewClient(opt), cfg.RefreshTokenTTL), nil
	}
	return session.NewPrincipalStore(userStore), nil
}

// setupMaintenance は期限切れRefreshTokenの掃除ジョブを初期化します。
// Redisストアは TTL で自動的に消えるため、掃除はユーザーレコード保存の場合のみ行います。
func setupMaintenance(cfg *config.Config, userStore users.Store, tokens *auth.TokenService) (*maintenance.Manager, error) {
	if cfg.SessionStore == "redis" {
		return nil, nil
	}
	return maintenance.NewManager(cfg.QueueRedisURL, userStore, tokens, cfg.PruneInterval, log.Default())
}
