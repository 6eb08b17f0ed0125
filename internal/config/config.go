// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// トークン署名鍵（アクセス/リフレッシュで独立した鍵を使う）
	JWTAccessSecret  string // AccessToken署名用の秘密鍵
	JWTRefreshSecret string // RefreshToken署名用の秘密鍵
	CookieSecret     string // クッキー署名用の秘密鍵

	// トークン有効期限
	AccessTokenTTL  time.Duration // AccessTokenの有効期限
	RefreshTokenTTL time.Duration // RefreshTokenの有効期限

	// セッション/ストレージ設定
	SessionStore    string // RefreshTokenの保存先 ("principal" または "redis")
	SessionRedisURL string // SessionStore=redis の場合の接続URL
	DatabaseDSN     string // PostgreSQLの接続文字列（空文字列ならインメモリストア）

	// メンテナンスジョブ設定
	QueueRedisURL string        // Asynq用Redis接続URL
	PruneInterval time.Duration // 期限切れRefreshToken掃除の実行間隔
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		// トークン署名鍵
		JWTAccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		CookieSecret:     getEnv("COOKIE_SECRET", ""),

		// トークン有効期限（AccessToken: 30分 / RefreshToken: 14日）
		AccessTokenTTL:  getEnvAsDuration("ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTokenTTL: getEnvAsDuration("REFRESH_TOKEN_TTL", 14*24*time.Hour),

		// セッション/ストレージ設定
		SessionStore:    getEnv("SESSION_STORE", "principal"),
		SessionRedisURL: getEnv("SESSION_REDIS_URL", "redis://127.0.0.1:6379/1"),
		DatabaseDSN:     getEnv("DATABASE_DSN", ""),

		// メンテナンスジョブ設定
		QueueRedisURL: getEnv("QUEUE_REDIS_URL", "redis://127.0.0.1:6379/0"),
		PruneInterval: getEnvAsDuration("PRUNE_INTERVAL", time.Hour),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if c.SessionStore != "principal" && c.SessionStore != "redis" {
		return fmt.Errorf("SESSION_STORE must be \"principal\" or \"redis\", got %q", c.SessionStore)
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}

	// ローカル開発では署名鍵は任意
	// 本番環境では厳格にチェックする
	if c.GinMode == "release" {
		if c.JWTAccessSecret == "" {
			return fmt.Errorf("JWT_ACCESS_SECRET is required in release mode")
		}
		if c.JWTRefreshSecret == "" {
			return fmt.Errorf("JWT_REFRESH_SECRET is required in release mode")
		}
		if c.CookieSecret == "" {
			return fmt.Errorf("COOKIE_SECRET is required in release mode")
		}
		if c.JWTAccessSecret == c.JWTRefreshSecret {
			// 片方の鍵が漏れてももう一方のトークン種別に波及させない
			return fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
		}
		if c.SessionStore == "redis" && c.SessionRedisURL == "" {
			return fmt.Errorf("SESSION_REDIS_URL is required when SESSION_STORE=redis")
		}
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsDuration は環境変数を time.Duration として取得します。
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
