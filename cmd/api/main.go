// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"crypto/rand"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/blog-api/internal/auth"
	"github.com/yourusername/blog-api/internal/config"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	// クッキーでトークンを運ぶため資格情報付きリクエストを許可する
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
	}
	router.Use(cors.New(corsConfig))

	// ユーザーストアの初期化（DSN未設定ならインメモリ）
	userStore, err := setupUserStore(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to set up user store: %v", err)
	}

	// トークン・クッキー・ゲートの初期化
	// releaseモードでは config.Validate が鍵の設定を強制する。
	// 開発モードで未設定の場合はプロセス限りのランダム鍵で起動する。
	tokens := auth.NewTokenService(
		ensureSecret("JWT_ACCESS_SECRET", cfg.JWTAccessSecret),
		ensureSecret("JWT_REFRESH_SECRET", cfg.JWTRefreshSecret),
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)
	cookies := auth.NewCookieCodec(
		ensureSecret("COOKIE_SECRET", cfg.CookieSecret),
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
		cfg.GinMode == gin.ReleaseMode,
	)
	gate := auth.NewGate(tokens, cookies)

	// RefreshTokenストアの初期化
	refreshStore, err := setupRefreshStore(cfg, userStore)
	if err != nil {
		log.Fatalf("Failed to set up refresh store: %v", err)
	}

	authManager := auth.NewManager(userStore, tokens, cookies, refreshStore)

	// メンテナンスジョブの起動（期限切れRefreshTokenの掃除）
	maintenanceManager, err := setupMaintenance(cfg, userStore, tokens)
	if err != nil {
		log.Fatalf("Failed to set up maintenance jobs: %v", err)
	}
	if maintenanceManager != nil {
		maintenanceManager.StartWorkers()
	}

	// ルーティングの設定
	setupRoutes(router, gate, authManager)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// ensureSecret は設定済みの鍵をそのまま返します。未設定の場合は
// プロセス限りのランダム鍵を生成します（再起動で既存セッションは無効になる）。
func ensureSecret(name, value string) []byte {
	if value != "" {
		return []byte(value)
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		log.Fatalf("Failed to generate fallback secret: %v", err)
	}
	log.Printf("%s not set, using a random per-process secret", name)
	return secret
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "blog-api",
		"version": "0.1.0",
	})
}

// setupRoutes は API グループと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, gate *auth.Gate, authManager *auth.Manager) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", authManager.Login)
			authRoutes.POST("/register", authManager.Register)
			// ログアウトはトークンが無くても成功する（クッキー削除のみ）
			authRoutes.POST("/logout", authManager.Logout)
			authRoutes.POST("/token/refresh",
				gate.RequireRefresh(),
				authManager.Refresh,
			)
			authRoutes.GET("/user",
				gate.RequireAccess(),
				authManager.CurrentUser,
			)
		}

		// 投稿・コメント等のAPIを追加する場合はここにぶら下げる
		protected := api.Group("")
		protected.Use(gate.RequireAccess())
		{
		}
	}
}
