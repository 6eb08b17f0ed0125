// Package maintenance は認証まわりの定期メンテナンスジョブを提供します。
// ログアウトはサーバー側の RefreshToken スロットを消さないため、期限切れの
// トークンがユーザーレコードに残り続けます。ここで定期的に掃除します。
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/yourusername/blog-api/internal/auth"
	"github.com/yourusername/blog-api/internal/users"
)

const taskTypePruneRefresh = "auth:prune_refresh"

// Manager は掃除タスクのスケジュールと実行を担います。
type Manager struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	store     users.Store
	tokens    *auth.TokenService
	logger    *log.Logger
}

// NewManager は Manager を初期化します。
// interval ごとに掃除タスクをキューに投入するスケジューラも併せて設定します。
func NewManager(redisURL string, store users.Store, tokens *auth.TokenService, interval time.Duration, logger *log.Logger) (*Manager, error) {
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if tokens == nil {
		return nil, errors.New("tokens is nil")
	}
	if interval <= 0 {
		interval = time.Hour
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"maintenance": 1,
			},
		},
	)
	scheduler := asynq.NewScheduler(opt, nil)

	manager := &Manager{
		server:    server,
		scheduler: scheduler,
		mux:       asynq.NewServeMux(),
		store:     store,
		tokens:    tokens,
		logger:    logger,
	}
	manager.mux.HandleFunc(taskTypePruneRefresh, manager.handlePrune)

	if _, err := scheduler.Register(
		fmt.Sprintf("@every %s", interval),
		asynq.NewTask(taskTypePruneRefresh, nil),
		asynq.Queue("maintenance"),
	); err != nil {
		return nil, fmt.Errorf("failed to register prune schedule: %w", err)
	}

	return manager, nil
}

// StartWorkers は Asynq サーバーとスケジューラをバックグラウンドで起動します。
func (m *Manager) StartWorkers() {
	go func() {
		if err := m.server.Run(m.mux); err != nil && err != asynq.ErrServerClosed {
			m.logf("asynq server stopped with error: %v", err)
		}
	}()
	go func() {
		if err := m.scheduler.Run(); err != nil {
			m.logf("asynq scheduler stopped with error: %v", err)
		}
	}()
}

// Shutdown はサーバーとスケジューラを停止します。
func (m *Manager) Shutdown(ctx context.Context) error {
	m.scheduler.Shutdown()
	m.server.Shutdown()
	return nil
}

// handlePrune は検証に通らなくなった RefreshToken をユーザーレコードから削除します。
// 期限切れか署名不一致かを問わず、検証できないトークンが再び使える日は来ません。
func (m *Manager) handlePrune(ctx context.Context, task *asynq.Task) error {
	pruned, err := m.store.PruneRefreshTokens(ctx, func(token string) bool {
		_, err := m.tokens.VerifyRefresh(token)
		return err != nil
	})
	if err != nil {
		return fmt.Errorf("failed to prune refresh tokens: %w", err)
	}
	if pruned > 0 {
		m.logf("pruned %d stale refresh token(s)", pruned)
	}
	return nil
}

func (m *Manager) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
