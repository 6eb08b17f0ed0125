package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshKeyPrefix = "session:refresh:"

// RedisStore は RefreshToken を Redis に保存する実装です。
// キーには RefreshToken の有効期限と同じ TTL を設定するため、
// 期限切れスロットは Redis 側で自動的に消えます。
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore は RedisStore を作成します。
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		ttl: ttl,
	}
}

// Save はユーザーのスロットを上書きします。
func (s *RedisStore) Save(ctx context.Context, userID, token string) error {
	if userID == "" {
		return fmt.Errorf("userID is required")
	}
	return s.rdb.Set(ctx, refreshKey(userID), token, s.ttl).Err()
}

// IsValid は提出されたトークンとスロットの値を比較します。
func (s *RedisStore) IsValid(ctx context.Context, userID, token string) (bool, error) {
	stored, err := s.rdb.Get(ctx, refreshKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	return tokensEqual(stored, token), nil
}

func refreshKey(userID string) string {
	return refreshKeyPrefix + userID
}
