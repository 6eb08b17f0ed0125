package users

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore は開発・テスト用のインメモリ実装です。
type MemoryStore struct {
	mu    sync.Mutex
	byID  map[string]*User
	email map[string]string // email(小文字) -> userID
}

// NewMemoryStore は MemoryStore を作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]*User),
		email: make(map[string]string),
	}
}

// Create は新規ユーザーを保存します。
func (s *MemoryStore) Create(ctx context.Context, user *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := s.email[key]; ok {
		return nil, ErrDuplicateEmail
	}

	stored := *user
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	s.byID[stored.ID] = &stored
	s.email[key] = stored.ID

	result := stored
	return &result, nil
}

// GetByEmail はメールアドレスでユーザーを検索します。
func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.email[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	result := *s.byID[id]
	return &result, nil
}

// GetByID はIDでユーザーを検索します。
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	result := *user
	return &result, nil
}

// UpdateRefreshToken はユーザーの RefreshToken スロットを上書きします。
func (s *MemoryStore) UpdateRefreshToken(ctx context.Context, userID string, token *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[userID]
	if !ok {
		return ErrNotFound
	}
	if token == nil {
		user.RefreshToken = nil
		return nil
	}
	value := *token
	user.RefreshToken = &value
	return nil
}

// PruneRefreshTokens は期限切れと判定された RefreshToken を削除します。
func (s *MemoryStore) PruneRefreshTokens(ctx context.Context, expired func(token string) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for _, user := range s.byID {
		if user.RefreshToken != nil && expired(*user.RefreshToken) {
			user.RefreshToken = nil
			pruned++
		}
	}
	return pruned, nil
}
