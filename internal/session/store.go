// Package session は「ユーザーごとに有効な RefreshToken は常に1つ」という
// 単一スロット方式の保存を提供します。保存は常に上書きで、別の場所でログイン
// すると前のセッションの RefreshToken は暗黙に失効します（シングルセッション方針）。
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/yourusername/blog-api/internal/users"
)

// RefreshStore は現在有効な RefreshToken の保存先を抽象化するインターフェースです。
type RefreshStore interface {
	// Save はユーザーの RefreshToken を上書き保存します。
	Save(ctx context.Context, userID, token string) error
	// IsValid は提出されたトークンが保存済みの値と完全一致するかを返します。
	IsValid(ctx context.Context, userID, token string) (bool, error)
}

// PrincipalStore はユーザーレコード上の refresh_token スロットに保存する実装です。
type PrincipalStore struct {
	users users.Store
}

// NewPrincipalStore は PrincipalStore を作成します。
func NewPrincipalStore(store users.Store) *PrincipalStore {
	return &PrincipalStore{users: store}
}

// Save はユーザーの RefreshToken スロットを上書きします。
func (s *PrincipalStore) Save(ctx context.Context, userID, token string) error {
	if err := s.users.UpdateRefreshToken(ctx, userID, &token); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

// IsValid は提出されたトークンとスロットの値を比較します。
// ユーザー不在・スロット未設定・不一致はいずれもエラーではなく false です。
func (s *PrincipalStore) IsValid(ctx context.Context, userID, token string) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load user: %w", err)
	}
	if user.RefreshToken == nil {
		return false, nil
	}
	return tokensEqual(*user.RefreshToken, token), nil
}

func tokensEqual(stored, submitted string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
