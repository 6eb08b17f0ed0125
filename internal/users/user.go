// Package users はユーザー（プリンシパル）の永続化を提供します。
package users

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotFound は該当するユーザーが存在しない場合に返されます。
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail は同じメールアドレスのユーザーが既に存在する場合に返されます。
	ErrDuplicateEmail = errors.New("email already taken")
)

// User はユーザーレコードです。
// RefreshToken は現在有効な RefreshToken を1つだけ保持します（nil は未発行）。
// 認証側はこのフィールドの読み書きのみを行います。
type User struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	RealName     string  `json:"realName"`
	PasswordHash string  `json:"-"`
	RefreshToken *string `json:"-"`
}

// Store はユーザーの保存先を抽象化するインターフェースです。
type Store interface {
	// Create は新規ユーザーを保存します。メール重複時は ErrDuplicateEmail を返します。
	Create(ctx context.Context, user *User) (*User, error)
	// GetByEmail はメールアドレスでユーザーを検索します。
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByID はIDでユーザーを検索します。
	GetByID(ctx context.Context, id string) (*User, error)
	// UpdateRefreshToken はユーザーの RefreshToken スロットを上書きします。
	// 新しいログインが古いセッションのトークンを暗黙に無効化します。
	UpdateRefreshToken(ctx context.Context, userID string, token *string) error
	// PruneRefreshTokens は保存済み RefreshToken のうち expired が true を返すものを
	// 削除し、削除件数を返します。
	PruneRefreshTokens(ctx context.Context, expired func(token string) bool) (int, error)
}

// HashPassword はパスワードを bcrypt でハッシュ化します。
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword は平文パスワードが保存済みハッシュと一致するかを検証します。
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
