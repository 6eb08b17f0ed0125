// Package auth はトークンの発行・検証、署名付きクッキー、リクエストゲート、
// およびログイン・ログアウト等のセッション操作を提供します。
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yourusername/blog-api/internal/users"
)

// AccessClaims は AccessToken に含まれるクレームです。
type AccessClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"userEmail"`
	jwt.RegisteredClaims
}

// RefreshClaims は RefreshToken に含まれるクレームです。
// 再発行に必要なのはユーザーIDだけなので、メールアドレスは含めません。
type RefreshClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService は2種類のトークン（access/refresh）の発行と検証を行います。
// 種別ごとに独立した署名鍵と有効期限を使います。
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenService は TokenService を作成します。
func NewTokenService(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// AccessTTL は AccessToken の有効期限を返します。
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL は RefreshToken の有効期限を返します。
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// MintAccess はユーザーの AccessToken を発行します。
func (s *TokenService) MintAccess(user *users.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// MintRefresh はユーザーの RefreshToken を発行します。
func (s *TokenService) MintRefresh(user *users.User) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, nil
}

// VerifyAccess は AccessToken を検証し、クレームを返します。
// 失敗時は ErrMissingToken / ErrTokenExpired / ErrTokenInvalid のいずれかを返します。
func (s *TokenService) VerifyAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.verify(tokenStr, claims, s.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh は RefreshToken を検証し、クレームを返します。
func (s *TokenService) VerifyRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.verify(tokenStr, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) verify(tokenStr string, claims jwt.Claims, secret []byte) error {
	if tokenStr == "" {
		return ErrMissingToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}
