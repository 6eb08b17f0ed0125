package auth

import "errors"

var (
	// ErrMissingToken はクッキー・ヘッダーのどちらにもトークンが無い場合に返されます。
	// 署名検証に失敗したクッキーも「無い」ものとして扱われます。
	ErrMissingToken = errors.New("missing token")
	// ErrTokenInvalid は署名不一致・不正な形式のトークンに対して返されます。
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired は署名は正しいが有効期限切れのトークンに対して返されます。
	// 期限切れトークンに部分的な信頼を置くことはありません。
	ErrTokenExpired = errors.New("token expired")
	// ErrRefreshMismatch は署名検証を通過した RefreshToken が、サーバー側に
	// 保存されている現在値と一致しない場合に返されます。
	ErrRefreshMismatch = errors.New("refresh token mismatch")
	// ErrPermissionDenied は認証済みユーザーがリソースの所有者でない場合に
	// 返されます（投稿・コメントの所有チェックなどで使用）。
	ErrPermissionDenied = errors.New("permission denied")
)
