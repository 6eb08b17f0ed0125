package auth

import "github.com/gin-gonic/gin"

// contextIdentityKey は、ハンドラー間で認証済みユーザー情報を共有するためのキーです。
const contextIdentityKey = "auth.identity"

// Identity はゲートを通過したリクエストに付与される認証済みユーザー情報です。
// 値として受け渡され、以降のハンドラーから変更されることはありません。
type Identity struct {
	UserID string
	Email  string
	// Token はリフレッシュゲートを通過した場合のみ、提出された
	// RefreshToken の生文字列を保持します。
	Token string
}

func setIdentity(c *gin.Context, identity Identity) {
	c.Set(contextIdentityKey, identity)
}

// IdentityFrom はゲートが設定した Identity を取り出します。
// ゲートを通過していないリクエストでは false を返します。
func IdentityFrom(c *gin.Context) (Identity, bool) {
	value, ok := c.Get(contextIdentityKey)
	if !ok {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}
