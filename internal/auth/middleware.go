package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// invalidTokenMessage はトークン起因の失敗時に返すレスポンス本文です。
// 欠落・署名不一致・期限切れを区別せず同じ本文を返します。
const invalidTokenMessage = "Invalid or Missing JWT token"

// Gate はリクエストからトークンを取り出して検証し、認証済みユーザー情報を
// コンテキストに載せるか、リクエストを打ち切るミドルウェア群です。
// この層での失敗は最終的で、リトライはありません。
type Gate struct {
	tokens  *TokenService
	cookies *CookieCodec
}

// NewGate は Gate を作成します。
func NewGate(tokens *TokenService, cookies *CookieCodec) *Gate {
	return &Gate{
		tokens:  tokens,
		cookies: cookies,
	}
}

// RequireAccess はクッキーの AccessToken を検証するミドルウェアを返します。
// 失敗時は 401 を返し、後続のハンドラーは実行されません。
func (g *Gate) RequireAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := g.cookies.ReadAccessToken(c.Request)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": invalidTokenMessage,
			})
			return
		}

		claims, err := g.tokens.VerifyAccess(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": invalidTokenMessage,
			})
			return
		}

		setIdentity(c, Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
		})
		c.Next()
	}
}

// RequireRefresh はクッキーの RefreshToken を検証するミドルウェアを返します。
// 失敗時は 406 を返します。401（再ログイン）と 406（再認証して再試行）を
// クライアントが区別できるよう、意図的に別のステータスを使います。
func (g *Gate) RequireRefresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := g.cookies.ReadRefreshToken(c.Request)
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotAcceptable, gin.H{
				"message": invalidTokenMessage,
			})
			return
		}

		claims, err := g.tokens.VerifyRefresh(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotAcceptable, gin.H{
				"message": invalidTokenMessage,
			})
			return
		}

		// リフレッシュフローは後段でストア照合するため生トークンも渡す
		setIdentity(c, Identity{
			UserID: claims.UserID,
			Token:  token,
		})
		c.Next()
	}
}

// RequireAccessHeader は Authorization ヘッダーの Bearer トークンを検証する
// ミドルウェアを返します。クッキーを使わないクライアント向けで、
// クッキー署名の層は通らず JWT の検証のみを行います。
func (g *Gate) RequireAccessHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.Request)
		claims, err := g.tokens.VerifyAccess(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": invalidTokenMessage,
			})
			return
		}

		setIdentity(c, Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
		})
		c.Next()
	}
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
