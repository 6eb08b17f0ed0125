package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/blog-api/internal/session"
	"github.com/yourusername/blog-api/internal/users"
)

// Manager はログイン・登録・ログアウト・トークン再発行のハンドラーをまとめた構造体です。
type Manager struct {
	store   users.Store
	tokens  *TokenService
	cookies *CookieCodec
	refresh session.RefreshStore
}

// NewManager は Manager を作成します。
func NewManager(store users.Store, tokens *TokenService, cookies *CookieCodec, refresh session.RefreshStore) *Manager {
	return &Manager{
		store:   store,
		tokens:  tokens,
		cookies: cookies,
		refresh: refresh,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	RealName string `json:"realName" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required"`
}

// Login は POST /api/auth/login のハンドラーです。
// 認証に成功すると AccessToken / RefreshToken を発行し、両方をクッキーに設定します。
func (m *Manager) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "email and password are required.",
		})
		return
	}

	user, err := m.store.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid email or password.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to sign in.",
		})
		return
	}

	// パスワード検証はトークン発行より前に必ず行う
	if !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "Invalid email or password.",
		})
		return
	}

	if !m.issueSession(c, user) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

// Register は POST /api/auth/register のハンドラーです。
// 登録に成功するとログインと同様にクッキーを設定し、さらにトークンを
// レスポンス本文でも返します（ログインとの非対称は既存APIの仕様）。
func (m *Manager) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "realName, email and password are required.",
		})
		return
	}

	hash, err := users.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to sign up.",
		})
		return
	}

	user, err := m.store.Create(c.Request.Context(), &users.User{
		Email:        req.Email,
		RealName:     req.RealName,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			// 重複時もステータスは 200（既存APIの仕様）
			c.JSON(http.StatusOK, gin.H{
				"error":   true,
				"message": "This email has already been taken.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to sign up.",
		})
		return
	}

	accessToken, refreshToken, ok := m.issueTokens(c, user)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// Logout は POST /api/auth/logout のハンドラーです。
// クッキーを両方削除します。サーバー側の RefreshToken スロットは
// 意図的に触りません（次のログインで上書きされるまで有効なまま）。
func (m *Manager) Logout(c *gin.Context) {
	m.cookies.ClearAccessToken(c.Writer)
	m.cookies.ClearRefreshToken(c.Writer)

	c.JSON(http.StatusOK, gin.H{
		"message": "successfully signed out",
	})
}

// Refresh は POST /api/auth/token/refresh のハンドラーです。
// リフレッシュゲート通過後、提出されたトークンをサーバー側スロットと照合し、
// 一致した場合のみ新しい AccessToken を発行します（RefreshToken は回転しません）。
func (m *Manager) Refresh(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok || identity.Token == "" {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"message": invalidTokenMessage,
		})
		return
	}

	// 署名検証とは独立した2つ目のチェック。別の場所でログインして
	// スロットが上書きされていれば、署名が正しくてもここで弾かれる。
	valid, err := m.refresh.IsValid(c.Request.Context(), identity.UserID, identity.Token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to refresh token.",
		})
		return
	}
	if !valid {
		c.JSON(http.StatusNotAcceptable, gin.H{
			"message": "RefreshToken mismatch.",
		})
		return
	}

	user, err := m.store.GetByID(c.Request.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotAcceptable, gin.H{
				"message": "RefreshToken mismatch.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to refresh token.",
		})
		return
	}

	accessToken, err := m.tokens.MintAccess(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to refresh token.",
		})
		return
	}
	if err := m.cookies.SetAccessToken(c.Writer, accessToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to refresh token.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

// CurrentUser は GET /api/auth/user のハンドラーです。
// AccessToken のクレームだけでユーザー情報を返し、DBへの問い合わせは行いません。
// AccessToken の有効期限（30分）の範囲で古い情報が返ることは許容します。
func (m *Manager) CurrentUser(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": invalidTokenMessage,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    identity.UserID,
			"email": identity.Email,
		},
	})
}

// issueSession はトークン一式を発行してクッキーに設定します。
// 失敗時はレスポンスを書き込み false を返します。
func (m *Manager) issueSession(c *gin.Context, user *users.User) bool {
	_, _, ok := m.issueTokens(c, user)
	return ok
}

func (m *Manager) issueTokens(c *gin.Context, user *users.User) (string, string, bool) {
	fail := func() (string, string, bool) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to issue session tokens.",
		})
		return "", "", false
	}

	accessToken, err := m.tokens.MintAccess(user)
	if err != nil {
		return fail()
	}
	refreshToken, err := m.tokens.MintRefresh(user)
	if err != nil {
		return fail()
	}

	// 保存してからクッキーを設定する。保存が失敗したのにクッキーだけ
	// 配られると、直後のリフレッシュが必ず 406 になってしまう。
	if err := m.refresh.Save(c.Request.Context(), user.ID, refreshToken); err != nil {
		return fail()
	}
	if err := m.cookies.SetAccessToken(c.Writer, accessToken); err != nil {
		return fail()
	}
	if err := m.cookies.SetRefreshToken(c.Writer, refreshToken); err != nil {
		return fail()
	}

	return accessToken, refreshToken, true
}
