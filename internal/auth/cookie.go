package auth

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	// AccessCookieName は AccessToken を運ぶクッキー名です。
	AccessCookieName = "accessToken"
	// RefreshCookieName は RefreshToken を運ぶクッキー名です。
	RefreshCookieName = "refreshToken"

	// RefreshCookiePath は RefreshToken クッキーの送信先を認証ルートに限定します。
	RefreshCookiePath = "/api/auth"
)

// CookieCodec はトークン文字列を署名付きクッキーとして読み書きします。
// 署名は完全性の保証であり秘匿ではありません。署名が検証できない値は
// 「信頼できないが存在する」ではなく「存在しない」ものとして扱います。
type CookieCodec struct {
	sc         *securecookie.SecureCookie
	accessTTL  time.Duration
	refreshTTL time.Duration
	secure     bool
}

// NewCookieCodec は CookieCodec を作成します。
func NewCookieCodec(secret []byte, accessTTL, refreshTTL time.Duration, secure bool) *CookieCodec {
	sc := securecookie.New(secret, nil) // HMACのみ（暗号化なし）
	// クッキー自体の署名有効期限は最長のトークンに合わせる
	sc.MaxAge(int(refreshTTL.Seconds()))
	return &CookieCodec{
		sc:         sc,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		secure:     secure,
	}
}

// SetAccessToken は AccessToken クッキーを設定します。
func (cc *CookieCodec) SetAccessToken(w http.ResponseWriter, token string) error {
	return cc.set(w, AccessCookieName, token, "/", int(cc.accessTTL.Seconds()))
}

// SetRefreshToken は RefreshToken クッキーを設定します。
// 送信先は認証ルート配下に限定されます。
func (cc *CookieCodec) SetRefreshToken(w http.ResponseWriter, token string) error {
	return cc.set(w, RefreshCookieName, token, RefreshCookiePath, int(cc.refreshTTL.Seconds()))
}

// ClearAccessToken は AccessToken クッキーを削除します。
func (cc *CookieCodec) ClearAccessToken(w http.ResponseWriter) {
	cc.clear(w, AccessCookieName, "/")
}

// ClearRefreshToken は RefreshToken クッキーを削除します。
// クライアント側の削除のみで、サーバー側のスロットには触れません。
func (cc *CookieCodec) ClearRefreshToken(w http.ResponseWriter) {
	cc.clear(w, RefreshCookieName, RefreshCookiePath)
}

// ReadAccessToken はリクエストから AccessToken を取り出します。
func (cc *CookieCodec) ReadAccessToken(r *http.Request) (string, bool) {
	return cc.read(r, AccessCookieName)
}

// ReadRefreshToken はリクエストから RefreshToken を取り出します。
func (cc *CookieCodec) ReadRefreshToken(r *http.Request) (string, bool) {
	return cc.read(r, RefreshCookieName)
}

func (cc *CookieCodec) set(w http.ResponseWriter, name, token, path string, maxAge int) error {
	encoded, err := cc.sc.Encode(name, token)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    encoded,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cc.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

func (cc *CookieCodec) clear(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cc.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// read はクッキーの署名を検証してトークン文字列を返します。
// クッキーが無い場合と署名が検証できない場合は区別せず false を返します。
func (cc *CookieCodec) read(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	var token string
	if err := cc.sc.Decode(name, cookie.Value, &token); err != nil {
		return "", false
	}
	return token, true
}
