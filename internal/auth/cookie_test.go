package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestCookieCodec() *CookieCodec {
	return NewCookieCodec(
		[]byte("cookie-secret-for-tests-0123456789ab"),
		30*time.Minute,
		14*24*time.Hour,
		false,
	)
}

func findCookie(t *testing.T, res *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range res.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func requestWithCookie(cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	req.AddCookie(cookie)
	return req
}

func TestCookieRoundTrip(t *testing.T) {
	codec := newTestCookieCodec()
	recorder := httptest.NewRecorder()

	if err := codec.SetAccessToken(recorder, "token-value"); err != nil {
		t.Fatalf("SetAccessToken returned error: %v", err)
	}

	cookie := findCookie(t, recorder.Result(), AccessCookieName)
	token, ok := codec.ReadAccessToken(requestWithCookie(cookie))
	if !ok {
		t.Fatal("ReadAccessToken failed on a freshly written cookie")
	}
	if token != "token-value" {
		t.Fatalf("token = %q, want %q", token, "token-value")
	}
}

func TestCookieAttributes(t *testing.T) {
	codec := newTestCookieCodec()
	recorder := httptest.NewRecorder()

	if err := codec.SetAccessToken(recorder, "a"); err != nil {
		t.Fatalf("SetAccessToken returned error: %v", err)
	}
	if err := codec.SetRefreshToken(recorder, "r"); err != nil {
		t.Fatalf("SetRefreshToken returned error: %v", err)
	}

	res := recorder.Result()

	access := findCookie(t, res, AccessCookieName)
	if !access.HttpOnly {
		t.Error("access cookie must be HttpOnly")
	}
	if access.Path != "/" {
		t.Errorf("access cookie path = %q, want %q", access.Path, "/")
	}
	if access.MaxAge != int((30 * time.Minute).Seconds()) {
		t.Errorf("access cookie MaxAge = %d, want %d", access.MaxAge, 1800)
	}

	refresh := findCookie(t, res, RefreshCookieName)
	if !refresh.HttpOnly {
		t.Error("refresh cookie must be HttpOnly")
	}
	if refresh.Path != RefreshCookiePath {
		t.Errorf("refresh cookie path = %q, want %q", refresh.Path, RefreshCookiePath)
	}
	if refresh.MaxAge != int((14 * 24 * time.Hour).Seconds()) {
		t.Errorf("refresh cookie MaxAge = %d", refresh.MaxAge)
	}
}

func TestTamperedCookieTreatedAsAbsent(t *testing.T) {
	codec := newTestCookieCodec()
	recorder := httptest.NewRecorder()

	if err := codec.SetAccessToken(recorder, "token-value"); err != nil {
		t.Fatalf("SetAccessToken returned error: %v", err)
	}

	cookie := findCookie(t, recorder.Result(), AccessCookieName)
	raw := []byte(cookie.Value)
	if raw[0] == 'A' {
		raw[0] = 'B'
	} else {
		raw[0] = 'A'
	}
	cookie.Value = string(raw)

	if _, ok := codec.ReadAccessToken(requestWithCookie(cookie)); ok {
		t.Fatal("tampered cookie must be treated as absent")
	}
}

func TestCookieSignedWithDifferentSecretTreatedAsAbsent(t *testing.T) {
	codec := newTestCookieCodec()
	other := NewCookieCodec([]byte("another-secret"), 30*time.Minute, 14*24*time.Hour, false)
	recorder := httptest.NewRecorder()

	if err := other.SetAccessToken(recorder, "token-value"); err != nil {
		t.Fatalf("SetAccessToken returned error: %v", err)
	}

	cookie := findCookie(t, recorder.Result(), AccessCookieName)
	if _, ok := codec.ReadAccessToken(requestWithCookie(cookie)); ok {
		t.Fatal("cookie signed with a different secret must be treated as absent")
	}
}

func TestMissingCookieTreatedAsAbsent(t *testing.T) {
	codec := newTestCookieCodec()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)

	if _, ok := codec.ReadAccessToken(req); ok {
		t.Fatal("missing cookie must be treated as absent")
	}
	if _, ok := codec.ReadRefreshToken(req); ok {
		t.Fatal("missing cookie must be treated as absent")
	}
}

func TestClearCookies(t *testing.T) {
	codec := newTestCookieCodec()
	recorder := httptest.NewRecorder()

	codec.ClearAccessToken(recorder)
	codec.ClearRefreshToken(recorder)

	res := recorder.Result()

	access := findCookie(t, res, AccessCookieName)
	if access.Value != "" || access.MaxAge >= 0 {
		t.Errorf("access cookie not cleared: value=%q maxAge=%d", access.Value, access.MaxAge)
	}
	refresh := findCookie(t, res, RefreshCookieName)
	if refresh.Value != "" || refresh.MaxAge >= 0 {
		t.Errorf("refresh cookie not cleared: value=%q maxAge=%d", refresh.Value, refresh.MaxAge)
	}
	if refresh.Path != RefreshCookiePath {
		t.Errorf("refresh cookie path = %q, want %q", refresh.Path, RefreshCookiePath)
	}
}
