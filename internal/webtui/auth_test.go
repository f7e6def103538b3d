package webtui

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal_RequiresSession(t *testing.T) {
	srv, err := NewServer(ServerConfig{Addr: ":0", Secret: []byte("k")})
	require.NoError(t, err)
	h := srv.Handler()

	for _, path := range []string{"/terminal", "/ws"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	login, err := srv.LoginURL()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(login, "/login?token="))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, login, nil))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/terminal", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/terminal", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_RejectsBadTokens(t *testing.T) {
	srv, err := NewServer(ServerConfig{Addr: ":0", Secret: []byte("k")})
	require.NoError(t, err)
	h := srv.Handler()

	other, err := NewServer(ServerConfig{Addr: ":0", Secret: []byte("other")})
	require.NoError(t, err)
	forged, err := other.LoginURL()
	require.NoError(t, err)

	session, err := signToken([]byte("k"), "session", time.Hour, time.Now())
	require.NoError(t, err)

	for _, target := range []string{"/login", "/login?token=abc", forged, "/login?token=" + session} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestVerifyToken_Expiry(t *testing.T) {
	secret := []byte("k")
	now := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	tok, err := signToken(secret, "login", time.Minute, now)
	require.NoError(t, err)

	require.NoError(t, verifyToken(secret, tok, "login", now.Add(30*time.Second)))
	assert.EqualError(t, verifyToken(secret, tok, "login", now.Add(2*time.Minute)), "token expired")
	assert.EqualError(t, verifyToken(secret, tok, "session", now), "wrong token type")
	assert.EqualError(t, verifyToken([]byte("x"), tok, "login", now), "invalid token signature")
}

func TestLoadOrInitSecretKey_Persists(t *testing.T) {
	dir := t.TempDir()
	a, err := loadOrInitSecretKey(dir)
	require.NoError(t, err)
	b, err := loadOrInitSecretKey(dir)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	info, err := os.Stat(secretKeyPath(dir))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
