package webtui

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	sessionCookie = "mbkm_webtui"
	loginTTL      = 15 * time.Minute
	sessionTTL    = 12 * time.Hour
)

type signedPayload struct {
	Exp int64  `json:"exp"`
	Typ string `json:"typ"` // "login"|"session"
	N   string `json:"n,omitempty"`
}

func secretKeyPath(configDir string) string {
	return filepath.Join(filepath.Clean(configDir), "webtui", "secret.key")
}

// loadOrInitSecretKey reads the signing key from the state directory, creating it on first use.
// An empty dir yields a key that lives only as long as the process.
func loadOrInitSecretKey(configDir string) ([]byte, error) {
	if strings.TrimSpace(configDir) == "" {
		return randomKey()
	}
	path := secretKeyPath(configDir)
	if b, err := os.ReadFile(path); err == nil && len(strings.TrimSpace(string(b))) > 0 {
		return []byte(strings.TrimSpace(string(b))), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	key, err := randomKey()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, append(key, '\n'), 0o600); err != nil {
		return nil, err
	}
	return key, nil
}

func randomKey() ([]byte, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	return []byte(base64.RawURLEncoding.EncodeToString(raw)), nil
}

func newNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func signToken(secret []byte, typ string, ttl time.Duration, now time.Time) (string, error) {
	n, err := newNonce()
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(signedPayload{Exp: now.Add(ttl).Unix(), Typ: typ, N: n})
	if err != nil {
		return "", err
	}
	p := base64.RawURLEncoding.EncodeToString(b)
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write([]byte(p))
	return p + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}

func verifyToken(secret []byte, token, typ string, now time.Time) error {
	p, sig, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || p == "" || sig == "" {
		return errors.New("invalid token format")
	}
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write([]byte(p))
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(mac.Sum(nil), got) {
		return errors.New("invalid token signature")
	}
	raw, err := base64.RawURLEncoding.DecodeString(p)
	if err != nil {
		return errors.New("invalid token payload")
	}
	var sp signedPayload
	if err := json.Unmarshal(raw, &sp); err != nil {
		return errors.New("invalid token payload")
	}
	if sp.Typ != typ {
		return errors.New("wrong token type")
	}
	if sp.Exp == 0 || now.Unix() > sp.Exp {
		return errors.New("token expired")
	}
	return nil
}

// LoginURL returns a path that exchanges a short-lived token for a browser session.
func (s *Server) LoginURL() (string, error) {
	if s.cfg.NoAuth {
		return "/terminal", nil
	}
	tok, err := signToken(s.secret, "login", loginTTL, s.now())
	if err != nil {
		return "", err
	}
	return "/login?token=" + tok, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.cfg.NoAuth {
		http.Redirect(w, r, "/terminal", http.StatusFound)
		return
	}
	if err := verifyToken(s.secret, r.URL.Query().Get("token"), "login", s.now()); err != nil {
		s.log.Warn("webtui login rejected", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "login link invalid or expired; restart mbkm webtui for a new one", http.StatusUnauthorized)
		return
	}
	tok, err := signToken(s.secret, "session", sessionTTL, s.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(sessionTTL / time.Second),
	})
	http.Redirect(w, r, "/terminal", http.StatusFound)
}

// requireSession rejects requests without a valid session cookie.
func (s *Server) requireSession(next http.Handler) http.Handler {
	if s.cfg.NoAuth {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil || verifyToken(s.secret, c.Value, "session", s.now()) != nil {
			http.Error(w, "unauthorized; open the login link printed by mbkm webtui", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
