// Package session issues and verifies the signed cookie that carries an
// admin's TMS API token between requests. Sessions are stateless;
// everything lives in the cookie itself.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession means the request carries no usable session: the cookie
// is absent, tampered with, or expired.
var ErrNoSession = errors.New("session: missing or expired")

// Session is the decoded state of a logged-in admin.
type Session struct {
	// Token is the upstream TMS API bearer token.
	Token string
	// Name is the admin's display name, shown in the page header.
	Name string
	// ExpiresAt is when the session stops being accepted.
	ExpiresAt time.Time
}

// Manager signs and verifies session cookies.
type Manager struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
}

// NewManager creates a Manager that signs cookies named cookieName with
// secret. Sessions live at most ttl; secure marks the cookie HTTPS-only.
func NewManager(secret, cookieName string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		secret:     []byte(secret),
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

type sessionClaims struct {
	Token string `json:"tok"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Issue signs a session wrapping the upstream token. The session never
// outlives the upstream token: expiry is the earlier of now+ttl and
// upstreamExpiry when the API reports one.
func (m *Manager) Issue(token, name string, upstreamExpiry time.Time) (string, error) {
	now := time.Now()
	exp := now.Add(m.ttl)
	if !upstreamExpiry.IsZero() && upstreamExpiry.Before(exp) {
		exp = upstreamExpiry
	}

	claims := sessionClaims{
		Token: token,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("session: sign: %w", err)
	}
	return signed, nil
}

// Decode verifies a cookie value and returns the session it carries.
// Any failure collapses to ErrNoSession; callers redirect to login
// regardless of the reason.
func (m *Manager) Decode(value string) (*Session, error) {
	claims := &sessionClaims{}
	tok, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrNoSession
	}

	return &Session{
		Token:     claims.Token,
		Name:      claims.Name,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// FromRequest decodes the session cookie on the request.
func (m *Manager) FromRequest(c *gin.Context) (*Session, error) {
	value, err := c.Cookie(m.cookieName)
	if err != nil {
		return nil, ErrNoSession
	}
	return m.Decode(value)
}

// Write sets the session cookie on the response.
func (m *Manager) Write(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, value, int(m.ttl.Seconds()), "/", "", m.secure, true)
}

// Clear removes the session cookie.
func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.cookieName
}
