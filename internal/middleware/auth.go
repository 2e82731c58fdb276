package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"transit-admin/internal/logger"
	"transit-admin/internal/metrics"
	"transit-admin/internal/session"
)

const (
	// SessionKey is the context key for the decoded admin session
	SessionKey = "admin_session"
	// LoginPath is where requests without a usable session are sent
	LoginPath = "/login"
)

// RequireSession gates a route group behind a valid session cookie.
// Requests without one are redirected to the login page with the
// original URL preserved, so the admin lands back where they were.
func RequireSession(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sessions.FromRequest(c)
		if err != nil {
			metrics.ObserveSessionExpiry()
			logger.Debug("Session missing or expired",
				slog.String("path", c.Request.URL.Path))
			RedirectToLogin(c, "session_expired")
			return
		}

		c.Set(SessionKey, sess)
		c.Next()
	}
}

// RedirectToLogin aborts the request and sends the client to the login
// page, carrying an error code and the URL to return to afterwards.
func RedirectToLogin(c *gin.Context, reason string) {
	q := url.Values{}
	q.Set("error", reason)
	if next := c.Request.URL.RequestURI(); next != "" && next != LoginPath {
		q.Set("next", next)
	}

	c.Redirect(http.StatusFound, LoginPath+"?"+q.Encode())
	c.Abort()
}

// GetSession retrieves the decoded session from the gin context. It
// returns nil on routes that passed no session gate.
func GetSession(c *gin.Context) *session.Session {
	if v, exists := c.Get(SessionKey); exists {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return nil
}
