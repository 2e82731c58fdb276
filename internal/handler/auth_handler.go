package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"transit-admin/internal/logger"
	"transit-admin/internal/metrics"
	"transit-admin/internal/middleware"
	"transit-admin/internal/session"
	"transit-admin/internal/tmsapi"
)

// usersPath is where a signed-in admin lands by default.
const usersPath = "/admin/users"

// AuthHandler handles the login and logout routes.
type AuthHandler struct {
	api      tmsapi.Client
	sessions *session.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(api tmsapi.Client, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		api:      api,
		sessions: sessions,
	}
}

// loginData feeds the login template.
type loginData struct {
	page
	Error string
	Email string
	Next  string
}

// loginBanners maps the error query parameter set by redirects to the
// text shown above the login form.
var loginBanners = map[string]string{
	"session_expired": "Your session has expired. Sign in again.",
}

// LoginPage handles GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if _, err := h.sessions.FromRequest(c); err == nil {
		c.Redirect(http.StatusFound, usersPath)
		return
	}

	data := loginData{page: page{Title: "Sign in"}, Next: c.Query("next")}
	if reason := c.Query("error"); reason != "" {
		msg, ok := loginBanners[reason]
		if !ok {
			msg = "Sign in to continue."
		}
		data.Error = msg
	}
	c.HTML(http.StatusOK, "login", data)
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	data := loginData{page: page{Title: "Sign in"}, Email: email, Next: c.PostForm("next")}

	if email == "" || password == "" {
		data.Error = "Email and password are required."
		c.HTML(http.StatusBadRequest, "login", data)
		return
	}

	creds, err := h.api.Login(c.Request.Context(), email, password)
	if errors.Is(err, tmsapi.ErrUnauthorized) {
		metrics.ObserveLogin("invalid_credentials")
		data.Error = "Invalid email or password."
		c.HTML(http.StatusUnauthorized, "login", data)
		return
	}
	if err != nil {
		metrics.ObserveLogin("error")
		logger.ErrorContext(c.Request.Context(), "Login call failed", slog.String("error", err.Error()))
		data.Error = "The sign-in service is unavailable right now."
		c.HTML(http.StatusBadGateway, "login", data)
		return
	}

	value, err := h.sessions.Issue(creds.Token, creds.Name, creds.ExpiresAt)
	if err != nil {
		metrics.ObserveLogin("error")
		logger.ErrorContext(c.Request.Context(), "Session signing failed", slog.String("error", err.Error()))
		data.Error = "Could not start a session. Try again."
		c.HTML(http.StatusInternalServerError, "login", data)
		return
	}

	h.sessions.Write(c, value)
	metrics.ObserveLogin("success")
	logger.InfoContext(c.Request.Context(), "Admin signed in", slog.String("admin", creds.Name))
	c.Redirect(http.StatusFound, safeNext(data.Next))
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	c.Redirect(http.StatusFound, middleware.LoginPath)
}

// safeNext keeps post-login redirects on this site. Anything that is
// not a local path falls back to the user list.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return usersPath
}
