package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"transit-admin/internal/domain"
	"transit-admin/internal/middleware"
	"transit-admin/internal/mocks"
	"transit-admin/internal/session"
	"transit-admin/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testCookieName = "transit_admin_session"
	testToken      = "upstream-token"
	testAdminName  = "Dilshan Perera"
)

// newTestRouter wires the page handlers the way cmd/server does.
func newTestRouter(api *mocks.TMSClient, sessions *session.Manager) *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(Templates())

	auth := NewAuthHandler(api, sessions)
	users := NewUserHandler(api, sessions, validator.NewValidator())

	router.GET("/login", auth.LoginPage)
	router.POST("/login", auth.Login)
	router.POST("/logout", auth.Logout)

	admin := router.Group("/admin", middleware.RequireSession(sessions))
	admin.GET("/users", users.List)
	admin.GET("/users/:id/edit", users.EditPage)
	admin.POST("/users/:id/edit", users.Update)

	router.NoRoute(NotFound)

	return router
}

func newSessions() *session.Manager {
	return session.NewManager("handler-test-secret", testCookieName, time.Hour, false)
}

// adminCookie issues a signed session cookie for requests that need one.
func adminCookie(t *testing.T, sessions *session.Manager) *http.Cookie {
	t.Helper()
	value, err := sessions.Issue(testToken, testAdminName, time.Time{})
	require.NoError(t, err)
	return &http.Cookie{Name: testCookieName, Value: value}
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:         "68a1f0c2d4e5f60718293a4b",
		Name:       "Nadeesha Fernando",
		Email:      "nadeesha@sltransit.lk",
		Phone:      "+94 71 555 0132",
		Role:       domain.RoleCustomerService,
		Department: "Passenger Support",
		Permissions: []domain.Permission{
			domain.PermReadRoutes,
			domain.PermReadUsers,
			domain.PermManageBookings,
		},
		Active:    true,
		CreatedAt: time.Date(2024, 3, 14, 8, 30, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 11, 2, 16, 45, 0, 0, time.UTC),
	}
}

// sampleForm posts sampleUser back unchanged.
func sampleForm() url.Values {
	return url.Values{
		"name":        {"Nadeesha Fernando"},
		"email":       {"nadeesha@sltransit.lk"},
		"phone":       {"+94 71 555 0132"},
		"role":        {"customer_service"},
		"department":  {"Passenger Support"},
		"permissions": {"read_routes", "read_users", "manage_bookings"},
		"active":      {"1"},
	}
}

func doGet(router *gin.Engine, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doPost(router *gin.Engine, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// clearedSessionCookie reports whether the response expires the session
// cookie.
func clearedSessionCookie(w *httptest.ResponseRecorder) bool {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == testCookieName && ck.MaxAge < 0 {
			return true
		}
	}
	return false
}
