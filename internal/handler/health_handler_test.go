package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"transit-admin/internal/mocks"
)

func newHealthRouter(api *mocks.TMSClient) *gin.Engine {
	handler := NewHealthHandler(api)
	router := gin.New()
	router.GET("/health", handler.Health)
	router.GET("/ready", handler.Ready)
	router.GET("/live", handler.Live)
	return router
}

func TestHealth_Healthy(t *testing.T) {
	api := new(mocks.TMSClient)
	api.On("Ping", mock.Anything).Return(nil)
	router := newHealthRouter(api)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Services["tms_api"])
}

func TestHealth_UpstreamUnreachable(t *testing.T) {
	api := new(mocks.TMSClient)
	api.On("Ping", mock.Anything).Return(errors.New("dial tcp: connection refused"))
	router := newHealthRouter(api)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "unhealthy", resp.Services["tms_api"])
}

func TestReady(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		wantCode int
	}{
		{"upstream reachable", nil, http.StatusOK},
		{"upstream down", errors.New("no route to host"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(mocks.TMSClient)
			api.On("Ping", mock.Anything).Return(tt.pingErr)
			router := newHealthRouter(api)

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestLive(t *testing.T) {
	router := newHealthRouter(new(mocks.TMSClient))

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alive")
}
