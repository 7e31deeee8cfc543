package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name     string
		db       error
		cache    error
		store    error
		status   int
		services map[string]string
	}{
		{
			name:   "all healthy",
			status: http.StatusOK,
			services: map[string]string{
				"database": "healthy",
				"cache":    "healthy",
				"storage":  "healthy",
			},
		},
		{
			name:   "storage down",
			store:  down,
			status: http.StatusPartialContent,
			services: map[string]string{
				"database": "healthy",
				"cache":    "healthy",
				"storage":  "unhealthy",
			},
		},
		{
			name:   "cache and database down",
			db:     down,
			cache:  down,
			status: http.StatusPartialContent,
			services: map[string]string{
				"database": "unhealthy",
				"cache":    "unhealthy",
				"storage":  "healthy",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandlers(stubPinger{tt.db}, stubCache{tt.cache}, stubStore{err: tt.store}, "1.2.3")
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

			require.NoError(t, h.HealthCheck(c))
			assert.Equal(t, tt.status, rec.Code)

			var health HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
			assert.Equal(t, tt.services, health.Services)
			assert.Equal(t, "1.2.3", health.Version)
		})
	}
}

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name   string
		db     error
		cache  error
		store  error
		status int
	}{
		{"ready", nil, nil, nil, http.StatusOK},
		{"cache down is still ready", nil, errors.New("down"), nil, http.StatusOK},
		{"database down", errors.New("down"), nil, nil, http.StatusServiceUnavailable},
		{"storage down", nil, nil, errors.New("down"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandlers(stubPinger{tt.db}, stubCache{tt.cache}, stubStore{err: tt.store}, "test")
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

			require.NoError(t, h.ReadinessCheck(c))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestLivenessCheck(t *testing.T) {
	h := NewHealthHandlers(stubPinger{}, stubCache{}, stubStore{}, "test")
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/live", nil), rec)

	require.NoError(t, h.LivenessCheck(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}
