package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"licensewatch/internal/caching"
	"licensewatch/internal/services"
)

const healthCheckTimeout = 3 * time.Second

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db        Pinger
	cache     caching.CacheService
	store     services.LicenseFileStore
	version   string
	startedAt time.Time
}

func NewHealthHandlers(db Pinger, cache caching.CacheService, store services.LicenseFileStore, version string) *HealthHandlers {
	return &HealthHandlers{
		db:        db,
		cache:     cache,
		store:     store,
		version:   version,
		startedAt: time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Services   map[string]string `json:"services"`
	Uptime     string            `json:"uptime"`
	Version    string            `json:"version"`
	Goroutines int               `json:"goroutines"`
}

// HealthCheck reports each dependency; 206 when any of them is down
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	health := &HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Services:   make(map[string]string),
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		Version:    h.version,
		Goroutines: runtime.NumGoroutine(),
	}

	checks := map[string]func(context.Context) error{
		"database": h.db.Ping,
		"cache":    h.cache.Ping,
		"storage":  h.store.Ping,
	}
	for name, check := range checks {
		if err := check(ctx); err != nil {
			logrus.WithError(err).WithField("service", name).Warn("health check failed")
			health.Services[name] = "unhealthy"
			health.Status = "degraded"
			continue
		}
		health.Services[name] = "healthy"
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}
	return c.JSON(statusCode, health)
}

// ReadinessCheck fails when the database or the file store is unreachable.
// The cache is optional.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	dbErr := h.db.Ping(ctx)
	storeErr := h.store.Ping(ctx)

	if dbErr != nil || storeErr != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Critical services unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
