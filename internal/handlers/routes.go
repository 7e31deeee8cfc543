package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"licensewatch/internal/middleware"
)

// Routes bundles the handlers mounted by RegisterRoutes
type Routes struct {
	Licenses  *LicenseHandlers
	Dashboard *DashboardHandlers
	Health    *HealthHandlers
	// Auth guards write routes; nil leaves them open.
	Auth echo.MiddlewareFunc
}

func RegisterRoutes(e *echo.Echo, r Routes) {
	e.GET("/health", r.Health.HealthCheck)
	e.GET("/health/ready", r.Health.ReadinessCheck)
	e.GET("/health/live", r.Health.LivenessCheck)

	versionMiddleware := middleware.NewVersionMiddleware()
	v1 := versionMiddleware.VersionGroup(e, "/api", "v1")

	auth := middleware.Optional(r.Auth != nil, r.Auth)
	audit := middleware.AuditWrites(logrus.StandardLogger())

	licenses := v1.Group("/licenses")
	licenses.POST("/upload", r.Licenses.UploadLicense, auth, audit)
	licenses.POST("/validate", r.Licenses.ValidateLicense)
	licenses.GET("", r.Licenses.ListLicenses)
	licenses.GET("/expiring", r.Licenses.ExpiringLicenses)
	licenses.GET("/:id", r.Licenses.GetLicense)
	licenses.GET("/:id/content", r.Licenses.GetLicenseContent)
	licenses.PUT("/:id", r.Licenses.UpdateLicense, auth, audit)
	licenses.DELETE("/:id", r.Licenses.DeleteLicense, auth, audit)

	v1.GET("/dashboard/summary", r.Dashboard.GetSummary)
}
