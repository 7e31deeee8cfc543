package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"licensewatch/internal/common"
)

// AuditWrites logs one audit entry per state-changing request: who, what,
// which license and the outcome. Reads pass through unlogged.
func AuditWrites(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			subject, ok := common.GetSubjectFromContext(c.Request().Context())
			if !ok {
				subject = "anonymous"
			}

			status := c.Response().Status
			if httpErr, isHTTP := err.(*echo.HTTPError); isHTTP {
				status = httpErr.Code
			}

			entry := log.WithFields(logrus.Fields{
				"audit":      true,
				"action":     method + " " + c.Path(),
				"subject":    subject,
				"license_id": c.Param("id"),
				"status":     status,
				"ip":         c.RealIP(),
				"duration":   time.Since(start).String(),
			})
			if err != nil || status >= http.StatusBadRequest {
				entry.Warn("write request rejected")
			} else {
				entry.Info("write request completed")
			}
			return err
		}
	}
}
