package logger

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger. Unknown levels fall back to info.
func Setup(level, format string) {
	Configure(logrus.StandardLogger(), level, format)
}

// Configure applies level and format to l.
func Configure(l *logrus.Logger, level, format string) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// RequestLogger logs one line per request with the request id when present.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			entry := logrus.WithFields(logrus.Fields{
				"method": req.Method,
				"uri":    req.RequestURI,
				"status": res.Status,
				"remote": c.RealIP(),
			})
			if id := res.Header().Get(echo.HeaderXRequestID); id != "" {
				entry = entry.WithField("request_id", id)
			}
			if err != nil {
				entry.WithError(err).Warn("request failed")
			} else {
				entry.Debug("request handled")
			}
			return nil
		}
	}
}
