package middleware

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"licensewatch/internal/common"
)

const tokenContextKey = "token"

// JWTAuth guards write routes with an HS256 bearer token signed with secret. The
// token subject is stored in the request context.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: jwt.SigningMethodHS256.Name,
		ContextKey:    tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(jwt.RegisteredClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return
			}
			if subject, err := token.Claims.GetSubject(); err == nil && subject != "" {
				c.SetRequest(c.Request().WithContext(common.WithSubject(c.Request().Context(), subject)))
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logrus.WithError(err).WithField("path", c.Path()).Debug("rejected bearer token")
			return common.SendUnauthorizedError(c)
		},
	})
}

// Optional returns m when enabled and a pass-through middleware otherwise.
func Optional(enabled bool, m echo.MiddlewareFunc) echo.MiddlewareFunc {
	if enabled {
		return m
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return next
	}
}
