package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-core/internal/api/metrics"
	"github.com/99minutos/auth-core/internal/core/domain"
	"github.com/99minutos/auth-core/internal/core/ports"
)

const identityKey = "identity"

// Auth runs the Authenticator on the Authorization header and injects the
// resulting identity into the context. Failures are returned as domain
// errors for the HTTP error handler to map.
func Auth(authn ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := authn.Authenticate(c.Request().Header.Get(echo.HeaderAuthorization))
			metrics.TokenChecksTotal.WithLabelValues(checkResult(err)).Inc()
			if err != nil {
				return err
			}

			c.Set(identityKey, identity)
			c.Set("user_id", identity.UserID)
			c.Set("username", identity.Username)

			return next(c)
		}
	}
}

// IdentityFrom returns the identity set by Auth.
func IdentityFrom(c echo.Context) (*domain.Identity, bool) {
	id, ok := c.Get(identityKey).(*domain.Identity)
	return id, ok && id != nil
}

func checkResult(err error) string {
	switch {
	case err == nil:
		return "valid"
	case errors.Is(err, domain.ErrNoToken):
		return "no_token"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrConfiguration):
		return "misconfigured"
	default:
		return "invalid"
	}
}
