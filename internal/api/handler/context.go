package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-core/internal/api/middleware"
	"github.com/99minutos/auth-core/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware. A miss
// means the route was registered without the guard.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.UserID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
