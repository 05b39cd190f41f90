package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-core/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Input problems carry the rule that failed.
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Kind.Error()
	}

	switch {
	case errors.Is(err, domain.ErrMissingField):
		return http.StatusBadRequest, err.Error()
	case domain.IsRegistration(err):
		return http.StatusConflict, registrationMessage(err)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrNoToken):
		return http.StatusUnauthorized, "access denied: no token provided"
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, "access denied: token has expired"
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusForbidden, "access denied: token is invalid"
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "account not found"
	case errors.Is(err, domain.ErrConfiguration):
		log.Error().
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("authentication is not configured")
		return http.StatusInternalServerError, "internal server error"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

func registrationMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		return domain.ErrUsernameTaken.Error()
	case errors.Is(err, domain.ErrEmailTaken):
		return domain.ErrEmailTaken.Error()
	default:
		return domain.ErrAccountExists.Error()
	}
}
