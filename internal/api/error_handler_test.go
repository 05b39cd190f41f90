package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-core/internal/core/domain"
)

func TestResolveError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"validation", &domain.ValidationError{Field: "username", Kind: domain.ErrUsernameLength}, http.StatusBadRequest, domain.ErrUsernameLength.Error()},
		{"wrapped hasher limit", fmt.Errorf("register: %w", &domain.ValidationError{Field: "password", Kind: domain.ErrPasswordTooLong}), http.StatusBadRequest, domain.ErrPasswordTooLong.Error()},
		{"missing field", domain.ErrMissingField, http.StatusBadRequest, domain.ErrMissingField.Error()},
		{"username taken", domain.ErrUsernameTaken, http.StatusConflict, "username already taken"},
		{"email taken", domain.ErrEmailTaken, http.StatusConflict, "email already registered"},
		{"account exists", domain.ErrAccountExists, http.StatusConflict, "account already exists"},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"no token", domain.ErrNoToken, http.StatusUnauthorized, "access denied: no token provided"},
		{"expired", domain.ErrTokenExpired, http.StatusUnauthorized, "access denied: token has expired"},
		{"invalid token", domain.ErrTokenInvalid, http.StatusForbidden, "access denied: token is invalid"},
		{"not found", domain.ErrAccountNotFound, http.StatusNotFound, "account not found"},
		{"configuration", domain.ErrConfiguration, http.StatusInternalServerError, "internal server error"},
		{"echo error", echo.NewHTTPError(http.StatusTeapot, "brew"), http.StatusTeapot, "brew"},
		{"unknown", errors.New("db exploded"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			code, msg := resolveError(tt.err, zerolog.Nop(), c)
			if code != tt.wantCode || msg != tt.wantMsg {
				t.Fatalf("resolveError() = (%d, %q), want (%d, %q)", code, msg, tt.wantCode, tt.wantMsg)
			}
		})
	}
}

func TestErrorHandlerSkipsCommittedResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrTokenInvalid, c)
	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was modified: %d %q", rec.Code, rec.Body.String())
	}
}
