package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-core/internal/api/metrics"
	"github.com/99minutos/auth-core/internal/core/domain"
	"github.com/99minutos/auth-core/internal/core/ports"
)

type AuthHandler struct {
	accounts ports.AccountService
	sessions ports.SessionService
}

func NewAuthHandler(accounts ports.AccountService, sessions ports.SessionService) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions}
}

type registerRequest struct {
	Username string `json:"username" validate:"max=256"`
	Email    string `json:"email"    validate:"max=320"`
	Password string `json:"password" validate:"max=1024"`
}

type loginRequest struct {
	// Identifier is a username or an email address. "username" and "email"
	// are accepted as aliases.
	Identifier string `json:"identifier" validate:"max=320"`
	Username   string `json:"username"   validate:"max=256"`
	Email      string `json:"email"      validate:"max=320"`
	Password   string `json:"password"   validate:"max=1024"`
}

func (r loginRequest) identifier() string {
	switch {
	case r.Identifier != "":
		return r.Identifier
	case r.Username != "":
		return r.Username
	default:
		return r.Email
	}
}

type registerResponse struct {
	Message string          `json:"message"`
	User    *domain.Account `json:"user"`
}

type sessionResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      *domain.Account `json:"user"`
}

// Register creates a new account.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	acct, err := h.accounts.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registrationResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, registerResponse{Message: "Account created.", User: acct})
}

// Login authenticates an account and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	session, err := h.sessions.Login(c.Request().Context(), req.identifier(), req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      session.Account,
	})
}

// Me returns the account behind the bearer token.
//
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  domain.Account
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	acct, err := h.accounts.Profile(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acct)
}

func registrationResult(err error) string {
	switch {
	case domain.IsValidation(err):
		return "invalid"
	case domain.IsRegistration(err):
		return "conflict"
	default:
		return "error"
	}
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrMissingField):
		return "invalid"
	case errors.Is(err, domain.ErrConfiguration):
		return "misconfigured"
	default:
		return "error"
	}
}
