package service

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-core/internal/core/domain"
	"github.com/99minutos/auth-core/internal/core/token"
)

// TokenGuard verifies bearer tokens on protected requests. Each call is an
// independent Unverified -> {Verified, Rejected} transition; nothing is kept
// between calls and the store is never consulted, so a token stays valid for
// a renamed or removed account until it expires.
type TokenGuard struct {
	signer *token.Signer
	log    zerolog.Logger
}

func NewTokenGuard(signer *token.Signer, log zerolog.Logger) *TokenGuard {
	return &TokenGuard{signer: signer, log: log}
}

// Authenticate verifies a raw Authorization header value.
func (g *TokenGuard) Authenticate(rawHeader string) (*domain.Identity, error) {
	raw, ok := BearerToken(rawHeader)
	if !ok {
		return nil, domain.ErrNoToken
	}
	if !g.signer.Configured() {
		g.log.Error().Msg("token check refused: JWT secret is not configured")
		return nil, domain.ErrConfiguration
	}

	res := g.signer.Verify(raw)
	switch res.Status {
	case token.StatusValid:
		id := res.Identity
		return &id, nil
	case token.StatusExpired:
		return nil, domain.ErrTokenExpired
	default:
		g.log.Debug().Err(res.Err).Msg("token rejected")
		return nil, domain.ErrTokenInvalid
	}
}

// BearerToken returns the second space-separated field of a
// "<scheme> <token>" header. The scheme is not checked and trailing fields
// are ignored; a token sent under another scheme fails verification rather
// than counting as absent. A missing or empty second field reports false.
func BearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
