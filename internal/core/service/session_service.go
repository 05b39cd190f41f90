package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-core/internal/core/domain"
	"github.com/99minutos/auth-core/internal/core/ports"
	"github.com/99minutos/auth-core/internal/core/token"
)

// Reasons recorded on failed logins. They reach the audit trail only; callers
// always get domain.ErrInvalidCredentials.
const (
	reasonUnknownIdentifier = "unknown_identifier"
	reasonPasswordMismatch  = "password_mismatch"
)

// SessionService verifies credentials and mints tokens.
type SessionService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	signer *token.Signer
	sink   ports.ActivitySink
	log    zerolog.Logger

	// decoy is compared against when the identifier is unknown so both
	// failure paths cost one hash comparison.
	decoy string
}

// NewSessionService wires the issuer. sink may be nil.
func NewSessionService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	signer *token.Signer,
	sink ports.ActivitySink,
	log zerolog.Logger,
) *SessionService {
	decoy, err := hasher.Hash("decoy-password-never-matches")
	if err != nil {
		log.Warn().Err(err).Msg("could not prepare decoy hash")
	}
	return &SessionService{
		repo:   repo,
		hasher: hasher,
		signer: signer,
		sink:   normalizeSink(sink),
		log:    log,
		decoy:  decoy,
	}
}

// Login exchanges an identifier (username or email) and password for a token.
func (s *SessionService) Login(ctx context.Context, identifier, password string) (*domain.Session, error) {
	if identifier == "" || password == "" {
		return nil, domain.ErrMissingField
	}
	if !s.signer.Configured() {
		s.log.Error().Msg("login refused: JWT secret is not configured")
		return nil, domain.ErrConfiguration
	}

	acct, err := s.repo.FindByUsernameOrEmail(ctx, identifier, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			if s.decoy != "" {
				_ = s.hasher.Compare(s.decoy, password)
			}
			return nil, s.reject(ctx, "", reasonUnknownIdentifier)
		}
		return nil, fmt.Errorf("login: lookup: %w", err)
	}

	if err := s.hasher.Compare(acct.PasswordHash, password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, s.reject(ctx, acct.ID, reasonPasswordMismatch)
		}
		return nil, fmt.Errorf("login: compare: %w", err)
	}

	signed, expires, err := s.signer.Mint(domain.Identity{UserID: acct.ID, Username: acct.Username})
	if err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			return nil, err
		}
		return nil, fmt.Errorf("login: sign token: %w", err)
	}

	s.sink.Record(ctx, domain.ActivityEvent{
		Type:       domain.ActivityLoginSuccess,
		UserID:     acct.ID,
		Username:   acct.Username,
		OccurredAt: time.Now().UTC(),
	})
	s.log.Info().Str("user_id", acct.ID).Msg("login succeeded")

	return &domain.Session{
		Token:     signed,
		ExpiresAt: expires,
		Account:   acct.Public(),
	}, nil
}

func (s *SessionService) reject(ctx context.Context, userID, reason string) error {
	s.sink.Record(ctx, domain.ActivityEvent{
		Type:       domain.ActivityLoginFailure,
		UserID:     userID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
	s.log.Info().Str("reason", reason).Msg("login rejected")
	return domain.ErrInvalidCredentials
}
