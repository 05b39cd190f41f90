package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-core/internal/core/domain"
	"github.com/99minutos/auth-core/internal/core/ports"
	"github.com/99minutos/auth-core/internal/core/validation"
)

// AccountService registers accounts and serves profile reads.
type AccountService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	sink   ports.ActivitySink
	log    zerolog.Logger
}

// NewAccountService wires the registrar. sink may be nil.
func NewAccountService(repo ports.AccountRepository, hasher ports.PasswordHasher, sink ports.ActivitySink, log zerolog.Logger) *AccountService {
	return &AccountService{
		repo:   repo,
		hasher: hasher,
		sink:   normalizeSink(sink),
		log:    log,
	}
}

// Register validates input, checks uniqueness, hashes the password and
// inserts the account. The returned account never carries the hash.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*domain.Account, error) {
	// 1. Syntax checks, no I/O.
	if err := validation.ValidateRegistration(username, email, password); err != nil {
		return nil, err
	}

	// 2. Single lookup on either column.
	existing, err := s.repo.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		if existing.Username == username {
			return nil, domain.ErrUsernameTaken
		}
		return nil, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrAccountNotFound):
		return nil, fmt.Errorf("register: lookup: %w", err)
	}

	// 3. Slow salted hash.
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	// 4. Insert. A concurrent registration may have won since the lookup; the
	// store reports which constraint fired.
	created, err := s.repo.Create(ctx, username, email, hash)
	if err != nil {
		if domain.IsRegistration(err) {
			s.log.Debug().Err(err).Msg("registration lost uniqueness race")
			return nil, err
		}
		return nil, fmt.Errorf("register: insert: %w", err)
	}

	s.sink.Record(ctx, domain.ActivityEvent{
		Type:       domain.ActivityAccountRegistered,
		UserID:     created.ID,
		Username:   created.Username,
		OccurredAt: time.Now().UTC(),
	})
	s.log.Info().
		Str("user_id", created.ID).
		Str("username", created.Username).
		Msg("account registered")

	return created.Public(), nil
}

// Profile loads an account by id without its password hash.
func (s *AccountService) Profile(ctx context.Context, userID string) (*domain.Account, error) {
	if userID == "" {
		return nil, domain.ErrAccountNotFound
	}
	acct, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("profile: %w", err)
	}
	return acct.Public(), nil
}
