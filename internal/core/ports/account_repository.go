package ports

import (
	"context"

	"github.com/99minutos/auth-core/internal/core/domain"
)

// AccountRepository defines the persistence contract for accounts.
//
// Uniqueness of username and email is enforced by the store. Create reports a
// violated constraint as domain.ErrUsernameTaken, domain.ErrEmailTaken or, when
// the constraint cannot be identified, domain.ErrAccountExists.
type AccountRepository interface {
	// FindByUsernameOrEmail returns the account whose username equals username
	// or whose email equals email. A username match wins when both columns
	// match different rows. Returns domain.ErrAccountNotFound when nothing matches.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	Create(ctx context.Context, username, email, passwordHash string) (*domain.Account, error)
	Ping(ctx context.Context) error
}
