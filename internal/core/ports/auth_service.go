package ports

import (
	"context"

	"github.com/99minutos/auth-core/internal/core/domain"
)

// PasswordHasher hashes passwords with an embedded salt and verifies candidates
// against the stored output.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns domain.ErrInvalidCredentials on mismatch.
	Compare(hash, password string) error
}

// AccountService registers accounts and serves profile reads.
type AccountService interface {
	Register(ctx context.Context, username, email, password string) (*domain.Account, error)
	Profile(ctx context.Context, userID string) (*domain.Account, error)
}

// SessionService exchanges credentials for a signed token.
type SessionService interface {
	Login(ctx context.Context, identifier, password string) (*domain.Session, error)
}

// Authenticator verifies the Authorization header of a protected request.
type Authenticator interface {
	Authenticate(rawHeader string) (*domain.Identity, error)
}

// ActivitySink consumes audit events. Implementations must not block callers
// for long; failures are logged, never surfaced to the request.
type ActivitySink interface {
	Record(ctx context.Context, event domain.ActivityEvent)
}
