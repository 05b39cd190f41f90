package hash

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/auth-core/internal/core/domain"
)

// DefaultCost keeps a single hash in the tens of milliseconds on current hardware.
const DefaultCost = 10

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// Bcrypt implements ports.PasswordHasher. The salt is embedded in the output,
// so Compare needs only the stored hash.
type Bcrypt struct {
	cost    int
	observe func(time.Duration)
}

// NewBcrypt returns a hasher with the given cost, clamped to bcrypt's bounds.
// observe, when non-nil, receives the duration of every Hash call.
func NewBcrypt(cost int, observe func(time.Duration)) *Bcrypt {
	switch {
	case cost == 0:
		cost = DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Bcrypt{cost: cost, observe: observe}
}

// Cost returns the configured work factor.
func (b *Bcrypt) Cost() int { return b.cost }

func (b *Bcrypt) Hash(password string) (string, error) {
	start := time.Now()
	h, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if b.observe != nil {
		b.observe(time.Since(start))
	}
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", &domain.ValidationError{Field: "password", Kind: domain.ErrPasswordTooLong}
		}
		return "", err
	}
	return string(h), nil
}

func (b *Bcrypt) Compare(hash, password string) error {
	// No stored hash can come from a longer input.
	if len(password) > maxPasswordBytes {
		return domain.ErrInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return domain.ErrInvalidCredentials
	default:
		return err
	}
}
