// Package token mints and verifies the HS256 bearer tokens handed out at login.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/auth-core/internal/core/domain"
)

// DefaultTTL is the lifetime of a freshly minted token.
const DefaultTTL = time.Hour

// Claims is the signed payload: {userId, username} plus iat/exp.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Status is the outcome of a verification.
type Status int

const (
	StatusInvalid Status = iota
	StatusValid
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusExpired:
		return "expired"
	default:
		return "invalid"
	}
}

// Result is the tagged outcome of Verify. Identity is set only when Status is
// StatusValid; Err carries the underlying parser error otherwise.
type Result struct {
	Status   Status
	Identity domain.Identity
	Err      error
}

// Signer holds the process-wide secret. It is immutable after construction and
// safe for concurrent use.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customises a Signer.
type Option func(*Signer)

// WithClock overrides the time source used for iat/exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) { s.now = now }
}

// NewSigner builds a Signer. A ttl <= 0 falls back to DefaultTTL. An empty
// secret is accepted here and reported by Mint/Verify as domain.ErrConfiguration.
func NewSigner(secret string, ttl time.Duration, opts ...Option) *Signer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether a signing secret is present.
func (s *Signer) Configured() bool {
	return len(s.secret) > 0
}

// TTL returns the token lifetime.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Mint signs a token for the identity and returns it with its expiry.
func (s *Signer) Mint(id domain.Identity) (string, time.Time, error) {
	if !s.Configured() {
		return "", time.Time{}, domain.ErrConfiguration
	}

	issued := s.now().UTC()
	expires := issued.Add(s.ttl)
	claims := Claims{
		UserID:   id.UserID,
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires.Truncate(time.Second), nil
}

// Verify checks signature and expiry. It never panics and never returns an
// untagged outcome.
func (s *Signer) Verify(raw string) Result {
	if !s.Configured() {
		return Result{Status: StatusInvalid, Err: domain.ErrConfiguration}
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Result{Status: StatusExpired, Err: err}
	case err != nil:
		return Result{Status: StatusInvalid, Err: err}
	case !parsed.Valid:
		return Result{Status: StatusInvalid, Err: jwt.ErrTokenUnverifiable}
	case claims.UserID == "" || claims.Username == "":
		return Result{Status: StatusInvalid, Err: jwt.ErrTokenInvalidClaims}
	}

	return Result{
		Status:   StatusValid,
		Identity: domain.Identity{UserID: claims.UserID, Username: claims.Username},
	}
}
