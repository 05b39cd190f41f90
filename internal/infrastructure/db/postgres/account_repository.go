package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/99minutos/auth-core/internal/core/domain"
)

const (
	uniqueViolation    = "23505"
	usernameConstraint = "accounts_username_key"
	emailConstraint    = "accounts_email_key"
)

// DBTX is the subset of database/sql used by the repository.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type pinger interface {
	PingContext(ctx context.Context) error
}

// AccountRepository stores accounts in PostgreSQL.
type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.Account, error) {
	query :=
		`SELECT id, username, email, password_hash, created_at, updated_at FROM accounts
		 WHERE username = $1 OR email = $2
		 ORDER BY (username = $1) DESC
		 LIMIT 1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, username, email))
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	query :=
		`SELECT id, username, email, password_hash, created_at, updated_at FROM accounts
		 WHERE id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *AccountRepository) Create(ctx context.Context, username, email, passwordHash string) (*domain.Account, error) {
	query :=
		`INSERT INTO accounts (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`

	acct := &domain.Account{Username: username, Email: email, PasswordHash: passwordHash}
	err := r.db.QueryRowContext(ctx, query, username, email, passwordHash).
		Scan(&acct.ID, &acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		if conflict := classifyUnique(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return acct, nil
}

func (r *AccountRepository) Ping(ctx context.Context) error {
	if p, ok := r.db.(pinger); ok {
		return p.PingContext(ctx)
	}
	var one int
	return r.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one)
}

func (r *AccountRepository) scanOne(row *sql.Row) (*domain.Account, error) {
	acct := &domain.Account{}
	err := row.Scan(&acct.ID, &acct.Username, &acct.Email, &acct.PasswordHash, &acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	acct.CreatedAt = acct.CreatedAt.UTC()
	acct.UpdatedAt = acct.UpdatedAt.UTC()
	return acct, nil
}

// classifyUnique maps a unique violation to the matching domain error, or
// returns nil for any other error.
func classifyUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case usernameConstraint:
		return domain.ErrUsernameTaken
	case emailConstraint:
		return domain.ErrEmailTaken
	default:
		return domain.ErrAccountExists
	}
}
