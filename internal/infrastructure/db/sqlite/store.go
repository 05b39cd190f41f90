// Package sqlite implements the account repository on a local SQLite file
// using the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/99minutos/auth-core/internal/core/domain"
	"github.com/99minutos/auth-core/internal/infrastructure/db/migrations"
)

const accountColumns = `id, username, email, password_hash, created_at, updated_at`

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store is an AccountRepository backed by SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite allows one writer; a single connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrations.Up(ctx, db, goose.DialectSQLite3); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE username = ? OR email = ?
		ORDER BY (username = ?) DESC
		LIMIT 1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, username, email, username))
}

func (s *Store) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) Create(ctx context.Context, username, email, passwordHash string) (*domain.Account, error) {
	now := s.now().UTC().Truncate(time.Millisecond)
	acct := &domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		acct.ID, acct.Username, acct.Email, acct.PasswordHash, toMillis(now), toMillis(now),
	)
	if err != nil {
		if conflict := classifyUnique(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return acct, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) scanOne(row *sql.Row) (*domain.Account, error) {
	var (
		acct             domain.Account
		created, updated int64
	)
	err := row.Scan(&acct.ID, &acct.Username, &acct.Email, &acct.PasswordHash, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("query account: %w", err)
	}
	acct.CreatedAt = fromMillis(created)
	acct.UpdatedAt = fromMillis(updated)
	return &acct, nil
}

// classifyUnique returns the domain error for a unique violation, or nil
// when err is something else.
func classifyUnique(err error) error {
	if err == nil {
		return nil
	}
	constraint := false
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			constraint = true
		}
	}
	message := strings.ToLower(err.Error())
	if !constraint && !strings.Contains(message, "unique constraint failed") {
		return nil
	}
	switch {
	case strings.Contains(message, "accounts.username"):
		return domain.ErrUsernameTaken
	case strings.Contains(message, "accounts.email"):
		return domain.ErrEmailTaken
	default:
		return domain.ErrAccountExists
	}
}
