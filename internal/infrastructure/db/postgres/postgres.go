package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/99minutos/auth-core/internal/infrastructure/db/migrations"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings required to open the account database.
type Config struct {
	URL     string
	Timeout time.Duration
}

// migrate is a seam for tests.
var migrate = func(ctx context.Context, db *sql.DB) error {
	return migrations.Up(ctx, db, goose.DialectPostgres)
}

// Connect opens a pgx-backed *sql.DB, verifies connectivity with a ping and
// applies the embedded migrations. A default timeout is applied when none is
// provided.
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(connectCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if err := migrate(connectCtx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
