// Package app wires configuration, storage and services into the processes
// under cmd/.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-core/internal/api/metrics"
	"github.com/99minutos/auth-core/internal/core/ports"
	"github.com/99minutos/auth-core/internal/core/service"
	"github.com/99minutos/auth-core/internal/core/token"
	"github.com/99minutos/auth-core/internal/infrastructure/db/mongo"
	"github.com/99minutos/auth-core/internal/infrastructure/db/postgres"
	"github.com/99minutos/auth-core/internal/infrastructure/db/sqlite"
	"github.com/99minutos/auth-core/internal/infrastructure/hash"
	"github.com/99minutos/auth-core/internal/pkg/config"
)

// Closer releases a resource on shutdown.
type Closer func(ctx context.Context) error

// Core holds the wired services plus everything that must be closed.
type Core struct {
	Store    ports.AccountRepository
	Signer   *token.Signer
	Accounts *service.AccountService
	Sessions *service.SessionService
	Guard    *service.TokenGuard

	closers []Closer
}

// Close runs every registered closer in reverse order and joins the errors.
func (c *Core) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Core) onClose(fn Closer) {
	c.closers = append(c.closers, fn)
}

// OpenStore opens the account store selected by cfg.Store.Driver.
func OpenStore(ctx context.Context, cfg *config.Config) (ports.AccountRepository, Closer, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Store.DatabaseURL})
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewAccountRepository(db), func(context.Context) error { return db.Close() }, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func(context.Context) error { return store.Close() }, nil
	case config.DriverMongo:
		store, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		return store.Accounts, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// NewCore opens the store and builds the services. sink may be nil.
func NewCore(ctx context.Context, cfg *config.Config, sink ports.ActivitySink, log zerolog.Logger) (*Core, error) {
	store, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	log.Info().Str("driver", cfg.Store.Driver).Msg("account store ready")

	core := &Core{Store: store}
	core.onClose(closeStore)
	core.wire(cfg, sink, log)
	return core, nil
}

func (c *Core) wire(cfg *config.Config, sink ports.ActivitySink, log zerolog.Logger) {
	hasher := hash.NewBcrypt(cfg.Auth.BcryptCost, func(d time.Duration) {
		metrics.PasswordHashDuration.Observe(d.Seconds())
	})
	c.Signer = token.NewSigner(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	c.Accounts = service.NewAccountService(c.Store, hasher, sink, log.With().Str("component", "accounts").Logger())
	c.Sessions = service.NewSessionService(c.Store, hasher, c.Signer, sink, log.With().Str("component", "sessions").Logger())
	c.Guard = service.NewTokenGuard(c.Signer, log.With().Str("component", "token_guard").Logger())
}
