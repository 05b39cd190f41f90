package app

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-core/internal/api"
	"github.com/99minutos/auth-core/internal/api/handler"
	"github.com/99minutos/auth-core/internal/api/metrics"
	"github.com/99minutos/auth-core/internal/infrastructure/activity"
	"github.com/99minutos/auth-core/internal/infrastructure/db/redis"
	"github.com/99minutos/auth-core/internal/infrastructure/queue"
	"github.com/99minutos/auth-core/internal/pkg/config"
)

const shutdownTimeout = 10 * time.Second

// RunServer serves the HTTP API until ctx is cancelled, then shuts down
// gracefully: stop accepting requests, flush the activity queue, close
// the store.
func RunServer(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if err := cfg.RequireSecret(); err != nil {
		return err
	}

	checks := map[string]handler.Pinger{}

	var (
		publisher queue.Publisher = activity.NewLogSink(log)
		rdb       *goredis.Client
	)
	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		rdb = client
		publisher = activity.NewRedisStream(rdb, cfg.Redis.Stream)
		checks["redis"] = redis.NewChecker(rdb)
		log.Info().Str("stream", cfg.Redis.Stream).Msg("activity stream enabled")
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	dispatcher := queue.NewDispatcher(cfg.Activity.Workers, cfg.Activity.QueueSize, publisher, activityHooks(), log)
	dispatcher.Start(workerCtx)

	core, err := NewCore(ctx, cfg, dispatcher, log)
	if err != nil {
		dispatcher.Stop()
		if rdb != nil {
			_ = rdb.Close()
		}
		return err
	}
	checks["store"] = core.Store

	e := api.NewRouter(api.Deps{
		Accounts:      core.Accounts,
		Sessions:      core.Sessions,
		Authenticator: core.Guard,
		Checks:        checks,
		Log:           log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case serveErr = <-errCh:
		log.Error().Err(serveErr).Msg("http server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	dispatcher.Stop()
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close")
		}
	}
	if err := core.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("store close")
	}
	log.Info().Msg("server stopped")
	return serveErr
}

func activityHooks() queue.Hooks {
	return queue.Hooks{
		Depth: func(worker, pending int) {
			metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(worker)).Set(float64(pending))
		},
		Dropped:       metrics.ActivityDroppedTotal.Inc,
		PublishFailed: metrics.ActivityPublishErrorsTotal.Inc,
	}
}
