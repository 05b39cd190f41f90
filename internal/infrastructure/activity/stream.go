// Package activity publishes audit events produced by the core services.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-core/internal/core/domain"
)

const defaultMaxLen = 100_000

type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStream appends events to a Redis stream. The stream is trimmed
// approximately to maxLen entries.
type RedisStream struct {
	client streamAdder
	stream string
	maxLen int64
}

func NewRedisStream(client streamAdder, stream string) *RedisStream {
	return &RedisStream{client: client, stream: stream, maxLen: defaultMaxLen}
}

func (s *RedisStream) Publish(ctx context.Context, event domain.ActivityEvent) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: fields(event),
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

func fields(event domain.ActivityEvent) map[string]any {
	values := map[string]any{
		"type":        string(event.Type),
		"occurred_at": event.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	if event.UserID != "" {
		values["user_id"] = event.UserID
	}
	if event.Username != "" {
		values["username"] = event.Username
	}
	if event.Reason != "" {
		values["reason"] = event.Reason
	}
	return values
}

// LogSink writes events to the structured log when no stream is configured.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "activity").Logger()}
}

func (s *LogSink) Publish(_ context.Context, event domain.ActivityEvent) error {
	e := s.log.Info().Str("type", string(event.Type)).Time("occurred_at", event.OccurredAt)
	if event.UserID != "" {
		e = e.Str("user_id", event.UserID)
	}
	if event.Reason != "" {
		e = e.Str("reason", event.Reason)
	}
	e.Msg("activity")
	return nil
}
