package service

import (
	"context"

	"github.com/99minutos/auth-core/internal/core/domain"
	"github.com/99minutos/auth-core/internal/core/ports"
)

type noopSink struct{}

func (noopSink) Record(context.Context, domain.ActivityEvent) {}

func normalizeSink(s ports.ActivitySink) ports.ActivitySink {
	if s == nil {
		return noopSink{}
	}
	return s
}
