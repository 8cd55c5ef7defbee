package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webcite"
)

// Ensure LoggingResolver implements webcite.DOIResolver.
var _ webcite.DOIResolver = (*LoggingResolver)(nil)

// LoggingResolver wraps a DOIResolver with logging.
type LoggingResolver struct {
	next   webcite.DOIResolver
	logger *slog.Logger
}

// NewLoggingResolver creates a new LoggingResolver.
func NewLoggingResolver(next webcite.DOIResolver, logger *slog.Logger) *LoggingResolver {
	return &LoggingResolver{next: next, logger: logger}
}

// Resolve delegates to the wrapped resolver and logs the operation.
func (r *LoggingResolver) Resolve(ctx context.Context, doi string) (record string, err error) {
	defer func(begin time.Time) {
		r.logger.Info("resolve doi",
			"doi", doi,
			"bytes", len(record),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Resolve(ctx, doi)
}
