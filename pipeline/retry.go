package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// fetchFunc is the signature of a content provider call.
type fetchFunc func(ctx context.Context, location string) (string, error)

// DefaultRetryDelays returns the backoff delays for network fetch retries.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second}
}

// fetchWithRetry calls fetch once plus one retry per delay, sleeping
// delays[i] before retry i.
func fetchWithRetry(ctx context.Context, location string, fetch fetchFunc, logger *slog.Logger, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		content, err := fetch(ctx, location)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		logger.Debug("retry fetch",
			"location", location,
			"attempt", attempt+2,
			"err", err,
		)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}
