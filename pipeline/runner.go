// Package pipeline runs captures. It sequences the extraction steps, key
// generation, formatting and duplicate checks for a single captured link,
// and provides the generic steps that do not depend on any site.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/webcite"
)

// Runner executes steps in order until one finishes or fails.
type Runner struct {
	Steps  []webcite.Step
	Logger *slog.Logger
}

// Run executes the steps against the session. A step returning
// webcite.Finish skips the remaining steps; a step error aborts the run.
func (r *Runner) Run(ctx context.Context, s *webcite.Session) error {
	logger := loggerOrDiscard(r.Logger)
	for _, step := range r.Steps {
		begin := time.Now()
		outcome, err := step.Run(ctx, s)
		logger.Debug("step",
			"name", step.Name(),
			"outcome", outcome.String(),
			"duration", time.Since(begin),
			"err", err,
		)
		if err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
		if outcome == webcite.Finish {
			return nil
		}
	}
	return nil
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
