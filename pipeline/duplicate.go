package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/webcite"
)

// DuplicateChecker aborts captures of resources already in the
// bibliography. Checks run in order (citation key, canonical url, raw
// link) and the first check with a match stops the sequence.
type DuplicateChecker struct {
	Searcher webcite.Searcher
	Notifier webcite.Notifier
	Logger   *slog.Logger
}

type duplicateCheck struct {
	name    string
	pattern string
}

// Check returns a *webcite.DuplicateError for the first check with
// matches. Unless the capture is silent, the first match is revealed
// through the notifier. Without a searcher every check passes.
func (d *DuplicateChecker) Check(ctx context.Context, s *webcite.Session, rec *webcite.Record) error {
	if d.Searcher == nil {
		return nil
	}
	c := s.Capture()

	checks := []duplicateCheck{
		{name: "key", pattern: rec.Key},
		{name: "url", pattern: rec.URL},
		{name: "link", pattern: c.Link},
	}
	searched := make(map[string]bool, len(checks))
	for _, check := range checks {
		if check.pattern == "" || searched[check.pattern] {
			continue
		}
		searched[check.pattern] = true

		matches, err := d.Searcher.Search(ctx, check.pattern)
		if err != nil {
			return fmt.Errorf("duplicate check by %s: %w", check.name, err)
		}
		if len(matches) == 0 {
			continue
		}

		derr := &webcite.DuplicateError{
			Check:   check.name,
			Pattern: check.pattern,
			Matches: matches,
		}
		loggerOrDiscard(d.Logger).Info("duplicate",
			"check", check.name,
			"pattern", check.pattern,
			"matches", len(matches),
		)
		if !c.Query.Silent && d.Notifier != nil {
			d.Notifier.Notify(ctx, webcite.Notification{
				Channel:  c.Query.NotifyChannel,
				Severity: webcite.SeverityWarning,
				Message:  "Already captured at " + derr.First().String(),
			})
		}
		return derr
	}
	return nil
}
