package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/webcite"
)

// Ensure DOIStep implements webcite.Step at compile time.
var _ webcite.Step = (*DOIStep)(nil)

// DOIStep recognizes links that embed a DOI and adopts the record the
// resolver returns for it. A resolved record is authoritative: the step
// overwrites fields with it, except doi, and finishes the pipeline. Resolution failures
// are reported as warnings and extraction continues with the other steps.
type DOIStep struct {
	Resolver webcite.DOIResolver
	Notifier webcite.Notifier
	Logger   *slog.Logger
}

func (*DOIStep) Name() string { return "doi" }

func (d *DOIStep) Run(ctx context.Context, s *webcite.Session) (webcite.Outcome, error) {
	doi, publisher, ok := webcite.ExtractDOI(s.URL())
	if !ok {
		if doi, ok = s.Fields.Get(webcite.FieldDOI); !ok {
			return webcite.Continue, nil
		}
		publisher = "feed"
	}
	s.Fields.Set(webcite.FieldDOI, doi)
	if d.Resolver == nil {
		return webcite.Continue, nil
	}

	logger := loggerOrDiscard(d.Logger)
	entry, text, err := d.resolve(ctx, doi)
	if err != nil {
		if ctx.Err() != nil {
			return webcite.Continue, ctx.Err()
		}
		logger.Warn("doi resolution failed",
			"doi", doi,
			"publisher", publisher,
			"err", err,
		)
		if d.Notifier != nil {
			d.Notifier.Notify(ctx, webcite.Notification{
				Channel:  s.Capture().Query.NotifyChannel,
				Severity: webcite.SeverityWarning,
				Message:  fmt.Sprintf("Could not resolve DOI %s: %s", doi, webcite.ErrorMessage(err)),
			})
		}
		return webcite.Continue, nil
	}

	if entry.Type != "" {
		s.Fields.Set(webcite.FieldType, entry.Type)
	}
	for _, f := range entry.Fields {
		s.Fields.Set(f.Name, f.Value)
	}
	// The key hashes the DOI as it appears in the captured link, whatever
	// spelling the resolver returns.
	s.Fields.Set(webcite.FieldDOI, doi)
	s.Resolved = text
	logger.Debug("doi resolved", "doi", doi, "publisher", publisher, "fields", len(entry.Fields))
	return webcite.Finish, nil
}

func (d *DOIStep) resolve(ctx context.Context, doi string) (*webcite.Entry, string, error) {
	text, err := d.Resolver.Resolve(ctx, doi)
	if err != nil {
		return nil, "", err
	}
	entry, err := webcite.ParseBibTeX(text)
	if err != nil {
		return nil, "", webcite.Errorf(webcite.EUNRESOLVED, "resolver returned an unreadable record for %s: %s", doi, webcite.ErrorMessage(err))
	}
	return entry, text, nil
}
