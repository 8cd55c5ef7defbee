package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webcite"
)

// Processor turns captures into records. It holds only collaborators and
// configuration; each Process call builds its own session, so concurrent
// calls are safe as long as the collaborators are.
type Processor struct {
	Steps []webcite.Step

	// Content providers.
	Reader          webcite.ContentReader
	Fetcher         webcite.Fetcher
	Encodings       map[string]string
	DefaultEncoding string
	RetryDelays     []time.Duration

	Searcher webcite.Searcher
	Notifier webcite.Notifier

	// Mode selects how records adopted from DOI resolution are rendered.
	Mode webcite.ResolvedMode

	Logger *slog.Logger
}

// Process runs one capture from link to record. The page content fetched
// for the capture is released on every return path. Fatal errors are
// reported through the notifier before they are returned; duplicates are
// reported by the duplicate check itself.
func (p *Processor) Process(ctx context.Context, c webcite.Capture) (rec *webcite.Record, err error) {
	defer func() {
		if err != nil {
			p.report(ctx, c, err)
		}
	}()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	buffers := &BufferResolver{
		Capture:         c,
		Reader:          p.Reader,
		Fetcher:         p.Fetcher,
		Encodings:       p.Encodings,
		DefaultEncoding: p.DefaultEncoding,
		RetryDelays:     p.RetryDelays,
		Logger:          p.Logger,
	}
	defer buffers.Release()

	s := webcite.NewSession(c, buffers)
	runner := &Runner{Steps: p.Steps, Logger: p.Logger}
	if err := runner.Run(ctx, s); err != nil {
		return nil, err
	}

	key, err := webcite.GenerateKey(s.Fields)
	if err != nil {
		return nil, err
	}
	s.Fields.Set(webcite.FieldKey, key)

	rec = &webcite.Record{
		Key:    key,
		Text:   p.render(s, key),
		URL:    s.Fields.Value(webcite.FieldURL),
		Fields: s.Fields.Snapshot(),
	}

	checker := &DuplicateChecker{Searcher: p.Searcher, Notifier: p.Notifier, Logger: p.Logger}
	if err := checker.Check(ctx, s, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (p *Processor) render(s *webcite.Session, key string) string {
	if s.Resolved != "" && p.Mode == webcite.ResolvedVerbatim {
		return webcite.ReplaceKey(s.Resolved, key)
	}
	return webcite.Cleanup(webcite.Format(s.Fields))
}

func (p *Processor) report(ctx context.Context, c webcite.Capture, err error) {
	if p.Notifier == nil || webcite.ErrorCode(err) == webcite.EDUPLICATE {
		return
	}
	msg := webcite.ErrorMessage(err)
	if webcite.ErrorCode(err) == webcite.EINTERNAL {
		msg = err.Error()
	}
	p.Notifier.Notify(ctx, webcite.Notification{
		Channel:  c.Query.NotifyChannel,
		Severity: webcite.SeverityError,
		Message:  "Capture of " + c.Link + " failed: " + msg,
	})
}
