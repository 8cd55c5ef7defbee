// Package readability reads article titles and bylines with
// github.com/go-shiori/go-readability.
package readability

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/fwojciec/webcite"
	"github.com/go-shiori/go-readability"
)

// Ensure BylineStep implements webcite.Step at compile time.
var _ webcite.Step = (*BylineStep)(nil)

// Article is the part of a readability parse a record can use.
type Article struct {
	Title  string
	Byline string
}

// Parse runs readability over rawHTML. pageURL may be nil.
func Parse(rawHTML string, pageURL *url.URL) (*Article, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, webcite.Errorf(webcite.EINVALID, "empty HTML input")
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), pageURL)
	if err != nil {
		return nil, err
	}
	return &Article{
		Title:  clean(article.Title),
		Byline: byline(article.Byline),
	}, nil
}

// byline drops a leading "By" from a byline.
func byline(s string) string {
	s = clean(s)
	if len(s) > 3 && strings.EqualFold(s[:3], "by ") {
		s = strings.TrimSpace(s[3:])
	}
	return s
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// BylineStep fills title and author from the readability parse of the
// page when they are still unset.
type BylineStep struct {
	Logger *slog.Logger
}

func (*BylineStep) Name() string { return "readability" }

func (b *BylineStep) Run(ctx context.Context, s *webcite.Session) (webcite.Outcome, error) {
	if s.Fields.Defined(webcite.FieldTitle) && s.Fields.Defined(webcite.FieldAuthor) {
		return webcite.Continue, nil
	}

	buf, err := s.Buffer(ctx)
	if err != nil {
		return webcite.Continue, err
	}

	pageURL, _ := url.Parse(s.URL())
	article, err := Parse(buf.Content, pageURL)
	if err != nil {
		if b.Logger != nil {
			b.Logger.Debug("readability parse failed", "url", s.URL(), "err", err)
		}
		return webcite.Continue, nil
	}

	s.Fields.SetIfUnset(webcite.FieldTitle, article.Title)
	s.Fields.SetIfUnset(webcite.FieldAuthor, article.Byline)
	return webcite.Continue, nil
}
