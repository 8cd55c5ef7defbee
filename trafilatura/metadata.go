// Package trafilatura reads bibliographic metadata from pages with
// github.com/markusmobius/go-trafilatura.
package trafilatura

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fwojciec/webcite"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure MetadataStep implements webcite.Step at compile time.
var _ webcite.Step = (*MetadataStep)(nil)

// Metadata is the bibliographic part of a page's metadata.
type Metadata struct {
	Title    string
	Author   string
	Year     string
	Keywords string
}

// Extract returns the metadata trafilatura finds in rawHTML. Multiple
// authors are joined with " and " as BibTeX expects.
func Extract(rawHTML string) (*Metadata, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, webcite.Errorf(webcite.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{
		EnableFallback: true,
	})
	if err != nil {
		return nil, err
	}

	md := result.Metadata
	m := &Metadata{
		Title:    clean(md.Title),
		Author:   joinAuthors(md.Author),
		Keywords: strings.Join(nonEmpty(md.Tags), ", "),
	}
	if !md.Date.IsZero() {
		m.Year = strconv.Itoa(md.Date.Year())
	}
	return m, nil
}

func joinAuthors(s string) string {
	return strings.Join(nonEmpty(strings.Split(s, ";")), " and ")
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = clean(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// MetadataStep fills title, author, year and keywords from the page
// metadata when no earlier step set them. It never overwrites a defined
// field, and a page trafilatura cannot read is skipped.
type MetadataStep struct {
	Logger *slog.Logger
}

func (*MetadataStep) Name() string { return "trafilatura" }

func (m *MetadataStep) Run(ctx context.Context, s *webcite.Session) (webcite.Outcome, error) {
	if defined(s.Fields) {
		return webcite.Continue, nil
	}

	buf, err := s.Buffer(ctx)
	if err != nil {
		return webcite.Continue, err
	}

	md, err := Extract(buf.Content)
	if err != nil {
		m.logger().Debug("page metadata unavailable", "url", s.URL(), "err", err)
		return webcite.Continue, nil
	}

	s.Fields.SetIfUnset(webcite.FieldTitle, md.Title)
	s.Fields.SetIfUnset(webcite.FieldAuthor, md.Author)
	s.Fields.SetIfUnset(webcite.FieldYear, md.Year)
	s.Fields.SetIfUnset(webcite.FieldKeywords, md.Keywords)
	return webcite.Continue, nil
}

func defined(f *webcite.Fields) bool {
	for _, name := range []string{webcite.FieldTitle, webcite.FieldAuthor, webcite.FieldYear, webcite.FieldKeywords} {
		if !f.Defined(name) {
			return false
		}
	}
	return true
}

func (m *MetadataStep) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.Logger
}
