package pipeline

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/fwojciec/webcite"
)

// Ensure feed steps implement webcite.Step at compile time.
var (
	_ webcite.Step = (*FeedStep)(nil)
	_ webcite.Step = (*FeedMapping)(nil)
	_ webcite.Step = (*ArxivFeedCorrection)(nil)
	_ webcite.Step = (*YouTubeFeedCorrection)(nil)
)

// FeedStep maps feed-reader metadata into fields. It runs only when the
// capture carries a feed entry. Sub-steps run in order and later ones may
// overwrite what earlier ones set.
type FeedStep struct {
	Steps []webcite.Step
}

// NewFeedStep returns a FeedStep with the generic mapping followed by the
// arXiv and YouTube corrections.
func NewFeedStep() *FeedStep {
	return &FeedStep{Steps: []webcite.Step{
		&FeedMapping{},
		&ArxivFeedCorrection{},
		&YouTubeFeedCorrection{},
	}}
}

func (*FeedStep) Name() string { return "feed" }

func (f *FeedStep) Run(ctx context.Context, s *webcite.Session) (webcite.Outcome, error) {
	if s.Capture().Query.FeedEntry == nil {
		return webcite.Continue, nil
	}
	for _, step := range f.Steps {
		outcome, err := step.Run(ctx, s)
		if err != nil {
			return webcite.Continue, err
		}
		if outcome == webcite.Finish {
			return webcite.Finish, nil
		}
	}
	return webcite.Continue, nil
}

// FeedMapping copies the generic feed entry metadata into fields.
type FeedMapping struct{}

func (*FeedMapping) Name() string { return "feed-mapping" }

func (*FeedMapping) Run(_ context.Context, s *webcite.Session) (webcite.Outcome, error) {
	e := s.Capture().Query.FeedEntry
	if e == nil {
		return webcite.Continue, nil
	}

	s.Fields.Set(webcite.FieldTitle, collapseSpace(e.Title))
	s.Fields.Set(webcite.FieldAuthor, strings.Join(trimAll(e.Authors), " and "))
	if !e.Published.IsZero() {
		s.Fields.Set(webcite.FieldYear, strconv.Itoa(e.Published.Year()))
	}
	s.Fields.Set(webcite.FieldHowPublished, collapseSpace(e.FeedTitle))
	s.Fields.Set(webcite.FieldKeywords, strings.Join(trimAll(e.Tags), ", "))
	return webcite.Continue, nil
}

var arxivTitleSuffixRe = regexp.MustCompile(`\s*\(arXiv:[^)]*\)\s*$`)

// ArxivFeedCorrection fixes entries from arXiv listing feeds: the title
// carries an "(arXiv:ID ...)" suffix, all authors arrive as one
// comma-separated name, and the DOI follows from the arXiv identifier.
type ArxivFeedCorrection struct{}

func (*ArxivFeedCorrection) Name() string { return "feed-arxiv" }

func (*ArxivFeedCorrection) Run(_ context.Context, s *webcite.Session) (webcite.Outcome, error) {
	e := s.Capture().Query.FeedEntry
	if e == nil || !feedFrom(e, "arxiv.org") {
		return webcite.Continue, nil
	}

	s.Fields.Set(webcite.FieldTitle, arxivTitleSuffixRe.ReplaceAllString(collapseSpace(e.Title), ""))
	if len(e.Authors) == 1 && strings.Contains(e.Authors[0], ",") {
		s.Fields.Set(webcite.FieldAuthor, strings.Join(trimAll(strings.Split(e.Authors[0], ",")), " and "))
	}
	if doi, publisher, ok := webcite.ExtractDOI(e.Link); ok && publisher == "arxiv" {
		s.Fields.Set(webcite.FieldDOI, doi)
	}
	s.Fields.Set(webcite.FieldHowPublished, "arXiv")
	return webcite.Continue, nil
}

// YouTubeFeedCorrection credits videos from channel feeds to the channel.
type YouTubeFeedCorrection struct{}

func (*YouTubeFeedCorrection) Name() string { return "feed-youtube" }

func (*YouTubeFeedCorrection) Run(_ context.Context, s *webcite.Session) (webcite.Outcome, error) {
	e := s.Capture().Query.FeedEntry
	if e == nil || !feedFrom(e, "youtube.com", "youtu.be") {
		return webcite.Continue, nil
	}

	author := collapseSpace(e.FeedTitle)
	if author == "" {
		author = strings.Join(trimAll(e.Authors), " and ")
	}
	s.Fields.Set(webcite.FieldAuthor, author)
	s.Fields.Set(webcite.FieldHowPublished, "YouTube")
	return webcite.Continue, nil
}

// feedFrom reports whether the entry link or the feed URL is on one of the
// domains.
func feedFrom(e *webcite.FeedEntry, domains ...string) bool {
	for _, raw := range []string{e.Link, e.FeedURL} {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		if webcite.HostMatches(u.Hostname(), domains...) {
			return true
		}
	}
	return false
}

func trimAll(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s = collapseSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
