package goquery

import (
	"context"
	"regexp"

	"github.com/fwojciec/webcite"
)

// Ensure BlogStep implements webcite.Step at compile time.
var _ webcite.Step = (*BlogStep)(nil)

// blogTitleSuffixRe matches the " | by Author | Medium" decoration of
// Medium page titles.
var blogTitleSuffixRe = regexp.MustCompile(`\s*\|\s*(?:by\s+[^|]*\|\s*)?Medium\s*$`)

// BlogStep extracts article metadata from Medium and its custom
// subdomains. Tracking query parameters are dropped from the url.
type BlogStep struct{}

func (*BlogStep) Name() string { return "blog" }

func (*BlogStep) Run(ctx context.Context, s *webcite.Session) (webcite.Outcome, error) {
	u, ok := sessionURL(s)
	if !ok || !webcite.HostMatches(u.Hostname(), "medium.com") {
		return webcite.Continue, nil
	}
	u.RawQuery = ""
	u.Fragment = ""
	s.Fields.Set(webcite.FieldURL, u.String())
	s.Fields.Set(webcite.FieldHowPublished, "Medium")

	doc, err := document(ctx, s)
	if err != nil {
		return webcite.Continue, err
	}
	s.Fields.SetIfUnset(webcite.FieldTitle, BlogTitle(pageTitle(doc)))
	s.Fields.SetIfUnset(webcite.FieldAuthor, meta(doc, "author", "article:author"))
	s.Fields.SetIfUnset(webcite.FieldYear, yearOf(meta(doc, "article:published_time", "datePublished")))

	placeholder(s, webcite.FieldDOI)
	return webcite.Continue, nil
}

// BlogTitle removes the Medium decoration from a page title.
func BlogTitle(title string) string {
	return blogTitleSuffixRe.ReplaceAllString(clean(title), "")
}
