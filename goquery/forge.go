package goquery

import (
	"context"
	"strings"

	"github.com/fwojciec/webcite"
)

// Ensure ForgeStep implements webcite.Step at compile time.
var _ webcite.Step = (*ForgeStep)(nil)

// ForgeHosts lists the code hosting sites ForgeStep handles.
var ForgeHosts = []string{"github.com", "gitlab.com", "codeberg.org"}

// ForgeStep extracts repository metadata from code hosting pages. The
// repository owner becomes the author and the page title, without the
// site decoration, becomes the title. Repositories have no meaningful
// publication year or DOI, so both are marked not applicable.
type ForgeStep struct{}

func (*ForgeStep) Name() string { return "forge" }

func (*ForgeStep) Run(ctx context.Context, s *webcite.Session) (webcite.Outcome, error) {
	u, ok := sessionURL(s)
	if !ok || !webcite.HostMatches(u.Hostname(), ForgeHosts...) {
		return webcite.Continue, nil
	}
	segments := pathSegments(u.Path)
	if len(segments) < 2 {
		return webcite.Continue, nil
	}
	segments[len(segments)-1] = strings.TrimSuffix(segments[len(segments)-1], ".git")

	u.Scheme = "https"
	u.Path = "/" + strings.Join(segments, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	s.Fields.Set(webcite.FieldURL, u.String())
	s.Fields.SetIfUnset(webcite.FieldAuthor, segments[0])

	doc, err := document(ctx, s)
	if err != nil {
		return webcite.Continue, err
	}
	title := ForgeTitle(pageTitle(doc))
	if title == "" {
		title = segments[0] + "/" + segments[1]
	}
	s.Fields.SetIfUnset(webcite.FieldTitle, title)

	placeholder(s, webcite.FieldYear)
	placeholder(s, webcite.FieldDOI)
	return webcite.Continue, nil
}

var forgeTitlePrefixes = []string{"GitHub - ", "GitLab - ", "Codeberg - "}

// ForgeTitle removes the site decoration from a repository page title:
// a leading site name and anything after " — " or " · ".
func ForgeTitle(title string) string {
	title = clean(title)
	for _, p := range forgeTitlePrefixes {
		title = strings.TrimPrefix(title, p)
	}
	for _, sep := range []string{" — ", " · "} {
		if before, _, found := strings.Cut(title, sep); found {
			title = before
		}
	}
	return strings.TrimSpace(title)
}

func pathSegments(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
