package goquery

import (
	"context"
	"net/url"
	"regexp"

	"github.com/fwojciec/webcite"
)

// Ensure VideoStep implements webcite.Step at compile time.
var _ webcite.Step = (*VideoStep)(nil)

var videoPathRe = regexp.MustCompile(`^/(?:shorts|embed|live|v)/([A-Za-z0-9_-]{6,})`)

// VideoStep extracts metadata from YouTube video pages. The url is
// canonicalized to the watch form so every link shape of one video yields
// the same key.
type VideoStep struct{}

func (*VideoStep) Name() string { return "video" }

func (*VideoStep) Run(ctx context.Context, s *webcite.Session) (webcite.Outcome, error) {
	u, ok := sessionURL(s)
	if !ok {
		return webcite.Continue, nil
	}
	id := VideoID(u)
	if id == "" {
		return webcite.Continue, nil
	}
	s.Fields.Set(webcite.FieldURL, "https://www.youtube.com/watch?v="+url.QueryEscape(id))
	s.Fields.Set(webcite.FieldHowPublished, "YouTube")

	doc, err := document(ctx, s)
	if err != nil {
		return webcite.Continue, err
	}
	s.Fields.SetIfUnset(webcite.FieldTitle, firstNonEmpty(meta(doc, "og:title", "title"), text(doc, "title")))
	author := ""
	if v, ok := doc.Find(`[itemprop="author"] [itemprop="name"]`).First().Attr("content"); ok {
		author = clean(v)
	}
	s.Fields.SetIfUnset(webcite.FieldAuthor, firstNonEmpty(author, meta(doc, "author")))
	s.Fields.SetIfUnset(webcite.FieldYear, yearOf(meta(doc, "datePublished", "uploadDate")))

	placeholder(s, webcite.FieldDOI)
	return webcite.Continue, nil
}

// VideoID returns the YouTube video id of u, or the empty string when u
// is not a video link.
func VideoID(u *url.URL) string {
	switch {
	case webcite.HostMatches(u.Hostname(), "youtu.be"):
		segments := pathSegments(u.Path)
		if len(segments) > 0 {
			return segments[0]
		}
	case webcite.HostMatches(u.Hostname(), "youtube.com", "youtube-nocookie.com"):
		if u.Path == "/watch" {
			return u.Query().Get("v")
		}
		if m := videoPathRe.FindStringSubmatch(u.Path); m != nil {
			return m[1]
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
