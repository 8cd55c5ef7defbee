// Package goquery implements the site-specific extraction steps. Each step
// guards on the capture URL and reads metadata from the parsed page with
// github.com/PuerkitoBio/goquery.
package goquery

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webcite"
)

// document parses the session's page content.
func document(ctx context.Context, s *webcite.Session) (*goquery.Document, error) {
	buf, err := s.Buffer(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(buf.Content))
	if err != nil {
		return nil, webcite.Errorf(webcite.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

// sessionURL parses the session's current URL.
func sessionURL(s *webcite.Session) (*url.URL, bool) {
	u, err := url.Parse(s.URL())
	if err != nil || u.Host == "" {
		return nil, false
	}
	return u, true
}

// meta returns the content of the first non-empty meta tag whose property,
// name or itemprop attribute equals one of keys.
func meta(doc *goquery.Document, keys ...string) string {
	for _, key := range keys {
		for _, attr := range []string{"property", "name", "itemprop"} {
			sel := doc.Find(`meta[` + attr + `="` + key + `"]`)
			for i := range sel.Nodes {
				if v, ok := sel.Eq(i).Attr("content"); ok {
					if v = clean(v); v != "" {
						return v
					}
				}
			}
		}
	}
	return ""
}

// text returns the trimmed text of the first element matching selector.
func text(doc *goquery.Document, selector string) string {
	return clean(doc.Find(selector).First().Text())
}

// pageTitle returns the Open Graph title, falling back to <title>.
func pageTitle(doc *goquery.Document) string {
	if t := meta(doc, "og:title", "twitter:title"); t != "" {
		return t
	}
	return text(doc, "title")
}

var yearRe = regexp.MustCompile(`\b(1[89]\d{2}|2\d{3})\b`)

// yearOf returns the first plausible four-digit year in s.
func yearOf(s string) string {
	return yearRe.FindString(s)
}

// placeholder marks name as not applicable unless a value is already set.
func placeholder(s *webcite.Session, name string) {
	if !s.Fields.Defined(name) {
		s.Fields.SetPlaceholder(name)
	}
}

// scriptVar returns the value assigned to a JavaScript variable in inline
// page scripts, e.g. var name = "value";
func scriptVar(doc *goquery.Document, name string) string {
	re := regexp.MustCompile(`(?:var\s+)?\b` + regexp.QuoteMeta(name) + `\s*=\s*(?:htmlDecode\()?["']([^"']*)["']`)
	var out string
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if m := re.FindStringSubmatch(sel.Text()); m != nil {
			out = clean(m[1])
			return out == ""
		}
		return true
	})
	return out
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
