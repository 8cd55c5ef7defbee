package pipeline

import (
	"context"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/webcite"
)

// DefaultType is the entry type of records no step classifies.
const DefaultType = "misc"

// Chain holds the configurable steps of the standard step chain.
type Chain struct {
	DOI *DOIStep

	// Site steps run in the order given, each guarding on its own URLs.
	Site []webcite.Step

	// Metadata steps fill fields the site steps left unset from the
	// page's general metadata.
	Metadata []webcite.Step

	Generic *RegexExtractor
}

// DefaultSteps returns the standard step chain: the link and default
// fields, feed metadata, DOI resolution, the site steps, the metadata
// steps, the generic regex extractor and finally the display title
// fallback.
func DefaultSteps(c Chain) []webcite.Step {
	steps := []webcite.Step{
		&URLStep{},
		&DefaultsStep{},
		NewFeedStep(),
	}
	if c.DOI != nil {
		steps = append(steps, c.DOI)
	}
	steps = append(steps, c.Site...)
	steps = append(steps, c.Metadata...)
	if c.Generic != nil {
		steps = append(steps, c.Generic)
	}
	return append(steps, &DisplayTitleStep{})
}

// Ensure steps implement webcite.Step at compile time.
var (
	_ webcite.Step = (*URLStep)(nil)
	_ webcite.Step = (*DefaultsStep)(nil)
	_ webcite.Step = (*DisplayTitleStep)(nil)
)

// URLStep derives the url and howpublished fields from the captured link.
type URLStep struct{}

func (*URLStep) Name() string { return "url" }

// Run sets url to the trimmed link without its fragment, and howpublished
// to the capitalized first label of the host.
func (*URLStep) Run(_ context.Context, s *webcite.Session) (webcite.Outcome, error) {
	u, err := ParseLink(s.Capture().Link)
	if err != nil {
		return webcite.Continue, err
	}
	u.Fragment = ""
	u.RawFragment = ""

	s.Fields.Set(webcite.FieldURL, u.String())
	s.Fields.Set(webcite.FieldHowPublished, HowPublished(u.Hostname()))
	return webcite.Continue, nil
}

// ParseLink parses a captured link. Links without a scheme are taken as
// https.
func ParseLink(link string) (*url.URL, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, webcite.Errorf(webcite.EINVALID, "empty link")
	}
	if !strings.Contains(link, "://") {
		link = "https://" + link
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return nil, webcite.Errorf(webcite.EINVALID, "invalid link %q", link)
	}
	return u, nil
}

// HowPublished returns the publisher label for a host: the first label
// after any leading "www.", with its first letter capitalized.
func HowPublished(host string) string {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(r)) + label[size:]
}

// DefaultsStep sets the entry type and the access date.
type DefaultsStep struct {
	// Type is the entry type used when no earlier step set one.
	// Defaults to DefaultType.
	Type string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (*DefaultsStep) Name() string { return "defaults" }

// Run sets type unless already defined, and urldate to today.
func (d *DefaultsStep) Run(_ context.Context, s *webcite.Session) (webcite.Outcome, error) {
	typ := d.Type
	if typ == "" {
		typ = DefaultType
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}

	s.Fields.SetIfUnset(webcite.FieldType, typ)
	s.Fields.Set(webcite.FieldURLDate, now().Format(time.DateOnly))
	return webcite.Continue, nil
}

// DisplayTitleStep uses the caller's display title when no earlier step
// found a title on the page.
type DisplayTitleStep struct{}

func (*DisplayTitleStep) Name() string { return "display-title" }

func (*DisplayTitleStep) Run(_ context.Context, s *webcite.Session) (webcite.Outcome, error) {
	if title := strings.Join(strings.Fields(s.Capture().Title), " "); title != "" {
		s.Fields.SetIfUnset(webcite.FieldTitle, title)
	}
	return webcite.Continue, nil
}
