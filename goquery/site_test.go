package goquery_test

import (
	"context"

	"github.com/fwojciec/webcite"
)

// staticBuffer serves fixed page content to a session.
type staticBuffer struct {
	content string
	calls   int
}

func (b *staticBuffer) Buffer(_ context.Context) (*webcite.Buffer, error) {
	b.calls++
	if b.content == "" {
		return nil, webcite.Errorf(webcite.EFETCH, "no content")
	}
	return &webcite.Buffer{Content: b.content, Source: "local", Location: "page.html"}, nil
}

// newSession returns a session whose url field is already derived from link.
func newSession(link, content string) (*webcite.Session, *staticBuffer) {
	buf := &staticBuffer{content: content}
	s := webcite.NewSession(webcite.Capture{Link: link}, buf)
	s.Fields.Set(webcite.FieldURL, link)
	return s, buf
}
