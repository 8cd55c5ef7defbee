package pipeline

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/webcite"
	"golang.org/x/net/html/charset"
)

// Buffer sources.
const (
	SourceLocal   = "local"
	SourceNetwork = "network"
)

// Ensure BufferResolver implements webcite.BufferSource at compile time.
var _ webcite.BufferSource = (*BufferResolver)(nil)

// BufferResolver obtains the page content of one capture. Providers are
// tried in fixed order: the local file named by the capture's HTMLPath,
// then a network fetch of the raw link. The first non-empty result is
// cached for the rest of the capture.
//
// A BufferResolver belongs to a single capture and is not safe for
// concurrent use.
type BufferResolver struct {
	Capture webcite.Capture
	Reader  webcite.ContentReader
	Fetcher webcite.Fetcher

	// Encodings maps site domains to the character encoding their pages
	// are served in. DefaultEncoding applies to other sites. When neither
	// is set the encoding is detected from the content.
	Encodings       map[string]string
	DefaultEncoding string

	// RetryDelays configures network fetch retries.
	RetryDelays []time.Duration

	Logger *slog.Logger

	buf      *webcite.Buffer
	released bool
}

type provider struct {
	source   string
	location string
	fetch    fetchFunc
	delays   []time.Duration
}

// Buffer returns the capture's page content.
// Returns EFETCH if no provider yields content.
func (r *BufferResolver) Buffer(ctx context.Context) (*webcite.Buffer, error) {
	if r.buf != nil {
		return r.buf, nil
	}
	if r.released {
		return nil, webcite.Errorf(webcite.EFETCH, "buffer for %s already released", r.Capture.Link)
	}

	logger := loggerOrDiscard(r.Logger)
	for _, p := range r.providers() {
		content, err := fetchWithRetry(ctx, p.location, p.fetch, logger, p.delays)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("content provider failed",
				"source", p.source,
				"location", p.location,
				"err", err,
			)
			continue
		}
		if strings.TrimSpace(content) == "" {
			logger.Warn("content provider returned nothing",
				"source", p.source,
				"location", p.location,
			)
			continue
		}

		decoded, err := decode(content, r.encodingFor(r.Capture.Link))
		if err != nil {
			return nil, err
		}
		r.buf = &webcite.Buffer{
			Content:  decoded,
			Source:   p.source,
			Location: p.location,
		}
		return r.buf, nil
	}

	return nil, webcite.Errorf(webcite.EFETCH, "no content obtainable for %s", r.Capture.Link)
}

// Release drops the cached content. It is safe to call more than once.
func (r *BufferResolver) Release() {
	r.buf = nil
	r.released = true
}

func (r *BufferResolver) providers() []provider {
	var out []provider
	if path := r.Capture.Query.HTMLPath; path != "" && r.Reader != nil {
		out = append(out, provider{source: SourceLocal, location: path, fetch: r.Reader.Read})
	}
	if link := r.Capture.Link; link != "" && r.Fetcher != nil {
		out = append(out, provider{source: SourceNetwork, location: link, fetch: r.Fetcher.Fetch, delays: r.RetryDelays})
	}
	return out
}

func (r *BufferResolver) encodingFor(link string) string {
	if u, err := url.Parse(link); err == nil {
		for domain, label := range r.Encodings {
			if webcite.HostMatches(u.Hostname(), domain) {
				return label
			}
		}
	}
	return r.DefaultEncoding
}

// decode converts content to UTF-8. An explicit label wins; otherwise
// valid UTF-8 is kept as is and anything else is decoded with the
// encoding the page declares.
func decode(content, label string) (string, error) {
	if label != "" {
		enc, name := charset.Lookup(label)
		if enc == nil {
			return "", webcite.Errorf(webcite.EINVALID, "unknown encoding %q", label)
		}
		if name == "utf-8" {
			return strings.ToValidUTF8(content, "�"), nil
		}
		return enc.NewDecoder().String(content)
	}

	if utf8.ValidString(content) {
		return content, nil
	}
	enc, _, _ := charset.DetermineEncoding([]byte(content), "text/html")
	return enc.NewDecoder().String(content)
}
