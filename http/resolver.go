package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fwojciec/webcite"
)

// BibTeXMediaType is the content type requested from the DOI resolver.
const BibTeXMediaType = "application/x-bibtex"

// Ensure Resolver implements webcite.DOIResolver at compile time.
var _ webcite.DOIResolver = (*Resolver)(nil)

// Resolver looks up DOIs through doi.org content negotiation, which
// redirects to the registration agency and returns the record as BibTeX.
type Resolver struct {
	client  *http.Client
	opts    options
	baseURL string
}

// NewResolver creates a Resolver querying baseURL, typically
// webcite.DefaultResolverBaseURL.
func NewResolver(baseURL string, opts ...Option) *Resolver {
	o := newOptions(opts)
	return &Resolver{
		client:  o.httpClient(),
		opts:    o,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Resolve returns the BibTeX record registered for doi.
// Returns EUNRESOLVED if the DOI is unknown or the response is not a record.
func (r *Resolver) Resolve(ctx context.Context, doi string) (string, error) {
	endpoint := r.baseURL + "/" + (&url.URL{Path: doi}).EscapedPath()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", BibTeXMediaType+"; charset=utf-8")
	if r.opts.userAgent != "" {
		req.Header.Set("User-Agent", r.opts.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", webcite.Errorf(webcite.EUNRESOLVED, "DOI lookup failed for %s: %v", doi, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", webcite.Errorf(webcite.EUNRESOLVED, "DOI %s not found", doi)
	case resp.StatusCode != http.StatusOK:
		return "", webcite.Errorf(webcite.EUNRESOLVED, "DOI lookup for %s returned HTTP %d", doi, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", webcite.Errorf(webcite.EUNRESOLVED, "reading DOI record for %s: %v", doi, err)
	}
	text := strings.TrimSpace(string(body))
	if !strings.HasPrefix(text, "@") {
		return "", webcite.Errorf(webcite.EUNRESOLVED, "DOI %s has no BibTeX record", doi)
	}
	return text, nil
}
