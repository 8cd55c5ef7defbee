package webcite

import (
	"net/url"
	"regexp"
	"strings"
)

// Publisher describes a URL shape that embeds a DOI.
type Publisher struct {
	Name string

	// Hosts lists the domains the publisher serves from. A URL matches a
	// host when its hostname equals it or is a subdomain of it.
	Hosts []string

	// Path matches the URL path; its first capture group is the DOI
	// suffix (or the whole DOI when Prefix is empty).
	Path *regexp.Regexp

	// Prefix is prepended to the captured group to form the DOI.
	Prefix string
}

// doiPathRe matches the common "/doi/10.xxxx/..." publisher URL shape.
var doiPathRe = regexp.MustCompile(`^/doi/(?:abs/|full/|pdf/|epdf/|fullHtml/|book/)?(10\.\d{4,9}/[^?#\s]+)$`)

// Publishers lists the known DOI-bearing URL shapes in match order.
var Publishers = []Publisher{
	{
		Name:  "doi",
		Hosts: []string{"doi.org"},
		Path:  regexp.MustCompile(`^/(10\.\d{4,9}/\S+)$`),
	},
	{
		Name:   "arxiv",
		Hosts:  []string{"arxiv.org"},
		Path:   regexp.MustCompile(`^/(?:abs|pdf)/(\d{4}\.\d{4,5})(?:v\d+)?(?:\.pdf)?/?$`),
		Prefix: "10.48550/arXiv.",
	},
	{
		Name:   "nature",
		Hosts:  []string{"nature.com"},
		Path:   regexp.MustCompile(`^/articles/([A-Za-z0-9.-]+)$`),
		Prefix: "10.1038/",
	},
	{
		Name:  "springer",
		Hosts: []string{"link.springer.com"},
		Path:  regexp.MustCompile(`^/(?:article|chapter)/(10\.\d{4,9}/[^?#\s]+)$`),
	},
	{
		Name: "doi-path",
		Hosts: []string{
			"dl.acm.org",
			"onlinelibrary.wiley.com",
			"tandfonline.com",
			"pnas.org",
			"journals.sagepub.com",
			"science.org",
			"pubs.acs.org",
			"journals.aps.org",
		},
		Path: doiPathRe,
	},
}

// Match returns the DOI embedded in u if u matches the publisher.
func (p *Publisher) Match(u *url.URL) (string, bool) {
	if !HostMatches(u.Hostname(), p.Hosts...) {
		return "", false
	}
	m := p.Path.FindStringSubmatch(u.Path)
	if m == nil || m[1] == "" {
		return "", false
	}
	return p.Prefix + strings.TrimSuffix(m[1], "/"), true
}

// ExtractDOI returns the DOI embedded in rawURL and the name of the
// publisher shape it matched.
func ExtractDOI(rawURL string) (doi, publisher string, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", false
	}
	for i := range Publishers {
		if doi, ok := Publishers[i].Match(u); ok {
			return doi, Publishers[i].Name, true
		}
	}
	return "", "", false
}

// HostMatches reports whether host equals one of domains or is a subdomain
// of one of them.
func HostMatches(host string, domains ...string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
