package pipeline

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/webcite"
	"golang.org/x/time/rate"
)

// CaptureLimiter spaces out captures that hit the same site. Each site
// gets its own token bucket, keyed on the lowercase host without a
// leading "www.", so captures of different sites never wait on each
// other.
type CaptureLimiter struct {
	mu    sync.Mutex
	sites map[string]*rate.Limiter
	rps   float64
}

// NewCaptureLimiter returns a limiter allowing rps fetches per second per
// site with a burst of 1.
func NewCaptureLimiter(rps float64) *CaptureLimiter {
	return &CaptureLimiter{
		sites: make(map[string]*rate.Limiter),
		rps:   rps,
	}
}

// Wait blocks until c may be fetched. Captures read from disk and links
// that do not parse pass immediately; the latter fail later in Process.
func (l *CaptureLimiter) Wait(ctx context.Context, c webcite.Capture) error {
	if c.Query.HTMLPath != "" {
		return ctx.Err()
	}
	site, ok := captureSite(c.Link)
	if !ok {
		return ctx.Err()
	}

	l.mu.Lock()
	limiter, ok := l.sites[site]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.rps), 1)
		l.sites[site] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}

func captureSite(link string) (string, bool) {
	u, err := ParseLink(link)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www."), host != ""
}
