//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/webcite"
	"github.com/fwojciec/webcite/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ webcite.Fetcher = (*rod.Fetcher)(nil)

const scriptedPage = `<!DOCTYPE html>
<html>
<head><title>Loading</title></head>
<body>
<script>
var m = document.createElement('meta');
m.setAttribute('property', 'og:title');
m.setAttribute('content', 'Rendered Title');
document.head.appendChild(m);
</script>
</body>
</html>`

func newFetcher(t *testing.T, opts ...rod.Option) *rod.Fetcher {
	t.Helper()
	fetcher, err := rod.NewFetcher(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fetcher.Close() })
	return fetcher
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	var ua string
	mux := http.NewServeMux()
	mux.HandleFunc("/post", func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(scriptedPage))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte(`<html><body>late</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	t.Run("returns metadata added by scripts", func(t *testing.T) {
		fetcher := newFetcher(t, rod.WithUserAgent("webcite-test/1.0"))

		html, err := fetcher.Fetch(context.Background(), srv.URL+"/post")
		require.NoError(t, err)
		assert.Contains(t, html, `content="Rendered Title"`)
		assert.Equal(t, "webcite-test/1.0", ua)
	})

	t.Run("honors a canceled context", func(t *testing.T) {
		fetcher := newFetcher(t)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := fetcher.Fetch(ctx, srv.URL+"/post")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("gives up on slow pages", func(t *testing.T) {
		fetcher := newFetcher(t, rod.WithFetchTimeout(100*time.Millisecond))

		_, err := fetcher.Fetch(context.Background(), srv.URL+"/slow")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("restarts the browser after the page limit", func(t *testing.T) {
		fetcher := newFetcher(t, rod.WithMaxPages(1))

		first := fetcher.LauncherPID()
		for range 2 {
			_, err := fetcher.Fetch(context.Background(), srv.URL+"/post")
			require.NoError(t, err)
		}
		assert.NotEqual(t, first, fetcher.LauncherPID())
	})
}

func TestFetcher_Fetch_AfterClose(t *testing.T) {
	t.Parallel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	require.NoError(t, fetcher.Close())

	_, err = fetcher.Fetch(context.Background(), "http://example.com")
	assert.Equal(t, webcite.EINVALID, webcite.ErrorCode(err))
	assert.Contains(t, webcite.ErrorMessage(err), "closed")
}
