package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/webcite"
	webhttp "github.com/fwojciec/webcite/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ webcite.Fetcher = (*webhttp.Fetcher)(nil)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns the page body and sends request headers", func(t *testing.T) {
		t.Parallel()

		var ua, accept string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua = r.Header.Get("User-Agent")
			accept = r.Header.Get("Accept")
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><head><title>Post</title></head></html>`))
		}))
		defer server.Close()

		fetcher := webhttp.NewFetcher(webhttp.WithUserAgent("webcite-test/1.0"))
		defer fetcher.Close()

		html, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, `<html><head><title>Post</title></head></html>`, html)
		assert.Equal(t, "webcite-test/1.0", ua)
		assert.Contains(t, accept, "text/html")
	})

	t.Run("uses a supplied client", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		fetcher := webhttp.NewFetcher(webhttp.WithClient(server.Client()))
		html, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "ok", html)
	})

	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte("late"))
	})
	missing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	failures := []struct {
		name    string
		handler http.Handler
		url     string
		opts    []webhttp.Option
		cancel  bool
		wantMsg string
	}{
		{name: "timeout expires", handler: slow, opts: []webhttp.Option{webhttp.WithTimeout(10 * time.Millisecond)}},
		{name: "context canceled", handler: slow, cancel: true},
		{name: "unknown host", url: "http://webcite-test.invalid/page", opts: []webhttp.Option{webhttp.WithTimeout(100 * time.Millisecond)}},
		{name: "non-200 status", handler: missing, wantMsg: "404"},
	}
	for _, tc := range failures {
		t.Run("fails when "+tc.name, func(t *testing.T) {
			t.Parallel()

			url := tc.url
			if tc.handler != nil {
				server := httptest.NewServer(tc.handler)
				defer server.Close()
				url = server.URL
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tc.cancel {
				cancel()
			}

			fetcher := webhttp.NewFetcher(tc.opts...)
			_, err := fetcher.Fetch(ctx, url)
			require.Error(t, err)
			if tc.wantMsg != "" {
				assert.Contains(t, err.Error(), tc.wantMsg)
			}
		})
	}
}
