package webcite

import "context"

// Fetcher retrieves page content from URLs.
type Fetcher interface {
	// Fetch retrieves the content at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// ContentReader reads pre-fetched page content from local storage.
type ContentReader interface {
	Read(ctx context.Context, path string) (string, error)
}
