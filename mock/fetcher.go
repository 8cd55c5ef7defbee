package mock

import (
	"context"

	"github.com/fwojciec/webcite"
)

var _ webcite.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of webcite.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ webcite.ContentReader = (*ContentReader)(nil)

// ContentReader is a mock implementation of webcite.ContentReader.
type ContentReader struct {
	ReadFn func(ctx context.Context, path string) (string, error)
}

func (r *ContentReader) Read(ctx context.Context, path string) (string, error) {
	return r.ReadFn(ctx, path)
}

var _ webcite.BufferSource = (*BufferSource)(nil)

// BufferSource is a mock implementation of webcite.BufferSource.
type BufferSource struct {
	BufferFn func(ctx context.Context) (*webcite.Buffer, error)
}

func (b *BufferSource) Buffer(ctx context.Context) (*webcite.Buffer, error) {
	return b.BufferFn(ctx)
}
