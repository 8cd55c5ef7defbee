package mock

import (
	"context"

	"github.com/fwojciec/webcite"
)

var _ webcite.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of webcite.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, pattern string) ([]webcite.Match, error)
}

func (s *Searcher) Search(ctx context.Context, pattern string) ([]webcite.Match, error) {
	return s.SearchFn(ctx, pattern)
}

var _ webcite.ValueFilter = (*ValueFilter)(nil)

// ValueFilter is a mock implementation of webcite.ValueFilter.
type ValueFilter struct {
	AddFn  func(value string)
	TestFn func(value string) bool
}

func (f *ValueFilter) Add(value string) {
	f.AddFn(value)
}

func (f *ValueFilter) Test(value string) bool {
	return f.TestFn(value)
}
