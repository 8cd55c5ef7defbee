package mock

import (
	"context"

	"github.com/fwojciec/webcite"
)

var _ webcite.DOIResolver = (*DOIResolver)(nil)

// DOIResolver is a mock implementation of webcite.DOIResolver.
type DOIResolver struct {
	ResolveFn func(ctx context.Context, doi string) (string, error)
}

func (r *DOIResolver) Resolve(ctx context.Context, doi string) (string, error) {
	return r.ResolveFn(ctx, doi)
}
