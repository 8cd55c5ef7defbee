package mock

import (
	"context"

	"github.com/fwojciec/webcite"
)

var _ webcite.Step = (*Step)(nil)

// Step is a mock implementation of webcite.Step.
type Step struct {
	NameFn func() string
	RunFn  func(ctx context.Context, s *webcite.Session) (webcite.Outcome, error)
}

func (s *Step) Name() string {
	if s.NameFn == nil {
		return "mock"
	}
	return s.NameFn()
}

func (s *Step) Run(ctx context.Context, session *webcite.Session) (webcite.Outcome, error) {
	return s.RunFn(ctx, session)
}
