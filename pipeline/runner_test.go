package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/webcite"
	"github.com/fwojciec/webcite/mock"
	"github.com/fwojciec/webcite/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingStep(name string, outcome webcite.Outcome, err error, ran *[]string) *mock.Step {
	return &mock.Step{
		NameFn: func() string { return name },
		RunFn: func(_ context.Context, _ *webcite.Session) (webcite.Outcome, error) {
			*ran = append(*ran, name)
			return outcome, err
		},
	}
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("runs every step in order", func(t *testing.T) {
		t.Parallel()

		var ran []string
		r := &pipeline.Runner{Steps: []webcite.Step{
			recordingStep("a", webcite.Continue, nil, &ran),
			recordingStep("b", webcite.Continue, nil, &ran),
			recordingStep("c", webcite.Continue, nil, &ran),
		}}

		err := r.Run(context.Background(), webcite.NewSession(webcite.Capture{Link: "x"}, nil))

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, ran)
	})

	t.Run("finish skips remaining steps", func(t *testing.T) {
		t.Parallel()

		var ran []string
		r := &pipeline.Runner{Steps: []webcite.Step{
			recordingStep("a", webcite.Continue, nil, &ran),
			recordingStep("b", webcite.Finish, nil, &ran),
			recordingStep("c", webcite.Continue, nil, &ran),
		}}

		err := r.Run(context.Background(), webcite.NewSession(webcite.Capture{Link: "x"}, nil))

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ran)
	})

	t.Run("error aborts and names the step", func(t *testing.T) {
		t.Parallel()

		var ran []string
		boom := webcite.Errorf(webcite.EFETCH, "no content")
		r := &pipeline.Runner{Steps: []webcite.Step{
			recordingStep("a", webcite.Continue, boom, &ran),
			recordingStep("b", webcite.Continue, nil, &ran),
		}}

		err := r.Run(context.Background(), webcite.NewSession(webcite.Capture{Link: "x"}, nil))

		require.Error(t, err)
		assert.True(t, errors.Is(err, boom))
		assert.Contains(t, err.Error(), "a:")
		assert.Equal(t, webcite.EFETCH, webcite.ErrorCode(err))
		assert.Equal(t, []string{"a"}, ran)
	})
}
