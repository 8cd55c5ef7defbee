package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fwojciec/webcite"
	"github.com/fwojciec/webcite/mock"
	"github.com/fwojciec/webcite/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resolvedRecord = `@article{Smith_2020,
	doi = {10.1000/xyz},
	url = {https://doi.org/10.1000/xyz},
	year = 2020,
	publisher = {Example Press},
	author = {Smith, Jane and Doe, John},
	title = {On {Things}},
	journal = {Journal of Examples}
}`

func TestDOIStep_Run(t *testing.T) {
	t.Parallel()

	t.Run("adopts the resolved record and finishes", func(t *testing.T) {
		t.Parallel()

		var resolved string
		step := &pipeline.DOIStep{Resolver: &mock.DOIResolver{
			ResolveFn: func(_ context.Context, doi string) (string, error) {
				resolved = doi
				return resolvedRecord, nil
			},
		}}
		s := webcite.NewSession(webcite.Capture{Link: "https://doi.org/10.1000/xyz"}, nil)
		s.Fields.Set(webcite.FieldTitle, "Overwritten")

		outcome, err := step.Run(context.Background(), s)

		require.NoError(t, err)
		assert.Equal(t, webcite.Finish, outcome)
		assert.Equal(t, "10.1000/xyz", resolved)
		assert.Equal(t, "article", s.Fields.Value(webcite.FieldType))
		assert.Equal(t, "On {Things}", s.Fields.Value(webcite.FieldTitle))
		assert.Equal(t, "Smith, Jane and Doe, John", s.Fields.Value(webcite.FieldAuthor))
		assert.Equal(t, "2020", s.Fields.Value(webcite.FieldYear))
		assert.Equal(t, "Example Press", s.Fields.Value("publisher"))
		assert.Equal(t, resolvedRecord, s.Resolved)
	})

	t.Run("keeps the extracted DOI when the resolver spells it differently", func(t *testing.T) {
		t.Parallel()

		step := &pipeline.DOIStep{Resolver: &mock.DOIResolver{
			ResolveFn: func(_ context.Context, _ string) (string, error) {
				return strings.Replace(resolvedRecord, "doi = {10.1000/xyz}", "doi = {10.1000/XYZ}", 1), nil
			},
		}}
		s := webcite.NewSession(webcite.Capture{Link: "https://doi.org/10.1000/xyz"}, nil)

		_, err := step.Run(context.Background(), s)
		require.NoError(t, err)

		assert.Equal(t, "10.1000/xyz", s.Fields.Value(webcite.FieldDOI))
		key, err := webcite.GenerateKey(s.Fields)
		require.NoError(t, err)
		assert.Equal(t, webcite.HashKey("10.1000/xyz"), key)
	})

	t.Run("continues with a warning when resolution fails", func(t *testing.T) {
		t.Parallel()

		notifier, got := mock.RecordingNotifier()
		step := &pipeline.DOIStep{
			Resolver: &mock.DOIResolver{ResolveFn: func(_ context.Context, _ string) (string, error) {
				return "", webcite.Errorf(webcite.EUNRESOLVED, "DOI not found")
			}},
			Notifier: notifier,
		}
		s := webcite.NewSession(webcite.Capture{Link: "https://dl.acm.org/doi/10.1145/3368089.3409710"}, nil)
		s.Fields.Set(webcite.FieldURL, "https://dl.acm.org/doi/10.1145/3368089.3409710")

		outcome, err := step.Run(context.Background(), s)

		require.NoError(t, err)
		assert.Equal(t, webcite.Continue, outcome)
		assert.Equal(t, "10.1145/3368089.3409710", s.Fields.Value(webcite.FieldDOI))
		assert.Empty(t, s.Resolved)
		require.Len(t, *got, 1)
		assert.Equal(t, webcite.SeverityWarning, (*got)[0].Severity)
		assert.Contains(t, (*got)[0].Message, "DOI not found")
	})

	t.Run("continues when the resolver returns garbage", func(t *testing.T) {
		t.Parallel()

		step := &pipeline.DOIStep{Resolver: &mock.DOIResolver{
			ResolveFn: func(_ context.Context, _ string) (string, error) {
				return "<html>not bibtex</html>", nil
			},
		}}
		s := webcite.NewSession(webcite.Capture{Link: "https://doi.org/10.1000/xyz"}, nil)

		outcome, err := step.Run(context.Background(), s)

		require.NoError(t, err)
		assert.Equal(t, webcite.Continue, outcome)
	})

	t.Run("returns cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		step := &pipeline.DOIStep{Resolver: &mock.DOIResolver{
			ResolveFn: func(ctx context.Context, _ string) (string, error) {
				return "", ctx.Err()
			},
		}}
		s := webcite.NewSession(webcite.Capture{Link: "https://doi.org/10.1000/xyz"}, nil)

		_, err := step.Run(ctx, s)

		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("resolves a DOI set by the feed step", func(t *testing.T) {
		t.Parallel()

		var resolved string
		step := &pipeline.DOIStep{Resolver: &mock.DOIResolver{
			ResolveFn: func(_ context.Context, doi string) (string, error) {
				resolved = doi
				return resolvedRecord, nil
			},
		}}
		s := webcite.NewSession(webcite.Capture{Link: "https://example.com/feed-item"}, nil)
		s.Fields.Set(webcite.FieldDOI, "10.48550/arXiv.2101.00001")

		outcome, err := step.Run(context.Background(), s)

		require.NoError(t, err)
		assert.Equal(t, webcite.Finish, outcome)
		assert.Equal(t, "10.48550/arXiv.2101.00001", resolved)
	})

	t.Run("ignores links without a DOI", func(t *testing.T) {
		t.Parallel()

		step := &pipeline.DOIStep{Resolver: &mock.DOIResolver{
			ResolveFn: func(_ context.Context, _ string) (string, error) {
				t.Fatal("resolver must not be called")
				return "", nil
			},
		}}
		s := webcite.NewSession(webcite.Capture{Link: "https://example.com/post"}, nil)

		outcome, err := step.Run(context.Background(), s)

		require.NoError(t, err)
		assert.Equal(t, webcite.Continue, outcome)
		assert.False(t, s.Fields.Defined(webcite.FieldDOI))
	})
}
