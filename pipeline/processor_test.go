package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/webcite"
	"github.com/fwojciec/webcite/goquery"
	"github.com/fwojciec/webcite/mock"
	"github.com/fwojciec/webcite/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var processorRules = &webcite.Rules{
	Version: 1,
	Fields: []webcite.FieldRule{
		{Field: "title", Patterns: []string{`<title>([^<]*)</title>`}},
		{Field: "author", Patterns: []string{`<meta name="author" content="([^"]*)"`}},
		{Field: "howpublished", Patterns: []string{`<meta name="publisher" content="([^"]*)"`}},
		{Field: "year", Patterns: []string{`<meta name="date" content="(\d{4})`}},
	},
}

type processorFixture struct {
	processor *pipeline.Processor
	fetches   *int
	resolves  *int
	searched  *[]string
	notes     *[]webcite.Notification
}

func newProcessor(t *testing.T, page string, resolve func(doi string) (string, error), corpus map[string][]webcite.Match) processorFixture {
	t.Helper()

	var fetches, resolves int
	var searched []string
	notifier, notes := mock.RecordingNotifier()

	generic, err := pipeline.NewRegexExtractor(processorRules, nil)
	require.NoError(t, err)

	doi := &pipeline.DOIStep{
		Resolver: &mock.DOIResolver{ResolveFn: func(_ context.Context, doi string) (string, error) {
			resolves++
			return resolve(doi)
		}},
		Notifier: notifier,
	}
	steps := pipeline.DefaultSteps(pipeline.Chain{
		DOI: doi,
		Site: []webcite.Step{
			&goquery.ForgeStep{},
			&goquery.VideoStep{},
			&goquery.BlogStep{},
			&goquery.WeChatStep{},
		},
		Generic: generic,
	})
	steps[1] = &pipeline.DefaultsStep{Now: func() time.Time {
		return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	}}

	p := &pipeline.Processor{
		Steps: steps,
		Fetcher: &mock.Fetcher{FetchFn: func(_ context.Context, _ string) (string, error) {
			fetches++
			if page == "" {
				return "", errors.New("HTTP 404")
			}
			return page, nil
		}},
		Searcher: corpusSearcher(corpus, &searched),
		Notifier: notifier,
		Mode:     webcite.ResolvedReformat,
	}
	return processorFixture{processor: p, fetches: &fetches, resolves: &resolves, searched: &searched, notes: notes}
}

func noResolve(string) (string, error) {
	return "", webcite.Errorf(webcite.EUNRESOLVED, "unexpected resolution")
}

func TestProcessor_Process(t *testing.T) {
	t.Parallel()

	t.Run("forge repository", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><title>foo: A tool — acme/foo at main</title>
<meta name="author" content="Somebody Else"><meta name="publisher" content="Hub"></head></html>`
		f := newProcessor(t, page, noResolve, nil)

		rec, err := f.processor.Process(context.Background(), webcite.Capture{Link: "https://github.com/acme/foo"})

		require.NoError(t, err)
		assert.Equal(t, "Github", rec.Fields[webcite.FieldHowPublished])
		assert.Equal(t, "acme", rec.Fields[webcite.FieldAuthor])
		assert.Equal(t, "foo: A tool", rec.Fields[webcite.FieldTitle])
		assert.NotContains(t, rec.Fields, webcite.FieldYear)
		assert.NotContains(t, rec.Fields, webcite.FieldDOI)
		assert.Equal(t, webcite.HashKey("github.com/acme/foo"), rec.Key)
		assert.Equal(t, 0, *f.resolves)

		want := "@misc{" + rec.Key + ",\n" +
			"  author = {acme},\n" +
			"  title = {foo: A tool},\n" +
			"  url = {https://github.com/acme/foo},\n" +
			"  howpublished = {Github},\n" +
			"  note = {Online; accessed 2024-05-01},\n" +
			"}\n"
		assert.Equal(t, want, rec.Text)
	})

	t.Run("resolved DOI finishes the pipeline", func(t *testing.T) {
		t.Parallel()

		f := newProcessor(t, `<title>Should not be read</title>`, func(doi string) (string, error) {
			return resolvedRecord, nil
		}, nil)

		rec, err := f.processor.Process(context.Background(), webcite.Capture{Link: "https://doi.org/10.1000/xyz"})

		require.NoError(t, err)
		assert.Equal(t, webcite.HashKey("10.1000/xyz"), rec.Key)
		assert.Equal(t, 0, *f.fetches)
		assert.Equal(t, "On {Things}", rec.Fields[webcite.FieldTitle])
		assert.Equal(t, "Smith, Jane and Doe, John", rec.Fields[webcite.FieldAuthor])
		assert.Equal(t, "Journal of Examples", rec.Fields[webcite.FieldJournal])
		assert.Equal(t, "article", rec.Fields[webcite.FieldType])
		assert.True(t, strings.HasPrefix(rec.Text, "@article{"+rec.Key+",\n"))
		assert.Contains(t, rec.Text, "  journal = {Journal of Examples},\n")
		assert.Contains(t, rec.Text, "  publisher = {Example Press},\n")
	})

	t.Run("verbatim mode keeps the resolved text", func(t *testing.T) {
		t.Parallel()

		f := newProcessor(t, "", func(doi string) (string, error) {
			return resolvedRecord, nil
		}, nil)
		f.processor.Mode = webcite.ResolvedVerbatim

		rec, err := f.processor.Process(context.Background(), webcite.Capture{Link: "https://doi.org/10.1000/xyz"})

		require.NoError(t, err)
		want := strings.Replace(resolvedRecord, "Smith_2020", rec.Key, 1) + "\n"
		assert.Equal(t, want, rec.Text)
	})

	t.Run("duplicate by canonical url", func(t *testing.T) {
		t.Parallel()

		page := `<title>Post</title>`
		corpus := map[string][]webcite.Match{
			"https://example.com/post": {{Path: "refs.bib", Line: 12, Text: "  url = {https://example.com/post},"}},
		}
		f := newProcessor(t, page, noResolve, corpus)

		_, err := f.processor.Process(context.Background(), webcite.Capture{Link: "https://example.com/post#comments"})

		var derr *webcite.DuplicateError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, "url", derr.Check)
		assert.Equal(t, "refs.bib:12", derr.First().String())
		assert.Equal(t, webcite.EDUPLICATE, webcite.ErrorCode(err))
		require.Len(t, *f.notes, 1)
		assert.Equal(t, webcite.SeverityWarning, (*f.notes)[0].Severity)
	})

	t.Run("generic page", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><title>Example Page</title><meta name="author" content="Jane Roe"></head></html>`
		f := newProcessor(t, page, noResolve, nil)

		rec, err := f.processor.Process(context.Background(), webcite.Capture{Link: "https://example.com/page"})

		require.NoError(t, err)
		assert.Equal(t, "Example Page", rec.Fields[webcite.FieldTitle])
		assert.Equal(t, "Jane Roe", rec.Fields[webcite.FieldAuthor])
		assert.NotContains(t, rec.Fields, webcite.FieldYear)
		assert.NotContains(t, rec.Text, "year")
		assert.Equal(t, 1, *f.fetches)
	})

	t.Run("fetch failure is fatal and reported", func(t *testing.T) {
		t.Parallel()

		f := newProcessor(t, "", noResolve, nil)

		_, err := f.processor.Process(context.Background(), webcite.Capture{Link: "https://example.com/gone"})

		require.Error(t, err)
		assert.Equal(t, webcite.EFETCH, webcite.ErrorCode(err))
		require.Len(t, *f.notes, 1)
		assert.Equal(t, webcite.SeverityError, (*f.notes)[0].Severity)
		assert.Empty(t, *f.searched)
	})

	t.Run("rejects an empty link", func(t *testing.T) {
		t.Parallel()

		f := newProcessor(t, "", noResolve, nil)

		_, err := f.processor.Process(context.Background(), webcite.Capture{})

		assert.Equal(t, webcite.EINVALID, webcite.ErrorCode(err))
		require.Len(t, *f.notes, 1)
		assert.Equal(t, webcite.SeverityError, (*f.notes)[0].Severity)
		assert.Zero(t, *f.fetches)
	})

	t.Run("display title fills a missing page title", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><meta name="author" content="Jane Roe"></head></html>`
		f := newProcessor(t, page, noResolve, nil)

		rec, err := f.processor.Process(context.Background(), webcite.Capture{
			Link:  "https://example.com/untitled",
			Title: "  Tab   Title ",
		})

		require.NoError(t, err)
		assert.Equal(t, "Tab Title", rec.Fields[webcite.FieldTitle])
		assert.Equal(t, "Jane Roe", rec.Fields[webcite.FieldAuthor])
		assert.Contains(t, rec.Text, "title = {Tab Title}")
	})

	t.Run("page title wins over the display title", func(t *testing.T) {
		t.Parallel()

		page := `<title>Page Title</title>`
		f := newProcessor(t, page, noResolve, nil)

		rec, err := f.processor.Process(context.Background(), webcite.Capture{
			Link:  "https://example.com/titled",
			Title: "Tab Title",
		})

		require.NoError(t, err)
		assert.Equal(t, "Page Title", rec.Fields[webcite.FieldTitle])
	})

	t.Run("releases the buffer when a step fails", func(t *testing.T) {
		t.Parallel()

		var captured *webcite.Session
		notifier, notes := mock.RecordingNotifier()
		p := &pipeline.Processor{
			Steps: []webcite.Step{&mock.Step{RunFn: func(ctx context.Context, s *webcite.Session) (webcite.Outcome, error) {
				captured = s
				if _, err := s.Buffer(ctx); err != nil {
					return webcite.Continue, err
				}
				return webcite.Continue, webcite.Errorf(webcite.EPARSEMISS, "nothing to extract")
			}}},
			Fetcher: &mock.Fetcher{FetchFn: func(_ context.Context, _ string) (string, error) {
				return "<title>Page</title>", nil
			}},
			Notifier: notifier,
		}

		_, err := p.Process(context.Background(), webcite.Capture{Link: "https://example.com/page"})

		assert.Equal(t, webcite.EPARSEMISS, webcite.ErrorCode(err))
		require.Len(t, *notes, 1)
		require.NotNil(t, captured)
		_, err = captured.Buffer(context.Background())
		assert.Equal(t, webcite.EFETCH, webcite.ErrorCode(err))
		assert.Contains(t, webcite.ErrorMessage(err), "already released")
	})

	t.Run("same link twice yields the same key", func(t *testing.T) {
		t.Parallel()

		page := `<title>Post</title>`
		f := newProcessor(t, page, noResolve, nil)
		c := webcite.Capture{Link: "https://example.com/post"}

		first, err := f.processor.Process(context.Background(), c)
		require.NoError(t, err)
		second, err := f.processor.Process(context.Background(), c)
		require.NoError(t, err)

		assert.Equal(t, first.Key, second.Key)
		assert.Equal(t, first.Text, second.Text)
	})
}
