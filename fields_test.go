package webcite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/webcite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields(t *testing.T) {
	t.Parallel()

	t.Run("zero value is usable", func(t *testing.T) {
		t.Parallel()
		var f webcite.Fields

		f.Set(webcite.FieldTitle, "T")

		assert.Equal(t, "T", f.Value(webcite.FieldTitle))
	})

	t.Run("empty values are ignored", func(t *testing.T) {
		t.Parallel()
		f := webcite.NewFields()

		f.Set(webcite.FieldTitle, "")

		assert.False(t, f.Defined(webcite.FieldTitle))
	})

	t.Run("set overwrites", func(t *testing.T) {
		t.Parallel()
		f := webcite.NewFields()
		f.Set(webcite.FieldTitle, "old")

		f.Set(webcite.FieldTitle, "new")

		assert.Equal(t, "new", f.Value(webcite.FieldTitle))
	})

	t.Run("set if unset keeps existing value", func(t *testing.T) {
		t.Parallel()
		f := webcite.NewFields()
		f.Set(webcite.FieldTitle, "first")

		stored := f.SetIfUnset(webcite.FieldTitle, "second")

		assert.False(t, stored)
		assert.Equal(t, "first", f.Value(webcite.FieldTitle))
		assert.True(t, f.SetIfUnset(webcite.FieldYear, "2020"))
	})

	t.Run("placeholder is defined but has no value", func(t *testing.T) {
		t.Parallel()
		f := webcite.NewFields()

		f.SetPlaceholder(webcite.FieldDOI)

		assert.True(t, f.Defined(webcite.FieldDOI))
		assert.True(t, f.IsPlaceholder(webcite.FieldDOI))
		_, ok := f.Get(webcite.FieldDOI)
		assert.False(t, ok)
		v, ok := f.Lookup(webcite.FieldDOI, true)
		assert.True(t, ok)
		assert.Empty(t, v)
		assert.False(t, f.SetIfUnset(webcite.FieldDOI, "10.1/x"))
	})

	t.Run("set replaces placeholder", func(t *testing.T) {
		t.Parallel()
		f := webcite.NewFields()
		f.SetPlaceholder(webcite.FieldDOI)

		f.Set(webcite.FieldDOI, "10.1/x")

		assert.False(t, f.IsPlaceholder(webcite.FieldDOI))
		assert.Equal(t, "10.1/x", f.Value(webcite.FieldDOI))
	})

	t.Run("unset removes field", func(t *testing.T) {
		t.Parallel()
		f := webcite.NewFields()
		f.Set(webcite.FieldTitle, "T")

		f.Unset(webcite.FieldTitle)

		assert.False(t, f.Defined(webcite.FieldTitle))
	})

	t.Run("names are sorted and snapshot omits placeholders", func(t *testing.T) {
		t.Parallel()
		f := webcite.NewFields()
		f.Set(webcite.FieldURL, "https://example.com")
		f.Set(webcite.FieldAuthor, "A")
		f.SetPlaceholder(webcite.FieldDOI)

		assert.Equal(t, []string{"author", "doi", "url"}, f.Names())
		assert.Equal(t, map[string]string{
			"author": "A",
			"url":    "https://example.com",
		}, f.Snapshot())
	})
}

func TestSession(t *testing.T) {
	t.Parallel()

	t.Run("url falls back to link", func(t *testing.T) {
		t.Parallel()
		s := webcite.NewSession(webcite.Capture{Link: "example.com/a"}, nil)

		assert.Equal(t, "example.com/a", s.URL())

		s.Fields.Set(webcite.FieldURL, "https://example.com/a")
		assert.Equal(t, "https://example.com/a", s.URL())
	})

	t.Run("buffer without source", func(t *testing.T) {
		t.Parallel()
		s := webcite.NewSession(webcite.Capture{Link: "https://example.com"}, nil)

		_, err := s.Buffer(context.Background())

		require.Error(t, err)
		assert.Equal(t, webcite.EFETCH, webcite.ErrorCode(err))
	})

	t.Run("capture is returned unchanged", func(t *testing.T) {
		t.Parallel()
		c := webcite.Capture{Link: "https://example.com", Title: "T"}
		s := webcite.NewSession(c, nil)

		assert.Equal(t, c, s.Capture())
	})
}

func TestCapture_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, (&webcite.Capture{Link: "https://example.com"}).Validate())
	assert.Equal(t, webcite.EINVALID, webcite.ErrorCode((&webcite.Capture{}).Validate()))
}

func TestOutcome_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "continue", webcite.Continue.String())
	assert.Equal(t, "finish", webcite.Finish.String())
}
