package webcite_test

import (
	"testing"

	"github.com/fwojciec/webcite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	t.Run("doi takes priority over url", func(t *testing.T) {
		t.Parallel()
		f := webcite.NewFields()
		f.Set(webcite.FieldDOI, "10.1000/xyz")
		f.Set(webcite.FieldURL, "https://example.com/a")

		key, err := webcite.GenerateKey(f)

		require.NoError(t, err)
		assert.Equal(t, webcite.HashKey("10.1000/xyz"), key)
	})

	t.Run("url is normalized before hashing", func(t *testing.T) {
		t.Parallel()
		f := webcite.NewFields()
		f.Set(webcite.FieldURL, "https://www.example.com/a b")

		key, err := webcite.GenerateKey(f)

		require.NoError(t, err)
		assert.Equal(t, webcite.HashKey("example.com/a-b"), key)
	})

	t.Run("placeholder doi falls back to url", func(t *testing.T) {
		t.Parallel()
		f := webcite.NewFields()
		f.SetPlaceholder(webcite.FieldDOI)
		f.Set(webcite.FieldURL, "http://example.com")

		key, err := webcite.GenerateKey(f)

		require.NoError(t, err)
		assert.Equal(t, webcite.HashKey("example.com"), key)
	})

	t.Run("no doi or url", func(t *testing.T) {
		t.Parallel()
		f := webcite.NewFields()
		f.Set(webcite.FieldTitle, "T")

		_, err := webcite.GenerateKey(f)

		assert.Equal(t, webcite.EKEYGEN, webcite.ErrorCode(err))
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()
		a := webcite.NewFields()
		a.Set(webcite.FieldURL, "https://example.com/x")
		b := webcite.NewFields()
		b.Set(webcite.FieldURL, "https://example.com/x")

		ka, _ := webcite.GenerateKey(a)
		kb, _ := webcite.GenerateKey(b)

		assert.Equal(t, ka, kb)
	})
}

func TestHashKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", webcite.HashKey(""))
	assert.Len(t, webcite.HashKey("10.1000/xyz"), 32)
}

func TestNormalizeKeyURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/a", "example.com/a"},
		{"http://www.example.com/a", "example.com/a"},
		{"  https://example.com/a?b=1&c=2  ", "example.com/a-b-1-c-2"},
		{"ftp://files.example.com/x_y", "files.example.com/x-y"},
		{"example.com/ünï", "example.com/-n-"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, webcite.NormalizeKeyURL(tt.in))
		})
	}
}
