package webcite

import (
	"context"
	"fmt"
)

// Match locates an entry in the persisted corpus.
type Match struct {
	Path string
	Line int
	Text string
}

// String returns the match location as path:line.
func (m Match) String() string {
	return fmt.Sprintf("%s:%d", m.Path, m.Line)
}

// Searcher finds existing records in the persisted corpus.
type Searcher interface {
	// Search returns the locations of corpus lines whose citation key or
	// field value equals pattern exactly.
	Search(ctx context.Context, pattern string) ([]Match, error)
}

// ValueFilter is a probabilistic set of corpus values.
// Test may report false positives but never false negatives.
type ValueFilter interface {
	Add(value string)
	Test(value string) bool
}
