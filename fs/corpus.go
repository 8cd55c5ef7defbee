package fs

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fwojciec/webcite"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of corpus files scanned in parallel.
const DefaultConcurrency = 8

// Ensure Corpus implements webcite.Searcher at compile time.
var _ webcite.Searcher = (*Corpus)(nil)

// Corpus searches bibliography files on disk. Files are named by glob
// patterns and rescanned on every search that may match. An optional value
// filter built on Load lets searches for values that appear nowhere skip
// the scan; it reflects the corpus as of the last Load.
type Corpus struct {
	patterns    []string
	newFilter   func(n uint) webcite.ValueFilter
	concurrency int

	mu     sync.RWMutex
	filter webcite.ValueFilter
}

// CorpusOption configures a Corpus.
type CorpusOption func(*Corpus)

// WithFilter builds a value filter with newFilter on Load. The filter is
// sized for the number of values found.
func WithFilter(newFilter func(n uint) webcite.ValueFilter) CorpusOption {
	return func(c *Corpus) {
		c.newFilter = newFilter
	}
}

// WithConcurrency sets how many files are scanned in parallel.
func WithConcurrency(n int) CorpusOption {
	return func(c *Corpus) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// NewCorpus creates a Corpus over the files matching patterns.
func NewCorpus(patterns []string, opts ...CorpusOption) *Corpus {
	c := &Corpus{
		patterns:    patterns,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Files returns the corpus files matching the patterns, sorted and without
// duplicates.
func (c *Corpus) Files() ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range c.patterns {
		pattern, err := ExpandHome(pattern)
		if err != nil {
			return nil, err
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, webcite.Errorf(webcite.EINVALID, "invalid corpus pattern %q", pattern)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err != nil || info.IsDir() || seen[m] {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Load scans every corpus file and builds the value filter, if configured.
func (c *Corpus) Load(ctx context.Context) error {
	if c.newFilter == nil {
		return nil
	}
	files, err := c.Files()
	if err != nil {
		return err
	}

	var values []string
	var mu sync.Mutex
	err = c.scan(ctx, files, func(_ string, l webcite.CorpusLine) {
		mu.Lock()
		values = append(values, l.Value)
		mu.Unlock()
	})
	if err != nil {
		return err
	}

	filter := c.newFilter(uint(len(values)))
	for _, v := range values {
		filter.Add(v)
	}

	c.mu.Lock()
	c.filter = filter
	c.mu.Unlock()
	return nil
}

// Search returns every corpus line whose citation key or field value
// equals pattern, ordered by file and line.
func (c *Corpus) Search(ctx context.Context, pattern string) ([]webcite.Match, error) {
	c.mu.RLock()
	filter := c.filter
	c.mu.RUnlock()
	if filter != nil && !filter.Test(pattern) {
		return nil, nil
	}

	files, err := c.Files()
	if err != nil {
		return nil, err
	}

	var matches []webcite.Match
	var mu sync.Mutex
	err = c.scan(ctx, files, func(path string, l webcite.CorpusLine) {
		if l.Value != pattern {
			return
		}
		mu.Lock()
		matches = append(matches, webcite.Match{Path: path, Line: l.Line, Text: l.Text})
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Path != matches[j].Path {
			return matches[i].Path < matches[j].Path
		}
		return matches[i].Line < matches[j].Line
	})
	return matches, nil
}

// scan reads files concurrently and calls fn for every corpus line.
// fn must be safe for concurrent use.
func (c *Corpus) scan(ctx context.Context, files []string, fn func(path string, l webcite.CorpusLine)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			return webcite.ScanCorpus(f, func(l webcite.CorpusLine) {
				fn(path, l)
			})
		})
	}
	return g.Wait()
}
