// Package bloom provides a probabilistic set of corpus values using Bloom
// filters, so searches for values absent from the corpus skip the scan.
package bloom

import (
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/webcite"
)

// DefaultFalsePositiveRate is the false positive rate used by New.
const DefaultFalsePositiveRate = 0.001

// Ensure Filter implements webcite.ValueFilter at compile time.
var _ webcite.ValueFilter = (*Filter)(nil)

// Filter wraps a Bloom filter over corpus field values.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected values
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	if n == 0 {
		n = 1
	}
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// New creates a filter sized for n values at DefaultFalsePositiveRate.
// Its signature fits fs.WithFilter.
func New(n uint) webcite.ValueFilter {
	return NewFilter(n, DefaultFalsePositiveRate)
}

// Add adds a value to the filter.
func (f *Filter) Add(value string) {
	f.f.AddString(value)
}

// Test returns true if the value might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(value string) bool {
	return f.f.TestString(value)
}

// EstimatedCount returns the approximate number of values in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
