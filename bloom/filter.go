// Package bloom provides key deduplication backed by Bloom filters.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter wraps a Bloom filter for normalized-key deduplication.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected keys
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(max(n, 1), fpRate),
	}
}

// Add adds a key to the filter.
func (f *Filter) Add(key string) {
	f.f.AddString(key)
}

// Test returns true if the key might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(key string) bool {
	return f.f.TestString(key)
}

// EstimatedCount returns the approximate number of keys in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

// Index maps keys to the position where they were first seen. The filter
// answers most misses; the map confirms every hit so the result is exact.
// It is not safe for concurrent use.
type Index struct {
	seen  *Filter
	first map[string]int
}

// NewIndex creates an Index sized for n expected keys.
func NewIndex(n uint, fpRate float64) *Index {
	return &Index{
		seen:  NewFilter(n, fpRate),
		first: make(map[string]int, n),
	}
}

// FirstSeen returns the position recorded for key, if any.
func (x *Index) FirstSeen(key string) (int, bool) {
	if !x.seen.Test(key) {
		return 0, false
	}
	pos, ok := x.first[key]
	return pos, ok
}

// Record stores pos for key unless key was already recorded.
// Returns false if the key had been recorded before.
func (x *Index) Record(key string, pos int) bool {
	if _, ok := x.FirstSeen(key); ok {
		return false
	}
	x.seen.Add(key)
	x.first[key] = pos
	return true
}
