// Package index builds the searchable catalog index from resolved and
// validated entries.
//
// Build is a pure function of its inputs: identical entry sets produce
// identical indexes, and the JSON encoding of an Index is byte-identical
// across builds.
package index

import (
	"sort"
	"strings"
	"unicode"

	"github.com/fwojciec/pkgcat"
	"golang.org/x/text/cases"
)

// Field names a searchable entry field.
type Field string

const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldAuthors     Field = "authors"
)

// Fields lists the searchable fields in order of decreasing weight.
var Fields = []Field{FieldName, FieldAuthors, FieldDescription}

// DefaultStopWords are dropped from tokens when Options.StopWords is nil.
var DefaultStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
	"in", "is", "it", "of", "on", "or", "the", "to", "with",
}

// Options configures index construction.
type Options struct {
	// StopWords are removed from tokens. Nil selects DefaultStopWords;
	// an empty non-nil slice keeps every token.
	StopWords []string
}

// Index is the built catalog index. All ID lists are in corpus order.
type Index struct {
	// Entries in corpus order.
	Entries []*pkgcat.Entry `json:"entries"`

	// Categories in taxonomy order with recomputed entry counts, followed
	// by the reserved unclassified category.
	Categories []pkgcat.Category `json:"categories"`

	// Terms maps field -> token -> entry IDs.
	Terms map[Field]map[string][]string `json:"terms"`

	ByCategory map[string][]string          `json:"byCategory"`
	ByTag      map[string][]string          `json:"byTag"`
	Relations  map[string][]pkgcat.Relation `json:"relations"`

	// Unclassified holds IDs of entries with an unresolved unknown-category
	// defect.
	Unclassified []string `json:"unclassified"`

	StopWords []string `json:"stopWords"`
}

// Build constructs an index over entries. Entries are copied, so later
// changes to the inputs do not affect the index.
//
// Returns an EINTERNAL error if an ID is duplicated, an entry's category is
// not in the taxonomy, or a relation points at an unknown entry.
func Build(entries []*pkgcat.Entry, tax pkgcat.Taxonomy, defects []pkgcat.Defect, opts Options) (*Index, error) {
	stop := opts.StopWords
	if stop == nil {
		stop = DefaultStopWords
	}
	stopSet := make(map[string]bool, len(stop))
	for _, w := range stop {
		stopSet[fold(w)] = true
	}

	ordered := make([]*pkgcat.Entry, 0, len(entries))
	ids := make(map[string]bool, len(entries))
	for _, e := range entries {
		if ids[e.ID] {
			return nil, pkgcat.Errorf(pkgcat.EINTERNAL, "duplicate entry id %s", e.ID)
		}
		ids[e.ID] = true
		ordered = append(ordered, clone(e))
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	idx := &Index{
		Entries:    ordered,
		Categories: tax.WithUnclassified(),
		Terms:      make(map[Field]map[string][]string, len(Fields)),
		ByCategory: make(map[string][]string),
		ByTag:      make(map[string][]string),
		Relations:  make(map[string][]pkgcat.Relation),
		StopWords:  sortedSet(stopSet),
	}
	for _, f := range Fields {
		idx.Terms[f] = make(map[string][]string)
	}
	counts := make(map[string]int, len(idx.Categories))
	for _, c := range idx.Categories {
		idx.ByCategory[c.Key] = []string{}
	}

	for _, e := range ordered {
		if _, ok := idx.ByCategory[e.Category]; !ok {
			return nil, pkgcat.Errorf(pkgcat.EINTERNAL, "entry %s has category %q outside the taxonomy", e.ID, e.Category)
		}
		idx.ByCategory[e.Category] = append(idx.ByCategory[e.Category], e.ID)
		counts[e.Category]++

		for _, tag := range e.Tags {
			idx.ByTag[tag] = append(idx.ByTag[tag], e.ID)
		}

		for _, r := range e.Related {
			if !ids[r.ID] {
				return nil, pkgcat.Errorf(pkgcat.EINTERNAL, "entry %s relates to unknown entry %s", e.ID, r.ID)
			}
		}
		if len(e.Related) > 0 {
			idx.Relations[e.ID] = e.Related
		}

		addTerms(idx.Terms[FieldName], e.ID, Tokenize(e.Name, stopSet))
		addTerms(idx.Terms[FieldDescription], e.ID, Tokenize(e.Description, stopSet))
		addTerms(idx.Terms[FieldAuthors], e.ID, Tokenize(strings.Join(e.Authors, " "), stopSet))
	}

	for i := range idx.Categories {
		idx.Categories[i].EntryCount = counts[idx.Categories[i].Key]
	}

	flagged := make(map[string]bool)
	for _, d := range defects {
		if d.Kind == pkgcat.DefectUnknownCategory && ids[d.Ref] {
			flagged[d.Ref] = true
		}
	}
	idx.Unclassified = []string{}
	for _, e := range ordered {
		if flagged[e.ID] {
			idx.Unclassified = append(idx.Unclassified, e.ID)
		}
	}

	return idx, nil
}

// Category returns the category with key.
func (idx *Index) Category(key string) (pkgcat.Category, bool) {
	for _, c := range idx.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return pkgcat.Category{}, false
}

// Tokenize splits text into case-folded letter/digit runs, dropping stop
// words and repeated tokens. Order of first occurrence is kept.
func Tokenize(text string, stop map[string]bool) []string {
	fields := strings.FieldsFunc(fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if stop[f] || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// Options returns the options the index was built with.
func (idx *Index) Options() Options {
	return Options{StopWords: append([]string{}, idx.StopWords...)}
}

// StopSet returns the stop word set recorded in the index.
func (idx *Index) StopSet() map[string]bool {
	set := make(map[string]bool, len(idx.StopWords))
	for _, w := range idx.StopWords {
		set[w] = true
	}
	return set
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func addTerms(terms map[string][]string, id string, tokens []string) {
	for _, tok := range tokens {
		terms[tok] = append(terms[tok], id)
	}
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func clone(e *pkgcat.Entry) *pkgcat.Entry {
	c := *e
	c.SecondaryURLs = append([]string(nil), e.SecondaryURLs...)
	c.Authors = append([]string(nil), e.Authors...)
	c.Tags = append([]string(nil), e.Tags...)
	c.Related = append([]pkgcat.Relation(nil), e.Related...)
	return &c
}
