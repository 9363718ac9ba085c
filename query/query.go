// Package query answers read-only questions against a built index.
package query

import (
	"sort"

	"github.com/fwojciec/pkgcat"
	"github.com/fwojciec/pkgcat/index"
)

// Field weights for search scoring.
var weights = map[index.Field]int{
	index.FieldName:        3,
	index.FieldAuthors:     2,
	index.FieldDescription: 1,
}

// Engine answers queries against one index. It is safe for concurrent use
// since it never modifies the index.
type Engine struct {
	idx  *index.Index
	byID map[string]*pkgcat.Entry
	stop map[string]bool
}

// NewEngine creates an Engine over idx.
func NewEngine(idx *index.Index) *Engine {
	byID := make(map[string]*pkgcat.Entry, len(idx.Entries))
	for _, e := range idx.Entries {
		byID[e.ID] = e
	}
	return &Engine{idx: idx, byID: byID, stop: idx.StopSet()}
}

// Hit is one search result.
type Hit struct {
	Entry *pkgcat.Entry
	Score int
}

// Alternative is an entry related to another one.
type Alternative struct {
	Entry *pkgcat.Entry
	Kind  pkgcat.RelationKind
}

// Entry returns the entry with id.
func (q *Engine) Entry(id string) (*pkgcat.Entry, error) {
	e, ok := q.byID[id]
	if !ok {
		return nil, pkgcat.Errorf(pkgcat.ENOTFOUND, "entry %s not found", id)
	}
	return e, nil
}

// Categories returns every category with its entry count.
func (q *Engine) Categories() []pkgcat.Category {
	return append([]pkgcat.Category(nil), q.idx.Categories...)
}

// ListCategory returns the entries of a category in corpus order.
// Returns ENOTFOUND if key is not in the taxonomy.
func (q *Engine) ListCategory(key string) ([]*pkgcat.Entry, error) {
	if _, ok := q.idx.Category(key); !ok {
		return nil, pkgcat.Errorf(pkgcat.ENOTFOUND, "category %q not found", key)
	}
	return q.entries(q.idx.ByCategory[key]), nil
}

// ListTag returns the entries carrying tag in corpus order.
func (q *Engine) ListTag(tag string) []*pkgcat.Entry {
	return q.entries(q.idx.ByTag[tag])
}

// Search ranks entries by weighted token overlap with text. Each distinct
// query token scores once per field it matches. Ties are broken by corpus
// order.
func (q *Engine) Search(text string) []Hit {
	tokens := index.Tokenize(text, q.stop)
	if len(tokens) == 0 {
		return nil
	}

	scores := make(map[string]int)
	for _, field := range index.Fields {
		terms := q.idx.Terms[field]
		for _, tok := range tokens {
			for _, id := range terms[tok] {
				scores[id] += weights[field]
			}
		}
	}

	hits := make([]Hit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, Hit{Entry: q.byID[id], Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Entry.Position < hits[j].Entry.Position
	})
	return hits
}

// NeedsAttention returns entries that are UNREACHABLE or AMBIGUOUS or were
// moved to the unclassified category by an unknown-category defect, in
// corpus order.
func (q *Engine) NeedsAttention() []*pkgcat.Entry {
	flagged := make(map[string]bool, len(q.idx.Unclassified))
	for _, id := range q.idx.Unclassified {
		flagged[id] = true
	}
	var out []*pkgcat.Entry
	for _, e := range q.idx.Entries {
		if e.State.NeedsAttention() || flagged[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

// AlternativesFor returns the entries related to id with their relation
// kind, strongest first. Returns ENOTFOUND if id is not indexed.
func (q *Engine) AlternativesFor(id string) ([]Alternative, error) {
	if _, ok := q.byID[id]; !ok {
		return nil, pkgcat.Errorf(pkgcat.ENOTFOUND, "entry %s not found", id)
	}
	rels := q.idx.Relations[id]
	out := make([]Alternative, 0, len(rels))
	for _, r := range rels {
		out = append(out, Alternative{Entry: q.byID[r.ID], Kind: r.Kind})
	}
	return out, nil
}

func (q *Engine) entries(ids []string) []*pkgcat.Entry {
	out := make([]*pkgcat.Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, q.byID[id])
	}
	return out
}
