// Package resolve computes duplicate, fork, and companion relations across
// the whole normalized entry set.
//
// Entries are bucketed by host and account (companions) and by host and
// repository name (forks) before names are compared, so the expensive
// similarity check only runs inside small buckets.
//
// A fork is the same repository name with a similar display name under a
// different account on the same host. A companion shares the account.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fwojciec/pkgcat"
	"github.com/fwojciec/pkgcat/normalize"
)

// Default similarity settings.
const (
	DefaultMaxDistance = 2
	DefaultMinNameLen  = 4
)

// Options tunes the fork/companion heuristic.
type Options struct {
	// MaxDistance is the largest name edit distance still considered similar.
	MaxDistance int

	// MinNameLen is the shortest folded name compared by edit distance;
	// shorter names only match exactly.
	MinNameLen int
}

func (o Options) withDefaults() Options {
	if o.MaxDistance <= 0 {
		o.MaxDistance = DefaultMaxDistance
	}
	if o.MinNameLen <= 0 {
		o.MinNameLen = DefaultMinNameLen
	}
	return o
}

// Resolver computes relations. The zero value uses default options.
type Resolver struct {
	Options Options
}

// Resolve recomputes Related for every entry. Previous relations are
// discarded. Entries must be in corpus order with IDs assigned.
//
// Returns an EINTERNAL error if a candidate references an unknown entry
// or the resulting relation graph is not symmetric.
func (r *Resolver) Resolve(entries []*pkgcat.Entry, candidates []normalize.Candidate) ([]pkgcat.Defect, error) {
	opts := r.Options.withDefaults()
	g := newGraph(entries)

	// Exact duplicates: canonical is the earliest entry of each key group.
	groups := make(map[string][]*pkgcat.Entry)
	var keys []string
	for _, e := range entries {
		if _, ok := groups[e.Key]; !ok {
			keys = append(keys, e.Key)
		}
		groups[e.Key] = append(groups[e.Key], e)
	}
	var defects []pkgcat.Defect
	for _, key := range keys {
		group := groups[key]
		canonical := group[0]
		for _, dup := range group[1:] {
			g.link(dup.ID, canonical.ID, pkgcat.RelationDuplicate)
		}
		if cats := categories(group); len(cats) > 1 {
			defects = append(defects, pkgcat.Defect{
				Stage:  pkgcat.StageResolve,
				Ref:    canonical.ID,
				Kind:   pkgcat.DefectCrossListed,
				Detail: fmt.Sprintf("listed in %s", strings.Join(cats, ", ")),
			})
		}
	}
	for _, c := range candidates {
		if !g.has(c.ID) || !g.has(c.CanonicalID) {
			return nil, pkgcat.Errorf(pkgcat.EINTERNAL, "duplicate candidate %s -> %s references unknown entry", c.ID, c.CanonicalID)
		}
		g.link(c.ID, c.CanonicalID, pkgcat.RelationDuplicate)
	}

	// Companions share host and account; forks share host and repository
	// name under different accounts.
	companions := make(map[string][]*pkgcat.Entry)
	forks := make(map[string][]*pkgcat.Entry)
	var companionKeys, forkKeys []string
	for _, e := range groupsCanonical(keys, groups) {
		host, owner, repo := normalize.Split(e.Key)
		if owner == "" {
			continue
		}
		ck := host + "/" + owner
		if _, ok := companions[ck]; !ok {
			companionKeys = append(companionKeys, ck)
		}
		companions[ck] = append(companions[ck], e)

		if repo != owner {
			fk := host + "|" + repo
			if _, ok := forks[fk]; !ok {
				forkKeys = append(forkKeys, fk)
			}
			forks[fk] = append(forks[fk], e)
		}
	}

	for _, k := range forkKeys {
		bucket := forks[k]
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				a, b := bucket[i], bucket[j]
				if owner(a) == owner(b) {
					continue
				}
				if similar(a.Name, b.Name, opts) {
					g.link(a.ID, b.ID, pkgcat.RelationFork)
				}
			}
		}
	}
	for _, k := range companionKeys {
		bucket := companions[k]
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				a, b := bucket[i], bucket[j]
				if similar(a.Name, b.Name, opts) || companionPrefix(a.Name, b.Name) {
					g.link(a.ID, b.ID, pkgcat.RelationCompanion)
				}
			}
		}
	}

	if err := g.apply(entries); err != nil {
		return nil, err
	}
	return defects, nil
}

// groupsCanonical returns the canonical entry of each key group, in order.
// Duplicates inherit fork and companion relations through their canonical
// entry rather than repeating them.
func groupsCanonical(keys []string, groups map[string][]*pkgcat.Entry) []*pkgcat.Entry {
	out := make([]*pkgcat.Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, groups[k][0])
	}
	return out
}

func categories(group []*pkgcat.Entry) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range group {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out
}

func owner(e *pkgcat.Entry) string {
	_, o, _ := normalize.Split(e.Key)
	return o
}

// similar reports whether two display names are within the edit distance
// threshold after folding.
func similar(a, b string, opts Options) bool {
	ka, kb := normalize.NameKey(a), normalize.NameKey(b)
	if ka == "" || kb == "" {
		return false
	}
	if ka == kb {
		return true
	}
	if min(len([]rune(ka)), len([]rune(kb))) < opts.MinNameLen {
		return false
	}
	return Distance(ka, kb) <= opts.MaxDistance
}

// companionPrefix matches names where one extends the other, such as
// "stdlib" and "stdlib-docs".
func companionPrefix(a, b string) bool {
	ka, kb := normalize.NameKey(a), normalize.NameKey(b)
	if len(ka) > len(kb) {
		ka, kb = kb, ka
	}
	return len(ka) >= 3 && ka != kb && strings.HasPrefix(kb, ka)
}

// Distance returns the Levenshtein edit distance between a and b in runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// graph holds symmetric relations keyed by entry ID.
type graph struct {
	position map[string]int
	edges    map[string]map[string]pkgcat.RelationKind
}

func newGraph(entries []*pkgcat.Entry) *graph {
	g := &graph{
		position: make(map[string]int, len(entries)),
		edges:    make(map[string]map[string]pkgcat.RelationKind, len(entries)),
	}
	for _, e := range entries {
		g.position[e.ID] = e.Position
	}
	return g
}

func (g *graph) has(id string) bool {
	_, ok := g.position[id]
	return ok
}

// link writes both directions of an edge in one step. An existing edge of
// equal or stronger kind is kept.
func (g *graph) link(a, b string, kind pkgcat.RelationKind) {
	if a == b {
		return
	}
	if existing, ok := g.edges[a][b]; ok && existing.Rank() <= kind.Rank() {
		return
	}
	for _, pair := range [2][2]string{{a, b}, {b, a}} {
		from, to := pair[0], pair[1]
		if g.edges[from] == nil {
			g.edges[from] = make(map[string]pkgcat.RelationKind)
		}
		g.edges[from][to] = kind
	}
}

// apply replaces every entry's relations with the graph's edges, ordered by
// kind strength then corpus position, and verifies symmetry.
func (g *graph) apply(entries []*pkgcat.Entry) error {
	for _, e := range entries {
		edges := g.edges[e.ID]
		if len(edges) == 0 {
			e.Related = nil
			continue
		}
		related := make([]pkgcat.Relation, 0, len(edges))
		for id, kind := range edges {
			if back, ok := g.edges[id][e.ID]; !ok || back != kind {
				return pkgcat.Errorf(pkgcat.EINTERNAL, "asymmetric relation %s -> %s (%s)", e.ID, id, kind)
			}
			related = append(related, pkgcat.Relation{ID: id, Kind: kind})
		}
		sort.Slice(related, func(i, j int) bool {
			if related[i].Kind.Rank() != related[j].Kind.Rank() {
				return related[i].Kind.Rank() < related[j].Kind.Rank()
			}
			return g.position[related[i].ID] < g.position[related[j].ID]
		})
		e.Related = related
	}
	return nil
}
