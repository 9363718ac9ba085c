package resolve_test

import (
	"testing"

	"github.com/fwojciec/pkgcat"
	"github.com/fwojciec/pkgcat/normalize"
	"github.com/fwojciec/pkgcat/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taxonomy = pkgcat.Taxonomy{
	{Key: "numerical", DisplayName: "Numerical"},
	{Key: "tooling", DisplayName: "Tooling"},
}

type raw struct {
	name, url, category, description string
}

func normalized(t *testing.T, records ...raw) *normalize.Result {
	t.Helper()
	entries := make([]*pkgcat.Entry, 0, len(records))
	for i, r := range records {
		entries = append(entries, &pkgcat.Entry{
			Position:       i,
			Name:           r.name,
			PrimaryURL:     r.url,
			Description:    r.description,
			SourceCategory: r.category,
			State:          pkgcat.StateUnchecked,
			Ref:            "README.md",
		})
	}
	res, _, err := normalize.Normalize(entries, taxonomy)
	require.NoError(t, err)
	return res
}

func resolved(t *testing.T, records ...raw) ([]*pkgcat.Entry, []pkgcat.Defect) {
	t.Helper()
	res := normalized(t, records...)
	var r resolve.Resolver
	defects, err := r.Resolve(res.Entries, res.Candidates)
	require.NoError(t, err)
	return res.Entries, defects
}

func assertSymmetric(t *testing.T, entries []*pkgcat.Entry) {
	t.Helper()
	byID := make(map[string]*pkgcat.Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	for _, e := range entries {
		for _, rel := range e.Related {
			assert.NotEqual(t, e.ID, rel.ID, "self relation on %s", e.ID)
			other, ok := byID[rel.ID]
			require.True(t, ok, "relation to unknown id %s", rel.ID)
			kind, ok := other.RelationTo(e.ID)
			assert.True(t, ok, "missing back edge %s -> %s", rel.ID, e.ID)
			assert.Equal(t, rel.Kind, kind)
		}
	}
}

func TestResolver_Duplicate(t *testing.T) {
	t.Parallel()

	entries, defects := resolved(t,
		raw{"fpm", "https://github.com/fortran-lang/fpm", "Tooling", "Fortran package manager"},
		raw{"FPM", "https://github.com/fortran-lang/fpm/", "Tooling", "Package manager and build system"},
	)

	first, second := entries[0], entries[1]
	assert.Equal(t, []pkgcat.Relation{{ID: first.ID, Kind: pkgcat.RelationDuplicate}}, second.Related)
	assert.Equal(t, []pkgcat.Relation{{ID: second.ID, Kind: pkgcat.RelationDuplicate}}, first.Related)
	assert.Empty(t, defects)
	assertSymmetric(t, entries)
}

func TestResolver_CrossListed(t *testing.T) {
	t.Parallel()

	entries, defects := resolved(t,
		raw{"fpm", "https://github.com/fortran-lang/fpm", "Tooling", ""},
		raw{"fpm", "https://github.com/fortran-lang/fpm", "Numerical", ""},
	)

	require.Len(t, defects, 1)
	assert.Equal(t, pkgcat.StageResolve, defects[0].Stage)
	assert.Equal(t, pkgcat.DefectCrossListed, defects[0].Kind)
	assert.Equal(t, entries[0].ID, defects[0].Ref)
	assert.Equal(t, "listed in tooling, numerical", defects[0].Detail)
}

func TestResolver_Fork(t *testing.T) {
	t.Parallel()

	entries, _ := resolved(t,
		raw{"minpack", "https://github.com/alice/minpack", "Numerical", ""},
		raw{"MINPACK", "https://github.com/bob/minpack", "Numerical", ""},
		raw{"minpack", "https://gitlab.com/carol/minpack", "Numerical", ""},
	)

	assert.Equal(t, []pkgcat.Relation{{ID: entries[1].ID, Kind: pkgcat.RelationFork}}, entries[0].Related)
	assert.Equal(t, []pkgcat.Relation{{ID: entries[0].ID, Kind: pkgcat.RelationFork}}, entries[1].Related)
	assert.Empty(t, entries[2].Related, "different hosts are not forks")
	assertSymmetric(t, entries)
}

func TestResolver_Companion(t *testing.T) {
	t.Parallel()

	entries, _ := resolved(t,
		raw{"stdlib", "https://github.com/fortran-lang/stdlib", "Numerical", ""},
		raw{"fpm", "https://github.com/fortran-lang/fpm", "Tooling", ""},
		raw{"stdlib-docs", "https://github.com/fortran-lang/stdlib-docs", "Tooling", ""},
		raw{"fpx", "https://github.com/fortran-lang/fpx", "Tooling", ""},
		raw{"stdlib", "https://github.com/someone-else/numerics", "Numerical", ""},
	)

	stdlib, fpm, docs, fpx, other := entries[0], entries[1], entries[2], entries[3], entries[4]
	assert.Equal(t, []pkgcat.Relation{{ID: docs.ID, Kind: pkgcat.RelationCompanion}}, stdlib.Related)
	assert.Equal(t, []pkgcat.Relation{{ID: stdlib.ID, Kind: pkgcat.RelationCompanion}}, docs.Related)
	assert.Empty(t, fpm.Related, "short names only match exactly")
	assert.Empty(t, fpx.Related)
	assert.Empty(t, other.Related, "companions must share an account")
	assertSymmetric(t, entries)
}

func TestResolver_ProjectIndexPaths(t *testing.T) {
	t.Parallel()

	entries, _ := resolved(t,
		raw{"lapack", "https://sourceforge.net/projects/lapack", "Numerical", ""},
		raw{"lapack95", "https://sourceforge.net/projects/lapack95", "Numerical", ""},
	)

	assert.Empty(t, entries[0].Related, "separate projects share no account")
	assert.Empty(t, entries[1].Related)
}

func TestResolver_RelationOrder(t *testing.T) {
	t.Parallel()

	entries, _ := resolved(t,
		raw{"minpack", "https://github.com/alice/minpack", "Numerical", ""},
		raw{"minpack", "https://github.com/bob/minpack", "Numerical", ""},
		raw{"minpack", "https://github.com/alice/minpack", "Numerical", "again"},
	)

	canonical := entries[0]
	assert.Equal(t, []pkgcat.Relation{
		{ID: entries[2].ID, Kind: pkgcat.RelationDuplicate},
		{ID: entries[1].ID, Kind: pkgcat.RelationFork},
	}, canonical.Related)
	assert.Equal(t, []pkgcat.Relation{{ID: canonical.ID, Kind: pkgcat.RelationDuplicate}}, entries[2].Related)
	assertSymmetric(t, entries)
}

func TestResolver_RecomputesRelations(t *testing.T) {
	t.Parallel()

	res := normalized(t,
		raw{"a", "https://example.org/a", "Tooling", ""},
		raw{"b", "https://example.org/b", "Tooling", ""},
	)
	res.Entries[0].Related = []pkgcat.Relation{{ID: res.Entries[1].ID, Kind: pkgcat.RelationFork}}

	var r resolve.Resolver
	_, err := r.Resolve(res.Entries, res.Candidates)
	require.NoError(t, err)
	assert.Empty(t, res.Entries[0].Related)

	first := append([]pkgcat.Relation(nil), res.Entries[0].Related...)
	_, err = r.Resolve(res.Entries, res.Candidates)
	require.NoError(t, err)
	assert.Equal(t, first, append([]pkgcat.Relation(nil), res.Entries[0].Related...))
}

func TestResolver_UnknownCandidate(t *testing.T) {
	t.Parallel()

	res := normalized(t, raw{"a", "https://example.org/a", "Tooling", ""})

	var r resolve.Resolver
	_, err := r.Resolve(res.Entries, []normalize.Candidate{{ID: "missing", CanonicalID: res.Entries[0].ID}})
	require.Error(t, err)
	assert.Equal(t, pkgcat.EINTERNAL, pkgcat.ErrorCode(err))
}

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"minpack", "minpak", 1},
		{"ßtadt", "stadt", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolve.Distance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, tt.want, resolve.Distance(tt.b, tt.a), "%q vs %q", tt.b, tt.a)
	}
}
