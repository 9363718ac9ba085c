package normalize_test

import (
	"testing"

	"github.com/fwojciec/pkgcat"
	"github.com/fwojciec/pkgcat/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taxonomy = pkgcat.Taxonomy{
	{Key: "astronomy", DisplayName: "Astronomy"},
	{Key: "numerical", DisplayName: "Numerical Methods"},
}

func entry(pos int, name, rawURL, category string) *pkgcat.Entry {
	return &pkgcat.Entry{
		Position:       pos,
		Name:           name,
		PrimaryURL:     rawURL,
		SourceCategory: category,
		State:          pkgcat.StateUnchecked,
		Ref:            "README.md",
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and drops scheme", "https://GitHub.com/Fortran-Lang/FPM", "github.com/fortran-lang/fpm"},
		{"drops trailing slash", "https://github.com/a/b/", "github.com/a/b"},
		{"drops www and fragment", "http://www.example.org/x#readme", "example.org/x"},
		{"drops git suffix", "https://github.com/a/b.git", "github.com/a/b"},
		{"drops default port", "https://example.org:443/x", "example.org/x"},
		{"keeps other port", "http://example.org:8080/x", "example.org:8080/x"},
		{"keeps query", "https://example.org/p?id=7", "example.org/p?id=7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := normalize.Key(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("rejects url without host", func(t *testing.T) {
		t.Parallel()
		_, err := normalize.Key("not-a-url")
		require.Error(t, err)
	})
}

func TestID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, normalize.ID("github.com/a/b", 0), normalize.ID("github.com/a/b", 0))
	assert.NotEqual(t, normalize.ID("github.com/a/b", 0), normalize.ID("github.com/a/b", 1))
	assert.NotEqual(t, normalize.ID("github.com/a/b", 0), normalize.ID("github.com/a/c", 0))
	assert.Len(t, normalize.ID("github.com/a/b", 0), 16)
}

func TestSplit(t *testing.T) {
	t.Parallel()

	host, owner, repo := normalize.Split("github.com/fortran-lang/fpm")
	assert.Equal(t, "github.com", host)
	assert.Equal(t, "fortran-lang", owner)
	assert.Equal(t, "fpm", repo)

	host, owner, repo = normalize.Split("sourceforge.net/projects/lapack95/files")
	assert.Equal(t, "sourceforge.net", host)
	assert.Equal(t, "lapack95", owner)
	assert.Equal(t, "files", repo)

	host, owner, repo = normalize.Split("example.org")
	assert.Equal(t, "example.org", host)
	assert.Empty(t, owner)
	assert.Empty(t, repo)
}

func TestNameKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fortranpackagemanager", normalize.NameKey("Fortran Package-Manager"))
	assert.Equal(t, normalize.NameKey("ÉCOLE_Solver"), normalize.NameKey("école solver"))
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("assigns stable ids and resolves categories", func(t *testing.T) {
		t.Parallel()

		in := []*pkgcat.Entry{
			entry(0, "fpm", "https://github.com/fortran-lang/fpm", "Astronomy"),
			entry(1, "quadpack", "https://github.com/jacobwilliams/quadpack", "numerical methods"),
		}

		res, defects, err := normalize.Normalize(in, taxonomy)
		require.NoError(t, err)
		assert.Empty(t, defects)
		require.Len(t, res.Entries, 2)
		assert.Equal(t, normalize.ID("github.com/fortran-lang/fpm", 0), res.Entries[0].ID)
		assert.Equal(t, "github.com/fortran-lang/fpm", res.Entries[0].Key)
		assert.Equal(t, "astronomy", res.Entries[0].Category)
		assert.Equal(t, "numerical", res.Entries[1].Category)
		assert.True(t, res.Entries[0].HasTag("host:github.com"))
	})

	t.Run("is idempotent across runs", func(t *testing.T) {
		t.Parallel()

		run := func() []string {
			in := []*pkgcat.Entry{
				entry(0, "a", "https://github.com/o/a", "Astronomy"),
				entry(1, "a again", "https://github.com/o/a/", "Astronomy"),
			}
			res, _, err := normalize.Normalize(in, taxonomy)
			require.NoError(t, err)
			return []string{res.Entries[0].ID, res.Entries[1].ID}
		}

		assert.Equal(t, run(), run())
	})

	t.Run("keeps duplicates with distinct ids and forwards candidates", func(t *testing.T) {
		t.Parallel()

		in := []*pkgcat.Entry{
			entry(0, "fpm", "https://github.com/fortran-lang/fpm", "Astronomy"),
			entry(1, "fpm mirror", "http://www.github.com/Fortran-Lang/fpm/", "Numerical Methods"),
		}

		res, defects, err := normalize.Normalize(in, taxonomy)
		require.NoError(t, err)
		require.Len(t, res.Entries, 2)
		assert.NotEqual(t, res.Entries[0].ID, res.Entries[1].ID)
		assert.Equal(t, res.Entries[0].Key, res.Entries[1].Key)
		require.Len(t, res.Candidates, 1)
		assert.Equal(t, normalize.Candidate{ID: res.Entries[1].ID, CanonicalID: res.Entries[0].ID}, res.Candidates[0])
		require.Len(t, defects, 1)
		assert.Equal(t, pkgcat.DefectDuplicateEntry, defects[0].Kind)
		assert.Equal(t, "http://www.github.com/Fortran-Lang/fpm/", res.Entries[1].PrimaryURL, "stored url keeps original form")
	})

	t.Run("places unknown category in unclassified with defect", func(t *testing.T) {
		t.Parallel()

		in := []*pkgcat.Entry{entry(0, "x", "https://github.com/o/x", "Cooking")}

		res, defects, err := normalize.Normalize(in, taxonomy)
		require.NoError(t, err)
		require.Len(t, res.Entries, 1)
		assert.Equal(t, pkgcat.UnclassifiedKey, res.Entries[0].Category)
		require.Len(t, defects, 1)
		assert.Equal(t, pkgcat.DefectUnknownCategory, defects[0].Kind)
		assert.Equal(t, res.Entries[0].ID, defects[0].Ref)
	})

	t.Run("orders by corpus position", func(t *testing.T) {
		t.Parallel()

		in := []*pkgcat.Entry{
			entry(5, "later", "https://github.com/o/x", "Astronomy"),
			entry(2, "earlier", "https://github.com/o/x", "Astronomy"),
		}

		res, _, err := normalize.Normalize(in, taxonomy)
		require.NoError(t, err)
		assert.Equal(t, "earlier", res.Entries[0].Name)
		assert.Equal(t, normalize.ID("github.com/o/x", 0), res.Entries[0].ID)
	})

	t.Run("dedupes authors case-insensitively", func(t *testing.T) {
		t.Parallel()

		e := entry(0, "x", "https://github.com/o/x", "Astronomy")
		e.Authors = []string{"Jane  Doe", "jane doe", "Bob"}

		res, _, err := normalize.Normalize([]*pkgcat.Entry{e}, taxonomy)
		require.NoError(t, err)
		assert.Equal(t, []string{"Jane Doe", "Bob"}, res.Entries[0].Authors)
	})
}
