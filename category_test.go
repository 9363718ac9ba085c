package pkgcat_test

import (
	"testing"

	"github.com/fwojciec/pkgcat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "Astronomy", "astronomy"},
		{"spaces", "Art and Music", "art-and-music"},
		{"punctuation", "Climate, Weather & Ocean", "climate-weather-ocean"},
		{"surrounding space", "  Fluid Dynamics ", "fluid-dynamics"},
		{"underscore", "linear_algebra", "linear-algebra"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pkgcat.Slugify(tt.title))
		})
	}
}

func TestTaxonomy_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts distinct keys", func(t *testing.T) {
		t.Parallel()
		tax := pkgcat.Taxonomy{{Key: "astronomy", DisplayName: "Astronomy"}, {Key: "biology", DisplayName: "Biology"}}
		require.NoError(t, tax.Validate())
	})

	t.Run("rejects empty taxonomy", func(t *testing.T) {
		t.Parallel()
		err := pkgcat.Taxonomy{}.Validate()
		assert.Equal(t, pkgcat.EINVALID, pkgcat.ErrorCode(err))
	})

	t.Run("rejects duplicate keys", func(t *testing.T) {
		t.Parallel()
		tax := pkgcat.Taxonomy{{Key: "a"}, {Key: "a"}}
		assert.Equal(t, pkgcat.EINVALID, pkgcat.ErrorCode(tax.Validate()))
	})

	t.Run("rejects reserved key", func(t *testing.T) {
		t.Parallel()
		tax := pkgcat.Taxonomy{{Key: pkgcat.UnclassifiedKey}}
		assert.Equal(t, pkgcat.EINVALID, pkgcat.ErrorCode(tax.Validate()))
	})
}

func TestTaxonomy_Lookup(t *testing.T) {
	t.Parallel()

	tax := pkgcat.Taxonomy{
		{Key: "art-and-music", DisplayName: "Art and Music"},
		{Key: "astro", DisplayName: "Astronomy and Astrophysics"},
	}

	c, ok := tax.Lookup("Art and Music")
	require.True(t, ok)
	assert.Equal(t, "art-and-music", c.Key)

	c, ok = tax.Lookup("astronomy and astrophysics")
	require.True(t, ok)
	assert.Equal(t, "astro", c.Key)

	_, ok = tax.Lookup("Cooking")
	assert.False(t, ok)
}

func TestTaxonomy_WithUnclassified(t *testing.T) {
	t.Parallel()

	tax := pkgcat.Taxonomy{{Key: "a", DisplayName: "A", EntryCount: 7}}
	all := tax.WithUnclassified()

	require.Len(t, all, 2)
	assert.Equal(t, 0, all[0].EntryCount)
	assert.Equal(t, pkgcat.UnclassifiedKey, all[1].Key)
	assert.True(t, tax.Has(pkgcat.UnclassifiedKey))
	assert.Equal(t, 7, tax[0].EntryCount, "original taxonomy is not modified")
}
