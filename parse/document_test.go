package parse_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/pkgcat"
	"github.com/fwojciec/pkgcat/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readme = `# Fortran code on GitHub

* [Art and Music](#art-and-music)
* [Astronomy and Astrophysics](#astronomy-and-astrophysics)

Intro text that is not a record.

## Art and Music

[fortran-sound](https://github.com/a/sound): audio synthesis
<!-- curator note
spanning lines -->

## Astronomy and Astrophysics

[astro](https://github.com/b/astro): ephemerides, by Jane Doe
### Archived
---
[old](https://github.com/b/old) no longer maintained
`

func TestReadDocument(t *testing.T) {
	t.Parallel()

	t.Run("splits sections and records", func(t *testing.T) {
		t.Parallel()

		doc, err := parse.ReadDocument(strings.NewReader(readme), parse.ReadOptions{Source: "README.md"})
		require.NoError(t, err)

		require.Len(t, doc.Sections, 2)
		assert.Equal(t, "Art and Music", doc.Sections[0].Heading)
		require.Len(t, doc.Sections[0].Records, 1)
		assert.Equal(t, "README.md:9", doc.Sections[0].Records[0].Ref)
		assert.Equal(t, "Art and Music", doc.Sections[0].Records[0].Category)

		assert.Equal(t, "Astronomy and Astrophysics", doc.Sections[1].Heading)
		require.Len(t, doc.Sections[1].Records, 2)
		assert.Contains(t, doc.Sections[1].Records[1].Text, "[old]")
		assert.Len(t, doc.Records(), 3)
	})

	t.Run("collects table of contents", func(t *testing.T) {
		t.Parallel()

		doc, err := parse.ReadDocument(strings.NewReader(readme), parse.ReadOptions{})
		require.NoError(t, err)

		require.Len(t, doc.TOC, 2)
		assert.Equal(t, pkgcat.TOCEntry{Title: "Art and Music", Anchor: "art-and-music"}, doc.TOC[0])
		assert.Equal(t, "input:9", doc.Sections[0].Records[0].Ref)
	})

	t.Run("stops at max lines", func(t *testing.T) {
		t.Parallel()

		doc, err := parse.ReadDocument(strings.NewReader(readme), parse.ReadOptions{MaxLines: 9})
		require.NoError(t, err)

		require.Len(t, doc.Sections, 1)
		assert.Len(t, doc.Sections[0].Records, 1)
		assert.Equal(t, 9, doc.Lines)
	})

	t.Run("handles empty input", func(t *testing.T) {
		t.Parallel()

		doc, err := parse.ReadDocument(strings.NewReader(""), parse.ReadOptions{})
		require.NoError(t, err)
		assert.Empty(t, doc.Sections)
	})
}

func TestTaxonomyFromTOC(t *testing.T) {
	t.Parallel()

	tax := parse.TaxonomyFromTOC([]pkgcat.TOCEntry{
		{Title: "Art and Music", Anchor: "art-and-music"},
		{Title: "Art and Music", Anchor: "art-and-music"},
		{Title: "Unclassified", Anchor: "unclassified"},
		{Title: "Biology", Anchor: ""},
	})

	require.Len(t, tax, 2)
	assert.Equal(t, pkgcat.Category{Key: "art-and-music", DisplayName: "Art and Music"}, tax[0])
	assert.Equal(t, "biology", tax[1].Key)
	require.NoError(t, tax.Validate())
}
