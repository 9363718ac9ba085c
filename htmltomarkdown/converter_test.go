package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/pkgcat"
	"github.com/fwojciec/pkgcat/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Converter implements pkgcat.Converter at compile time.
var _ pkgcat.Converter = (*htmltomarkdown.Converter)(nil)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts entry link and description", func(t *testing.T) {
		t.Parallel()

		html := `<a href="https://github.com/fortran-lang/fpm">fpm</a> - Fortran package manager`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Equal(t, "[fpm](https://github.com/fortran-lang/fpm) - Fortran package manager", md)
	})

	t.Run("collapses block content onto one line", func(t *testing.T) {
		t.Parallel()

		html := `<p><a href="https://example.com/lapack">LAPACK</a></p>
<p>Linear algebra routines</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.NotContains(t, md, "\n")
		assert.Contains(t, md, "[LAPACK](https://example.com/lapack)")
		assert.Contains(t, md, "Linear algebra routines")
	})

	t.Run("converts inline code", func(t *testing.T) {
		t.Parallel()

		html := `<p>Run <code>fpm build</code> to compile.</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Equal(t, "Run `fpm build` to compile.", md)
	})

	t.Run("resolves relative links with domain", func(t *testing.T) {
		t.Parallel()

		html := `<a href="/fortran-lang/stdlib">stdlib</a>`

		conv := htmltomarkdown.NewConverter(htmltomarkdown.WithDomain("https://github.com"))
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Equal(t, "[stdlib](https://github.com/fortran-lang/stdlib)", md)
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		_, err := conv.Convert("  \n ")

		require.Error(t, err)
		assert.Equal(t, pkgcat.EINVALID, pkgcat.ErrorCode(err))
	})
}
