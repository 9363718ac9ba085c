package mock

import "github.com/fwojciec/pkgcat"

var _ pkgcat.Converter = (*Converter)(nil)

// Converter is a mock implementation of pkgcat.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
