package pkgcat

// Converter turns an HTML catalog fragment into record text.
type Converter interface {
	// Convert transforms one entry's HTML into a single line of markdown
	// that the entry parser understands.
	Convert(html string) (string, error)
}
