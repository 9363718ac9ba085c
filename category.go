package pkgcat

import (
	"strings"
	"unicode"
)

// UnclassifiedKey is the reserved category for entries whose heading is not
// part of the taxonomy.
const UnclassifiedKey = "unclassified"

// Category is a node in the flat category taxonomy.
type Category struct {
	Key         string `json:"key" yaml:"key" toml:"key"`
	DisplayName string `json:"displayName" yaml:"name" toml:"name"`
	EntryCount  int    `json:"entryCount" yaml:"-" toml:"-"`
}

// Unclassified returns the reserved category.
func Unclassified() Category {
	return Category{Key: UnclassifiedKey, DisplayName: "Unclassified"}
}

// Taxonomy is the fixed, ordered list of categories.
type Taxonomy []Category

// Validate returns an error if the taxonomy is empty or has duplicate,
// empty, or reserved keys.
func (t Taxonomy) Validate() error {
	if len(t) == 0 {
		return Errorf(EINVALID, "taxonomy must define at least one category")
	}
	seen := make(map[string]bool, len(t))
	for _, c := range t {
		if c.Key == "" {
			return Errorf(EINVALID, "taxonomy category %q has empty key", c.DisplayName)
		}
		if c.Key == UnclassifiedKey {
			return Errorf(EINVALID, "taxonomy key %q is reserved", UnclassifiedKey)
		}
		if seen[c.Key] {
			return Errorf(EINVALID, "duplicate taxonomy key %q", c.Key)
		}
		seen[c.Key] = true
	}
	return nil
}

// Lookup resolves a section heading to a category. The heading matches a
// category when its slug equals the key or it equals the display name
// ignoring case.
func (t Taxonomy) Lookup(heading string) (Category, bool) {
	slug := Slugify(heading)
	for _, c := range t {
		if c.Key == slug || strings.EqualFold(strings.TrimSpace(heading), c.DisplayName) {
			return c, true
		}
	}
	return Category{}, false
}

// Has reports whether key is a taxonomy key or the reserved unclassified key.
func (t Taxonomy) Has(key string) bool {
	if key == UnclassifiedKey {
		return true
	}
	for _, c := range t {
		if c.Key == key {
			return true
		}
	}
	return false
}

// WithUnclassified returns the taxonomy followed by the reserved category.
func (t Taxonomy) WithUnclassified() Taxonomy {
	out := make(Taxonomy, 0, len(t)+1)
	for _, c := range t {
		c.EntryCount = 0
		out = append(out, c)
	}
	return append(out, Unclassified())
}

// Slugify creates a URL-safe key from a heading, the same way rendered
// markdown anchors are generated: lowercase, spaces become hyphens,
// other punctuation is dropped.
func Slugify(title string) string {
	var sb strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevHyphen = false
		} else if unicode.IsSpace(r) || r == '-' || r == '_' {
			if !prevHyphen && sb.Len() > 0 {
				sb.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(sb.String(), "-")
}
