// Package normalize canonicalizes parsed entries, resolves their category
// against the taxonomy, and assigns stable identifiers.
package normalize

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pkgcat"
	"github.com/fwojciec/pkgcat/bloom"
	"golang.org/x/text/cases"
)

// keyFalsePositiveRate sizes the seen-key filter.
const keyFalsePositiveRate = 0.01

// Candidate is a DUPLICATE relation candidate forwarded to the resolver:
// the entry ID shares its normalized URL with the earlier CanonicalID.
type Candidate struct {
	ID          string
	CanonicalID string
}

// Result holds normalized entries in corpus order plus duplicate candidates.
type Result struct {
	Entries    []*pkgcat.Entry
	Candidates []Candidate
}

// Normalize canonicalizes entries in place and assigns IDs. Entries sharing
// a normalized URL keep distinct IDs; the first-seen entry keeps the plain
// hash and later ones are forwarded as duplicate candidates. Unknown
// categories move the entry to the unclassified category.
//
// Returns an EINTERNAL error if two different keys hash to the same ID.
func Normalize(entries []*pkgcat.Entry, tax pkgcat.Taxonomy) (*Result, []pkgcat.Defect, error) {
	ordered := make([]*pkgcat.Entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	firstSeen := bloom.NewIndex(uint(len(ordered)), keyFalsePositiveRate)
	occurrences := make(map[string]int)
	owners := make(map[string]string)

	result := &Result{Entries: ordered}
	var defects []pkgcat.Defect

	for i, e := range ordered {
		key, err := Key(e.PrimaryURL)
		if err != nil {
			defects = append(defects, pkgcat.Defect{
				Stage:  pkgcat.StageNormalize,
				Ref:    e.Ref,
				Kind:   pkgcat.DefectInvalidURL,
				Detail: err.Error(),
			})
			key = strings.ToLower(e.PrimaryURL)
		}

		id := ID(key, occurrences[key])
		occurrences[key]++
		if prev, ok := owners[id]; ok && prev != key {
			return nil, nil, pkgcat.Errorf(pkgcat.EINTERNAL, "id %s collides for %q and %q", id, prev, key)
		}
		owners[id] = key

		e.ID = id
		e.Key = key
		e.Name = collapse(e.Name)
		e.Description = collapse(e.Description)
		e.Authors = canonicalAuthors(e.Authors)
		if host, _, _ := Split(key); host != "" {
			e.AddTag("host:" + host)
		}

		if c, ok := tax.Lookup(e.SourceCategory); ok {
			e.Category = c.Key
		} else {
			e.Category = pkgcat.UnclassifiedKey
			defects = append(defects, pkgcat.Defect{
				Stage:  pkgcat.StageNormalize,
				Ref:    e.ID,
				Kind:   pkgcat.DefectUnknownCategory,
				Detail: fmt.Sprintf("category %q is not in the taxonomy", e.SourceCategory),
			})
		}

		if first, ok := firstSeen.FirstSeen(key); ok {
			canonical := ordered[first]
			result.Candidates = append(result.Candidates, Candidate{ID: e.ID, CanonicalID: canonical.ID})
			defects = append(defects, pkgcat.Defect{
				Stage:  pkgcat.StageNormalize,
				Ref:    e.ID,
				Kind:   pkgcat.DefectDuplicateEntry,
				Detail: fmt.Sprintf("same URL as %s (%s)", canonical.ID, canonical.Ref),
			})
		} else {
			firstSeen.Record(key, i)
		}
	}

	return result, defects, nil
}

// Key returns the comparison form of a URL: lower-cased, without scheme,
// "www." prefix, default port, fragment, ".git" suffix, or trailing slash.
func Key(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if port := u.Port(); port != "" && port != "80" && port != "443" {
		host += ":" + port
	}

	p := strings.ToLower(strings.TrimRight(u.EscapedPath(), "/"))
	p = strings.TrimSuffix(p, ".git")

	key := host + p
	if u.RawQuery != "" {
		key += "?" + strings.ToLower(u.RawQuery)
	}
	return key, nil
}

// ID derives the stable entry identifier for the n-th occurrence (from zero)
// of a normalized key.
func ID(key string, n int) string {
	if n > 0 {
		key += "#" + strconv.Itoa(n)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}

// projectPrefixes are leading path segments that index projects rather than
// name an account, as in sourceforge.net/projects/<name>.
var projectPrefixes = map[string]bool{
	"projects": true,
	"project":  true,
	"p":        true,
}

// Split returns the host, owner (account or organization path segment),
// and repository (last path segment) of a normalized key. On project-index
// paths the project itself is the owner.
func Split(key string) (host, owner, repo string) {
	if i := strings.IndexByte(key, '?'); i >= 0 {
		key = key[:i]
	}
	parts := strings.Split(key, "/")
	host = parts[0]
	var segs []string
	for _, p := range parts[1:] {
		if p != "" {
			segs = append(segs, p)
		}
	}
	if len(segs) > 1 && projectPrefixes[segs[0]] {
		segs = segs[1:]
	}
	if len(segs) > 0 {
		owner = segs[0]
		repo = segs[len(segs)-1]
	}
	return host, owner, repo
}

// NameKey folds a display name for similarity comparison: case-folded,
// letters and digits only.
func NameKey(name string) string {
	folded := cases.Fold().String(name)
	var sb strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// canonicalAuthors collapses whitespace and drops case-insensitive duplicates,
// keeping the first spelling.
func canonicalAuthors(authors []string) []string {
	if len(authors) == 0 {
		return nil
	}
	out := make([]string, 0, len(authors))
	seen := make(map[string]bool, len(authors))
	for _, a := range authors {
		a = collapse(a)
		k := cases.Fold().String(a)
		if a == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, a)
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
