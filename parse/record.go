package parse

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/pkgcat"
)

var (
	listMarkerRe  = regexp.MustCompile(`^(?:[*+-]|\d+[.)])\s+`)
	imageRe       = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	mdLinkRe      = regexp.MustCompile(`\[([^\]]*)\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)`)
	bareURLRe     = regexp.MustCompile(`https?://[^\s<>()\[\]"']+`)
	byClauseRe    = regexp.MustCompile(`(?i)(?:^|[\s,;(])by\s+`)
	authorSplitRe = regexp.MustCompile(`\s*(?:,|;|&|\band\b)\s*`)
	leadingSepRe  = regexp.MustCompile(`^[\s:,;.\-–—|]+`)
)

// maxAuthorWords bounds a single author name; longer phrases after "by"
// are prose, not attribution.
const maxAuthorWords = 4

// Record parses one raw record into an entry. The entry has no ID and its
// Category is unresolved; the normalizer fills both. A nil entry means the
// record was rejected and the returned defects explain why.
func Record(rec pkgcat.RawRecord) (*pkgcat.Entry, []pkgcat.Defect) {
	text := strings.TrimSpace(listMarkerRe.ReplaceAllString(strings.TrimSpace(rec.Text), ""))
	// Badges are decoration and may wrap the link itself.
	text = collapse(imageRe.ReplaceAllString(text, ""))

	name, rawURL, rest, ok := leadingLink(text)
	if !ok {
		return nil, []pkgcat.Defect{{
			Stage:  pkgcat.StageParse,
			Ref:    rec.Ref,
			Kind:   pkgcat.DefectMissingLink,
			Detail: truncate(text, 80),
		}}
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, []pkgcat.Defect{{
			Stage:  pkgcat.StageParse,
			Ref:    rec.Ref,
			Kind:   pkgcat.DefectInvalidURL,
			Detail: rawURL,
		}}
	}

	name = cleanName(name)
	if name == "" || looksLikeURL(name) {
		name = lastSegment(u)
	}
	if name == "" {
		return nil, []pkgcat.Defect{{
			Stage:  pkgcat.StageParse,
			Ref:    rec.Ref,
			Kind:   pkgcat.DefectMissingName,
			Detail: rawURL,
		}}
	}

	rest = leadingSepRe.ReplaceAllString(rest, "")
	secondary := secondaryURLs(rest, rawURL)
	desc, authors := splitAttribution(rest)

	return &pkgcat.Entry{
		Name:           name,
		PrimaryURL:     rawURL,
		SecondaryURLs:  secondary,
		Description:    collapse(desc),
		Authors:        authors,
		SourceCategory: strings.TrimSpace(rec.Category),
		State:          pkgcat.StateUnchecked,
		Ref:            rec.Ref,
	}, nil
}

// leadingLink extracts the name, URL, and remaining text. The first markdown
// link wins; otherwise the first bare URL is used and the text before it
// becomes the name.
func leadingLink(text string) (name, rawURL, rest string, ok bool) {
	if m := mdLinkRe.FindStringSubmatchIndex(text); m != nil {
		prefix := strings.TrimSpace(text[:m[0]])
		name = text[m[2]:m[3]]
		rawURL = text[m[4]:m[5]]
		rest = strings.TrimLeft(text[m[1]:], "*_")
		if cleanName(name) == "" || looksLikeURL(name) {
			if p := cleanName(strings.TrimRight(prefix, ":-–— ")); p != "" {
				name, prefix = p, ""
			}
		}
		if cleanName(prefix) != "" {
			rest = prefix + " " + rest
		}
		return name, rawURL, rest, true
	}
	if m := bareURLRe.FindStringIndex(text); m != nil {
		rawURL = trimURL(text[m[0]:m[1]])
		name = strings.TrimRight(strings.TrimSpace(text[:m[0]]), ":-–— ")
		return name, rawURL, text[m[0]+len(rawURL):], true
	}
	return "", "", "", false
}

// splitAttribution separates a trailing "by A, B and C" clause. Missing or
// implausible attribution leaves the description untouched.
func splitAttribution(text string) (string, []string) {
	locs := byClauseRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text, nil
	}
	last := locs[len(locs)-1]

	clause := strings.TrimSpace(text[last[1]:])
	clause = strings.TrimRight(clause, ".) ")
	clause = mdLinkRe.ReplaceAllString(clause, "$1")
	if clause == "" {
		return text, nil
	}

	var authors []string
	seen := make(map[string]bool)
	for _, part := range authorSplitRe.Split(clause, -1) {
		part = collapse(strings.Trim(bareURLRe.ReplaceAllString(part, ""), "()<> "))
		if part == "" {
			continue
		}
		if !plausibleAuthor(part) {
			return text, nil
		}
		if !seen[part] {
			seen[part] = true
			authors = append(authors, part)
		}
	}
	if len(authors) == 0 {
		return text, nil
	}

	return strings.TrimRight(text[:last[0]], " ,;("), authors
}

// plausibleAuthor accepts short, capitalized names and @handles.
func plausibleAuthor(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 || len(words) > maxAuthorWords {
		return false
	}
	r, _ := utf8.DecodeRuneInString(words[0])
	return unicode.IsUpper(r) || r == '@'
}

// secondaryURLs returns absolute http(s) URLs in text, in order, without
// duplicates and without the primary URL.
func secondaryURLs(text, primary string) []string {
	var out []string
	seen := map[string]bool{primary: true}
	for _, raw := range bareURLRe.FindAllString(text, -1) {
		raw = trimURL(raw)
		if seen[raw] {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Host == "" {
			continue
		}
		seen[raw] = true
		out = append(out, raw)
	}
	return out
}

func trimURL(s string) string {
	return strings.TrimRight(s, ".,;:!?*_`")
}

func cleanName(s string) string {
	return collapse(strings.Trim(s, "*_` "))
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func lastSegment(u *url.URL) string {
	seg := path.Base(strings.TrimSuffix(u.Path, "/"))
	if seg == "." || seg == "/" {
		return ""
	}
	return strings.TrimSuffix(seg, ".git")
}

// collapse trims and collapses internal whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
