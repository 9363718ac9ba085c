// Package parse turns README-shaped catalog documents into raw sections and
// raw records into structured catalog entries.
//
// Parsing is tolerant: each record is handled by a sequence of extraction
// rules (leading link, trailing attribution, remainder as description) and
// every failure becomes a defect rather than an error.
package parse

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/fwojciec/pkgcat"
)

var (
	sectionRe = regexp.MustCompile(`^##\s+(.+?)\s*#*$`)
	headingRe = regexp.MustCompile(`^#{1,6}(\s|$)`)
	tocRe     = regexp.MustCompile(`^(?:[*+-]|\d+[.)])\s+\[([^\]]+)\]\(#([^)\s]*)\)\s*$`)
	ruleRe    = regexp.MustCompile(`^(?:-{3,}|\*{3,}|_{3,})$`)
)

// Document is the result of splitting a catalog document.
type Document struct {
	Sections []pkgcat.RawSection
	TOC      []pkgcat.TOCEntry
	Lines    int
}

// Records returns every raw record in document order.
func (d *Document) Records() []pkgcat.RawRecord {
	var out []pkgcat.RawRecord
	for _, s := range d.Sections {
		out = append(out, s.Records...)
	}
	return out
}

// ReadOptions configures ReadDocument.
type ReadOptions struct {
	// Source names the document in record references. Defaults to "input".
	Source string

	// MaxLines stops reading after this many lines. Zero means no limit.
	MaxLines int
}

// ReadDocument splits a markdown document into category sections.
// Level-two headings start sections. Inside a section every non-blank line
// that is not a heading, comment, rule, or table-of-contents link is a record.
func ReadDocument(r io.Reader, opts ReadOptions) (*Document, error) {
	source := opts.Source
	if source == "" {
		source = "input"
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	doc := &Document{}
	var current *pkgcat.RawSection
	inComment := false
	lineNo := 0

	for scanner.Scan() {
		if opts.MaxLines > 0 && lineNo >= opts.MaxLines {
			break
		}
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if inComment {
			if strings.Contains(line, "-->") {
				inComment = false
			}
			continue
		}
		if strings.HasPrefix(line, "<!--") {
			inComment = !strings.Contains(line, "-->")
			continue
		}

		if m := sectionRe.FindStringSubmatch(line); m != nil {
			doc.Sections = append(doc.Sections, pkgcat.RawSection{Heading: m[1]})
			current = &doc.Sections[len(doc.Sections)-1]
			continue
		}
		if m := tocRe.FindStringSubmatch(line); m != nil {
			doc.TOC = append(doc.TOC, pkgcat.TOCEntry{Title: strings.TrimSpace(m[1]), Anchor: m[2]})
			continue
		}
		if line == "" || headingRe.MatchString(line) || ruleRe.MatchString(line) {
			continue
		}
		if current == nil {
			// Preamble text before the first section.
			continue
		}

		current.Records = append(current.Records, pkgcat.RawRecord{
			Category: current.Heading,
			Text:     line,
			Ref:      fmt.Sprintf("%s:%d", source, lineNo),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	doc.Lines = lineNo

	return doc, nil
}

// TaxonomyFromTOC derives a taxonomy from table-of-contents lines, keyed by
// their anchors. It is meant to bootstrap a taxonomy file, not to replace one.
func TaxonomyFromTOC(toc []pkgcat.TOCEntry) pkgcat.Taxonomy {
	seen := make(map[string]bool)
	var tax pkgcat.Taxonomy
	for _, t := range toc {
		key := pkgcat.Slugify(t.Anchor)
		if key == "" {
			key = pkgcat.Slugify(t.Title)
		}
		if key == "" || key == pkgcat.UnclassifiedKey || seen[key] {
			continue
		}
		seen[key] = true
		tax = append(tax, pkgcat.Category{Key: key, DisplayName: t.Title})
	}
	return tax
}
