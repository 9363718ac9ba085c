// Package goquery reads rendered HTML catalogs into raw sections.
package goquery

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pkgcat"
	"github.com/fwojciec/pkgcat/parse"
	"golang.org/x/net/html/atom"
)

// Reader splits an HTML catalog into category sections. Each h2 starts a
// section; each following list item, or paragraph holding a link, is one
// record whose inner HTML is converted to record text.
type Reader struct {
	Converter pkgcat.Converter

	// Source names the document in record references. Defaults to "input".
	Source string

	// MaxRecords stops reading after this many records. Zero means no limit.
	MaxRecords int
}

// NewReader creates a Reader that converts entries with conv.
func NewReader(conv pkgcat.Converter) *Reader {
	return &Reader{Converter: conv}
}

// Read parses an HTML document. List items of anchor links before the
// first section form the table of contents.
func (r *Reader) Read(in io.Reader) (*parse.Document, error) {
	if r.Converter == nil {
		return nil, pkgcat.Errorf(pkgcat.EINVALID, "converter required")
	}
	source := r.Source
	if source == "" {
		source = "input"
	}

	doc, err := goquery.NewDocumentFromReader(in)
	if err != nil {
		return nil, pkgcat.Errorf(pkgcat.EINVALID, "failed to parse HTML: %v", err)
	}

	out := &parse.Document{}
	var current *pkgcat.RawSection
	var convErr error
	n := 0

	doc.Find("h2, li, p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		switch sel.Get(0).DataAtom {
		case atom.H2:
			heading := collapse(sel.Text())
			if heading == "" {
				return true
			}
			out.Sections = append(out.Sections, pkgcat.RawSection{Heading: heading})
			current = &out.Sections[len(out.Sections)-1]
			return true
		case atom.Li:
			if current == nil {
				if toc, ok := tocEntry(sel); ok {
					out.TOC = append(out.TOC, toc)
				}
				return true
			}
		case atom.P:
			if sel.ParentsFiltered("li").Length() > 0 || sel.Find("a[href]").Length() == 0 {
				return true
			}
		}
		if current == nil {
			return true
		}
		if r.MaxRecords > 0 && n >= r.MaxRecords {
			return false
		}

		// Nested lists are records of their own.
		frag := sel.Clone()
		frag.Find("ul, ol").Remove()
		inner, err := frag.Html()
		if err != nil {
			convErr = fmt.Errorf("render entry: %w", err)
			return false
		}
		text, err := r.Converter.Convert(inner)
		if pkgcat.ErrorCode(err) == pkgcat.EINVALID {
			return true
		} else if err != nil {
			convErr = fmt.Errorf("convert entry: %w", err)
			return false
		}
		if text == "" {
			return true
		}

		n++
		current.Records = append(current.Records, pkgcat.RawRecord{
			Category: current.Heading,
			Text:     text,
			Ref:      fmt.Sprintf("%s#%d", source, n),
		})
		return true
	})
	if convErr != nil {
		return nil, convErr
	}
	return out, nil
}

// tocEntry recognizes a list item that only holds an in-page anchor link.
func tocEntry(sel *goquery.Selection) (pkgcat.TOCEntry, bool) {
	a := sel.ChildrenFiltered(`a[href^="#"]`)
	if a.Length() != 1 {
		return pkgcat.TOCEntry{}, false
	}
	title := collapse(a.Text())
	own := sel.Clone()
	own.Find("ul, ol").Remove()
	if title == "" || title != collapse(own.Text()) {
		return pkgcat.TOCEntry{}, false
	}
	href, _ := a.Attr("href")
	return pkgcat.TOCEntry{Title: title, Anchor: strings.TrimPrefix(href, "#")}, true
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
