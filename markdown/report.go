// Package markdown renders catalog reports as markdown documents.
package markdown

import (
	"io"
	"sort"
	"strconv"

	"github.com/fwojciec/pkgcat"
	"github.com/fwojciec/pkgcat/query"
	"github.com/nao1215/markdown"
	"golang.org/x/text/cases"
)

// DefaultTitle is the report heading used when none is set.
const DefaultTitle = "Package Catalog"

// ReportWriter writes a catalog listing followed by a needs-attention
// summary and the defect table.
type ReportWriter struct {
	output io.Writer

	// Title is the top-level heading.
	Title string

	// Tag limits the listing to entries carrying it. The summary sections
	// always cover the whole catalog.
	Tag string
}

// NewReportWriter creates a ReportWriter that outputs to w.
func NewReportWriter(w io.Writer) *ReportWriter {
	return &ReportWriter{output: w, Title: DefaultTitle}
}

// Write renders the report for the indexed catalog and its defects.
func (w *ReportWriter) Write(eng *query.Engine, defects []pkgcat.Defect) error {
	md := markdown.NewMarkdown(w.output)

	title := w.Title
	if title == "" {
		title = DefaultTitle
	}
	md.H1(title)
	md.PlainText("")

	attention := eng.NeedsAttention()
	w.writeSummary(md, eng, attention, defects)
	w.writeCatalog(md, eng)
	w.writeAttention(md, attention)
	w.writeDefects(md, defects)

	return md.Build()
}

func (w *ReportWriter) writeSummary(md *markdown.Markdown, eng *query.Engine, attention []*pkgcat.Entry, defects []pkgcat.Defect) {
	total := 0
	for _, c := range eng.Categories() {
		total += c.EntryCount
	}
	rows := [][]string{
		{"Entries", strconv.Itoa(total)},
		{"Categories", strconv.Itoa(len(eng.Categories()))},
		{"Needs attention", strconv.Itoa(len(attention))},
		{"Defects", strconv.Itoa(len(defects))},
	}
	if w.Tag != "" {
		rows = append(rows, []string{"Tagged " + w.Tag, strconv.Itoa(len(eng.ListTag(w.Tag)))})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *ReportWriter) writeCatalog(md *markdown.Markdown, eng *query.Engine) {
	fold := cases.Fold()
	for _, c := range eng.Categories() {
		entries, err := eng.ListCategory(c.Key)
		if err != nil {
			continue
		}
		if w.Tag != "" {
			entries = withTag(entries, w.Tag)
		}
		if len(entries) == 0 {
			continue
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return fold.String(entries[i].Name) < fold.String(entries[j].Name)
		})

		items := make([]string, 0, len(entries))
		for _, e := range entries {
			item := markdown.Link(e.Name, e.PrimaryURL)
			if e.Description != "" {
				item += " - " + e.Description
			}
			items = append(items, item)
		}

		md.H2(c.DisplayName)
		md.PlainText("")
		md.BulletList(items...)
		md.PlainText("")
	}
}

func (w *ReportWriter) writeAttention(md *markdown.Markdown, attention []*pkgcat.Entry) {
	md.H2("Needs Attention")
	md.PlainText("")

	if len(attention) == 0 {
		md.Tip("Every entry is reachable and classified.")
		md.PlainText("")
		return
	}

	md.Warningf("%d entries need maintainer review.", len(attention))
	md.PlainText("")

	rows := make([][]string, 0, len(attention))
	for _, e := range attention {
		rows = append(rows, []string{"`" + e.ID + "`", e.Name, string(e.State), e.Category, e.PrimaryURL})
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Name", "State", "Category", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *ReportWriter) writeDefects(md *markdown.Markdown, defects []pkgcat.Defect) {
	md.H2("Defects")
	md.PlainText("")

	if len(defects) == 0 {
		md.PlainText("No defects recorded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(defects))
	for _, d := range defects {
		rows = append(rows, []string{string(d.Stage), string(d.Kind), d.Ref, d.Detail})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Stage", "Kind", "Ref", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

func withTag(entries []*pkgcat.Entry, tag string) []*pkgcat.Entry {
	var out []*pkgcat.Entry
	for _, e := range entries {
		if e.HasTag(tag) {
			out = append(out, e)
		}
	}
	return out
}
