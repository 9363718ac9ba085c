package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/pkgcat"
	"github.com/fwojciec/pkgcat/index"
	"github.com/fwojciec/pkgcat/ingest"
	"github.com/fwojciec/pkgcat/query"
)

// loadEngine rebuilds the query engine of the requested snapshot, or of
// the latest one when id is empty.
func loadEngine(deps *Dependencies, id string) (*query.Engine, *pkgcat.Snapshot, error) {
	var snap *pkgcat.Snapshot
	var err error
	if id != "" {
		snap, err = deps.Snapshots.FindSnapshotByID(deps.Ctx, id)
	} else {
		snap, err = deps.Snapshots.FindLatestSnapshot(deps.Ctx)
	}
	if err != nil {
		if pkgcat.ErrorCode(err) == pkgcat.ENOTFOUND && id == "" {
			fmt.Fprintln(deps.Stderr, "error: no snapshots found. Use 'pkgcat ingest' to create one.")
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pkgcat.ErrorMessage(err))
		}
		return nil, nil, err
	}

	idx, err := ingest.Rebuild(snap, index.Options{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pkgcat.ErrorMessage(err))
		return nil, nil, err
	}
	return query.NewEngine(idx), snap, nil
}

func printEntries(deps *Dependencies, entries []*pkgcat.Entry) {
	for _, e := range entries {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n", e.ID, e.Name, e.State, e.PrimaryURL)
	}
}

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	eng, _, err := loadEngine(deps, c.SnapshotID)
	if err != nil {
		return err
	}

	entries, err := eng.ListCategory(c.Category)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s. Use 'pkgcat categories' to see available categories.\n", pkgcat.ErrorMessage(err))
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(deps.Stdout, "No entries in %s.\n", c.Category)
		return nil
	}
	printEntries(deps, entries)
	return nil
}

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	eng, _, err := loadEngine(deps, c.SnapshotID)
	if err != nil {
		return err
	}

	hits := eng.Search(strings.Join(c.Query, " "))
	if len(hits) == 0 {
		fmt.Fprintln(deps.Stdout, "No matching entries.")
		return nil
	}
	if c.Limit > 0 && len(hits) > c.Limit {
		hits = hits[:c.Limit]
	}
	for _, h := range hits {
		fmt.Fprintf(deps.Stdout, "%3d  %s  %s  %s\n", h.Score, h.Entry.ID, h.Entry.Name, h.Entry.PrimaryURL)
	}
	return nil
}

// Run executes the attention command.
func (c *AttentionCmd) Run(deps *Dependencies) error {
	eng, _, err := loadEngine(deps, c.SnapshotID)
	if err != nil {
		return err
	}

	entries := eng.NeedsAttention()
	if len(entries) == 0 {
		fmt.Fprintln(deps.Stdout, "No entries need attention.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s  %s\n", e.ID, e.Name, e.State, e.Category, e.PrimaryURL)
	}
	return nil
}

// Run executes the alternatives command.
func (c *AlternativesCmd) Run(deps *Dependencies) error {
	eng, _, err := loadEngine(deps, c.SnapshotID)
	if err != nil {
		return err
	}

	alts, err := eng.AlternativesFor(c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pkgcat.ErrorMessage(err))
		return err
	}
	if len(alts) == 0 {
		fmt.Fprintf(deps.Stdout, "No alternatives for %s.\n", c.ID)
		return nil
	}
	for _, a := range alts {
		fmt.Fprintf(deps.Stdout, "%-9s  %s  %s  %s\n", a.Kind, a.Entry.ID, a.Entry.Name, a.Entry.PrimaryURL)
	}
	return nil
}

// Run executes the tagged command.
func (c *TaggedCmd) Run(deps *Dependencies) error {
	eng, _, err := loadEngine(deps, c.SnapshotID)
	if err != nil {
		return err
	}

	entries := eng.ListTag(c.Tag)
	if len(entries) == 0 {
		fmt.Fprintf(deps.Stdout, "No entries tagged %s.\n", c.Tag)
		return nil
	}
	printEntries(deps, entries)
	return nil
}

// Run executes the categories command.
func (c *CategoriesCmd) Run(deps *Dependencies) error {
	eng, _, err := loadEngine(deps, c.SnapshotID)
	if err != nil {
		return err
	}

	for _, cat := range eng.Categories() {
		fmt.Fprintf(deps.Stdout, "%-24s %4d  %s\n", cat.Key, cat.EntryCount, cat.DisplayName)
	}
	return nil
}
