package main

import (
	"fmt"

	"github.com/fwojciec/pkgcat"
	"github.com/fwojciec/pkgcat/markdown"
)

// Run executes the report command.
func (c *ReportCmd) Run(deps *Dependencies) error {
	eng, snap, err := loadEngine(deps, c.SnapshotID)
	if err != nil {
		return err
	}

	w := markdown.NewReportWriter(deps.Stdout)
	w.Tag = c.Tag
	if c.Title != "" {
		w.Title = c.Title
	}
	if err := w.Write(eng, snap.Defects); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pkgcat.ErrorMessage(err))
		return err
	}
	return nil
}
