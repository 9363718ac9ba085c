package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/pkgcat"
	"github.com/fwojciec/pkgcat/config"
	"github.com/fwojciec/pkgcat/parse"
)

// Run executes the taxonomy command.
func (c *TaxonomyCmd) Run(deps *Dependencies) error {
	f, err := os.Open(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	defer f.Close()

	doc, err := parse.ReadDocument(f, parse.ReadOptions{Source: c.File})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pkgcat.ErrorMessage(err))
		return err
	}

	tax := parse.TaxonomyFromTOC(doc.TOC)
	if len(tax) == 0 {
		fmt.Fprintf(deps.Stderr, "error: %s has no table of contents\n", c.File)
		return pkgcat.Errorf(pkgcat.EINVALID, "%s has no table of contents", c.File)
	}

	data, err := config.MarshalTaxonomy(tax, c.Output)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	if c.Output == "" {
		_, err := deps.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(c.Output, data, 0o644); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Wrote %d categories to %s\n", len(tax), c.Output)
	return nil
}
