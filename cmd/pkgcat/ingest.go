package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/fwojciec/pkgcat"
	"github.com/fwojciec/pkgcat/config"
	"github.com/fwojciec/pkgcat/fs"
	"github.com/fwojciec/pkgcat/goquery"
	"github.com/fwojciec/pkgcat/htmltomarkdown"
	pkghttp "github.com/fwojciec/pkgcat/http"
	"github.com/fwojciec/pkgcat/ingest"
	"github.com/fwojciec/pkgcat/parse"
	pkgslog "github.com/fwojciec/pkgcat/slog"
)

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	cfg, err := c.loadConfig()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pkgcat.ErrorMessage(err))
		return err
	}

	doc, err := c.readDocument()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pkgcat.ErrorMessage(err))
		return err
	}

	if len(cfg.Taxonomy) == 0 {
		cfg.Taxonomy = parse.TaxonomyFromTOC(doc.TOC)
		if len(cfg.Taxonomy) > 0 {
			fmt.Fprintf(deps.Stderr, "warning: no categories configured, using %d from the table of contents\n", len(cfg.Taxonomy))
		}
	}

	prober := deps.Prober
	if prober == nil {
		var opts []pkghttp.Option
		if cfg.ProbeTimeout > 0 {
			opts = append(opts, pkghttp.WithTimeout(cfg.ProbeTimeout))
		}
		p := pkghttp.NewProber(opts...)
		defer p.Close()
		prober = pkgslog.NewLoggingProber(p, deps.Logger)
	}

	ing := &ingest.Ingester{
		Config: cfg,
		Prober: prober,
		Logf: func(format string, args ...any) {
			fmt.Fprintf(deps.Stderr, format+"\n", args...)
		},
	}

	fmt.Fprintf(deps.Stdout, "Ingesting %s (%d sections)\n", c.File, len(doc.Sections))
	res, err := ing.Run(deps.Ctx, doc.Sections)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pkgcat.ErrorMessage(err))
		return err
	}

	snap := res.Snapshot(c.File)
	if err := deps.Snapshots.SaveSnapshot(deps.Ctx, snap); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pkgcat.ErrorMessage(err))
		return err
	}
	if c.Snapshot != "" {
		if err := fs.WriteSnapshot(c.Snapshot, snap); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pkgcat.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "  Wrote %s\n", c.Snapshot)
	}

	printStats(deps.Stdout, res.Stats)
	fmt.Fprintf(deps.Stdout, "Saved snapshot %s\n", snap.ID)
	return nil
}

// loadConfig layers defaults, the configuration file, and flags.
func (c *IngestCmd) loadConfig() (pkgcat.Config, error) {
	cfg := pkgcat.DefaultConfig()
	cfg.ManifestPath = pkgcat.DefaultManifestPath

	if path := config.FindConfigFile(c.Config); path != "" {
		f, err := config.LoadConfigFile(path)
		if err != nil {
			return cfg, err
		}
		if err := f.Apply(&cfg); err != nil {
			return cfg, err
		}
	} else if c.Config != "" {
		return cfg, pkgcat.Errorf(pkgcat.EINVALID, "config file %s not found", c.Config)
	}

	if c.Concurrency != 0 {
		cfg.Concurrency = c.Concurrency
	}
	if c.RPS != 0 {
		cfg.HostRPS = c.RPS
	}
	if c.Retries >= 0 {
		cfg.Retries = c.Retries
	}
	if c.Deadline != 0 {
		cfg.Deadline = c.Deadline
	}
	if c.Manifest != "" {
		cfg.ManifestPath = c.Manifest
	}
	if c.Secondary {
		cfg.ProbeSecondary = true
	}
	return cfg, nil
}

func (c *IngestCmd) readDocument() (*parse.Document, error) {
	f, err := os.Open(c.File)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, pkgcat.Errorf(pkgcat.ENOTFOUND, "document %s not found", c.File)
		}
		return nil, err
	}
	defer f.Close()

	if c.HTML {
		var opts []htmltomarkdown.Option
		if c.BaseURL != "" {
			opts = append(opts, htmltomarkdown.WithDomain(c.BaseURL))
		}
		r := goquery.NewReader(htmltomarkdown.NewConverter(opts...))
		r.Source = c.File
		r.MaxRecords = c.MaxLines
		return r.Read(f)
	}
	return parse.ReadDocument(f, parse.ReadOptions{Source: c.File, MaxLines: c.MaxLines})
}

func printStats(w io.Writer, s ingest.Stats) {
	fmt.Fprintf(w, "  Records: %d (%d entries, %d rejected)\n", s.Records, s.Entries, s.Rejected)
	for _, state := range []pkgcat.ValidationState{
		pkgcat.StateReachable,
		pkgcat.StateRedirected,
		pkgcat.StateUnreachable,
		pkgcat.StateAmbiguous,
		pkgcat.StateUnchecked,
	} {
		if n := s.States[state]; n > 0 {
			fmt.Fprintf(w, "  %-11s %d\n", state, n)
		}
	}

	kinds := make([]string, 0, len(s.Defects))
	for k := range s.Defects {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  defect %s: %d\n", k, s.Defects[pkgcat.DefectKind(k)])
	}
	fmt.Fprintf(w, "  Elapsed: %s\n", s.Elapsed.Round(time.Millisecond))
}
