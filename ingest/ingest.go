// Package ingest runs the full catalog pipeline: parse, normalize, resolve
// and validate in parallel, then build the index.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/pkgcat"
	"github.com/fwojciec/pkgcat/index"
	"github.com/fwojciec/pkgcat/normalize"
	"github.com/fwojciec/pkgcat/parse"
	"github.com/fwojciec/pkgcat/resolve"
	"github.com/fwojciec/pkgcat/validate"
	"golang.org/x/sync/errgroup"
)

// Ingester runs one ingestion.
type Ingester struct {
	Config pkgcat.Config
	Prober pkgcat.Prober

	// Gate overrides the per-host gate built from Config.HostRPS.
	Gate pkgcat.HostGate

	Resolver     resolve.Resolver
	IndexOptions index.Options

	// Logf receives retry notices from the validator.
	Logf validate.LogFunc
}

// Stats summarizes a run.
type Stats struct {
	Records  int
	Entries  int
	Rejected int
	States   map[pkgcat.ValidationState]int
	Defects  map[pkgcat.DefectKind]int
	Elapsed  time.Duration
}

// Result is the output of a run.
type Result struct {
	Entries []*pkgcat.Entry
	Index   *index.Index
	Defects []pkgcat.Defect
	Stats   Stats
}

// Run ingests sections. The configuration is validated before any work
// starts; an invalid configuration returns EINVALID without probing.
//
// Data defects never fail the run. Errors are returned for invalid
// configuration, invariant violations (EINTERNAL), and cancellation of ctx.
func (i *Ingester) Run(ctx context.Context, sections []pkgcat.RawSection) (*Result, error) {
	begin := time.Now()

	if err := i.Config.Validate(); err != nil {
		return nil, err
	}
	if i.Prober == nil {
		return nil, pkgcat.Errorf(pkgcat.EINVALID, "prober required")
	}

	report := &pkgcat.DefectReport{}

	entries, defects := parse.Sections(sections)
	report.Add(defects...)
	rejected := len(defects)

	norm, defects, err := normalize.Normalize(entries, i.Config.Taxonomy)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	report.Add(defects...)
	entries = norm.Entries

	validator := validate.NewValidator(i.Prober, i.Config)
	if i.Gate != nil {
		validator.Gate = i.Gate
	}
	validator.Logf = i.Logf

	// Resolution and validation touch disjoint entry fields; validation
	// results are applied only after both have finished.
	var resolveDefects []pkgcat.Defect
	var outcomes []validate.Outcome
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resolveDefects, err = i.Resolver.Resolve(entries, norm.Candidates)
		if err != nil {
			return fmt.Errorf("resolve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		outcomes, err = validator.Validate(gctx, entries)
		if err != nil {
			return fmt.Errorf("validate: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	report.Add(resolveDefects...)

	defects, err = validate.Apply(entries, outcomes)
	if err != nil {
		return nil, err
	}
	report.Add(defects...)

	all := report.Drain()
	idx, err := index.Build(entries, i.Config.Taxonomy, all, i.IndexOptions)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}

	stats := Stats{
		Records:  countRecords(sections),
		Entries:  len(idx.Entries),
		Rejected: rejected,
		States:   make(map[pkgcat.ValidationState]int),
		Defects:  pkgcat.CountDefects(all),
		Elapsed:  time.Since(begin),
	}
	for _, e := range idx.Entries {
		stats.States[e.State]++
	}

	return &Result{
		Entries: idx.Entries,
		Index:   idx,
		Defects: all,
		Stats:   stats,
	}, nil
}

// Snapshot converts the result into a snapshot for persistence.
func (r *Result) Snapshot(source string) *pkgcat.Snapshot {
	return &pkgcat.Snapshot{
		Source:     source,
		Categories: r.Index.Categories,
		Entries:    r.Index.Entries,
		Defects:    r.Defects,
	}
}

// Rebuild reconstructs the index of a stored snapshot.
func Rebuild(snap *pkgcat.Snapshot, opts index.Options) (*index.Index, error) {
	return index.Build(snap.Entries, snap.Taxonomy(), snap.Defects, opts)
}

func countRecords(sections []pkgcat.RawSection) int {
	n := 0
	for _, s := range sections {
		n += len(s.Records)
	}
	return n
}
