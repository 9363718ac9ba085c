package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/pkgcat"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Snapshots pkgcat.SnapshotService

	// Prober overrides the HTTP prober built by the ingest command.
	Prober pkgcat.Prober
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log every probe and storage call"`

	Ingest       IngestCmd       `cmd:"" help:"Parse, validate, and index a catalog document"`
	List         ListCmd         `cmd:"" help:"List the entries of a category"`
	Search       SearchCmd       `cmd:"" help:"Search entries by name, authors, and description"`
	Attention    AttentionCmd    `cmd:"" help:"List entries that need maintainer review"`
	Alternatives AlternativesCmd `cmd:"" help:"List duplicates, forks, and companions of an entry"`
	Tagged       TaggedCmd       `cmd:"" help:"List entries carrying a tag"`
	Categories   CategoriesCmd   `cmd:"" help:"List categories with entry counts"`
	Report       ReportCmd       `cmd:"" help:"Write a markdown report of the catalog"`
	Taxonomy     TaxonomyCmd     `cmd:"" help:"Derive a taxonomy file from a document's table of contents"`
	Snapshots    SnapshotsCmd    `cmd:"" help:"List stored snapshots"`
	Delete       DeleteCmd       `cmd:"" help:"Delete a stored snapshot"`
}

// IngestCmd is the "ingest" subcommand. Zero-valued flags keep the
// configuration file or default value.
type IngestCmd struct {
	File        string        `arg:"" type:"existingfile" help:"Catalog document (markdown or HTML)"`
	HTML        bool          `name:"html" help:"Read the document as rendered HTML"`
	BaseURL     string        `name:"base-url" help:"Resolve relative links in HTML against this URL"`
	Config      string        `short:"c" type:"path" help:"Configuration file"`
	Concurrency int           `help:"Maximum probes in flight"`
	RPS         float64       `name:"rps" help:"Probes per second per host"`
	Retries     int           `default:"-1" help:"Retries for transient failures (-1 keeps the configured value)"`
	Deadline    time.Duration `help:"Deadline for the validation phase"`
	Manifest    string        `help:"Manifest path probed relative to each project URL"`
	Secondary   bool          `help:"Probe secondary URLs once"`
	Snapshot    string        `short:"o" type:"path" help:"Also write the snapshot as JSON to this path"`
	MaxLines    int           `name:"max-lines" help:"Stop reading after this many lines (records for HTML)"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Category   string `arg:"" help:"Category key"`
	SnapshotID string `name:"snapshot-id" help:"Query this snapshot instead of the latest"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query      []string `arg:"" help:"Search terms"`
	Limit      int      `short:"n" default:"20" help:"Maximum number of results"`
	SnapshotID string   `name:"snapshot-id" help:"Query this snapshot instead of the latest"`
}

// AttentionCmd is the "attention" subcommand.
type AttentionCmd struct {
	SnapshotID string `name:"snapshot-id" help:"Query this snapshot instead of the latest"`
}

// AlternativesCmd is the "alternatives" subcommand.
type AlternativesCmd struct {
	ID         string `arg:"" help:"Entry ID"`
	SnapshotID string `name:"snapshot-id" help:"Query this snapshot instead of the latest"`
}

// TaggedCmd is the "tagged" subcommand.
type TaggedCmd struct {
	Tag        string `arg:"" help:"Tag, e.g. fpm or host:github.com"`
	SnapshotID string `name:"snapshot-id" help:"Query this snapshot instead of the latest"`
}

// CategoriesCmd is the "categories" subcommand.
type CategoriesCmd struct {
	SnapshotID string `name:"snapshot-id" help:"Query this snapshot instead of the latest"`
}

// ReportCmd is the "report" subcommand.
type ReportCmd struct {
	Tag        string `help:"Only list entries carrying this tag"`
	Title      string `help:"Report title"`
	SnapshotID string `name:"snapshot-id" help:"Query this snapshot instead of the latest"`
}

// TaxonomyCmd is the "taxonomy" subcommand.
type TaxonomyCmd struct {
	File   string `arg:"" type:"existingfile" help:"Catalog document"`
	Output string `short:"o" help:"Output file; the extension selects YAML or TOML (default: YAML on stdout)"`
}

// SnapshotsCmd is the "snapshots" subcommand.
type SnapshotsCmd struct {
	Source string `help:"Only list snapshots of this source"`
	Limit  int    `short:"n" help:"Maximum number of snapshots"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Snapshot ID"`
	Force bool   `help:"Confirm deletion"`
}
