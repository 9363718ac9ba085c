package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/pkgcat"
)

// Run executes the snapshots command.
func (c *SnapshotsCmd) Run(deps *Dependencies) error {
	filter := pkgcat.SnapshotFilter{Limit: c.Limit}
	if c.Source != "" {
		filter.Source = &c.Source
	}

	snaps, err := deps.Snapshots.FindSnapshots(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pkgcat.ErrorMessage(err))
		return err
	}

	if len(snaps) == 0 {
		fmt.Fprintln(deps.Stdout, "No snapshots found. Use 'pkgcat ingest' to create one.")
		return nil
	}

	for _, s := range snaps {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s\n", s.ID, s.CreatedAt.Format(time.RFC3339), s.Source)
	}
	return nil
}

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return pkgcat.Errorf(pkgcat.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Snapshots.DeleteSnapshot(deps.Ctx, c.ID); err != nil {
		if pkgcat.ErrorCode(err) == pkgcat.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: snapshot %q not found. Use 'pkgcat snapshots' to see stored snapshots.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pkgcat.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted snapshot %s\n", c.ID)
	return nil
}
