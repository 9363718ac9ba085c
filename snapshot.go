package pkgcat

import (
	"context"
	"time"
)

// Snapshot is the serialized result of one ingestion run.
type Snapshot struct {
	ID         string     `json:"id,omitempty"`
	Source     string     `json:"source"`
	CreatedAt  time.Time  `json:"createdAt,omitzero"`
	Categories []Category `json:"categories"`
	Entries    []*Entry   `json:"entries"`
	Defects    []Defect   `json:"defects"`
}

// Validate returns an error if the snapshot contains invalid fields.
func (s *Snapshot) Validate() error {
	if s.Source == "" {
		return Errorf(EINVALID, "snapshot source required")
	}
	seen := make(map[string]bool, len(s.Entries))
	for _, e := range s.Entries {
		if seen[e.ID] {
			return Errorf(EINVALID, "snapshot has duplicate entry id %s", e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}

// Taxonomy returns the snapshot categories without the reserved category.
func (s *Snapshot) Taxonomy() Taxonomy {
	tax := make(Taxonomy, 0, len(s.Categories))
	for _, c := range s.Categories {
		if c.Key == UnclassifiedKey {
			continue
		}
		c.EntryCount = 0
		tax = append(tax, c)
	}
	return tax
}

// SnapshotService represents a service for persisting ingestion snapshots.
type SnapshotService interface {
	// SaveSnapshot stores a snapshot and assigns its ID and CreatedAt.
	SaveSnapshot(ctx context.Context, snap *Snapshot) error

	// FindSnapshotByID retrieves a snapshot with entries and defects.
	// Returns ENOTFOUND if the snapshot does not exist.
	FindSnapshotByID(ctx context.Context, id string) (*Snapshot, error)

	// FindLatestSnapshot retrieves the most recently saved snapshot.
	// Returns ENOTFOUND if no snapshot exists.
	FindLatestSnapshot(ctx context.Context) (*Snapshot, error)

	// FindSnapshots lists snapshot headers (without entries and defects).
	FindSnapshots(ctx context.Context, filter SnapshotFilter) ([]*Snapshot, error)

	// DeleteSnapshot permanently removes a snapshot and its rows.
	// Returns ENOTFOUND if the snapshot does not exist.
	DeleteSnapshot(ctx context.Context, id string) error
}

// SnapshotFilter represents a filter for FindSnapshots.
type SnapshotFilter struct {
	Source *string `json:"source"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
