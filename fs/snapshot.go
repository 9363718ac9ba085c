// Package fs provides file-based storage for catalog snapshots.
package fs

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/pkgcat"
)

// SnapshotStore writes a snapshot file with atomic update semantics.
// The snapshot is saved to a temporary file, then renamed on Commit.
type SnapshotStore struct {
	dir  string
	name string
}

// NewSnapshotStore creates a new SnapshotStore.
// Files are saved to dir/name.tmp and moved to dir/name on Commit.
func NewSnapshotStore(dir, name string) *SnapshotStore {
	return &SnapshotStore{dir: dir, name: name}
}

func (s *SnapshotStore) tempPath() string {
	return filepath.Join(s.dir, s.name+".tmp")
}

// Path returns the final file path.
func (s *SnapshotStore) Path() string {
	return filepath.Join(s.dir, s.name)
}

// Save encodes snap into the temporary file.
func (s *SnapshotStore) Save(snap *pkgcat.Snapshot) error {
	data, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(s.tempPath(), data, 0644)
}

// Commit replaces the final file with the saved one.
func (s *SnapshotStore) Commit() error {
	return os.Rename(s.tempPath(), s.Path())
}

// Abort removes the temporary file.
func (s *SnapshotStore) Abort() error {
	if err := os.Remove(s.tempPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// WriteSnapshot atomically writes snap to path.
func WriteSnapshot(path string, snap *pkgcat.Snapshot) error {
	store := NewSnapshotStore(filepath.Dir(path), filepath.Base(path))
	if err := store.Save(snap); err != nil {
		_ = store.Abort()
		return err
	}
	return store.Commit()
}

// EncodeSnapshot returns the indented JSON form of snap. The store-assigned
// ID and timestamp are left out, so unchanged input encodes identically.
func EncodeSnapshot(snap *pkgcat.Snapshot) ([]byte, error) {
	c := *snap
	c.ID = ""
	c.CreatedAt = time.Time{}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadSnapshot reads a snapshot file written by WriteSnapshot.
func ReadSnapshot(path string) (*pkgcat.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, pkgcat.Errorf(pkgcat.ENOTFOUND, "snapshot file %s not found", path)
		}
		return nil, err
	}

	var snap pkgcat.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, pkgcat.Errorf(pkgcat.EINVALID, "decoding snapshot %s: %v", path, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}
