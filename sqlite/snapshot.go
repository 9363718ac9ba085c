package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/pkgcat"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ pkgcat.SnapshotService = (*SnapshotService)(nil)

// SnapshotService implements pkgcat.SnapshotService using SQLite.
type SnapshotService struct {
	db *DB
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(db *DB) *SnapshotService {
	return &SnapshotService{db: db}
}

// SaveSnapshot stores a snapshot with all its entries, relations, and
// defects in one transaction.
func (s *SnapshotService) SaveSnapshot(ctx context.Context, snap *pkgcat.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	categories, err := json.Marshal(snap.Categories)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.New().String()
	createdAt := time.Now().UTC().Truncate(time.Second)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, source, categories, created_at)
		VALUES (?, ?, ?, ?)
	`, id, snap.Source, string(categories), createdAt.Format(time.RFC3339)); err != nil {
		return err
	}

	for _, e := range snap.Entries {
		if err := insertEntry(ctx, tx, id, e); err != nil {
			return fmt.Errorf("entry %s: %w", e.ID, err)
		}
	}

	for i, d := range snap.Defects {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO defects (snapshot_id, seq, stage, ref, kind, detail)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, i, d.Stage, d.Ref, d.Kind, d.Detail); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	snap.ID = id
	snap.CreatedAt = createdAt
	return nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, snapshotID string, e *pkgcat.Entry) error {
	secondary, err := marshalList(e.SecondaryURLs)
	if err != nil {
		return err
	}
	authors, err := marshalList(e.Authors)
	if err != nil {
		return err
	}
	tags, err := marshalList(e.Tags)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO entries (snapshot_id, id, position, name, primary_url, secondary_urls, description,
			authors, category, source_category, tags, state, redirect_url, key, ref)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, snapshotID, e.ID, e.Position, e.Name, e.PrimaryURL, secondary, e.Description,
		authors, e.Category, e.SourceCategory, tags, e.State, e.RedirectURL, e.Key, e.Ref); err != nil {
		return err
	}

	for i, r := range e.Related {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO relations (snapshot_id, entry_id, seq, related_id, kind)
			VALUES (?, ?, ?, ?, ?)
		`, snapshotID, e.ID, i, r.ID, r.Kind); err != nil {
			return err
		}
	}
	return nil
}

// FindSnapshotByID retrieves a snapshot with entries and defects.
func (s *SnapshotService) FindSnapshotByID(ctx context.Context, id string) (*pkgcat.Snapshot, error) {
	snap, err := s.findHeader(ctx, "WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if err := s.loadEntries(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadDefects(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// FindLatestSnapshot retrieves the most recently saved snapshot.
func (s *SnapshotService) FindLatestSnapshot(ctx context.Context) (*pkgcat.Snapshot, error) {
	header, err := s.findHeader(ctx, "ORDER BY created_at DESC, rowid DESC LIMIT 1")
	if err != nil {
		return nil, err
	}
	return s.FindSnapshotByID(ctx, header.ID)
}

func (s *SnapshotService) findHeader(ctx context.Context, clause string, args ...any) (*pkgcat.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, source, categories, created_at FROM snapshots "+clause, args...)
	snap, err := scanHeader(row)
	if err == sql.ErrNoRows {
		return nil, pkgcat.Errorf(pkgcat.ENOTFOUND, "snapshot not found")
	}
	return snap, err
}

// FindSnapshots lists snapshot headers, newest first.
func (s *SnapshotService) FindSnapshots(ctx context.Context, filter pkgcat.SnapshotFilter) ([]*pkgcat.Snapshot, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, source, categories, created_at FROM snapshots WHERE 1=1")

	if filter.Source != nil {
		query.WriteString(" AND source = ?")
		args = append(args, *filter.Source)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*pkgcat.Snapshot
	for rows.Next() {
		snap, err := scanHeader(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// DeleteSnapshot permanently removes a snapshot and its rows.
func (s *SnapshotService) DeleteSnapshot(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return pkgcat.Errorf(pkgcat.ENOTFOUND, "snapshot not found")
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHeader(row scanner) (*pkgcat.Snapshot, error) {
	var snap pkgcat.Snapshot
	var categories, createdAt string
	if err := row.Scan(&snap.ID, &snap.Source, &categories, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(categories), &snap.Categories); err != nil {
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}
	var err error
	snap.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *SnapshotService) loadEntries(ctx context.Context, snap *pkgcat.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, position, name, primary_url, secondary_urls, description, authors,
			category, source_category, tags, state, redirect_url, key, ref
		FROM entries
		WHERE snapshot_id = ?
		ORDER BY position, id
	`, snap.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	byID := make(map[string]*pkgcat.Entry)
	for rows.Next() {
		var e pkgcat.Entry
		var secondary, authors, tags string
		if err := rows.Scan(&e.ID, &e.Position, &e.Name, &e.PrimaryURL, &secondary, &e.Description, &authors,
			&e.Category, &e.SourceCategory, &tags, &e.State, &e.RedirectURL, &e.Key, &e.Ref); err != nil {
			return err
		}
		if e.SecondaryURLs, err = unmarshalList(secondary, "secondary_urls"); err != nil {
			return err
		}
		if e.Authors, err = unmarshalList(authors, "authors"); err != nil {
			return err
		}
		if e.Tags, err = unmarshalList(tags, "tags"); err != nil {
			return err
		}
		snap.Entries = append(snap.Entries, &e)
		byID[e.ID] = &e
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rel, err := s.db.QueryContext(ctx, `
		SELECT entry_id, related_id, kind
		FROM relations
		WHERE snapshot_id = ?
		ORDER BY entry_id, seq
	`, snap.ID)
	if err != nil {
		return err
	}
	defer rel.Close()

	for rel.Next() {
		var entryID string
		var r pkgcat.Relation
		if err := rel.Scan(&entryID, &r.ID, &r.Kind); err != nil {
			return err
		}
		if e, ok := byID[entryID]; ok {
			e.Related = append(e.Related, r)
		}
	}
	return rel.Err()
}

func (s *SnapshotService) loadDefects(ctx context.Context, snap *pkgcat.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stage, ref, kind, detail
		FROM defects
		WHERE snapshot_id = ?
		ORDER BY seq
	`, snap.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d pkgcat.Defect
		if err := rows.Scan(&d.Stage, &d.Ref, &d.Kind, &d.Detail); err != nil {
			return err
		}
		snap.Defects = append(snap.Defects, d)
	}
	return rows.Err()
}
