package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/fwojciec/pkgcat"
	"github.com/fwojciec/pkgcat/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func newSnapshot(source string) *pkgcat.Snapshot {
	return &pkgcat.Snapshot{
		Source: source,
		Categories: []pkgcat.Category{
			{Key: "tooling", DisplayName: "Tooling", EntryCount: 2},
			{Key: pkgcat.UnclassifiedKey, DisplayName: "Unclassified", EntryCount: 0},
		},
		Entries: []*pkgcat.Entry{
			{
				ID: "a", Position: 0, Name: "fpm", PrimaryURL: "https://github.com/fortran-lang/fpm",
				SecondaryURLs: []string{"https://fpm.fortran-lang.org"}, Description: "Package manager",
				Authors: []string{"Fortran-lang"}, Category: "tooling", SourceCategory: "Tooling",
				Tags: []string{"fpm", "host:github.com"}, State: pkgcat.StateReachable,
				Related: []pkgcat.Relation{{ID: "b", Kind: pkgcat.RelationDuplicate}},
				Key: "github.com/fortran-lang/fpm", Ref: "README.md:5",
			},
			{
				ID: "b", Position: 2, Name: "fpm mirror", PrimaryURL: "https://github.com/fortran-lang/fpm/",
				Category: "tooling", SourceCategory: "Tooling", State: pkgcat.StateRedirected,
				RedirectURL: "https://github.com/fortran-lang/fpm",
				Related:     []pkgcat.Relation{{ID: "a", Kind: pkgcat.RelationDuplicate}},
				Key:         "github.com/fortran-lang/fpm", Ref: "README.md:7",
			},
		},
		Defects: []pkgcat.Defect{
			{Stage: pkgcat.StageParse, Ref: "README.md:6", Kind: pkgcat.DefectMissingLink, Detail: "no link"},
			{Stage: pkgcat.StageNormalize, Ref: "b", Kind: pkgcat.DefectDuplicateEntry, Detail: "same URL as a (README.md:5)"},
		},
	}
}

func TestSnapshotService_SaveSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("assigns ID and timestamp", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewSnapshotService(setupTestDB(t))
		snap := newSnapshot("README.md")

		require.NoError(t, svc.SaveSnapshot(context.Background(), snap))
		assert.NotEmpty(t, snap.ID)
		assert.False(t, snap.CreatedAt.IsZero())
	})

	t.Run("returns error for invalid snapshot", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewSnapshotService(setupTestDB(t))
		err := svc.SaveSnapshot(context.Background(), &pkgcat.Snapshot{})
		require.Error(t, err)
		assert.Equal(t, pkgcat.EINVALID, pkgcat.ErrorCode(err))
	})
}

func TestSnapshotService_FindSnapshotByID(t *testing.T) {
	t.Parallel()

	t.Run("round trips entries, relations, and defects", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewSnapshotService(setupTestDB(t))
		ctx := context.Background()

		snap := newSnapshot("README.md")
		require.NoError(t, svc.SaveSnapshot(ctx, snap))

		got, err := svc.FindSnapshotByID(ctx, snap.ID)
		require.NoError(t, err)

		want := newSnapshot("README.md")
		want.ID = snap.ID
		want.CreatedAt = snap.CreatedAt
		assert.Equal(t, want, got)
	})

	t.Run("returns ENOTFOUND for missing snapshot", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewSnapshotService(setupTestDB(t))
		_, err := svc.FindSnapshotByID(context.Background(), "missing")
		assert.Equal(t, pkgcat.ENOTFOUND, pkgcat.ErrorCode(err))
	})
}

func TestSnapshotService_FindLatestSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("returns the most recently saved snapshot", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewSnapshotService(setupTestDB(t))
		ctx := context.Background()

		first := newSnapshot("first.md")
		require.NoError(t, svc.SaveSnapshot(ctx, first))
		second := newSnapshot("second.md")
		require.NoError(t, svc.SaveSnapshot(ctx, second))

		got, err := svc.FindLatestSnapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
		assert.Len(t, got.Entries, 2)
	})

	t.Run("returns ENOTFOUND when empty", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewSnapshotService(setupTestDB(t))
		_, err := svc.FindLatestSnapshot(context.Background())
		assert.Equal(t, pkgcat.ENOTFOUND, pkgcat.ErrorCode(err))
	})
}

func TestSnapshotService_FindSnapshots(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewSnapshotService(setupTestDB(t))
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		snap := newSnapshot(fmt.Sprintf("doc%d.md", i%2))
		require.NoError(t, svc.SaveSnapshot(ctx, snap))
		ids = append(ids, snap.ID)
	}

	t.Run("lists headers newest first", func(t *testing.T) {
		t.Parallel()

		got, err := svc.FindSnapshots(ctx, pkgcat.SnapshotFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, ids[2], got[0].ID)
		assert.Equal(t, ids[0], got[2].ID)
		assert.Nil(t, got[0].Entries)
		assert.Len(t, got[0].Categories, 2)
	})

	t.Run("filters by source", func(t *testing.T) {
		t.Parallel()

		source := "doc0.md"
		got, err := svc.FindSnapshots(ctx, pkgcat.SnapshotFilter{Source: &source})
		require.NoError(t, err)
		require.Len(t, got, 2)
		for _, s := range got {
			assert.Equal(t, source, s.Source)
		}
	})

	t.Run("paginates", func(t *testing.T) {
		t.Parallel()

		got, err := svc.FindSnapshots(ctx, pkgcat.SnapshotFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ids[1], got[0].ID)

		got, err = svc.FindSnapshots(ctx, pkgcat.SnapshotFilter{Offset: 2})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ids[0], got[0].ID)
	})
}

func TestSnapshotService_DeleteSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("removes snapshot and its rows", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewSnapshotService(db)
		ctx := context.Background()

		snap := newSnapshot("README.md")
		require.NoError(t, svc.SaveSnapshot(ctx, snap))
		require.NoError(t, svc.DeleteSnapshot(ctx, snap.ID))

		_, err := svc.FindSnapshotByID(ctx, snap.ID)
		assert.Equal(t, pkgcat.ENOTFOUND, pkgcat.ErrorCode(err))

		for _, table := range []string{"entries", "relations", "defects"} {
			var count int
			require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count))
			assert.Zero(t, count, table)
		}
	})

	t.Run("returns ENOTFOUND for missing snapshot", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewSnapshotService(setupTestDB(t))
		err := svc.DeleteSnapshot(context.Background(), "missing")
		assert.Equal(t, pkgcat.ENOTFOUND, pkgcat.ErrorCode(err))
	})
}
