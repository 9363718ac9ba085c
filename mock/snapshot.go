package mock

import (
	"context"

	"github.com/fwojciec/pkgcat"
)

var _ pkgcat.SnapshotService = (*SnapshotService)(nil)

// SnapshotService is a mock implementation of pkgcat.SnapshotService.
type SnapshotService struct {
	SaveSnapshotFn       func(ctx context.Context, snap *pkgcat.Snapshot) error
	FindSnapshotByIDFn   func(ctx context.Context, id string) (*pkgcat.Snapshot, error)
	FindLatestSnapshotFn func(ctx context.Context) (*pkgcat.Snapshot, error)
	FindSnapshotsFn      func(ctx context.Context, filter pkgcat.SnapshotFilter) ([]*pkgcat.Snapshot, error)
	DeleteSnapshotFn     func(ctx context.Context, id string) error
}

func (s *SnapshotService) SaveSnapshot(ctx context.Context, snap *pkgcat.Snapshot) error {
	return s.SaveSnapshotFn(ctx, snap)
}

func (s *SnapshotService) FindSnapshotByID(ctx context.Context, id string) (*pkgcat.Snapshot, error) {
	return s.FindSnapshotByIDFn(ctx, id)
}

func (s *SnapshotService) FindLatestSnapshot(ctx context.Context) (*pkgcat.Snapshot, error) {
	return s.FindLatestSnapshotFn(ctx)
}

func (s *SnapshotService) FindSnapshots(ctx context.Context, filter pkgcat.SnapshotFilter) ([]*pkgcat.Snapshot, error) {
	return s.FindSnapshotsFn(ctx, filter)
}

func (s *SnapshotService) DeleteSnapshot(ctx context.Context, id string) error {
	return s.DeleteSnapshotFn(ctx, id)
}
