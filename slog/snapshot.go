package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pkgcat"
)

// Ensure LoggingSnapshotService implements pkgcat.SnapshotService.
var _ pkgcat.SnapshotService = (*LoggingSnapshotService)(nil)

// LoggingSnapshotService wraps a SnapshotService with logging.
type LoggingSnapshotService struct {
	next   pkgcat.SnapshotService
	logger *slog.Logger
}

// NewLoggingSnapshotService creates a new LoggingSnapshotService.
func NewLoggingSnapshotService(next pkgcat.SnapshotService, logger *slog.Logger) *LoggingSnapshotService {
	return &LoggingSnapshotService{next: next, logger: logger}
}

func (s *LoggingSnapshotService) SaveSnapshot(ctx context.Context, snap *pkgcat.Snapshot) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("save snapshot",
			"id", snap.ID,
			"source", snap.Source,
			"entries", len(snap.Entries),
			"defects", len(snap.Defects),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveSnapshot(ctx, snap)
}

func (s *LoggingSnapshotService) FindSnapshotByID(ctx context.Context, id string) (snap *pkgcat.Snapshot, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find snapshot",
			"id", id,
			"entries", entryCount(snap),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindSnapshotByID(ctx, id)
}

func (s *LoggingSnapshotService) FindLatestSnapshot(ctx context.Context) (snap *pkgcat.Snapshot, err error) {
	defer func(begin time.Time) {
		var id string
		if snap != nil {
			id = snap.ID
		}
		s.logger.Debug("find latest snapshot",
			"id", id,
			"entries", entryCount(snap),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindLatestSnapshot(ctx)
}

func (s *LoggingSnapshotService) FindSnapshots(ctx context.Context, filter pkgcat.SnapshotFilter) (snaps []*pkgcat.Snapshot, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find snapshots",
			"count", len(snaps),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindSnapshots(ctx, filter)
}

func (s *LoggingSnapshotService) DeleteSnapshot(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete snapshot",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteSnapshot(ctx, id)
}

func entryCount(snap *pkgcat.Snapshot) int {
	if snap == nil {
		return 0
	}
	return len(snap.Entries)
}
