package telemetry

import (
	"context"

	"plexus/internal/model"
)

// Store persists per-tick snapshots keyed by run and step.
type Store interface {
	Init(ctx context.Context) error
	SaveSnapshot(ctx context.Context, snapshot model.Snapshot) error
	GetSnapshot(ctx context.Context, runID string, step int64) (model.Snapshot, bool, error)
	ListSnapshots(ctx context.Context, runID string) ([]model.Snapshot, bool, error)
	LatestSnapshot(ctx context.Context, runID string) (model.Snapshot, bool, error)
	ListRuns(ctx context.Context) ([]string, error)
}
