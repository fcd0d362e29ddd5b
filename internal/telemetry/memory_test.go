package telemetry

import (
	"context"
	"testing"

	"plexus/internal/model"
)

func snapshotFixture(runID string, step int64) model.Snapshot {
	return model.Snapshot{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		RunID:           runID,
		Step:            step,
		TakenAtUTC:      "2026-08-29T00:00:00Z",
		Stats:           model.LearningStats{TotalUpdates: step * 10},
		Network:         model.NetworkProperties{RegionCount: 2, TotalSynapses: 80},
	}
}

func TestMemoryStoreSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := store.SaveSnapshot(ctx, snapshotFixture("run-1", 1)); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	loaded, ok, err := store.GetSnapshot(ctx, "run-1", 1)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted snapshot")
	}
	if loaded.Stats.TotalUpdates != 10 || loaded.Network.TotalSynapses != 80 {
		t.Fatalf("unexpected snapshot: %+v", loaded)
	}
}

func TestMemoryStoreListOrdersBySteps(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, step := range []int64{3, 1, 2} {
		if err := store.SaveSnapshot(ctx, snapshotFixture("run-1", step)); err != nil {
			t.Fatalf("save snapshot %d: %v", step, err)
		}
	}

	snapshots, ok, err := store.ListSnapshots(ctx, "run-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !ok || len(snapshots) != 3 {
		t.Fatalf("expected 3 snapshots, got ok=%t n=%d", ok, len(snapshots))
	}
	for i, snapshot := range snapshots {
		if snapshot.Step != int64(i+1) {
			t.Fatalf("snapshot %d out of order: step %d", i, snapshot.Step)
		}
	}
}

func TestMemoryStoreSaveOverwritesSameStep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	first := snapshotFixture("run-1", 5)
	if err := store.SaveSnapshot(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := first
	second.Stats.TotalUpdates = 99
	if err := store.SaveSnapshot(ctx, second); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	snapshots, _, err := store.ListSnapshots(ctx, "run-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snapshots) != 1 || snapshots[0].Stats.TotalUpdates != 99 {
		t.Fatalf("expected single overwritten snapshot, got %+v", snapshots)
	}
}

func TestMemoryStoreLatestSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, ok, err := store.LatestSnapshot(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected no latest for missing run, got ok=%t err=%v", ok, err)
	}

	for _, step := range []int64{2, 7, 4} {
		if err := store.SaveSnapshot(ctx, snapshotFixture("run-1", step)); err != nil {
			t.Fatalf("save snapshot %d: %v", step, err)
		}
	}
	latest, ok, err := store.LatestSnapshot(ctx, "run-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !ok || latest.Step != 7 {
		t.Fatalf("expected step 7, got ok=%t step=%d", ok, latest.Step)
	}
}

func TestMemoryStoreListRuns(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, runID := range []string{"run-b", "run-a"} {
		if err := store.SaveSnapshot(ctx, snapshotFixture(runID, 1)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0] != "run-a" || runs[1] != "run-b" {
		t.Fatalf("unexpected runs: %v", runs)
	}
}
