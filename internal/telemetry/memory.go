package telemetry

import (
	"context"
	"sort"
	"sync"

	"plexus/internal/model"
)

type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]model.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots = make(map[string][]model.Snapshot)
	return nil
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, snapshot model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.snapshots[snapshot.RunID]
	for i, existing := range run {
		if existing.Step == snapshot.Step {
			run[i] = snapshot
			return nil
		}
	}
	s.snapshots[snapshot.RunID] = append(run, snapshot)
	return nil
}

func (s *MemoryStore) GetSnapshot(_ context.Context, runID string, step int64) (model.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, snapshot := range s.snapshots[runID] {
		if snapshot.Step == step {
			return snapshot, true, nil
		}
	}
	return model.Snapshot{}, false, nil
}

func (s *MemoryStore) ListSnapshots(_ context.Context, runID string) ([]model.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.snapshots[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.Snapshot, len(run))
	copy(copied, run)
	sort.Slice(copied, func(i, j int) bool { return copied[i].Step < copied[j].Step })
	return copied, true, nil
}

func (s *MemoryStore) LatestSnapshot(_ context.Context, runID string) (model.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.snapshots[runID]
	if !ok || len(run) == 0 {
		return model.Snapshot{}, false, nil
	}
	latest := run[0]
	for _, snapshot := range run[1:] {
		if snapshot.Step > latest.Step {
			latest = snapshot
		}
	}
	return latest, true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]string, 0, len(s.snapshots))
	for runID := range s.snapshots {
		runs = append(runs, runID)
	}
	sort.Strings(runs)
	return runs, nil
}
