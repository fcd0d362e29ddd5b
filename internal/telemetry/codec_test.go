package telemetry

import (
	"errors"
	"testing"

	"plexus/internal/model"
)

func TestSnapshotCodecRoundTrip(t *testing.T) {
	input := snapshotFixture("run-1", 3)
	input.Stats.CumulativeReward = 1.5

	payload, err := EncodeSnapshot(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	output, err := DecodeSnapshot(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if output.RunID != input.RunID || output.Step != input.Step {
		t.Fatalf("unexpected snapshot: %+v", output)
	}
	if output.Stats.CumulativeReward != 1.5 {
		t.Fatalf("stats not preserved: %+v", output.Stats)
	}
}

func TestDecodeSnapshotRejectsVersionMismatch(t *testing.T) {
	input := snapshotFixture("run-1", 1)
	input.SchemaVersion = CurrentSchemaVersion + 1

	payload, err := EncodeSnapshot(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeSnapshot(payload); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	if _, err := DecodeSnapshot([]byte("not json")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDecodeSnapshotRejectsZeroVersions(t *testing.T) {
	// A record written without versions must not pass the check.
	payload, err := EncodeSnapshot(model.Snapshot{RunID: "run-1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeSnapshot(payload); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}
