package connectivity

import (
	"math"
	"testing"

	"plexus/internal/substrate"
)

func TestConnectivityMatrix(t *testing.T) {
	sub := substrate.New()
	ids := buildRegions(t, sub, map[string]int{"a": 5, "b": 5, "c": 5})
	m := NewManager(sub, 1)

	params := DefaultParams()
	params.Probability = 1.0
	if _, err := m.Connect(ids["a"], ids["b"], params); err != nil {
		t.Fatalf("connect: %v", err)
	}

	matrix := m.ConnectivityMatrix()
	if len(matrix) != 3 {
		t.Fatalf("expected 3x3 matrix, got %d rows", len(matrix))
	}
	// Regions were created in arbitrary map order, so locate by id.
	order := sub.RegionOrder()
	index := map[int64]int{}
	for i, id := range order {
		index[id] = i
	}
	if got := matrix[index[ids["a"]]][index[ids["b"]]]; got != 1.0 {
		t.Fatalf("expected strength 1.0 at a->b, got %f", got)
	}
	if got := matrix[index[ids["b"]]][index[ids["a"]]]; got != 0 {
		t.Fatalf("expected 0 at b->a, got %f", got)
	}
}

func TestAnalyzeNetworkProperties(t *testing.T) {
	sub := substrate.New()
	ids := buildRegions(t, sub, map[string]int{"a": 5, "b": 5})
	m := NewManager(sub, 1)

	params := DefaultParams()
	params.Probability = 1.0
	params.WeightMean = 0.5
	params.WeightStd = 0
	if _, err := m.Connect(ids["a"], ids["b"], params); err != nil {
		t.Fatalf("connect: %v", err)
	}

	props := m.AnalyzeNetworkProperties()
	if props.RegionCount != 2 {
		t.Fatalf("expected 2 regions, got %d", props.RegionCount)
	}
	if props.ConnectionCount != 1 {
		t.Fatalf("expected 1 connection, got %d", props.ConnectionCount)
	}
	if props.TotalSynapses != 25 {
		t.Fatalf("expected 25 synapses, got %d", props.TotalSynapses)
	}
	if props.AverageStrength != 1.0 {
		t.Fatalf("expected average strength 1.0, got %f", props.AverageStrength)
	}
	// Zero std, so every weight is exactly the mean.
	if math.Abs(props.AverageWeight-0.5) > 1e-12 {
		t.Fatalf("expected average weight 0.5, got %f", props.AverageWeight)
	}
	if props.WeightStdDev != 0 {
		t.Fatalf("expected zero weight std, got %f", props.WeightStdDev)
	}
}

func TestDisconnectedSummariesLeaveMatrix(t *testing.T) {
	sub := substrate.New()
	ids := buildRegions(t, sub, map[string]int{"a": 5, "b": 5})
	m := NewManager(sub, 1)

	params := DefaultParams()
	params.Probability = 1.0
	if _, err := m.Connect(ids["a"], ids["b"], params); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := m.Disconnect(ids["a"], ids["b"]); err != nil {
		t.Fatalf("disconnect: %v", err)
	}

	matrix := m.ConnectivityMatrix()
	for i := range matrix {
		for j := range matrix[i] {
			if matrix[i][j] != 0 {
				t.Fatalf("expected empty matrix after disconnect, got %f at %d,%d", matrix[i][j], i, j)
			}
		}
	}
	if props := m.AnalyzeNetworkProperties(); props.ConnectionCount != 0 {
		t.Fatalf("expected 0 active connections, got %d", props.ConnectionCount)
	}
}
