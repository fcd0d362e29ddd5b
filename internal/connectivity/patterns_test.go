package connectivity

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"plexus/internal/model"
	"plexus/internal/substrate"
)

func TestConnectWithPattern(t *testing.T) {
	sub := substrate.New()
	ids := buildRegions(t, sub, map[string]int{"a": 20, "b": 20})
	m := NewManager(sub, 42)

	count, err := m.ConnectWithPattern(ids["a"], ids["b"], "limbic_mesh")
	if err != nil {
		t.Fatalf("connect with pattern: %v", err)
	}
	if count == 0 {
		t.Fatal("expected synapses from limbic_mesh preset")
	}

	conns := m.Connections()
	if conns[0].Topology != model.TopologyReciprocal {
		t.Fatalf("expected reciprocal topology, got %s", conns[0].Topology)
	}
}

func TestConnectWithUnknownPattern(t *testing.T) {
	sub := substrate.New()
	ids := buildRegions(t, sub, map[string]int{"a": 5, "b": 5})
	m := NewManager(sub, 1)

	count, err := m.ConnectWithPattern(ids["a"], ids["b"], "nonexistent")
	if count != 0 || !errors.Is(err, ErrPatternNotFound) {
		t.Fatalf("expected ErrPatternNotFound, got count=%d err=%v", count, err)
	}
}

func TestRegisterPatternValidates(t *testing.T) {
	m := NewManager(substrate.New(), 1)

	bad := DefaultParams()
	bad.Probability = 2.0
	if err := m.RegisterPattern("bad", bad); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
	if err := m.RegisterPattern("", DefaultParams()); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestLoadPatternsFromYAML(t *testing.T) {
	m := NewManager(substrate.New(), 1)

	doc := []byte(`
visual_stream:
  topology: feedforward
  connection_probability: 0.7
  weight_mean: 0.6
  weight_std: 0.05
  plasticity_rate: 0.02
  plasticity_rule: stdp
`)
	if err := m.LoadPatterns(doc); err != nil {
		t.Fatalf("load patterns: %v", err)
	}

	params, ok := m.Pattern("visual_stream")
	if !ok {
		t.Fatal("pattern not registered")
	}
	if params.Topology != model.TopologyFeedforward {
		t.Fatalf("unexpected topology %s", params.Topology)
	}
	if params.Probability != 0.7 {
		t.Fatalf("unexpected probability %f", params.Probability)
	}
	if params.PlasticityRule != model.PlasticitySTDP {
		t.Fatalf("unexpected rule %s", params.PlasticityRule)
	}
}

func TestLoadPatternsFileRejectsInvalid(t *testing.T) {
	m := NewManager(substrate.New(), 1)

	path := filepath.Join(t.TempDir(), "patterns.yaml")
	doc := []byte("broken:\n  connection_probability: 3.0\n")
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := m.LoadPatternsFile(path); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
}

func TestEstablishCorticalHierarchy(t *testing.T) {
	sub := substrate.New()
	ids := buildRegions(t, sub, map[string]int{"v1": 40, "v2": 40, "v4": 40})
	m := NewManager(sub, 42)

	params := DefaultParams()
	params.Probability = 1.0
	params.WeightMean = 0.6

	count, err := m.EstablishCorticalHierarchy([]int64{ids["v1"], ids["v2"], ids["v4"]}, params)
	if err != nil {
		t.Fatalf("hierarchy: %v", err)
	}
	if count == 0 {
		t.Fatal("expected synapses")
	}

	conns := m.Connections()
	// Two hops, each with a feedforward and a feedback summary.
	if len(conns) != 4 {
		t.Fatalf("expected 4 summaries, got %d", len(conns))
	}
	if conns[0].Topology != model.TopologyFeedforward || conns[1].Topology != model.TopologyFeedback {
		t.Fatal("expected feedforward then feedback per hop")
	}
	// Feedforward at p=1.0 creates the full 150 for 40-neuron regions.
	if conns[0].SynapseCount != 150 {
		t.Fatalf("expected 150 feedforward synapses, got %d", conns[0].SynapseCount)
	}
	if conns[1].SynapseCount >= conns[0].SynapseCount {
		t.Fatal("feedback should be weaker than feedforward")
	}
}

func TestEstablishCorticalHierarchyValidatesChain(t *testing.T) {
	sub := substrate.New()
	ids := buildRegions(t, sub, map[string]int{"v1": 10})
	empty, _ := sub.CreateRegion("empty", model.RegionCortical, "")
	m := NewManager(sub, 1)

	if _, err := m.EstablishCorticalHierarchy([]int64{ids["v1"], empty.ID}, DefaultParams()); !errors.Is(err, ErrEmptyRegion) {
		t.Fatalf("expected ErrEmptyRegion, got %v", err)
	}
	if m.TotalSynapses() != 0 {
		t.Fatal("validation failure must not create synapses")
	}
	if _, err := m.EstablishCorticalHierarchy([]int64{ids["v1"]}, DefaultParams()); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for short chain, got %v", err)
	}
}

func TestEstablishThalamoCorticalConnections(t *testing.T) {
	sub := substrate.New()
	ids := buildRegions(t, sub, map[string]int{"thalamus": 20, "v1": 20, "a1": 20})
	m := NewManager(sub, 42)

	params := DefaultParams()
	params.Probability = 0.5

	if _, err := m.EstablishThalamoCorticalConnections(ids["thalamus"], []int64{ids["v1"], ids["a1"]}, params); err != nil {
		t.Fatalf("thalamocortical: %v", err)
	}

	// Each cortical target gets a relay summary and a return summary.
	if conns := m.Connections(); len(conns) != 4 {
		t.Fatalf("expected 4 summaries, got %d", len(conns))
	}
}

func TestEstablishLimbicConnections(t *testing.T) {
	sub := substrate.New()
	ids := buildRegions(t, sub, map[string]int{"amygdala": 10, "hippocampus": 10, "cingulate": 10})
	m := NewManager(sub, 42)

	params := DefaultParams()
	params.Probability = 1.0

	count, err := m.EstablishLimbicConnections([]int64{ids["amygdala"], ids["hippocampus"], ids["cingulate"]}, params)
	if err != nil {
		t.Fatalf("limbic: %v", err)
	}
	// 3 unordered pairs, 10 aligned reciprocal pairs each, 2 edges per pair.
	if count != 60 {
		t.Fatalf("expected 60 synapses, got %d", count)
	}
	for _, c := range m.Connections() {
		if c.Topology != model.TopologyReciprocal {
			t.Fatalf("expected reciprocal mesh, got %s", c.Topology)
		}
	}
}
