package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `{
		"seed": 7,
		"regions": [
			{"name": "v1", "kind": "cortical", "neurons": 40},
			{"name": "v2", "kind": "cortical", "neurons": 40}
		],
		"connections": [
			{"source": "v1", "target": "v2", "topology": "feedforward", "connection_probability": 0.6}
		],
		"ticks": 5,
		"hebbian": [{"region": "v1", "rate": 0.01}],
		"rewards": [{"tick": 3, "reward": 1.0}]
	}`)

	scenario, err := loadScenario(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if scenario.Seed != 7 || len(scenario.Regions) != 2 || scenario.Ticks != 5 {
		t.Fatalf("unexpected scenario: %+v", scenario)
	}
	if scenario.Connections[0].Topology != "feedforward" {
		t.Fatalf("unexpected connection: %+v", scenario.Connections[0])
	}
}

func TestLoadScenarioRejectsUnknownRegion(t *testing.T) {
	path := writeScenario(t, `{
		"regions": [{"name": "v1", "neurons": 10}],
		"connections": [{"source": "v1", "target": "missing"}],
		"ticks": 1
	}`)

	if _, err := loadScenario(path); err == nil {
		t.Fatal("expected unknown target error")
	}
}

func TestLoadScenarioRejectsDuplicateRegions(t *testing.T) {
	path := writeScenario(t, `{
		"regions": [
			{"name": "v1", "neurons": 10},
			{"name": "v1", "neurons": 10}
		],
		"ticks": 1
	}`)

	if _, err := loadScenario(path); err == nil {
		t.Fatal("expected duplicate region error")
	}
}

func TestLoadScenarioRejectsRewardOutsideRun(t *testing.T) {
	path := writeScenario(t, `{
		"regions": [{"name": "v1", "neurons": 10}],
		"ticks": 3,
		"rewards": [{"tick": 9, "reward": 1.0}]
	}`)

	if _, err := loadScenario(path); err == nil {
		t.Fatal("expected reward tick error")
	}
}

func TestLoadScenarioRejectsGarbage(t *testing.T) {
	path := writeScenario(t, `not json`)

	if _, err := loadScenario(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadScenarioRejectsZeroNeurons(t *testing.T) {
	path := writeScenario(t, `{
		"regions": [{"name": "v1", "neurons": 0}],
		"ticks": 1
	}`)

	if _, err := loadScenario(path); err == nil {
		t.Fatal("expected neuron count error")
	}
}
