package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"plexus/internal/learning"
)

// Scenario is the JSON document consumed by the run command. Region names are
// resolved to ids at build time, so connections reference regions by name.
type Scenario struct {
	Seed     int64            `json:"seed"`
	Learning *learning.Config `json:"learning,omitempty"`

	Regions     []ScenarioRegion     `json:"regions"`
	Connections []ScenarioConnection `json:"connections"`
	Hierarchy   []string             `json:"hierarchy,omitempty"`

	Ticks   int              `json:"ticks"`
	Hebbian []ScenarioPass   `json:"hebbian,omitempty"`
	Rewards []ScenarioReward `json:"rewards,omitempty"`
}

type ScenarioRegion struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Neurons int    `json:"neurons"`
}

type ScenarioConnection struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Pattern string `json:"pattern,omitempty"`

	Topology       string  `json:"topology,omitempty"`
	Probability    float64 `json:"connection_probability,omitempty"`
	WeightMean     float64 `json:"weight_mean,omitempty"`
	WeightStd      float64 `json:"weight_std,omitempty"`
	MaxPerNeuron   int     `json:"max_connections_per_neuron,omitempty"`
	DistanceDecay  float64 `json:"distance_decay,omitempty"`
	Distribution   string  `json:"distribution,omitempty"`
	Bidirectional  bool    `json:"bidirectional,omitempty"`
	PlasticityRate float64 `json:"plasticity_rate,omitempty"`
	PlasticityRule string  `json:"plasticity_rule,omitempty"`
}

// ScenarioPass applies one Hebbian sweep over a region every tick.
type ScenarioPass struct {
	Region string  `json:"region"`
	Rate   float64 `json:"rate"`
}

// ScenarioReward schedules an external reward before the given tick.
type ScenarioReward struct {
	Tick   int     `json:"tick"`
	Reward float64 `json:"reward"`
}

func loadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	var scenario Scenario
	if err := json.Unmarshal(data, &scenario); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := scenario.validate(); err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: %w", path, err)
	}
	return scenario, nil
}

func (s Scenario) validate() error {
	if len(s.Regions) == 0 {
		return errors.New("at least one region is required")
	}
	names := make(map[string]bool, len(s.Regions))
	for _, region := range s.Regions {
		if region.Name == "" {
			return errors.New("region name is required")
		}
		if names[region.Name] {
			return fmt.Errorf("duplicate region name %q", region.Name)
		}
		if region.Neurons <= 0 {
			return fmt.Errorf("region %q needs a positive neuron count", region.Name)
		}
		names[region.Name] = true
	}
	for _, c := range s.Connections {
		if !names[c.Source] {
			return fmt.Errorf("connection references unknown source %q", c.Source)
		}
		if !names[c.Target] {
			return fmt.Errorf("connection references unknown target %q", c.Target)
		}
	}
	for _, name := range s.Hierarchy {
		if !names[name] {
			return fmt.Errorf("hierarchy references unknown region %q", name)
		}
	}
	for _, pass := range s.Hebbian {
		if !names[pass.Region] {
			return fmt.Errorf("hebbian pass references unknown region %q", pass.Region)
		}
		if pass.Rate < 0 {
			return fmt.Errorf("hebbian rate for %q must be >= 0", pass.Region)
		}
	}
	if s.Ticks < 0 {
		return errors.New("tick count must be >= 0")
	}
	for _, reward := range s.Rewards {
		if reward.Tick < 1 || (s.Ticks > 0 && reward.Tick > s.Ticks) {
			return fmt.Errorf("reward tick %d outside run", reward.Tick)
		}
	}
	return nil
}
