package connectivity

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"plexus/internal/model"
)

// Named presets shipped with the manager. The anatomical helpers below lean
// on these profiles.
func (m *Manager) registerDefaultPatterns() {
	m.patterns["sparse_random"] = Params{
		Topology:       model.TopologySparse,
		Probability:    0.05,
		WeightMean:     0.4,
		WeightStd:      0.15,
		Distribution:   model.DistributionUniform,
		PlasticityRate: 0.01,
		PlasticityRule: model.PlasticityHebbian,
	}
	m.patterns["dense_local"] = Params{
		Topology:       model.TopologyDense,
		Probability:    0.2,
		WeightMean:     0.5,
		WeightStd:      0.1,
		Distribution:   model.DistributionGaussian,
		DistanceDecay:  3.0,
		PlasticityRate: 0.01,
		PlasticityRule: model.PlasticityHebbian,
	}
	m.patterns["cortical_feedforward"] = Params{
		Topology:       model.TopologyFeedforward,
		Probability:    0.6,
		WeightMean:     0.6,
		WeightStd:      0.1,
		PlasticityRate: 0.02,
		PlasticityRule: model.PlasticitySTDP,
	}
	m.patterns["cortical_feedback"] = Params{
		Topology:       model.TopologyFeedback,
		Probability:    0.3,
		WeightMean:     0.4,
		WeightStd:      0.1,
		PlasticityRate: 0.01,
		PlasticityRule: model.PlasticitySTDP,
	}
	m.patterns["thalamocortical_relay"] = Params{
		Topology:       model.TopologySparse,
		Probability:    0.3,
		WeightMean:     0.7,
		WeightStd:      0.1,
		Distribution:   model.DistributionExponential,
		DistanceDecay:  5.0,
		Bidirectional:  true,
		PlasticityRate: 0.005,
		PlasticityRule: model.PlasticityHebbian,
	}
	m.patterns["limbic_mesh"] = Params{
		Topology:       model.TopologyReciprocal,
		Probability:    0.5,
		WeightMean:     0.5,
		WeightStd:      0.2,
		PlasticityRate: 0.02,
		PlasticityRule: model.PlasticityHebbian,
	}
	m.patterns["small_world"] = Params{
		Topology:       model.TopologySparse,
		Probability:    0.3,
		WeightMean:     0.5,
		WeightStd:      0.1,
		Distribution:   model.DistributionSmallWorld,
		DistanceDecay:  4.0,
		PlasticityRate: 0.01,
		PlasticityRule: model.PlasticityHebbian,
	}
	m.patterns["modular_columns"] = Params{
		Topology:       model.TopologyModular,
		Probability:    0.4,
		WeightMean:     0.5,
		WeightStd:      0.1,
		PlasticityRate: 0.01,
		PlasticityRule: model.PlasticityHebbian,
	}
}

// RegisterPattern stores a named preset after validation.
func (m *Manager) RegisterPattern(name string, params Params) error {
	if name == "" {
		return errors.New("pattern name is required")
	}
	if err := params.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns[name] = params
	return nil
}

// Pattern resolves a named preset.
func (m *Manager) Pattern(name string) (Params, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	params, ok := m.patterns[name]
	return params, ok
}

// ConnectWithPattern wires two regions using a named preset.
func (m *Manager) ConnectWithPattern(sourceID, targetID int64, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	params, ok := m.patterns[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrPatternNotFound, name)
	}
	return m.connectLocked(sourceID, targetID, params)
}

// LoadPatternsFile merges presets from a YAML file keyed by pattern name.
func (m *Manager) LoadPatternsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return m.LoadPatterns(data)
}

func (m *Manager) LoadPatterns(data []byte) error {
	var file map[string]Params
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse patterns: %w", err)
	}
	for name, params := range file {
		if err := m.RegisterPattern(name, params.normalized()); err != nil {
			return fmt.Errorf("pattern %q: %w", name, err)
		}
	}
	return nil
}

// EstablishCorticalHierarchy wires a chain of regions with strong
// feedforward and weaker feedback links between each adjacent pair. The whole
// chain is validated up front so a stale id fails before any wiring happens.
func (m *Manager) EstablishCorticalHierarchy(chain []int64, params Params) (int, error) {
	if len(chain) < 2 {
		return 0, fmt.Errorf("%w: hierarchy needs at least two regions", ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return 0, err
	}
	if err := m.validateChain(chain); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	forward := params
	forward.Topology = model.TopologyFeedforward
	forward.Bidirectional = false

	feedback := params
	feedback.Topology = model.TopologyFeedback
	feedback.Probability = params.Probability * 0.3
	feedback.WeightMean = params.WeightMean * 0.7
	feedback.Bidirectional = false

	total := 0
	for i := 0; i+1 < len(chain); i++ {
		n, err := m.connectLocked(chain[i], chain[i+1], forward)
		if err != nil {
			return total, err
		}
		total += n
		n, err = m.connectLocked(chain[i+1], chain[i], feedback)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// EstablishThalamoCorticalConnections wires a thalamic relay to each cortical
// region and back: a strong relay drive out, a weaker return projection in.
func (m *Manager) EstablishThalamoCorticalConnections(thalamusID int64, corticalIDs []int64, params Params) (int, error) {
	if len(corticalIDs) == 0 {
		return 0, fmt.Errorf("%w: no cortical regions given", ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return 0, err
	}
	if err := m.validateChain(append([]int64{thalamusID}, corticalIDs...)); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	relay := params
	relay.Bidirectional = false

	back := params
	back.Probability = params.Probability * 0.5
	back.WeightMean = params.WeightMean * 0.6
	back.Bidirectional = false

	total := 0
	for _, corticalID := range corticalIDs {
		n, err := m.connectLocked(thalamusID, corticalID, relay)
		if err != nil {
			return total, err
		}
		total += n
		n, err = m.connectLocked(corticalID, thalamusID, back)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// EstablishLimbicConnections builds a dense reciprocal mesh among the given
// regions: every unordered pair gets reciprocal index-aligned links.
func (m *Manager) EstablishLimbicConnections(regionIDs []int64, params Params) (int, error) {
	if len(regionIDs) < 2 {
		return 0, fmt.Errorf("%w: mesh needs at least two regions", ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return 0, err
	}
	if err := m.validateChain(regionIDs); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	mesh := params
	mesh.Topology = model.TopologyReciprocal
	mesh.Bidirectional = false

	total := 0
	for i := 0; i < len(regionIDs); i++ {
		for j := i + 1; j < len(regionIDs); j++ {
			n, err := m.connectLocked(regionIDs[i], regionIDs[j], mesh)
			if err != nil {
				return total, err
			}
			total += n
		}
	}
	return total, nil
}

func (m *Manager) validateChain(ids []int64) error {
	for _, id := range ids {
		region, ok := m.sub.Region(id)
		if !ok {
			return fmt.Errorf("%w: %d", ErrRegionNotFound, id)
		}
		if len(region.Neurons) == 0 {
			return fmt.Errorf("%w: %q", ErrEmptyRegion, region.Name)
		}
	}
	return nil
}
