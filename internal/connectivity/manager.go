// Package connectivity wires populated regions together under probabilistic
// topologies and maintains derived connection summaries. All randomness flows
// through one seedable generator per manager, so a fixed seed replays the
// same topology and weight draws.
package connectivity

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"plexus/internal/model"
	"plexus/internal/substrate"
)

var (
	ErrInvalidParams   = errors.New("invalid connectivity parameters")
	ErrRegionNotFound  = errors.New("region not found")
	ErrEmptyRegion     = errors.New("region has no neurons")
	ErrPatternNotFound = errors.New("pattern not found")
)

// Manager owns the region wiring engine. The mutex guards the shared summary
// list, the totals, and the generator: wiring calls may arrive from multiple
// setup goroutines while read-only analysis runs concurrently.
type Manager struct {
	mu  sync.RWMutex
	sub *substrate.Substrate
	rng *rand.Rand

	connections   []model.RegionConnection
	totalSynapses int64

	patterns map[string]Params
}

func NewManager(sub *substrate.Substrate, seed int64) *Manager {
	m := &Manager{
		sub:      sub,
		rng:      rand.New(rand.NewSource(seed)),
		patterns: make(map[string]Params),
	}
	m.registerDefaultPatterns()
	return m
}

// SetRandomSeed resets the generator for deterministic replay.
func (m *Manager) SetRandomSeed(seed int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rng = rand.New(rand.NewSource(seed))
}

// Connect creates synapses from the source region to the target region under
// the given parameters and records a RegionConnection summary. Repeated calls
// add more synapses. Failures return a zero count and a typed error; nothing
// panics across this boundary.
func (m *Manager) Connect(sourceID, targetID int64, params Params) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectLocked(sourceID, targetID, params)
}

func (m *Manager) connectLocked(sourceID, targetID int64, params Params) (int, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}
	params = params.normalized()

	src, ok := m.sub.Region(sourceID)
	if !ok {
		return 0, fmt.Errorf("%w: source %d", ErrRegionNotFound, sourceID)
	}
	dst, ok := m.sub.Region(targetID)
	if !ok {
		return 0, fmt.Errorf("%w: target %d", ErrRegionNotFound, targetID)
	}
	if len(src.Neurons) == 0 {
		return 0, fmt.Errorf("%w: source %q", ErrEmptyRegion, src.Name)
	}
	if len(dst.Neurons) == 0 {
		return 0, fmt.Errorf("%w: target %q", ErrEmptyRegion, dst.Name)
	}

	w := &wiring{
		sub:    m.sub,
		rng:    m.rng,
		params: params,
		src:    src,
		dst:    dst,
		degree: make(map[int64]int),
	}

	switch params.Topology {
	case model.TopologySparse:
		w.pairwise(params.Probability)
	case model.TopologyDense:
		w.pairwise(denseProbability(params.Probability))
	case model.TopologyFeedforward:
		w.layered(+1, feedforwardFanOut)
	case model.TopologyFeedback:
		w.layered(-1, feedbackFanOut)
	case model.TopologyLateral:
		w.lateral()
	case model.TopologyGlobal:
		w.global()
	case model.TopologyReciprocal:
		w.reciprocal()
	case model.TopologyModular:
		w.modular()
	}

	created := len(w.created)
	avgWeight := 0.0
	if created > 0 {
		avgWeight = w.weightSum / float64(created)
	}
	m.connections = append(m.connections, model.RegionConnection{
		ID:             uuid.NewString(),
		SourceID:       sourceID,
		TargetID:       targetID,
		Topology:       params.Topology,
		SynapseCount:   created,
		AverageWeight:  avgWeight,
		Strength:       float64(created) / float64(len(src.Neurons)*len(dst.Neurons)),
		Active:         true,
		CreatedAt:      time.Now().UTC(),
		PlasticityRate: params.PlasticityRate,
		PlasticityRule: params.PlasticityRule,
	})
	m.totalSynapses += int64(created)

	total := created
	if params.Bidirectional && !symmetricTopology(params.Topology) {
		// One level of recursion with the flag cleared, never deeper.
		params.Bidirectional = false
		reverse, err := m.connectLocked(targetID, sourceID, params)
		if err != nil {
			return total, err
		}
		total += reverse
	}
	return total, nil
}

// symmetricTopology reports topologies that already create both directions.
func symmetricTopology(t model.Topology) bool {
	return t == model.TopologyLateral || t == model.TopologyReciprocal
}

func denseProbability(p float64) float64 {
	eff := 3 * p
	if eff > 0.8 {
		eff = 0.8
	}
	return eff
}

// Disconnect removes every synapse recorded source -> target, clears the
// bookkeeping on both regions, and deactivates matching summaries.
func (m *Manager) Disconnect(sourceID, targetID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sub.Region(sourceID); !ok {
		return 0, fmt.Errorf("%w: source %d", ErrRegionNotFound, sourceID)
	}
	if _, ok := m.sub.Region(targetID); !ok {
		return 0, fmt.Errorf("%w: target %d", ErrRegionNotFound, targetID)
	}

	removed := m.sub.UnregisterBetween(sourceID, targetID)
	for _, id := range removed {
		_ = m.sub.RemoveSynapse(id)
	}
	for i := range m.connections {
		c := &m.connections[i]
		if c.Active && c.SourceID == sourceID && c.TargetID == targetID {
			c.Active = false
		}
	}
	m.totalSynapses -= int64(len(removed))
	return len(removed), nil
}

// Connections returns a snapshot of all recorded summaries.
func (m *Manager) Connections() []model.RegionConnection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.RegionConnection(nil), m.connections...)
}

// ConnectionsBetween returns the summaries recorded for one region pair.
func (m *Manager) ConnectionsBetween(sourceID, targetID int64) []model.RegionConnection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.RegionConnection
	for _, c := range m.connections {
		if c.SourceID == sourceID && c.TargetID == targetID {
			out = append(out, c)
		}
	}
	return out
}

func (m *Manager) TotalSynapses() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalSynapses
}
