// Package learning mutates synapse weights under Hebbian, spike-timing, and
// reward-modulated rules. Rules are stateless transforms over the substrate;
// the only persistent auxiliary state is the per-synapse eligibility trace,
// the per-neuron attention multipliers, and the running statistics. Learning
// calls are single-threaded per tick by contract.
package learning

import (
	"errors"
	"fmt"
	"math/rand"

	"plexus/internal/model"
	"plexus/internal/substrate"
)

var (
	ErrRegionNotFound  = errors.New("region not found")
	ErrSynapseNotFound = errors.New("synapse not found")
)

// System owns the learning configuration and auxiliary state for one
// substrate.
type System struct {
	sub *substrate.Substrate
	cfg Config
	rng *rand.Rand

	traces    map[int64]float64
	attention map[int64]float64
	uniform   float64
	annealing int

	pendingReward float64
	rewardPending bool
	competence    float64

	obsMean  []float64
	obsCount int

	stats statsAccumulator
}

func NewSystem(sub *substrate.Substrate, cfg Config) (*System, error) {
	if sub == nil {
		return nil, errors.New("substrate is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.CompetenceMode = NormalizeCompetenceMode(string(cfg.CompetenceMode))
	return &System{
		sub:        sub,
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(1)),
		traces:     make(map[int64]float64),
		attention:  make(map[int64]float64),
		uniform:    cfg.AttentionBaseline,
		competence: 1.0,
	}, nil
}

func (s *System) Config() Config {
	return s.cfg
}

// SetRandomSeed resets the generator backing the stochastic p-gate.
func (s *System) SetRandomSeed(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
}

// SetCompetence stores the external competence signal. Negative values clamp
// to zero; the signal only throttles, it never inverts updates.
func (s *System) SetCompetence(c float64) {
	if c < 0 {
		c = 0
	}
	s.competence = c
}

// rateScale folds competence (in scale-rates mode) and the post-synaptic
// attention multiplier into an effective rate factor.
func (s *System) rateScale(postNeuron int64) float64 {
	scale := s.attentionFactor(postNeuron)
	if s.cfg.CompetenceMode == CompetenceScaleRates {
		scale *= s.competence
	}
	return scale
}

// pGateAdmits draws the stochastic competence gate for one update. Below the
// floor the gate is fully closed.
func (s *System) pGateAdmits() bool {
	if s.cfg.CompetenceMode != CompetenceScalePGate {
		return true
	}
	if s.competence < s.cfg.CompetenceFloor {
		return false
	}
	p := s.competence
	if p >= 1 {
		return true
	}
	return s.rng.Float64() < p
}

// Tick advances the per-tick processes: pending reward is credited against
// current eligibility, traces decay, homeostatic decay pulls weights toward
// baseline, and attention anneals one step toward its baseline.
func (s *System) Tick() int {
	updates := s.applyPendingReward()
	s.decayTraces()
	s.applyHomeostasis()
	s.annealAttention()
	return updates
}

func (s *System) decayTraces() {
	for id, trace := range s.traces {
		trace *= s.cfg.TraceDecay
		if trace < 1e-12 && trace > -1e-12 {
			delete(s.traces, id)
			continue
		}
		s.traces[id] = trace
	}
}

// applyHomeostasis pulls every valid synapse weight toward the configured
// baseline. Disabled when the decay term is zero.
func (s *System) applyHomeostasis() int {
	if s.cfg.WeightDecay == 0 {
		return 0
	}
	count := 0
	for _, id := range s.sub.AllSynapseIDs() {
		synapse, ok := s.sub.Synapse(id)
		if !ok || !s.sub.ValidSynapse(id) {
			continue
		}
		delta := s.cfg.WeightDecay * (s.cfg.WeightBaseline - synapse.Weight)
		if delta == 0 {
			continue
		}
		if _, ok := s.sub.ApplyWeightDelta(id, delta); ok {
			count++
		}
	}
	return count
}

// statsAccumulator keeps the raw counters behind the exported snapshot.
type statsAccumulator struct {
	totalUpdates    int64
	hebbianUpdates  int64
	stdpUpdates     int64
	rewardUpdates   int64
	weightDeltaSum  float64
	weightDeltaN    int64
	cumulativeRwd   float64
	attentionEvents int64
	attentionSum    float64
	attentionN      int64
	touched         map[int64]struct{}
}

func (a *statsAccumulator) recordUpdate(synapseID int64, delta float64) {
	if a.touched == nil {
		a.touched = make(map[int64]struct{})
	}
	a.touched[synapseID] = struct{}{}
	a.totalUpdates++
	if delta < 0 {
		delta = -delta
	}
	a.weightDeltaSum += delta
	a.weightDeltaN++
}

// Stats returns a snapshot of the running counters.
func (s *System) Stats() model.LearningStats {
	stats := model.LearningStats{
		TotalUpdates:     s.stats.totalUpdates,
		HebbianUpdates:   s.stats.hebbianUpdates,
		STDPUpdates:      s.stats.stdpUpdates,
		RewardUpdates:    s.stats.rewardUpdates,
		ActiveSynapses:   len(s.stats.touched),
		CumulativeReward: s.stats.cumulativeRwd,
		AttentionEvents:  s.stats.attentionEvents,
	}
	if s.stats.weightDeltaN > 0 {
		stats.AverageWeightChange = s.stats.weightDeltaSum / float64(s.stats.weightDeltaN)
	}
	if s.stats.attentionN > 0 {
		stats.MeanAttentionWeight = s.stats.attentionSum / float64(s.stats.attentionN)
	}
	return stats
}

// ResetStats clears the counters so isolated tests can assert from zero.
func (s *System) ResetStats() {
	s.stats = statsAccumulator{}
}

// Trace exposes one eligibility trace for inspection.
func (s *System) Trace(synapseID int64) float64 {
	return s.traces[synapseID]
}

func (s *System) regionSynapses(regionID int64) ([]int64, error) {
	if _, ok := s.sub.Region(regionID); !ok {
		return nil, fmt.Errorf("%w: %d", ErrRegionNotFound, regionID)
	}
	return s.sub.SynapsesTouching(regionID), nil
}
