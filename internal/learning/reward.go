package learning

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NotePrePost folds one pre/post correlation sample into the synapse's
// eligibility trace: e <- lambda*e + eta*pre*post. Calling with zero
// activity performs a pure decay step. Returns the new trace value.
func (s *System) NotePrePost(synapseID int64, pre, post float64) (float64, error) {
	if !s.sub.ValidSynapse(synapseID) {
		return 0, fmt.Errorf("%w: %d", ErrSynapseNotFound, synapseID)
	}

	trace := s.cfg.TraceDecay*s.traces[synapseID] + s.cfg.TraceRate*pre*post
	s.traces[synapseID] = trace
	return trace, nil
}

// ApplyExternalReward stores a scalar reward to be credited against
// eligibility traces on the next tick. Multiple rewards within one tick
// accumulate.
func (s *System) ApplyExternalReward(reward float64) {
	s.pendingReward += reward
	s.rewardPending = true
}

// applyPendingReward credits the stored reward against every nonzero
// eligibility trace: dw = kappa * R * e * globalLearningRate. Traces are not
// consumed here; they keep decaying on their own schedule, so a late reward
// still credits recent-but-decayed correlation.
func (s *System) applyPendingReward() int {
	if !s.rewardPending {
		return 0
	}
	reward := s.pendingReward
	s.pendingReward = 0
	s.rewardPending = false
	s.stats.cumulativeRwd += reward

	count := 0
	for id, trace := range s.traces {
		if trace == 0 || !s.sub.ValidSynapse(id) {
			continue
		}
		delta := s.cfg.RewardScale * reward * trace * s.cfg.LearningRate
		applied, ok := s.sub.ApplyWeightDelta(id, delta)
		if !ok {
			continue
		}
		s.stats.recordUpdate(id, applied)
		s.stats.rewardUpdates++
		count++
	}
	return count
}

// ComputeShapedReward blends a novelty bonus (distance of the observation
// from a running mean estimate, scaled by alpha) and an action-variance bonus
// (scaled by gamma) on top of the task reward. With alpha and gamma both
// zero it is the identity on taskReward.
func (s *System) ComputeShapedReward(obs, actions []float64, taskReward float64) float64 {
	shaped := taskReward

	if len(obs) > 0 {
		if s.obsMean == nil || len(s.obsMean) != len(obs) {
			s.obsMean = make([]float64, len(obs))
			s.obsCount = 0
		}
		if s.cfg.NoveltyAlpha != 0 && s.obsCount > 0 {
			novelty := floats.Distance(obs, s.obsMean, 2) / math.Sqrt(float64(len(obs)))
			shaped += s.cfg.NoveltyAlpha * novelty
		}
		s.obsCount++
		inv := 1.0 / float64(s.obsCount)
		for i, v := range obs {
			s.obsMean[i] += (v - s.obsMean[i]) * inv
		}
	}

	if s.cfg.EntropyGamma != 0 && len(actions) > 1 {
		shaped += s.cfg.EntropyGamma * stat.Variance(actions, nil)
	}
	return shaped
}
