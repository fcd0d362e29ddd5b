package learning

import "math"

// ApplySTDP applies spike-timing-dependent plasticity over the given
// synapses (or every synapse touching the region when ids is nil), using the
// supplied spike-time map keyed by neuron id. Pre-before-post potentiates,
// post-before-pre depresses, and magnitude decays exponentially with the
// timing gap at the configured tau. Synapses missing either timestamp are
// skipped.
func (s *System) ApplySTDP(regionID int64, synapseIDs []int64, spikeTimes map[int64]float64) (int, error) {
	if synapseIDs == nil {
		ids, err := s.regionSynapses(regionID)
		if err != nil {
			return 0, err
		}
		synapseIDs = ids
	} else if _, ok := s.sub.Region(regionID); !ok {
		return 0, ErrRegionNotFound
	}

	count := 0
	for _, id := range synapseIDs {
		if !s.sub.ValidSynapse(id) {
			continue
		}
		synapse, _ := s.sub.Synapse(id)

		tPre, preOK := spikeTimes[synapse.Source]
		tPost, postOK := spikeTimes[synapse.Target]
		if !preOK || !postOK {
			continue
		}
		dt := tPost - tPre
		if dt == 0 {
			continue
		}
		if !s.pGateAdmits() {
			continue
		}

		rate := synapse.LearningRate * s.cfg.STDPRate * s.rateScale(synapse.Target)
		magnitude := rate * math.Exp(-math.Abs(dt)/s.cfg.STDPTauMS)
		delta := magnitude
		if dt < 0 {
			delta = -magnitude
		}
		applied, ok := s.sub.ApplyWeightDelta(id, delta)
		if !ok {
			continue
		}
		s.stats.recordUpdate(id, applied)
		s.stats.stdpUpdates++
		count++
	}
	return count, nil
}
