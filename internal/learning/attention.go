package learning

// ApplyAttentionMap installs per-neuron attention multipliers, each clamped
// to the configured bounds. The multipliers only scale later Hebbian/STDP
// passes: this call mutates no weight and leaves the update counters
// untouched. When annealing is configured, the installed factors drift
// linearly back to baseline over the configured number of ticks.
func (s *System) ApplyAttentionMap(weights map[int64]float64) (int, error) {
	count := 0
	for neuronID, factor := range weights {
		if _, ok := s.sub.Neuron(neuronID); !ok {
			continue
		}
		s.attention[neuronID] = s.clampAttention(factor)
		s.stats.attentionSum += s.attention[neuronID]
		s.stats.attentionN++
		count++
	}
	if count > 0 {
		s.stats.attentionEvents++
		s.annealing = s.cfg.AttentionAnnealTicks
	}
	return count, nil
}

// ApplyAttentionBoost sets a uniform multiplier applied to every neuron that
// has no explicit per-neuron factor.
func (s *System) ApplyAttentionBoost(boost float64) int {
	s.uniform = s.clampAttention(s.cfg.AttentionBaseline * boost)
	s.stats.attentionEvents++
	s.stats.attentionSum += s.uniform
	s.stats.attentionN++
	return s.sub.NeuronCount()
}

func (s *System) attentionFactor(neuronID int64) float64 {
	if factor, ok := s.attention[neuronID]; ok {
		return factor
	}
	return s.uniform
}

func (s *System) clampAttention(factor float64) float64 {
	if factor < s.cfg.AttentionMin {
		return s.cfg.AttentionMin
	}
	if factor > s.cfg.AttentionMax {
		return s.cfg.AttentionMax
	}
	return factor
}

// annealAttention moves every explicit factor one linear step toward the
// baseline; on the last step the explicit map empties out.
func (s *System) annealAttention() {
	if s.annealing <= 0 {
		return
	}
	if s.annealing == 1 {
		s.attention = make(map[int64]float64)
		s.annealing = 0
		return
	}
	step := float64(s.annealing)
	for neuronID, factor := range s.attention {
		s.attention[neuronID] = factor + (s.cfg.AttentionBaseline-factor)/step
	}
	s.annealing--
}
