package learning

// ApplyHebbian runs one Hebbian pass over every valid synapse touching the
// region: dw = rate * pre * post, where rate folds in competence (scale-rates
// mode) and the post-neuron attention multiplier. Returns the number of
// synapses updated; a missing region is a soft failure with count zero.
func (s *System) ApplyHebbian(regionID int64, baseRate float64) (int, error) {
	ids, err := s.regionSynapses(regionID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, id := range ids {
		if !s.sub.ValidSynapse(id) {
			continue
		}
		synapse, _ := s.sub.Synapse(id)
		pre, _ := s.sub.Neuron(synapse.Source)
		post, _ := s.sub.Neuron(synapse.Target)

		rate := baseRate * s.rateScale(synapse.Target)
		delta := rate * pre.Activation * post.Activation
		applied, ok := s.sub.ApplyWeightDelta(id, delta)
		if !ok {
			continue
		}
		s.stats.recordUpdate(id, applied)
		s.stats.hebbianUpdates++
		count++
	}
	return count, nil
}
