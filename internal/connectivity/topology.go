package connectivity

import (
	"math"
	"math/rand"

	"plexus/internal/substrate"
)

const (
	layerCount        = 4
	feedforwardFanOut = 5
	feedbackFanOut    = 3
	lateralReach      = 2
	moduleSize        = 50
	globalSampleCap   = 100
)

// wiring carries the per-call state of one topology build: the regions being
// paired, the shared generator, the per-source-neuron degree counts, and the
// synapses created so far.
type wiring struct {
	sub    *substrate.Substrate
	rng    *rand.Rand
	params Params
	src    *substrate.Region
	dst    *substrate.Region

	degree    map[int64]int
	created   []int64
	weightSum float64
}

// tryConnect draws the probability gate and, on success, creates and
// registers one synapse. Returns whether a synapse was created.
func (w *wiring) tryConnect(srcNeuron, dstNeuron int64, probability float64) bool {
	if srcNeuron == dstNeuron {
		return false
	}
	if w.params.MaxPerNeuron > 0 && w.degree[srcNeuron] >= w.params.MaxPerNeuron {
		return false
	}
	if w.rng.Float64() >= probability {
		return false
	}

	weight := w.params.WeightMean + w.rng.NormFloat64()*w.params.WeightStd
	synapse, err := w.sub.AddSynapse(srcNeuron, dstNeuron, weight, w.params.PlasticityRule, w.params.PlasticityRate)
	if err != nil {
		return false
	}

	if w.src.ID == w.dst.ID {
		if err := w.sub.RegisterInternal(w.src.ID, synapse.ID); err != nil {
			_ = w.sub.RemoveSynapse(synapse.ID)
			return false
		}
	} else {
		srcRegion, dstRegion := w.src.ID, w.dst.ID
		if owner, ok := w.sub.NeuronRegion(srcNeuron); ok && owner != srcRegion {
			srcRegion = owner
		}
		if owner, ok := w.sub.NeuronRegion(dstNeuron); ok && owner != dstRegion {
			dstRegion = owner
		}
		if srcRegion == dstRegion {
			if err := w.sub.RegisterInternal(srcRegion, synapse.ID); err != nil {
				_ = w.sub.RemoveSynapse(synapse.ID)
				return false
			}
		} else if err := w.sub.RegisterInterRegion(srcRegion, dstRegion, synapse.ID); err != nil {
			_ = w.sub.RemoveSynapse(synapse.ID)
			return false
		}
	}

	w.degree[srcNeuron]++
	w.created = append(w.created, synapse.ID)
	w.weightSum += synapse.Weight
	return true
}

// pairwise visits every (source, target) pair and gates each on the
// distance-shaped probability. Used by sparse and dense topologies.
func (w *wiring) pairwise(probability float64) {
	for i, srcNeuron := range w.src.Neurons {
		for j, dstNeuron := range w.dst.Neurons {
			d := math.Abs(float64(i - j))
			factor := distanceFactor(w.params.Distribution, d, w.params.DistanceDecay)
			w.tryConnect(srcNeuron, dstNeuron, factor*probability)
		}
	}
}

// layered partitions both regions into four equal layers and connects source
// layer i to target layer i+direction, up to fanOut targets per neuron.
func (w *wiring) layered(direction, fanOut int) {
	srcLayers := partition(w.src.Neurons, layerCount)
	dstLayers := partition(w.dst.Neurons, layerCount)

	for i := range srcLayers {
		j := i + direction
		if j < 0 || j >= len(dstLayers) {
			continue
		}
		for _, srcNeuron := range srcLayers[i] {
			made := 0
			for _, dstNeuron := range dstLayers[j] {
				if made >= fanOut {
					break
				}
				if w.tryConnect(srcNeuron, dstNeuron, w.params.Probability) {
					made++
				}
			}
		}
	}
}

// lateral connects index-aligned neurons to their four nearest neighbors
// (offset ±1, ±2), excluding self, gated by probability.
func (w *wiring) lateral() {
	n := len(w.src.Neurons)
	if len(w.dst.Neurons) < n {
		n = len(w.dst.Neurons)
	}
	for i := 0; i < n; i++ {
		for _, offset := range []int{-lateralReach, -1, 1, lateralReach} {
			j := i + offset
			if j < 0 || j >= n {
				continue
			}
			w.tryConnect(w.src.Neurons[i], w.dst.Neurons[j], w.params.Probability)
		}
	}
}

// global samples a shuffled subset from each side and connects all sampled
// pairs, modelling long-range sparse connectivity without the O(n^2) sweep.
func (w *wiring) global() {
	srcSample := w.sample(w.src.Neurons)
	dstSample := w.sample(w.dst.Neurons)
	for _, srcNeuron := range srcSample {
		for _, dstNeuron := range dstSample {
			w.tryConnect(srcNeuron, dstNeuron, w.params.Probability)
		}
	}
}

func (w *wiring) sample(neurons []int64) []int64 {
	n := len(neurons) / 10
	if n > globalSampleCap {
		n = globalSampleCap
	}
	if n < 1 {
		n = 1
	}
	shuffled := append([]int64(nil), neurons...)
	w.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

// reciprocal creates forward and explicit backward synapses for
// index-aligned pairs as two independent edges under one draw.
func (w *wiring) reciprocal() {
	n := len(w.src.Neurons)
	if len(w.dst.Neurons) < n {
		n = len(w.dst.Neurons)
	}
	for i := 0; i < n; i++ {
		if w.rng.Float64() >= w.params.Probability {
			continue
		}
		w.connectPair(w.src.Neurons[i], w.dst.Neurons[i])
		w.connectPair(w.dst.Neurons[i], w.src.Neurons[i])
	}
}

// connectPair creates one synapse without drawing the probability gate.
func (w *wiring) connectPair(srcNeuron, dstNeuron int64) {
	if srcNeuron == dstNeuron {
		return
	}
	if w.params.MaxPerNeuron > 0 && w.degree[srcNeuron] >= w.params.MaxPerNeuron {
		return
	}

	weight := w.params.WeightMean + w.rng.NormFloat64()*w.params.WeightStd
	synapse, err := w.sub.AddSynapse(srcNeuron, dstNeuron, weight, w.params.PlasticityRule, w.params.PlasticityRate)
	if err != nil {
		return
	}

	srcRegion, _ := w.sub.NeuronRegion(srcNeuron)
	dstRegion, _ := w.sub.NeuronRegion(dstNeuron)
	if srcRegion == dstRegion {
		if err := w.sub.RegisterInternal(srcRegion, synapse.ID); err != nil {
			_ = w.sub.RemoveSynapse(synapse.ID)
			return
		}
	} else if err := w.sub.RegisterInterRegion(srcRegion, dstRegion, synapse.ID); err != nil {
		_ = w.sub.RemoveSynapse(synapse.ID)
		return
	}

	w.degree[srcNeuron]++
	w.created = append(w.created, synapse.ID)
	w.weightSum += synapse.Weight
}

// modular partitions neurons into fixed 50-neuron modules; intra-module
// pairs use the full probability, inter-module pairs a tenth of it.
func (w *wiring) modular() {
	for i, srcNeuron := range w.src.Neurons {
		for j, dstNeuron := range w.dst.Neurons {
			probability := w.params.Probability
			if i/moduleSize != j/moduleSize {
				probability *= 0.1
			}
			w.tryConnect(srcNeuron, dstNeuron, probability)
		}
	}
}

// partition splits neurons into count near-equal contiguous layers. The
// remainder spreads over the leading layers so sizes differ by at most one.
func partition(neurons []int64, count int) [][]int64 {
	if count < 1 {
		count = 1
	}
	layers := make([][]int64, 0, count)
	base := len(neurons) / count
	extra := len(neurons) % count
	start := 0
	for i := 0; i < count; i++ {
		size := base
		if i < extra {
			size++
		}
		layers = append(layers, neurons[start:start+size])
		start += size
	}
	return layers
}
