package connectivity

import (
	"fmt"
	"math"

	"plexus/internal/model"
)

// Params configures one wiring call between two regions.
type Params struct {
	Topology       model.Topology       `json:"topology" yaml:"topology"`
	Probability    float64              `json:"connection_probability" yaml:"connection_probability"`
	WeightMean     float64              `json:"weight_mean" yaml:"weight_mean"`
	WeightStd      float64              `json:"weight_std" yaml:"weight_std"`
	MaxPerNeuron   int                  `json:"max_connections_per_neuron" yaml:"max_connections_per_neuron"`
	DistanceDecay  float64              `json:"distance_decay" yaml:"distance_decay"`
	Distribution   model.Distribution   `json:"distribution" yaml:"distribution"`
	Bidirectional  bool                 `json:"bidirectional" yaml:"bidirectional"`
	PlasticityRate float64              `json:"plasticity_rate" yaml:"plasticity_rate"`
	PlasticityRule model.PlasticityRule `json:"plasticity_rule" yaml:"plasticity_rule"`
}

// DefaultParams returns a sparse probabilistic wiring configuration.
func DefaultParams() Params {
	return Params{
		Topology:       model.TopologySparse,
		Probability:    0.1,
		WeightMean:     0.5,
		WeightStd:      0.1,
		DistanceDecay:  1.0,
		Distribution:   model.DistributionUniform,
		PlasticityRate: 0.01,
		PlasticityRule: model.PlasticityHebbian,
	}
}

func (p Params) Validate() error {
	if p.Probability < 0 || p.Probability > 1 {
		return fmt.Errorf("%w: connection probability %f outside [0,1]", ErrInvalidParams, p.Probability)
	}
	if p.WeightStd < 0 {
		return fmt.Errorf("%w: negative weight std %f", ErrInvalidParams, p.WeightStd)
	}
	if p.MaxPerNeuron < 0 {
		return fmt.Errorf("%w: negative per-neuron cap %d", ErrInvalidParams, p.MaxPerNeuron)
	}
	switch model.NormalizeTopology(string(p.Topology)) {
	case model.TopologySparse, model.TopologyDense, model.TopologyFeedforward,
		model.TopologyFeedback, model.TopologyLateral, model.TopologyGlobal,
		model.TopologyReciprocal, model.TopologyModular:
	default:
		return fmt.Errorf("%w: unsupported topology %q", ErrInvalidParams, p.Topology)
	}
	switch model.NormalizeDistribution(string(p.Distribution)) {
	case model.DistributionUniform, model.DistributionGaussian, model.DistributionExponential,
		model.DistributionPowerLaw, model.DistributionSmallWorld:
	default:
		return fmt.Errorf("%w: unsupported distribution %q", ErrInvalidParams, p.Distribution)
	}
	return nil
}

func (p Params) normalized() Params {
	p.Topology = model.NormalizeTopology(string(p.Topology))
	p.Distribution = model.NormalizeDistribution(string(p.Distribution))
	p.PlasticityRule = model.NormalizePlasticityRule(string(p.PlasticityRule))
	if p.DistanceDecay <= 0 {
		p.DistanceDecay = 1.0
	}
	return p
}

// distanceFactor shapes connection probability by neuron distance. Distance
// is an index-offset proxy, not spatial placement.
func distanceFactor(dist model.Distribution, d, sigma float64) float64 {
	if sigma <= 0 {
		sigma = 1.0
	}
	switch dist {
	case model.DistributionGaussian:
		return math.Exp(-(d * d) / (2 * sigma * sigma))
	case model.DistributionExponential:
		return math.Exp(-d / sigma)
	case model.DistributionPowerLaw:
		return math.Pow(d+1, -sigma)
	case model.DistributionSmallWorld:
		if d < 2 {
			return 0.8
		}
		return 0.1 * math.Exp(-d/sigma)
	default:
		return 1.0
	}
}
