package model

import (
	"strings"
	"time"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// NeuronState describes whether a neuron participates in the current tick.
type NeuronState string

const (
	NeuronActive    NeuronState = "active"
	NeuronInactive  NeuronState = "inactive"
	NeuronInhibited NeuronState = "inhibited"
)

// SynapseKind distinguishes excitatory from inhibitory edges.
type SynapseKind string

const (
	SynapseExcitatory SynapseKind = "excitatory"
	SynapseInhibitory SynapseKind = "inhibitory"
)

// PlasticityRule names the weight-update rule a synapse participates in.
type PlasticityRule string

const (
	PlasticityNone    PlasticityRule = "none"
	PlasticityHebbian PlasticityRule = "hebbian"
	PlasticitySTDP    PlasticityRule = "stdp"
	PlasticityCustom  PlasticityRule = "custom"
)

func NormalizePlasticityRule(rule string) PlasticityRule {
	switch strings.ToLower(strings.TrimSpace(rule)) {
	case "", string(PlasticityNone):
		return PlasticityNone
	case string(PlasticityHebbian), "hebbian_w":
		return PlasticityHebbian
	case string(PlasticitySTDP), "spike_timing":
		return PlasticitySTDP
	case string(PlasticityCustom):
		return PlasticityCustom
	default:
		return PlasticityRule(strings.ToLower(strings.TrimSpace(rule)))
	}
}

// RegionKind is an anatomical tag carried by regions. Opaque to the wiring
// engine except where pattern helpers select defaults by kind.
type RegionKind string

const (
	RegionCortical    RegionKind = "cortical"
	RegionSubcortical RegionKind = "subcortical"
	RegionThalamic    RegionKind = "thalamic"
	RegionLimbic      RegionKind = "limbic"
	RegionCustom      RegionKind = "custom"
)

// Topology selects the neuron-pairing algorithm used when wiring two regions.
type Topology string

const (
	TopologySparse      Topology = "sparse"
	TopologyDense       Topology = "dense"
	TopologyFeedforward Topology = "feedforward"
	TopologyFeedback    Topology = "feedback"
	TopologyLateral     Topology = "lateral"
	TopologyGlobal      Topology = "global"
	TopologyReciprocal  Topology = "reciprocal"
	TopologyModular     Topology = "modular"
)

func NormalizeTopology(name string) Topology {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(TopologySparse), "sparse_random":
		return TopologySparse
	case string(TopologyDense):
		return TopologyDense
	case string(TopologyFeedforward), "ff":
		return TopologyFeedforward
	case string(TopologyFeedback), "fb":
		return TopologyFeedback
	case string(TopologyLateral):
		return TopologyLateral
	case string(TopologyGlobal), "long_range":
		return TopologyGlobal
	case string(TopologyReciprocal):
		return TopologyReciprocal
	case string(TopologyModular):
		return TopologyModular
	default:
		return Topology(strings.ToLower(strings.TrimSpace(name)))
	}
}

// Distribution shapes connection probability as a function of neuron distance.
type Distribution string

const (
	DistributionUniform     Distribution = "uniform"
	DistributionGaussian    Distribution = "gaussian"
	DistributionExponential Distribution = "exponential"
	DistributionPowerLaw    Distribution = "power_law"
	DistributionSmallWorld  Distribution = "small_world"
)

func NormalizeDistribution(name string) Distribution {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(DistributionUniform):
		return DistributionUniform
	case string(DistributionGaussian), "normal":
		return DistributionGaussian
	case string(DistributionExponential), "exp":
		return DistributionExponential
	case string(DistributionPowerLaw), "powerlaw":
		return DistributionPowerLaw
	case string(DistributionSmallWorld), "smallworld":
		return DistributionSmallWorld
	default:
		return Distribution(strings.ToLower(strings.TrimSpace(name)))
	}
}

// RegionConnection is a derived summary of one wiring call between two
// regions. Deleting a summary does not delete synapses.
type RegionConnection struct {
	ID             string         `json:"id"`
	SourceID       int64          `json:"source"`
	TargetID       int64          `json:"target"`
	Topology       Topology       `json:"topology"`
	SynapseCount   int            `json:"synapses"`
	AverageWeight  float64        `json:"average_weight"`
	Strength       float64        `json:"strength"`
	Active         bool           `json:"active"`
	CreatedAt      time.Time      `json:"created_at"`
	PlasticityRate float64        `json:"plasticity_rate"`
	PlasticityRule PlasticityRule `json:"plasticity_rule"`
}

// LearningStats aggregates the learning system's running counters.
type LearningStats struct {
	TotalUpdates        int64   `json:"total_updates"`
	HebbianUpdates      int64   `json:"hebbian_updates"`
	STDPUpdates         int64   `json:"stdp_updates"`
	RewardUpdates       int64   `json:"reward_updates"`
	ActiveSynapses      int     `json:"active_synapses"`
	AverageWeightChange float64 `json:"average_weight_change"`
	CumulativeReward    float64 `json:"cumulative_reward"`
	AttentionEvents     int64   `json:"attention_modulation_events"`
	MeanAttentionWeight float64 `json:"mean_attention_weight"`
}

// NetworkProperties aggregates whole-network counters from the wiring layer.
type NetworkProperties struct {
	RegionCount     int     `json:"region_count"`
	ConnectionCount int     `json:"connection_count"`
	TotalSynapses   int64   `json:"total_synapses"`
	AverageStrength float64 `json:"average_strength"`
	AverageWeight   float64 `json:"average_weight"`
	WeightStdDev    float64 `json:"weight_std_dev"`
}

// Snapshot is the unit persisted by the telemetry sink once per tick.
type Snapshot struct {
	VersionedRecord
	RunID      string            `json:"run_id"`
	Step       int64             `json:"step"`
	TakenAtUTC string            `json:"taken_at_utc"`
	Stats      LearningStats     `json:"stats"`
	Network    NetworkProperties `json:"network"`
}
