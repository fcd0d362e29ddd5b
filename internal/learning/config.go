package learning

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidConfig = errors.New("invalid learning configuration")

// CompetenceMode selects how the external competence signal throttles
// plasticity.
type CompetenceMode string

const (
	CompetenceOff        CompetenceMode = "off"
	CompetenceScaleRates CompetenceMode = "scale_learning_rates"
	CompetenceScalePGate CompetenceMode = "scale_p_gate"
)

func NormalizeCompetenceMode(name string) CompetenceMode {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(CompetenceOff):
		return CompetenceOff
	case string(CompetenceScaleRates), "scale_rates":
		return CompetenceScaleRates
	case string(CompetenceScalePGate), "p_gate":
		return CompetenceScalePGate
	default:
		return CompetenceMode(strings.ToLower(strings.TrimSpace(name)))
	}
}

// Config carries the global learning parameters. Invalid values are rejected
// when the system is constructed, never at call time.
type Config struct {
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`
	STDPRate     float64 `json:"stdp_rate" yaml:"stdp_rate"`
	STDPTauMS    float64 `json:"stdp_tau_ms" yaml:"stdp_tau_ms"`

	TraceDecay  float64 `json:"trace_decay" yaml:"trace_decay"`
	TraceRate   float64 `json:"trace_rate" yaml:"trace_rate"`
	RewardScale float64 `json:"reward_scale" yaml:"reward_scale"`

	WeightDecay    float64 `json:"weight_decay" yaml:"weight_decay"`
	WeightBaseline float64 `json:"weight_baseline" yaml:"weight_baseline"`

	AttentionMin         float64 `json:"attention_min" yaml:"attention_min"`
	AttentionMax         float64 `json:"attention_max" yaml:"attention_max"`
	AttentionBaseline    float64 `json:"attention_baseline" yaml:"attention_baseline"`
	AttentionAnnealTicks int     `json:"attention_anneal_ticks" yaml:"attention_anneal_ticks"`

	CompetenceMode  CompetenceMode `json:"competence_mode" yaml:"competence_mode"`
	CompetenceFloor float64        `json:"competence_floor" yaml:"competence_floor"`

	NoveltyAlpha float64 `json:"novelty_alpha" yaml:"novelty_alpha"`
	EntropyGamma float64 `json:"entropy_gamma" yaml:"entropy_gamma"`
}

// DefaultConfig: tau 20ms, leaky traces at 0.9, homeostatic decay off.
func DefaultConfig() Config {
	return Config{
		LearningRate:      0.01,
		STDPRate:          1.0,
		STDPTauMS:         20.0,
		TraceDecay:        0.9,
		TraceRate:         0.5,
		RewardScale:       1.0,
		AttentionMin:      0.1,
		AttentionMax:      3.0,
		AttentionBaseline: 1.0,
		CompetenceMode:    CompetenceOff,
		CompetenceFloor:   0.2,
	}
}

func (c Config) Validate() error {
	if c.LearningRate < 0 {
		return fmt.Errorf("%w: negative learning rate %f", ErrInvalidConfig, c.LearningRate)
	}
	if c.STDPTauMS <= 0 {
		return fmt.Errorf("%w: stdp tau must be > 0, got %f", ErrInvalidConfig, c.STDPTauMS)
	}
	if c.TraceDecay < 0 || c.TraceDecay >= 1 {
		return fmt.Errorf("%w: trace decay %f outside [0,1)", ErrInvalidConfig, c.TraceDecay)
	}
	if c.AttentionMax < c.AttentionMin {
		return fmt.Errorf("%w: attention bounds inverted (%f > %f)", ErrInvalidConfig, c.AttentionMin, c.AttentionMax)
	}
	if c.AttentionAnnealTicks < 0 {
		return fmt.Errorf("%w: negative attention anneal %d", ErrInvalidConfig, c.AttentionAnnealTicks)
	}
	if c.WeightDecay < 0 || c.WeightDecay > 1 {
		return fmt.Errorf("%w: weight decay %f outside [0,1]", ErrInvalidConfig, c.WeightDecay)
	}
	if c.CompetenceFloor < 0 {
		return fmt.Errorf("%w: negative competence floor %f", ErrInvalidConfig, c.CompetenceFloor)
	}
	switch NormalizeCompetenceMode(string(c.CompetenceMode)) {
	case CompetenceOff, CompetenceScaleRates, CompetenceScalePGate:
	default:
		return fmt.Errorf("%w: unsupported competence mode %q", ErrInvalidConfig, c.CompetenceMode)
	}
	return nil
}
