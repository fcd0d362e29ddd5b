package learning

import (
	"errors"
	"math"
	"testing"
)

func TestAttentionAloneMutatesNothing(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	if _, err := h.sys.ApplyAttentionMap(map[int64]float64{h.post: 2.5}); err != nil {
		t.Fatalf("attention: %v", err)
	}
	if got := h.weight(t); got != 1.0 {
		t.Fatalf("attention moved a weight: %f", got)
	}

	stats := h.sys.Stats()
	if stats.TotalUpdates != 0 || stats.AverageWeightChange != 0 {
		t.Fatalf("attention touched update counters: %+v", stats)
	}
	if stats.AttentionEvents != 1 {
		t.Fatalf("expected 1 attention event, got %d", stats.AttentionEvents)
	}
	if math.Abs(stats.MeanAttentionWeight-2.5) > 1e-12 {
		t.Fatalf("mean attention weight %f, want 2.5", stats.MeanAttentionWeight)
	}
}

func TestAttentionFactorsClampToBounds(t *testing.T) {
	cfg := DefaultConfig() // bounds [0.1, 3.0]
	h := newHarness(t, cfg)

	if _, err := h.sys.ApplyAttentionMap(map[int64]float64{
		h.pre:  10.0,
		h.post: 0.001,
	}); err != nil {
		t.Fatalf("attention: %v", err)
	}
	if got := h.sys.attentionFactor(h.pre); got != cfg.AttentionMax {
		t.Fatalf("expected clamp to %f, got %f", cfg.AttentionMax, got)
	}
	if got := h.sys.attentionFactor(h.post); got != cfg.AttentionMin {
		t.Fatalf("expected clamp to %f, got %f", cfg.AttentionMin, got)
	}
}

func TestAttentionSkipsUnknownNeurons(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	count, err := h.sys.ApplyAttentionMap(map[int64]float64{999: 2.0})
	if err != nil {
		t.Fatalf("attention: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 installed factors, got %d", count)
	}
	if h.sys.Stats().AttentionEvents != 0 {
		t.Fatal("empty application counted as an event")
	}
}

func TestAttentionAnnealsToBaseline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AttentionAnnealTicks = 4
	h := newHarness(t, cfg)

	if _, err := h.sys.ApplyAttentionMap(map[int64]float64{h.post: 3.0}); err != nil {
		t.Fatalf("attention: %v", err)
	}

	prev := h.sys.attentionFactor(h.post)
	for i := 0; i < 4; i++ {
		h.sys.Tick()
		cur := h.sys.attentionFactor(h.post)
		if math.Abs(cur-cfg.AttentionBaseline) > math.Abs(prev-cfg.AttentionBaseline)+1e-12 {
			t.Fatalf("tick %d: factor %f drifted away from baseline (prev %f)", i, cur, prev)
		}
		prev = cur
	}
	if got := h.sys.attentionFactor(h.post); got != cfg.AttentionBaseline {
		t.Fatalf("expected baseline %f after anneal, got %f", cfg.AttentionBaseline, got)
	}
}

func TestAttentionPersistsWithoutAnneal(t *testing.T) {
	h := newHarness(t, DefaultConfig()) // anneal disabled

	if _, err := h.sys.ApplyAttentionMap(map[int64]float64{h.post: 2.0}); err != nil {
		t.Fatalf("attention: %v", err)
	}
	for i := 0; i < 10; i++ {
		h.sys.Tick()
	}
	if got := h.sys.attentionFactor(h.post); got != 2.0 {
		t.Fatalf("factor decayed without anneal: %f", got)
	}
}

func TestAttentionBoostIsUniform(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	affected := h.sys.ApplyAttentionBoost(1.5)
	if affected != 2 {
		t.Fatalf("expected boost to cover 2 neurons, got %d", affected)
	}
	if got := h.sys.attentionFactor(h.pre); got != 1.5 {
		t.Fatalf("expected uniform factor 1.5, got %f", got)
	}
	if got := h.sys.attentionFactor(h.post); got != 1.5 {
		t.Fatalf("expected uniform factor 1.5, got %f", got)
	}
}

func TestAttentionBoostClamped(t *testing.T) {
	cfg := DefaultConfig()
	h := newHarness(t, cfg)

	h.sys.ApplyAttentionBoost(100)
	if got := h.sys.attentionFactor(h.pre); got != cfg.AttentionMax {
		t.Fatalf("expected clamp to %f, got %f", cfg.AttentionMax, got)
	}
}

func TestExplicitFactorOverridesUniform(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	h.sys.ApplyAttentionBoost(2.0)
	if _, err := h.sys.ApplyAttentionMap(map[int64]float64{h.post: 0.5}); err != nil {
		t.Fatalf("attention: %v", err)
	}
	if got := h.sys.attentionFactor(h.post); got != 0.5 {
		t.Fatalf("explicit factor not honored: %f", got)
	}
	if got := h.sys.attentionFactor(h.pre); got != 2.0 {
		t.Fatalf("uniform factor not honored: %f", got)
	}
}

func TestNewSystemRejectsBadConfig(t *testing.T) {
	sub := newHarness(t, DefaultConfig()).sub

	bad := DefaultConfig()
	bad.AttentionAnnealTicks = -1
	if _, err := NewSystem(sub, bad); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for negative anneal, got %v", err)
	}

	bad = DefaultConfig()
	bad.AttentionMin, bad.AttentionMax = 3.0, 0.1
	if _, err := NewSystem(sub, bad); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for inverted bounds, got %v", err)
	}

	bad = DefaultConfig()
	bad.TraceDecay = 1.0
	if _, err := NewSystem(sub, bad); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for trace decay 1.0, got %v", err)
	}

	bad = DefaultConfig()
	bad.CompetenceMode = "sideways"
	if _, err := NewSystem(sub, bad); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for unknown mode, got %v", err)
	}
}

func TestNormalizeCompetenceMode(t *testing.T) {
	cases := map[string]CompetenceMode{
		"":                     CompetenceOff,
		"off":                  CompetenceOff,
		"scale_learning_rates": CompetenceScaleRates,
		"scale_rates":          CompetenceScaleRates,
		"SCALE_P_GATE":         CompetenceScalePGate,
		"p_gate":               CompetenceScalePGate,
	}
	for in, want := range cases {
		if got := NormalizeCompetenceMode(in); got != want {
			t.Fatalf("normalize %q: got %q, want %q", in, got, want)
		}
	}
}
