package main

import (
	"math"
	"strings"
	"testing"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
)

func TestParamVector_NormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.ExtractFromConfig(config.MustDefault())
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(raw[i]-back[i]) > 1e-9 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestParamVector_SpecsAreValid(t *testing.T) {
	pv := NewParamVector()
	seen := make(map[string]bool)
	for _, spec := range pv.Specs {
		if spec.Min >= spec.Max {
			t.Errorf("%s: min %v >= max %v", spec.Name, spec.Min, spec.Max)
		}
		if seen[spec.Name] {
			t.Errorf("duplicate %s", spec.Name)
		}
		seen[spec.Name] = true

		known := false
		for _, name := range config.SpeciesParamNames(spec.Species) {
			known = known || name == spec.Key
		}
		if !known {
			t.Errorf("%s: %s has no parameter %q", spec.Name, spec.Species, spec.Key)
		}
	}
}

func TestParamVector_Clamp(t *testing.T) {
	pv := NewParamVector()
	below := make([]float64, pv.Dim())
	above := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		below[i] = spec.Min - 10
		above[i] = spec.Max + 10
	}
	lo, hi := pv.Clamp(below), pv.Clamp(above)
	for i, spec := range pv.Specs {
		if lo[i] != spec.Min || hi[i] != spec.Max {
			t.Errorf("%s: clamp gave %v, %v", spec.Name, lo[i], hi[i])
		}
	}
}

func TestParamVector_ApplyToConfig(t *testing.T) {
	pv := NewParamVector()
	base := config.MustDefault()

	values := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		values[i] = spec.Max
	}
	cfg, err := pv.ApplyToConfig(base, values)
	if err != nil {
		t.Fatal(err)
	}
	if cfg == base {
		t.Fatal("ApplyToConfig must return a copy")
	}
	if base.Grazer.Gamma != 0.2 {
		t.Errorf("base mutated: grazer gamma = %v", base.Grazer.Gamma)
	}

	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Max {
			t.Errorf("%s = %v, want %v", spec.Name, got[i], spec.Max)
		}
	}
	if cfg.Species(components.Predator).DeltaPhiMax != 20 {
		t.Errorf("predator DeltaPhiMax = %v", cfg.Predator.DeltaPhiMax)
	}
}

func TestParamVector_Format(t *testing.T) {
	pv := NewParamVector()
	s := pv.Format(pv.ExtractFromConfig(config.MustDefault()))
	if !strings.HasPrefix(s, "grazer_gamma=0.200000 ") {
		t.Errorf("Format = %q", s)
	}
	if n := len(strings.Fields(s)); n != pv.Dim() {
		t.Errorf("Format has %d fields, want %d", n, pv.Dim())
	}
}
