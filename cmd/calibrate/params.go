// Package main provides CMA-ES calibration of species parameters for
// long-lived grazer/predator coexistence.
package main

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
)

// ParamSpec defines a single calibrated parameter.
type ParamSpec struct {
	Name    string             // column name in the log
	Species components.Species // owner of the parameter
	Key     string             // parameter key as in config files
	Min     float64
	Max     float64
}

// ParamVector holds the set of all calibrated parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of calibrated parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Grazer
			{Name: "grazer_gamma", Species: components.Grazer, Key: "gamma", Min: 0.05, Max: 1.0},
			{Name: "grazer_omega", Species: components.Grazer, Key: "omega", Min: 0.05, Max: 0.9},
			{Name: "grazer_mu", Species: components.Grazer, Key: "mu", Min: 0.0, Max: 1.0},
			{Name: "grazer_F", Species: components.Grazer, Key: "F", Min: 4, Max: 20},
			// Predator
			{Name: "pred_gamma", Species: components.Predator, Key: "gamma", Min: 0.1, Max: 1.5},
			{Name: "pred_omega", Species: components.Predator, Key: "omega", Min: 0.2, Max: 1.2},
			{Name: "pred_mu", Species: components.Predator, Key: "mu", Min: 0.0, Max: 1.0},
			{Name: "pred_F", Species: components.Predator, Key: "F", Min: 10, Max: 80},
			{Name: "pred_beta", Species: components.Predator, Key: "beta", Min: 0.3, Max: 1.0},
			{Name: "pred_DeltaPhiMax", Species: components.Predator, Key: "DeltaPhiMax", Min: 1, Max: 20},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// overrides groups clamped values by species, keyed as in config files.
func (pv *ParamVector) overrides(values []float64) [components.NumSpecies]map[string]float64 {
	clamped := pv.Clamp(values)
	var out [components.NumSpecies]map[string]float64
	for i, spec := range pv.Specs {
		if out[spec.Species] == nil {
			out[spec.Species] = make(map[string]float64)
		}
		out[spec.Species][spec.Key] = clamped[i]
	}
	return out
}

// ApplyToConfig returns a copy of cfg with the (clamped) values applied.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) (*config.Config, error) {
	next := cfg
	for s, overrides := range pv.overrides(values) {
		if overrides == nil {
			continue
		}
		var err error
		if next, err = next.WithSpeciesOverrides(components.Species(s), overrides); err != nil {
			return nil, err
		}
	}
	if next == cfg {
		next = cfg.Clone()
	}
	return next, nil
}

// ExtractFromConfig returns the current values of every parameter in cfg,
// clamped into bounds so they can seed the search.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		p := cfg.Species(spec.Species)
		switch spec.Key {
		case "gamma":
			v[i] = p.Gamma
		case "omega":
			v[i] = p.Omega
		case "mu":
			v[i] = p.Mu
		case "F":
			v[i] = p.Appetite
		case "beta":
			v[i] = p.Beta
		case "DeltaPhiMax":
			v[i] = p.DeltaPhiMax
		default:
			panic(fmt.Sprintf("calibrate: no accessor for %s", spec.Key))
		}
	}
	return pv.Clamp(v)
}

// Format renders values as space-separated name=value pairs.
func (pv *ParamVector) Format(values []float64) string {
	parts := make([]string, len(pv.Specs))
	for i, spec := range pv.Specs {
		parts[i] = fmt.Sprintf("%s=%.6f", spec.Name, values[i])
	}
	return strings.Join(parts, " ")
}
