package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pthm-cable/biosim/components"
)

var (
	// ErrUnknownParameter is returned for a parameter name the target does not have.
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrInvalidParameter is returned for a value outside the parameter's legal range.
	ErrInvalidParameter = errors.New("invalid parameter value")
	// ErrUnknownTerrain is returned for a terrain symbol with no parameters.
	ErrUnknownTerrain = errors.New("unknown terrain")
)

// ParameterError describes a rejected parameter override.
type ParameterError struct {
	Scope string // species name or terrain symbol
	Name  string
	Value float64
	Rule  string // legal range, empty for unknown names
	Err   error
}

func (e *ParameterError) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("%s parameter %q: %v", e.Scope, e.Name, e.Err)
	}
	return fmt.Sprintf("%s parameter %s=%g: %v (must be %s)", e.Scope, e.Name, e.Value, e.Err, e.Rule)
}

func (e *ParameterError) Unwrap() error {
	return e.Err
}

// paramSpec binds a parameter name to its storage and legal range.
type paramSpec[T any] struct {
	name  string
	field func(*T) *float64
	valid func(float64) bool
	rule  string
}

func nonNegative(v float64) bool { return v >= 0 }
func positive(v float64) bool    { return v > 0 }
func unitOpen(v float64) bool    { return v > 0 && v <= 1 }
func unitClosed(v float64) bool  { return v >= 0 && v <= 1 }

var sharedSpeciesSpecs = []paramSpec[SpeciesParams]{
	{"w_birth", func(p *SpeciesParams) *float64 { return &p.BirthWeight }, positive, "> 0"},
	{"sigma_birth", func(p *SpeciesParams) *float64 { return &p.BirthWeightSigma }, nonNegative, ">= 0"},
	{"beta", func(p *SpeciesParams) *float64 { return &p.Beta }, nonNegative, ">= 0"},
	{"eta", func(p *SpeciesParams) *float64 { return &p.Eta }, unitOpen, "in (0, 1]"},
	{"a_half", func(p *SpeciesParams) *float64 { return &p.AgeHalf }, nonNegative, ">= 0"},
	{"phi_age", func(p *SpeciesParams) *float64 { return &p.PhiAge }, nonNegative, ">= 0"},
	{"w_half", func(p *SpeciesParams) *float64 { return &p.WeightHalf }, nonNegative, ">= 0"},
	{"phi_weight", func(p *SpeciesParams) *float64 { return &p.PhiWeight }, nonNegative, ">= 0"},
	{"mu", func(p *SpeciesParams) *float64 { return &p.Mu }, nonNegative, ">= 0"},
	{"lambda", func(p *SpeciesParams) *float64 { return &p.Lambda }, nonNegative, ">= 0"},
	{"gamma", func(p *SpeciesParams) *float64 { return &p.Gamma }, nonNegative, ">= 0"},
	{"zeta", func(p *SpeciesParams) *float64 { return &p.Zeta }, nonNegative, ">= 0"},
	{"xi", func(p *SpeciesParams) *float64 { return &p.Xi }, nonNegative, ">= 0"},
	{"omega", func(p *SpeciesParams) *float64 { return &p.Omega }, nonNegative, ">= 0"},
	{"F", func(p *SpeciesParams) *float64 { return &p.Appetite }, nonNegative, ">= 0"},
}

var predatorOnlySpecs = []paramSpec[SpeciesParams]{
	{"DeltaPhiMax", func(p *SpeciesParams) *float64 { return &p.DeltaPhiMax }, positive, "> 0"},
}

var jungleSpecs = []paramSpec[TerrainParams]{
	{"f_max", func(p *TerrainParams) *float64 { return &p.MaxFodder }, nonNegative, ">= 0"},
}

var savannahSpecs = []paramSpec[TerrainParams]{
	{"f_max", func(p *TerrainParams) *float64 { return &p.MaxFodder }, nonNegative, ">= 0"},
	{"alpha", func(p *TerrainParams) *float64 { return &p.Alpha }, unitClosed, "in [0, 1]"},
}

func speciesSpecs(s components.Species) []paramSpec[SpeciesParams] {
	if s == components.Predator {
		return append(append([]paramSpec[SpeciesParams](nil), sharedSpeciesSpecs...), predatorOnlySpecs...)
	}
	return sharedSpeciesSpecs
}

// Species returns the parameters of species s.
func (c *Config) Species(s components.Species) *SpeciesParams {
	if s == components.Predator {
		return &c.Predator
	}
	return &c.Grazer
}

// SpeciesParamNames lists the parameter names accepted for species s.
func SpeciesParamNames(s components.Species) []string {
	specs := speciesSpecs(s)
	names := make([]string, len(specs))
	for i, spec := range specs {
		names[i] = spec.name
	}
	return names
}

// terrain resolves a terrain symbol to its parameter block and specs.
// Desert, Mountain and Ocean carry no fodder and accept no parameters.
func (c *Config) terrain(symbol string) (*TerrainParams, []paramSpec[TerrainParams], error) {
	switch strings.ToUpper(strings.TrimSpace(symbol)) {
	case "J":
		return &c.Jungle, jungleSpecs, nil
	case "S":
		return &c.Savannah, savannahSpecs, nil
	case "D", "M", "O":
		return nil, nil, nil
	}
	return nil, nil, fmt.Errorf("%w %q", ErrUnknownTerrain, symbol)
}

// applyOverrides validates every override before writing any of them.
func applyOverrides[T any](scope string, target *T, specs []paramSpec[T], overrides map[string]float64) error {
	// Sorted for a stable first error.
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	index := make(map[string]paramSpec[T], len(specs))
	for _, spec := range specs {
		index[spec.name] = spec
	}

	for _, name := range names {
		spec, ok := index[name]
		if !ok {
			return &ParameterError{Scope: scope, Name: name, Err: ErrUnknownParameter}
		}
		if v := overrides[name]; !spec.valid(v) {
			return &ParameterError{Scope: scope, Name: name, Value: v, Rule: spec.rule, Err: ErrInvalidParameter}
		}
	}
	for _, name := range names {
		*index[name].field(target) = overrides[name]
	}
	return nil
}

// WithSpeciesOverrides returns a copy of c with the given species parameters replaced.
// c is never modified; on error no copy is returned.
func (c *Config) WithSpeciesOverrides(s components.Species, overrides map[string]float64) (*Config, error) {
	next := c.Clone()
	if err := applyOverrides(s.String(), next.Species(s), speciesSpecs(s), overrides); err != nil {
		return nil, err
	}
	return next, nil
}

// WithTerrainOverrides returns a copy of c with the given terrain parameters replaced.
func (c *Config) WithTerrainOverrides(symbol string, overrides map[string]float64) (*Config, error) {
	next := c.Clone()
	params, specs, err := next.terrain(symbol)
	if err != nil {
		return nil, err
	}
	if err := applyOverrides(symbol, params, specs, overrides); err != nil {
		return nil, err
	}
	return next, nil
}

func validateAll[T any](scope string, target *T, specs []paramSpec[T]) error {
	for _, spec := range specs {
		if v := *spec.field(target); !spec.valid(v) {
			return &ParameterError{Scope: scope, Name: spec.name, Value: v, Rule: spec.rule, Err: ErrInvalidParameter}
		}
	}
	return nil
}

// Validate checks every parameter against its legal range.
func (c *Config) Validate() error {
	for _, s := range components.AllSpecies() {
		if err := validateAll(s.String(), c.Species(s), speciesSpecs(s)); err != nil {
			return err
		}
	}
	if err := validateAll("J", &c.Jungle, jungleSpecs); err != nil {
		return err
	}
	if err := validateAll("S", &c.Savannah, savannahSpecs); err != nil {
		return err
	}
	return nil
}
