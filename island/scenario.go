package island

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
)

// Geography is a list of map rows. In YAML it may be written either as a
// sequence of strings or as one block scalar.
type Geography []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (g *Geography) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*g = ParseGeography(value.Value)
		return nil
	case yaml.SequenceNode:
		var rows []string
		if err := value.Decode(&rows); err != nil {
			return err
		}
		*g = rows
		return nil
	}
	return fmt.Errorf("line %d: geography must be a string or a list of rows", value.Line)
}

// ScenarioParameters holds parameter overrides keyed by species name and by
// terrain symbol.
type ScenarioParameters struct {
	Species map[string]map[string]float64 `yaml:",inline"`
	Terrain map[string]map[string]float64 `yaml:"terrain"`
}

// Scenario is a complete starting state: map, animals and overrides.
type Scenario struct {
	Geography  Geography          `yaml:"geography"`
	Population []PopulationEntry  `yaml:"population"`
	Parameters ScenarioParameters `yaml:"parameters"`
}

// LoadScenario reads a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &sc, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ApplyParameters returns cfg with the scenario's species overrides and then
// its terrain overrides applied, each in key order. cfg is not modified.
func (sc *Scenario) ApplyParameters(cfg *config.Config) (*config.Config, error) {
	next := cfg
	for _, name := range sortedKeys(sc.Parameters.Species) {
		s, err := components.ParseSpecies(name)
		if err != nil {
			return nil, &ConfigurationError{Scope: name, Err: err}
		}
		if next, err = next.WithSpeciesOverrides(s, sc.Parameters.Species[name]); err != nil {
			return nil, &ConfigurationError{Scope: s.String(), Err: err}
		}
	}
	for _, symbol := range sortedKeys(sc.Parameters.Terrain) {
		var err error
		if next, err = next.WithTerrainOverrides(symbol, sc.Parameters.Terrain[symbol]); err != nil {
			return nil, &ConfigurationError{Scope: symbol, Err: err}
		}
	}
	return next, nil
}

// WithoutParameters returns a copy of the scenario with no overrides.
func (sc *Scenario) WithoutParameters() *Scenario {
	cp := *sc
	cp.Parameters = ScenarioParameters{}
	return &cp
}

// Build creates the island, applies the parameter overrides and places the
// population. When strict is set a single invalid population entry fails the
// build; otherwise rejected entries are logged and skipped.
func (sc *Scenario) Build(cfg *config.Config, strict bool, opts ...Option) (*Island, error) {
	isl, err := New(sc.Geography, cfg, opts...)
	if err != nil {
		return nil, err
	}
	next, err := sc.ApplyParameters(isl.Config())
	if err != nil {
		return nil, err
	}
	isl.apply(next)

	if strict {
		if err := isl.AddPopulationStrict(sc.Population); err != nil {
			return nil, err
		}
		return isl, nil
	}
	if err := isl.AddPopulation(sc.Population); err != nil {
		isl.logger.Warn("population entries rejected", "error", err)
	}
	return isl, nil
}
