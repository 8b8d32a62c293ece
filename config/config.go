// Package config provides configuration loading for the island model.
//
// A Config is built once per run and treated as immutable afterwards. Changing a
// parameter produces a validated copy (see WithSpeciesOverrides); nothing in the
// model reads mutable package-level defaults.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all model parameters.
type Config struct {
	Seed      int64           `yaml:"seed"`
	Grazer    SpeciesParams   `yaml:"grazer"`
	Predator  SpeciesParams   `yaml:"predator"`
	Jungle    TerrainParams   `yaml:"jungle"`
	Savannah  TerrainParams   `yaml:"savannah"`
	Migration MigrationConfig `yaml:"migration"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Run       RunConfig       `yaml:"run"`
}

// SpeciesParams holds the behavioural constants of one species.
// Keys follow the notation of the population model.
type SpeciesParams struct {
	BirthWeight      float64 `yaml:"w_birth"`     // mean birth weight
	BirthWeightSigma float64 `yaml:"sigma_birth"` // birth weight std-dev
	Beta             float64 `yaml:"beta"`        // fraction of eaten food turned into weight
	Eta              float64 `yaml:"eta"`         // yearly weight loss rate
	AgeHalf          float64 `yaml:"a_half"`
	PhiAge           float64 `yaml:"phi_age"`
	WeightHalf       float64 `yaml:"w_half"`
	PhiWeight        float64 `yaml:"phi_weight"`
	Mu               float64 `yaml:"mu"`     // movement constant
	Lambda           float64 `yaml:"lambda"` // dispersal sharpness
	Gamma            float64 `yaml:"gamma"`  // procreation constant
	Zeta             float64 `yaml:"zeta"`   // birth feasibility factor
	Xi               float64 `yaml:"xi"`     // litter-loss factor
	Omega            float64 `yaml:"omega"`  // death constant
	Appetite         float64 `yaml:"F"`
	DeltaPhiMax      float64 `yaml:"DeltaPhiMax,omitempty"` // predators only
}

// TerrainParams holds fodder parameters for a vegetated terrain.
type TerrainParams struct {
	MaxFodder float64 `yaml:"f_max"`
	Alpha     float64 `yaml:"alpha,omitempty"` // savannah regrowth rate
}

// MigrationConfig holds migration options.
type MigrationConfig struct {
	// IncludeCurrentCell adds the animal's own cell to the destination draw,
	// weighted by its own relative fodder abundance.
	IncludeCurrentCell bool `yaml:"include_current_cell"`
}

// TelemetryConfig holds bookmark detection thresholds.
type TelemetryConfig struct {
	BookmarkHistory  int     `yaml:"bookmark_history"`
	CrashDropPercent float64 `yaml:"crash_drop_percent"` // grazer drop from recent peak that counts as a crash
	CrashMinDrop     int     `yaml:"crash_min_drop"`
	StableWindows    int     `yaml:"stable_windows"` // consecutive calm years before stable_ecosystem fires
	StableCV         float64 `yaml:"stable_cv"`      // max coefficient of variation for a calm year
}

// RunConfig holds driver defaults.
type RunConfig struct {
	Years    int `yaml:"years"`
	LogEvery int `yaml:"log_every"`
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	return Load("")
}

// MustDefault is like Default but panics on error.
func MustDefault() *Config {
	cfg, err := Default()
	if err != nil {
		panic(fmt.Sprintf("config: failed to load defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Decode into same struct - only overwrites fields present in file
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			if unknownField(err) {
				return nil, fmt.Errorf("parsing config file: %w: %w", ErrUnknownParameter, err)
			}
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// unknownField reports whether a decode error names a key the config lacks.
func unknownField(err error) bool {
	var te *yaml.TypeError
	if !errors.As(err, &te) {
		return false
	}
	for _, msg := range te.Errors {
		if strings.Contains(msg, "not found in type") {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
