package island

import (
	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
)

// SetSpeciesParameters replaces parameters of one species. The species is
// named as in scenario files ("Grazer", "Herbivore", ...). On error nothing
// changes.
func (isl *Island) SetSpeciesParameters(species string, overrides map[string]float64) error {
	s, err := components.ParseSpecies(species)
	if err != nil {
		return &ConfigurationError{Scope: species, Err: err}
	}
	next, err := isl.eco.Config().WithSpeciesOverrides(s, overrides)
	if err != nil {
		return &ConfigurationError{Scope: s.String(), Err: err}
	}
	isl.apply(next)
	isl.logger.Debug("species parameters set", "species", s.String(), "overrides", overrides)
	return nil
}

// SetTerrainParameters replaces parameters of one vegetated terrain, named by
// its geography symbol ("J" or "S"). On error nothing changes.
func (isl *Island) SetTerrainParameters(symbol string, overrides map[string]float64) error {
	next, err := isl.eco.Config().WithTerrainOverrides(symbol, overrides)
	if err != nil {
		return &ConfigurationError{Scope: symbol, Err: err}
	}
	isl.apply(next)
	isl.logger.Debug("terrain parameters set", "terrain", symbol, "overrides", overrides)
	return nil
}

// SetConfig validates cfg and makes it the parameter set in effect.
func (isl *Island) SetConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return &ConfigurationError{Scope: "config", Err: err}
	}
	isl.apply(cfg.Clone())
	return nil
}

// apply swaps in a validated config and refreshes every animal's fitness,
// which depends on the species parameters.
func (isl *Island) apply(cfg *config.Config) {
	isl.eco.SetConfig(cfg)
	isl.forEachHabitable(isl.eco.RefreshFitness)
}
