package island

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/systems"
)

// AnimalSpec describes one animal to place.
type AnimalSpec struct {
	Species string  `yaml:"species"`
	Age     int     `yaml:"age"`
	Weight  float64 `yaml:"weight"`
}

// PopulationEntry places a group of animals in one cell. Loc is (row, col).
type PopulationEntry struct {
	Loc []int        `yaml:"loc"`
	Pop []AnimalSpec `yaml:"pop"`
}

// placement is a validated animal ready to spawn.
type placement struct {
	cell    *systems.Cell
	species components.Species
	age     int
	weight  float64
}

// validate checks entry i and returns the animals that may be placed along
// with the errors of those that may not.
func (isl *Island) validate(i int, entry PopulationEntry) ([]placement, []error) {
	row, col := -1, -1
	if len(entry.Loc) == 2 {
		row, col = entry.Loc[0], entry.Loc[1]
	}
	reject := func(animal int, reason string) error {
		return &PlacementError{Index: i, Animal: animal, Row: row, Col: col, Reason: reason}
	}

	if len(entry.Loc) != 2 {
		return nil, []error{reject(-1, fmt.Sprintf("loc must hold two coordinates, got %d", len(entry.Loc)))}
	}
	c := isl.Cell(row, col)
	if c == nil {
		return nil, []error{reject(-1, "location outside the island")}
	}
	if !c.Habitable() {
		return nil, []error{reject(-1, fmt.Sprintf("%v is not habitable", c.Terrain))}
	}

	var ok []placement
	var errs []error
	for j, a := range entry.Pop {
		s, err := components.ParseSpecies(a.Species)
		switch {
		case err != nil:
			errs = append(errs, reject(j, err.Error()))
		case a.Weight <= 0:
			errs = append(errs, reject(j, fmt.Sprintf("weight %g must be positive", a.Weight)))
		case a.Age < 0:
			errs = append(errs, reject(j, fmt.Sprintf("age %d must not be negative", a.Age)))
		default:
			ok = append(ok, placement{cell: c, species: s, age: a.Age, weight: a.Weight})
		}
	}
	return ok, errs
}

func (isl *Island) place(ps []placement) {
	for _, p := range ps {
		isl.eco.Spawn(p.cell, p.species, p.age, p.weight)
	}
}

// AddPopulation places the animals of every entry. Invalid entries or animals
// are skipped and reported as *PlacementError values joined into the returned
// error; every valid animal is placed regardless.
func (isl *Island) AddPopulation(entries []PopulationEntry) error {
	var errs []error
	placed := 0
	for i, entry := range entries {
		ok, bad := isl.validate(i, entry)
		isl.place(ok)
		placed += len(ok)
		errs = append(errs, bad...)
	}
	isl.logger.Debug("population added", "entries", len(entries), "placed", placed, "rejected", len(errs))
	return errors.Join(errs...)
}

// AddPopulationStrict is like AddPopulation but places nothing unless every
// entry is valid.
func (isl *Island) AddPopulationStrict(entries []PopulationEntry) error {
	var all []placement
	var errs []error
	for i, entry := range entries {
		ok, bad := isl.validate(i, entry)
		all = append(all, ok...)
		errs = append(errs, bad...)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	isl.place(all)
	isl.logger.Debug("population added", "entries", len(entries), "placed", len(all))
	return nil
}
