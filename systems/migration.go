package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biosim/components"
)

// Move is a planned migration of one animal to an adjacent cell.
type Move struct {
	Entity  ecs.Entity
	Species components.Species
	From    components.Position
	To      components.Position
}

// CellLookup resolves a grid position to its cell, or nil when the position
// is outside the grid.
type CellLookup func(components.Position) *Cell

// PlanMigration decides, for each resident of species s in c that has not
// moved this year, whether and where it moves. Nothing is changed; the
// returned moves are applied by ApplyMigration once every cell is planned.
func (eco *Ecosystem) PlanMigration(c *Cell, s components.Species, lookup CellLookup) []Move {
	list := c.Residents(s)
	if len(list) == 0 {
		return nil
	}
	m := eco.models[s]
	from := c.Position()
	targets, props := eco.candidates(c, s, lookup)

	var moves []Move
	for _, e := range list {
		if eco.pop.Organism(e).Moved {
			continue
		}
		b := eco.pop.Body(e)
		if eco.draw() >= m.MovementProbability(b.Fitness) {
			continue
		}
		i := m.ChooseDestination(props, eco.rng)
		if i < 0 || targets[i] == c {
			continue
		}
		moves = append(moves, Move{Entity: e, Species: s, From: from, To: targets[i].Position()})
	}
	return moves
}

// candidates lists the cells an animal of species s in c may choose from,
// in draw order, with their propensity weights. The propensities only depend
// on the state before anyone moves, so they are shared by every resident.
// Out-of-grid and uninhabitable targets keep weight 0.
func (eco *Ecosystem) candidates(c *Cell, s components.Species, lookup CellLookup) ([]*Cell, []float64) {
	m := eco.models[s]
	from := c.Position()
	targets := make([]*Cell, 0, len(components.NeighborOffsets)+1)
	for _, off := range components.NeighborOffsets {
		targets = append(targets, lookup(from.Step(off)))
	}
	if eco.cfg.Migration.IncludeCurrentCell {
		targets = append(targets, c)
	}

	exponents := make([]float64, len(targets))
	valid := make([]bool, len(targets))
	for i, t := range targets {
		if t == nil || !t.Habitable() {
			continue
		}
		food := m.Diet().Food(eco, t)
		exponents[i] = m.PropensityExponent(m.RelativeAbundance(food, t.Count(s)))
		valid[i] = true
	}
	return targets, Propensities(exponents, valid)
}

// ApplyMigration moves the planned animals. Each origin keeps its remaining
// residents in order; arrivals are appended in plan order and marked as moved.
func (eco *Ecosystem) ApplyMigration(moves []Move, lookup CellLookup) {
	if len(moves) == 0 {
		return
	}
	leaving := make(map[ecs.Entity]bool, len(moves))
	origins := make(map[*Cell][components.NumSpecies]bool)
	for _, mv := range moves {
		leaving[mv.Entity] = true
		c := lookup(mv.From)
		flags := origins[c]
		flags[mv.Species] = true
		origins[c] = flags
	}
	for c, flags := range origins {
		for s, touched := range flags {
			if !touched {
				continue
			}
			list := c.Residents(components.Species(s))
			kept := list[:0]
			for _, e := range list {
				if !leaving[e] {
					kept = append(kept, e)
				}
			}
			c.SetResidents(components.Species(s), kept)
		}
	}
	for _, mv := range moves {
		lookup(mv.To).Add(mv.Species, mv.Entity)
		eco.pop.Organism(mv.Entity).Moved = true
		*eco.pop.Position(mv.Entity) = mv.To
	}
}
