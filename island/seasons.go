package island

import (
	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/systems"
	"github.com/pthm-cable/biosim/telemetry"
)

// Season is one phase of the yearly cycle.
type Season int

const (
	Feeding Season = iota
	Procreation
	Migration
	Aging
	WeightLoss
	Death
)

var seasonOrder = []Season{Feeding, Procreation, Migration, Aging, WeightLoss, Death}

// Seasons returns the fixed order in which seasons run each year.
func Seasons() []Season {
	return append([]Season(nil), seasonOrder...)
}

func (s Season) String() string {
	if int(s) < len(telemetry.Phases) && s >= 0 {
		return telemetry.Phases[s]
	}
	return "unknown"
}

// AdvanceYear runs the six seasons in order. Each season finishes on every
// cell before the next one starts.
func (isl *Island) AdvanceYear() {
	isl.perf.StartYear()
	for _, s := range seasonOrder {
		isl.perf.StartPhase(s.String())
		isl.runSeason(s)
		isl.logger.Debug("season done", "year", isl.year+1, "season", s.String())
	}
	isl.perf.EndYear()
	isl.year++

	fodder := 0.0
	isl.forEachCell(func(c *systems.Cell) { fodder += c.Fodder })
	isl.last = isl.collector.Flush(isl.year, isl.eco.Population().Census(), fodder)
	isl.logger.Debug("year done", "stats", isl.last)
}

// Run advances the island by n years.
func (isl *Island) Run(n int) {
	for i := 0; i < n; i++ {
		isl.AdvanceYear()
	}
}

func (isl *Island) runSeason(s Season) {
	switch s {
	case Feeding:
		isl.feed()
	case Procreation:
		isl.procreate()
	case Migration:
		isl.migrate()
	case Aging:
		isl.forEachHabitable(isl.eco.Age)
	case WeightLoss:
		isl.forEachHabitable(isl.eco.LoseWeight)
	case Death:
		isl.die()
	}
}

// feed regrows fodder, then lets grazers and predators eat, cell by cell.
func (isl *Island) feed() {
	isl.forEachHabitable(func(c *systems.Cell) {
		isl.eco.Regrow(c)
		grazed := isl.eco.FeedGrazers(c)
		isl.collector.RecordGrazing(grazed.Eaten)
		hunt := isl.eco.FeedPredators(c)
		if hunt.Kills > 0 {
			isl.collector.RecordKills(hunt.Kills, hunt.Eaten)
		}
	})
}

func (isl *Island) procreate() {
	isl.forEachHabitable(func(c *systems.Cell) {
		births := isl.eco.Procreate(c)
		for s, n := range births {
			if n > 0 {
				isl.collector.RecordBirths(components.Species(s), n)
			}
		}
	})
}

// migrate plans every departure against the pre-migration state, grazers
// first, then applies all arrivals at once.
func (isl *Island) migrate() {
	var moves []systems.Move
	for _, s := range components.AllSpecies() {
		isl.forEachHabitable(func(c *systems.Cell) {
			moves = append(moves, isl.eco.PlanMigration(c, s, isl.lookup)...)
		})
	}
	isl.eco.ApplyMigration(moves, isl.lookup)

	var counts [components.NumSpecies]int
	for _, mv := range moves {
		counts[mv.Species]++
	}
	for s, n := range counts {
		if n > 0 {
			isl.collector.RecordMigrations(components.Species(s), n)
		}
	}
}

func (isl *Island) die() {
	isl.forEachHabitable(func(c *systems.Cell) {
		deaths := isl.eco.ApplyDeaths(c)
		for s, n := range deaths {
			if n > 0 {
				isl.collector.RecordDeaths(components.Species(s), n)
			}
		}
	})
}
