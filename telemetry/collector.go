package telemetry

import (
	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/systems"
)

// Collector accumulates events within one year and produces YearStats.
type Collector struct {
	births      [components.NumSpecies]int
	deaths      [components.NumSpecies]int
	migrants    [components.NumSpecies]int
	kills       int
	fodderEaten float64
	preyEaten   float64

	last []DistributionRow
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record adds an event to the current year.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventBirth:
		c.births[ev.Species] += ev.Count
	case EventDeath:
		c.deaths[ev.Species] += ev.Count
	case EventKill:
		c.kills += ev.Count
		c.preyEaten += ev.Amount
	case EventMigration:
		c.migrants[ev.Species] += ev.Count
	case EventGrazing:
		c.fodderEaten += ev.Amount
	}
}

// RecordBirths records n births of species s.
func (c *Collector) RecordBirths(s components.Species, n int) {
	c.Record(NewBirthEvent(s, n))
}

// RecordDeaths records n deaths of species s.
func (c *Collector) RecordDeaths(s components.Species, n int) {
	c.Record(NewDeathEvent(s, n))
}

// RecordKills records n kills yielding eaten kg of prey.
func (c *Collector) RecordKills(n int, eaten float64) {
	c.Record(NewKillEvent(n, eaten))
}

// RecordMigrations records n animals of species s changing cells.
func (c *Collector) RecordMigrations(s components.Species, n int) {
	c.Record(NewMigrationEvent(s, n))
}

// RecordGrazing records fodder eaten by grazers.
func (c *Collector) RecordGrazing(eaten float64) {
	c.Record(NewGrazingEvent(eaten))
}

// Flush produces the YearStats for year and resets the counters. The census
// is taken at year end; fodderLeft is the island's total remaining fodder.
func (c *Collector) Flush(year int, census systems.Census, fodderLeft float64) YearStats {
	g, p := components.Grazer, components.Predator
	gw, pw := Describe(census.Weights[g]), Describe(census.Weights[p])
	gf, pf := Describe(census.Fitness[g]), Describe(census.Fitness[p])

	stats := YearStats{
		Year: year,

		Grazers:   census.Count[g],
		Predators: census.Count[p],

		GrazerBirths:     c.births[g],
		PredatorBirths:   c.births[p],
		GrazerDeaths:     c.deaths[g],
		PredatorDeaths:   c.deaths[p],
		Kills:            c.kills,
		GrazerMigrants:   c.migrants[g],
		PredatorMigrants: c.migrants[p],

		FodderEaten: c.fodderEaten,
		PreyEaten:   c.preyEaten,
		FodderLeft:  fodderLeft,

		GrazerWeightMean:    gw.Mean,
		PredatorWeightMean:  pw.Mean,
		GrazerFitnessMean:   gf.Mean,
		PredatorFitnessMean: pf.Mean,
	}

	c.last = []DistributionRow{
		newDistributionRow(year, g, census.Count[g], gw, gf),
		newDistributionRow(year, p, census.Count[p], pw, pf),
	}

	// Reset for next year
	*c = Collector{last: c.last}

	return stats
}

// LastDistribution returns the per-species distribution rows of the most
// recent Flush.
func (c *Collector) LastDistribution() []DistributionRow {
	return c.last
}

// DistributionRow is one species' weight and fitness distribution at year end.
type DistributionRow struct {
	Year        int     `csv:"year"`
	Species     string  `csv:"species"`
	Count       int     `csv:"count"`
	WeightMean  float64 `csv:"weight_mean"`
	WeightStd   float64 `csv:"weight_std"`
	WeightP10   float64 `csv:"weight_p10"`
	WeightP50   float64 `csv:"weight_p50"`
	WeightP90   float64 `csv:"weight_p90"`
	FitnessMean float64 `csv:"fitness_mean"`
	FitnessP10  float64 `csv:"fitness_p10"`
	FitnessP50  float64 `csv:"fitness_p50"`
	FitnessP90  float64 `csv:"fitness_p90"`
}

func newDistributionRow(year int, s components.Species, n int, w, f Distribution) DistributionRow {
	return DistributionRow{
		Year:        year,
		Species:     s.String(),
		Count:       n,
		WeightMean:  w.Mean,
		WeightStd:   w.Std,
		WeightP10:   w.P10,
		WeightP50:   w.P50,
		WeightP90:   w.P90,
		FitnessMean: f.Mean,
		FitnessP10:  f.P10,
		FitnessP50:  f.P50,
		FitnessP90:  f.P90,
	}
}
