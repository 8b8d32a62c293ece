package telemetry

import (
	"testing"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/systems"
)

func TestCollector_FlushAndReset(t *testing.T) {
	c := NewCollector()
	c.RecordBirths(components.Grazer, 3)
	c.RecordBirths(components.Predator, 1)
	c.RecordDeaths(components.Grazer, 2)
	c.RecordKills(4, 30)
	c.RecordMigrations(components.Predator, 5)
	c.RecordGrazing(120)
	c.RecordGrazing(30)

	var census systems.Census
	census.Count[components.Grazer] = 2
	census.Weights[components.Grazer] = []float64{10, 20}
	census.Fitness[components.Grazer] = []float64{0.4, 0.6}

	stats := c.Flush(7, census, 500)

	if stats.Year != 7 || stats.Grazers != 2 || stats.Predators != 0 {
		t.Errorf("counts = %+v", stats)
	}
	if stats.GrazerBirths != 3 || stats.PredatorBirths != 1 || stats.GrazerDeaths != 2 {
		t.Errorf("births/deaths = %+v", stats)
	}
	if stats.Kills != 4 || stats.PreyEaten != 30 || stats.PredatorMigrants != 5 {
		t.Errorf("kills/migrants = %+v", stats)
	}
	if stats.FodderEaten != 150 || stats.FodderLeft != 500 {
		t.Errorf("fodder = %v eaten, %v left", stats.FodderEaten, stats.FodderLeft)
	}
	if stats.GrazerWeightMean != 15 || stats.GrazerFitnessMean != 0.5 {
		t.Errorf("means = %v, %v", stats.GrazerWeightMean, stats.GrazerFitnessMean)
	}

	rows := c.LastDistribution()
	if len(rows) != 2 || rows[0].Species != "Grazer" || rows[0].Count != 2 || rows[1].Count != 0 {
		t.Errorf("distribution rows = %+v", rows)
	}

	next := c.Flush(8, systems.Census{}, 0)
	if next.GrazerBirths != 0 || next.Kills != 0 || next.FodderEaten != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
}
