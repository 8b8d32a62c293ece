package systems

import (
	"math"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biosim/components"
)

// Diet is the species-specific part of the model: what counts as food in a
// cell and how the species eats it.
type Diet interface {
	// Food is the amount of food a cell offers the species, used by migration.
	Food(eco *Ecosystem, c *Cell) float64
	// Feed runs the species' feeding pass on c and returns the number of
	// events (grazers fed or prey killed).
	Feed(eco *Ecosystem, c *Cell) FeedResult
}

// FeedResult summarises one feeding pass in one cell.
type FeedResult struct {
	Eaten  float64      // fodder or prey weight consumed
	Kills  int          // grazers killed
	Killed []ecs.Entity // entities eaten, already removed from the cell
}

// sortByFitness stably orders entities by fitness, descending when desc.
func sortByFitness(pop *Population, list []ecs.Entity, desc bool) {
	slices.SortStableFunc(list, func(a, b ecs.Entity) int {
		fa, fb := pop.Body(a).Fitness, pop.Body(b).Fitness
		switch {
		case fa == fb:
			return 0
		case (fa > fb) == desc:
			return -1
		default:
			return 1
		}
	})
}

type grazing struct{}

func (grazing) Food(_ *Ecosystem, c *Cell) float64 {
	return c.Fodder
}

// Feed lets grazers eat in descending fitness order until the fodder runs out.
// The cell keeps the sorted order.
func (grazing) Feed(eco *Ecosystem, c *Cell) FeedResult {
	var res FeedResult
	list := c.Residents(components.Grazer)
	if len(list) == 0 || c.Fodder <= 0 {
		return res
	}
	m := eco.Model(components.Grazer)
	sortByFitness(eco.pop, list, true)
	for _, e := range list {
		if c.Fodder <= 0 {
			break
		}
		amount := math.Min(m.Appetite(), c.Fodder)
		c.Fodder -= amount
		res.Eaten += amount
		m.Gain(eco.pop.Body(e), amount)
	}
	if c.Fodder < 0 {
		c.Fodder = 0
	}
	return res
}

type hunting struct{}

// Food for a predator is the total grazer weight in the cell.
func (hunting) Food(eco *Ecosystem, c *Cell) float64 {
	total := 0.0
	for _, e := range c.Residents(components.Grazer) {
		total += eco.pop.Body(e).Weight
	}
	return total
}

// Feed runs the hunt: predators in descending fitness order each try the
// surviving grazers, weakest first, until sated.
func (hunting) Feed(eco *Ecosystem, c *Cell) FeedResult {
	var res FeedResult
	predators := c.Residents(components.Predator)
	prey := c.Residents(components.Grazer)
	if len(predators) == 0 || len(prey) == 0 {
		return res
	}
	m := eco.Model(components.Predator)
	sortByFitness(eco.pop, predators, true)
	sortByFitness(eco.pop, prey, false)

	killed := make(map[ecs.Entity]bool)
	for _, p := range predators {
		eaten := 0.0
		for _, g := range prey {
			if eaten >= m.Appetite() {
				break
			}
			if killed[g] {
				continue
			}
			hunter := eco.pop.Body(p)
			target := eco.pop.Body(g)
			pk := m.KillProbability(hunter.Fitness, target.Fitness)
			if eco.draw() >= pk {
				continue
			}
			amount := math.Min(target.Weight, m.Appetite()-eaten)
			eaten += amount
			m.Gain(hunter, amount)
			killed[g] = true
			res.Killed = append(res.Killed, g)
		}
		res.Eaten += eaten
		if len(killed) == len(prey) {
			break
		}
	}
	res.Kills = len(res.Killed)

	if res.Kills > 0 {
		survivors := prey[:0:0]
		for _, g := range prey {
			if !killed[g] {
				survivors = append(survivors, g)
			}
		}
		c.SetResidents(components.Grazer, survivors)
	}
	return res
}
