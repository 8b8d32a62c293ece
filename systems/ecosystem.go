package systems

import (
	"math"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
)

// Ecosystem ties the animal models, the population arena and the shared RNG
// together and runs the per-cell passes of the yearly cycle. It is not safe
// for concurrent use.
type Ecosystem struct {
	cfg    *config.Config
	models [components.NumSpecies]*AnimalModel
	pop    *Population
	rng    *rand.Rand
}

// NewEcosystem creates an empty ecosystem. All randomness is drawn from rng.
func NewEcosystem(cfg *config.Config, rng *rand.Rand) *Ecosystem {
	eco := &Ecosystem{pop: NewPopulation(), rng: rng}
	eco.SetConfig(cfg)
	return eco
}

// SetConfig swaps the parameters used from now on. Existing animals keep their
// weight and age; call RefreshFitness on each cell to bring fitness in line.
func (eco *Ecosystem) SetConfig(cfg *config.Config) {
	eco.cfg = cfg
	for _, s := range components.AllSpecies() {
		eco.models[s] = NewAnimalModel(s, *cfg.Species(s))
	}
}

func (eco *Ecosystem) Config() *config.Config {
	return eco.cfg
}

// Model returns the rules of species s.
func (eco *Ecosystem) Model(s components.Species) *AnimalModel {
	return eco.models[s]
}

func (eco *Ecosystem) Population() *Population {
	return eco.pop
}

func (eco *Ecosystem) draw() float64 {
	return eco.rng.Float64()
}

// Spawn creates an animal of species s in cell c with its fitness computed.
func (eco *Ecosystem) Spawn(c *Cell, s components.Species, age int, weight float64) ecs.Entity {
	body := components.Body{Weight: weight, Age: age}
	eco.models[s].Refresh(&body)
	e := eco.pop.Spawn(components.Organism{Species: s}, body, c.Position())
	c.Add(s, e)
	return e
}

// RefreshFitness recomputes the fitness of every resident of c.
func (eco *Ecosystem) RefreshFitness(c *Cell) {
	for _, s := range components.AllSpecies() {
		m := eco.models[s]
		for _, e := range c.Residents(s) {
			m.Refresh(eco.pop.Body(e))
		}
	}
}

// Regrow restores fodder at the start of the year. Jungle refills completely,
// Savannah recovers a fraction alpha of its deficit.
func (eco *Ecosystem) Regrow(c *Cell) {
	switch c.Terrain {
	case Jungle:
		c.Fodder = eco.cfg.Jungle.MaxFodder
	case Savannah:
		p := eco.cfg.Savannah
		c.Fodder = math.Min(p.MaxFodder, c.Fodder+p.Alpha*(p.MaxFodder-c.Fodder))
	default:
		c.Fodder = 0
	}
}

// FeedGrazers runs the grazer feeding pass.
func (eco *Ecosystem) FeedGrazers(c *Cell) FeedResult {
	return eco.models[components.Grazer].Diet().Feed(eco, c)
}

// FeedPredators runs the hunt and removes the killed grazers from the world.
func (eco *Ecosystem) FeedPredators(c *Cell) FeedResult {
	res := eco.models[components.Predator].Diet().Feed(eco, c)
	for _, e := range res.Killed {
		eco.pop.Despawn(e)
	}
	return res
}

// Procreate runs the birth draws of both species in c. Each species uses the
// head count before any birth; newborns are appended after all draws and are
// not mothers this year. It returns the births per species.
func (eco *Ecosystem) Procreate(c *Cell) [components.NumSpecies]int {
	var births [components.NumSpecies]int
	for _, s := range components.AllSpecies() {
		m := eco.models[s]
		list := c.Residents(s)
		n := len(list)
		if n < 2 {
			continue
		}
		var newborns []float64
		for _, e := range list[:n] {
			mother := eco.pop.Body(e)
			p := m.BirthProbability(mother.Weight, mother.Fitness, n)
			if eco.draw() >= p {
				continue
			}
			if w, ok := m.GiveBirth(mother, eco.rng); ok {
				newborns = append(newborns, w)
			}
		}
		for _, w := range newborns {
			eco.Spawn(c, s, 0, w)
		}
		births[s] = len(newborns)
	}
	return births
}

// Age increments every resident's age and clears its moved flag.
func (eco *Ecosystem) Age(c *Cell) {
	for _, s := range components.AllSpecies() {
		m := eco.models[s]
		for _, e := range c.Residents(s) {
			eco.pop.Organism(e).Moved = false
			b := eco.pop.Body(e)
			b.Age++
			m.Refresh(b)
		}
	}
}

// LoseWeight applies the yearly weight loss to every resident.
func (eco *Ecosystem) LoseWeight(c *Cell) {
	for _, s := range components.AllSpecies() {
		m := eco.models[s]
		for _, e := range c.Residents(s) {
			m.LoseWeight(eco.pop.Body(e))
		}
	}
}

// AgeAndLoseWeight runs Age then LoseWeight.
func (eco *Ecosystem) AgeAndLoseWeight(c *Cell) {
	eco.Age(c)
	eco.LoseWeight(c)
}

// ApplyDeaths removes the animals that die this year. Starved animals die
// without a draw; every other animal consumes exactly one draw.
func (eco *Ecosystem) ApplyDeaths(c *Cell) [components.NumSpecies]int {
	var deaths [components.NumSpecies]int
	for _, s := range components.AllSpecies() {
		m := eco.models[s]
		list := c.Residents(s)
		var dead []ecs.Entity
		survivors := list[:0]
		for _, e := range list {
			b := eco.pop.Body(e)
			if b.Weight <= 0 || eco.draw() < m.DeathProbability(b.Weight, b.Fitness) {
				dead = append(dead, e)
				continue
			}
			survivors = append(survivors, e)
		}
		c.SetResidents(s, survivors)
		for _, e := range dead {
			eco.pop.Despawn(e)
		}
		deaths[s] = len(dead)
	}
	return deaths
}
