package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biosim/components"
)

// Population is the arena every animal lives in. Entities are stable handles;
// removal is O(1). Pointers returned by the accessors are invalidated by Spawn
// and Despawn, so callers re-fetch after structural changes.
type Population struct {
	world   *ecs.World
	spawner *ecs.Map3[components.Organism, components.Body, components.Position]
	orgMap  *ecs.Map[components.Organism]
	bodyMap *ecs.Map[components.Body]
	posMap  *ecs.Map[components.Position]
	filter  ecs.Filter2[components.Organism, components.Body]
}

// NewPopulation creates an empty population backed by a fresh ECS world.
func NewPopulation() *Population {
	w := ecs.NewWorld()
	return &Population{
		world:   w,
		spawner: ecs.NewMap3[components.Organism, components.Body, components.Position](w),
		orgMap:  ecs.NewMap[components.Organism](w),
		bodyMap: ecs.NewMap[components.Body](w),
		posMap:  ecs.NewMap[components.Position](w),
		filter:  *ecs.NewFilter2[components.Organism, components.Body](w),
	}
}

// Spawn creates a new animal entity.
func (p *Population) Spawn(org components.Organism, body components.Body, pos components.Position) ecs.Entity {
	return p.spawner.NewEntity(&org, &body, &pos)
}

// Despawn removes an animal from the world.
func (p *Population) Despawn(e ecs.Entity) {
	if p.world.Alive(e) {
		p.world.RemoveEntity(e)
	}
}

// Alive reports whether e still refers to a living animal.
func (p *Population) Alive(e ecs.Entity) bool {
	return p.world.Alive(e)
}

func (p *Population) Organism(e ecs.Entity) *components.Organism {
	return p.orgMap.Get(e)
}

func (p *Population) Body(e ecs.Entity) *components.Body {
	return p.bodyMap.Get(e)
}

func (p *Population) Position(e ecs.Entity) *components.Position {
	return p.posMap.Get(e)
}

// Census aggregates the whole population per species.
type Census struct {
	Count   [components.NumSpecies]int
	Weights [components.NumSpecies][]float64
	Fitness [components.NumSpecies][]float64
}

// Total returns the number of animals of both species.
func (c Census) Total() int {
	n := 0
	for _, v := range c.Count {
		n += v
	}
	return n
}

// Census walks every animal once.
func (p *Population) Census() Census {
	var c Census
	query := p.filter.Query()
	for query.Next() {
		org, body := query.Get()
		s := org.Species
		c.Count[s]++
		c.Weights[s] = append(c.Weights[s], body.Weight)
		c.Fitness[s] = append(c.Fitness[s], body.Fitness)
	}
	return c
}
