package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biosim/components"
)

// Cell is one landscape cell of the island grid. It owns the fodder and the
// ordered resident lists; list order is the draw order within the cell.
type Cell struct {
	Row, Col int
	Terrain  Terrain
	Fodder   float64

	residents [components.NumSpecies][]ecs.Entity
}

// NewCell creates an empty cell. Habitable fodder terrain starts at maxFodder.
func NewCell(row, col int, t Terrain, maxFodder float64) *Cell {
	c := &Cell{Row: row, Col: col, Terrain: t}
	if t == Jungle || t == Savannah {
		c.Fodder = maxFodder
	}
	return c
}

// Position returns the cell's grid coordinates.
func (c *Cell) Position() components.Position {
	return components.Position{Row: c.Row, Col: c.Col}
}

// Habitable reports whether animals can live here.
func (c *Cell) Habitable() bool {
	return c.Terrain.Habitable()
}

// Residents returns the ordered entity list of species s. The slice is owned
// by the cell.
func (c *Cell) Residents(s components.Species) []ecs.Entity {
	return c.residents[s]
}

// SetResidents replaces the list of species s.
func (c *Cell) SetResidents(s components.Species, list []ecs.Entity) {
	c.residents[s] = list
}

// Add appends e to the list of species s.
func (c *Cell) Add(s components.Species, e ecs.Entity) {
	c.residents[s] = append(c.residents[s], e)
}

// Count returns the number of residents of species s.
func (c *Cell) Count(s components.Species) int {
	return len(c.residents[s])
}

// Total returns the number of residents of both species.
func (c *Cell) Total() int {
	return len(c.residents[components.Grazer]) + len(c.residents[components.Predator])
}
