package island

import (
	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/systems"
)

// CellSnapshot is the state of one cell.
type CellSnapshot struct {
	Row       int     `yaml:"row"`
	Col       int     `yaml:"col"`
	Terrain   string  `yaml:"terrain"`
	Fodder    float64 `yaml:"fodder"`
	Grazers   int     `yaml:"grazers"`
	Predators int     `yaml:"predators"`
}

// Snapshot is a read-only view of the whole island.
type Snapshot struct {
	Year       int                        `yaml:"year"`
	Total      int                        `yaml:"total"`
	PerSpecies map[components.Species]int `yaml:"per_species"`
	Cells      []CellSnapshot             `yaml:"cells"`
}

// Snapshot reports counts per species and per cell in row-major order. It
// changes nothing and draws no random numbers.
func (isl *Island) Snapshot() Snapshot {
	snap := Snapshot{
		Year:       isl.year,
		PerSpecies: make(map[components.Species]int, components.NumSpecies),
		Cells:      make([]CellSnapshot, 0, isl.rows*isl.cols),
	}
	for _, s := range components.AllSpecies() {
		snap.PerSpecies[s] = 0
	}
	isl.forEachCell(func(c *systems.Cell) {
		cs := CellSnapshot{
			Row:       c.Row,
			Col:       c.Col,
			Terrain:   c.Terrain.String(),
			Fodder:    c.Fodder,
			Grazers:   c.Count(components.Grazer),
			Predators: c.Count(components.Predator),
		}
		snap.PerSpecies[components.Grazer] += cs.Grazers
		snap.PerSpecies[components.Predator] += cs.Predators
		snap.Total += c.Total()
		snap.Cells = append(snap.Cells, cs)
	})
	return snap
}
