package systems

import (
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
)

// testGrid is a small island built straight from terrain rows.
type testGrid struct {
	eco   *Ecosystem
	cells [][]*Cell
}

func newTestGrid(t *testing.T, cfg *config.Config, rows ...string) *testGrid {
	t.Helper()
	if cfg == nil {
		cfg = config.MustDefault()
	}
	g := &testGrid{eco: NewEcosystem(cfg, rand.New(rand.NewPCG(1, 1)))}
	for r, row := range rows {
		var line []*Cell
		for c, sym := range row {
			terrain, err := ParseTerrain(sym)
			if err != nil {
				t.Fatal(err)
			}
			fmax := 0.0
			switch terrain {
			case Jungle:
				fmax = cfg.Jungle.MaxFodder
			case Savannah:
				fmax = cfg.Savannah.MaxFodder
			}
			line = append(line, NewCell(r, c, terrain, fmax))
		}
		g.cells = append(g.cells, line)
	}
	return g
}

func (g *testGrid) lookup(p components.Position) *Cell {
	if p.Row < 0 || p.Row >= len(g.cells) || p.Col < 0 || p.Col >= len(g.cells[p.Row]) {
		return nil
	}
	return g.cells[p.Row][p.Col]
}

func (g *testGrid) cell(r, c int) *Cell {
	return g.cells[r][c]
}

func withSpecies(t *testing.T, s components.Species, overrides map[string]float64) *config.Config {
	t.Helper()
	cfg, err := config.MustDefault().WithSpeciesOverrides(s, overrides)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}
