// Package island implements the island grid: geography, population placement
// and the yearly cycle of seasons that advances every cell.
package island

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/systems"
	"github.com/pthm-cable/biosim/telemetry"
)

// Island is a rectangular grid of landscape cells surrounded by ocean.
// It is not safe for concurrent use.
type Island struct {
	cells      [][]*systems.Cell
	rows, cols int
	year       int

	eco       *systems.Ecosystem
	logger    *slog.Logger
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	last      telemetry.YearStats
	rng       *rand.Rand
}

// Option configures an Island.
type Option func(*Island)

// WithLogger sets the logger used for season and year messages.
func WithLogger(l *slog.Logger) Option {
	return func(isl *Island) {
		if l != nil {
			isl.logger = l
		}
	}
}

// WithPerf times every season with p.
func WithPerf(p *telemetry.PerfCollector) Option {
	return func(isl *Island) {
		isl.perf = p
	}
}

// WithRand replaces the random source seeded from the configuration.
func WithRand(rng *rand.Rand) Option {
	return func(isl *Island) {
		if rng != nil {
			isl.rng = rng
		}
	}
}

// NewRand returns the generator an island uses for the given seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// ParseGeography splits a multi-line map into rows, dropping blank lines and
// surrounding whitespace.
func ParseGeography(text string) []string {
	var rows []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			rows = append(rows, line)
		}
	}
	return rows
}

// New builds an island from geography rows. Every row must have the same
// length, every symbol must be one of O, M, D, S, J and every boundary cell
// must be Ocean. A nil cfg uses the defaults.
func New(geography []string, cfg *config.Config, opts ...Option) (*Island, error) {
	if cfg == nil {
		var err error
		if cfg, err = config.Default(); err != nil {
			return nil, err
		}
	}
	terrain, err := parseTerrain(geography)
	if err != nil {
		return nil, err
	}

	isl := &Island{
		rows:      len(terrain),
		cols:      len(terrain[0]),
		logger:    slog.Default(),
		collector: telemetry.NewCollector(),
	}
	for _, opt := range opts {
		opt(isl)
	}
	if isl.rng == nil {
		isl.rng = NewRand(cfg.Seed)
	}
	isl.eco = systems.NewEcosystem(cfg.Clone(), isl.rng)

	isl.cells = make([][]*systems.Cell, isl.rows)
	for r, line := range terrain {
		isl.cells[r] = make([]*systems.Cell, isl.cols)
		for c, t := range line {
			isl.cells[r][c] = systems.NewCell(r, c, t, maxFodder(cfg, t))
		}
	}

	isl.logger.Debug("island created", "rows", isl.rows, "cols", isl.cols, "seed", cfg.Seed)
	return isl, nil
}

func parseTerrain(geography []string) ([][]systems.Terrain, error) {
	if len(geography) == 0 {
		return nil, &GeometryError{Row: -1, Col: -1, Reason: "geography is empty"}
	}

	grid := make([][]systems.Terrain, len(geography))
	width := -1
	for r, row := range geography {
		symbols := []rune(row)
		if len(symbols) == 0 {
			return nil, &GeometryError{Row: r, Col: -1, Reason: "row is empty"}
		}
		if width < 0 {
			width = len(symbols)
		} else if len(symbols) != width {
			return nil, &GeometryError{Row: r, Col: -1, Reason: fmt.Sprintf("row has %d cells, want %d", len(symbols), width)}
		}
		grid[r] = make([]systems.Terrain, width)
		for c, sym := range symbols {
			t, err := systems.ParseTerrain(sym)
			if err != nil {
				return nil, &GeometryError{Row: r, Col: c, Reason: err.Error()}
			}
			grid[r][c] = t
		}
	}

	last := len(grid) - 1
	for r, row := range grid {
		for c, t := range row {
			boundary := r == 0 || r == last || c == 0 || c == width-1
			if boundary && t != systems.Ocean {
				return nil, &GeometryError{Row: r, Col: c, Reason: fmt.Sprintf("boundary cell is %v, must be Ocean", t)}
			}
		}
	}
	return grid, nil
}

func maxFodder(cfg *config.Config, t systems.Terrain) float64 {
	switch t {
	case systems.Jungle:
		return cfg.Jungle.MaxFodder
	case systems.Savannah:
		return cfg.Savannah.MaxFodder
	}
	return 0
}

// Year returns the number of completed years.
func (isl *Island) Year() int { return isl.year }

func (isl *Island) Rows() int { return isl.rows }

func (isl *Island) Cols() int { return isl.cols }

// Config returns the parameters currently in effect. Callers must not modify it.
func (isl *Island) Config() *config.Config { return isl.eco.Config() }

// LastYearStats returns the statistics of the most recent year.
func (isl *Island) LastYearStats() telemetry.YearStats { return isl.last }

// LastDistribution returns the per-species distributions of the most recent year.
func (isl *Island) LastDistribution() []telemetry.DistributionRow {
	return isl.collector.LastDistribution()
}

// Cell returns the cell at (row, col), or nil outside the grid.
func (isl *Island) Cell(row, col int) *systems.Cell {
	if row < 0 || row >= isl.rows || col < 0 || col >= isl.cols {
		return nil
	}
	return isl.cells[row][col]
}

func (isl *Island) lookup(p components.Position) *systems.Cell {
	return isl.Cell(p.Row, p.Col)
}

// forEachCell visits every cell in row-major order.
func (isl *Island) forEachCell(fn func(c *systems.Cell)) {
	for _, row := range isl.cells {
		for _, c := range row {
			fn(c)
		}
	}
}

// forEachHabitable visits every habitable cell in row-major order.
func (isl *Island) forEachHabitable(fn func(c *systems.Cell)) {
	isl.forEachCell(func(c *systems.Cell) {
		if c.Habitable() {
			fn(c)
		}
	})
}

// AnimalState is a read-only view of one animal.
type AnimalState struct {
	Species components.Species
	Age     int
	Weight  float64
	Fitness float64
	Moved   bool
}

// Animals returns the residents of (row, col) in list order, grazers first.
func (isl *Island) Animals(row, col int) []AnimalState {
	c := isl.Cell(row, col)
	if c == nil {
		return nil
	}
	pop := isl.eco.Population()
	var out []AnimalState
	for _, s := range components.AllSpecies() {
		for _, e := range c.Residents(s) {
			b := pop.Body(e)
			out = append(out, AnimalState{
				Species: s,
				Age:     b.Age,
				Weight:  b.Weight,
				Fitness: b.Fitness,
				Moved:   pop.Organism(e).Moved,
			})
		}
	}
	return out
}
