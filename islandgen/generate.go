// Package islandgen generates random island geographies from layered simplex
// noise. The result always satisfies the island rules: a rectangular grid with
// an Ocean border.
package islandgen

import (
	"math"
	"strings"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/biosim/systems"
)

// GenConfig holds generation parameters.
type GenConfig struct {
	Rows, Cols    int
	Seed          int64
	SeaLevel      float64 // elevation below which a cell is Ocean (0.0-1.0)
	MountainLevel float64 // elevation above which a cell is Mountain
	DesertBelow   float64 // moisture below which land is Desert
	JungleAbove   float64 // moisture above which land is Jungle, Savannah in between
}

// DefaultGenConfig returns a configuration producing mostly green islands.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Rows:          21,
		Cols:          21,
		Seed:          1,
		SeaLevel:      0.3,
		MountainLevel: 0.8,
		DesertBelow:   0.35,
		JungleAbove:   0.55,
	}
}

// Generate returns geography rows of cfg.Rows x cfg.Cols symbols. Grids smaller
// than 3x3 are enlarged to 3x3.
func Generate(cfg GenConfig) []string {
	rows, cols := max(cfg.Rows, 3), max(cfg.Cols, 3)

	elevNoise := opensimplex.NewNormalized(cfg.Seed)
	moistNoise := opensimplex.NewNormalized(cfg.Seed + 1)

	grid := make([][]systems.Terrain, rows)
	bestR, bestC, bestElev := rows/2, cols/2, -1.0
	land := false

	for r := 0; r < rows; r++ {
		grid[r] = make([]systems.Terrain, cols)
		for c := 0; c < cols; c++ {
			if r == 0 || c == 0 || r == rows-1 || c == cols-1 {
				grid[r][c] = systems.Ocean
				continue
			}
			x, y := float64(c), float64(r)
			elev := octaveNoise(elevNoise, x, y, 4, 0.12, 0.5)
			moist := octaveNoise(moistNoise, x, y, 3, 0.09, 0.5)

			// Continental shaping: sink the land towards the border.
			dx := (x - float64(cols-1)/2) / (float64(cols-1) / 2)
			dy := (y - float64(rows-1)/2) / (float64(rows-1) / 2)
			falloff := 1.0 - math.Pow(math.Sqrt(dx*dx+dy*dy)/math.Sqrt2, 3)
			elev *= math.Max(0, falloff)

			t := deriveTerrain(elev, moist, cfg)
			grid[r][c] = t
			if t.Habitable() {
				land = true
			}
			if elev > bestElev && elev <= cfg.MountainLevel {
				bestR, bestC, bestElev = r, c, elev
			}
		}
	}

	// Never hand out an island nobody can live on.
	if !land {
		grid[bestR][bestC] = systems.Jungle
	}

	out := make([]string, rows)
	var sb strings.Builder
	for r, line := range grid {
		sb.Reset()
		for _, t := range line {
			sb.WriteRune(t.Symbol())
		}
		out[r] = sb.String()
	}
	return out
}

// deriveTerrain maps elevation and moisture to a terrain type.
func deriveTerrain(elev, moist float64, cfg GenConfig) systems.Terrain {
	switch {
	case elev < cfg.SeaLevel:
		return systems.Ocean
	case elev > cfg.MountainLevel:
		return systems.Mountain
	case moist < cfg.DesertBelow:
		return systems.Desert
	case moist > cfg.JungleAbove:
		return systems.Jungle
	default:
		return systems.Savannah
	}
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
