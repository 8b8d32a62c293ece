package systems

import "fmt"

// Terrain is the landscape type of a grid cell. It is fixed for the whole run.
type Terrain uint8

const (
	Ocean Terrain = iota
	Mountain
	Desert
	Savannah
	Jungle
)

var terrainSymbols = [...]rune{
	Ocean:    'O',
	Mountain: 'M',
	Desert:   'D',
	Savannah: 'S',
	Jungle:   'J',
}

var terrainNames = [...]string{
	Ocean:    "Ocean",
	Mountain: "Mountain",
	Desert:   "Desert",
	Savannah: "Savannah",
	Jungle:   "Jungle",
}

// ParseTerrain maps a geography symbol to its terrain.
func ParseTerrain(symbol rune) (Terrain, error) {
	for t, s := range terrainSymbols {
		if s == symbol {
			return Terrain(t), nil
		}
	}
	return 0, fmt.Errorf("unknown terrain symbol %q", symbol)
}

// Symbol returns the geography symbol of t.
func (t Terrain) Symbol() rune {
	if int(t) < len(terrainSymbols) {
		return terrainSymbols[t]
	}
	return '?'
}

func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return "Unknown"
}

// Habitable reports whether animals may live on, or move onto, t.
func (t Terrain) Habitable() bool {
	return t != Ocean && t != Mountain
}

// MarshalText implements encoding.TextMarshaler so terrain serialises by name.
func (t Terrain) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
