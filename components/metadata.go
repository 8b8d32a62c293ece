package components

import (
	"fmt"
	"strings"
)

// Species identifies which of the two animal kinds an entity belongs to.
type Species uint8

const (
	Grazer   Species = iota // herbivore, eats fodder
	Predator                // carnivore, eats grazers
)

// NumSpecies is the number of species tracked per cell.
const NumSpecies = 2

// AllSpecies returns every species in canonical draw order.
func AllSpecies() []Species {
	return []Species{Grazer, Predator}
}

// String returns the display name for a Species.
func (s Species) String() string {
	switch s {
	case Grazer:
		return "Grazer"
	case Predator:
		return "Predator"
	default:
		return "Unknown"
	}
}

// ParseSpecies accepts the display names as well as the classic
// Herbivore/Carnivore names used by older scenario files.
func ParseSpecies(name string) (Species, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "grazer", "herbivore":
		return Grazer, nil
	case "predator", "carnivore":
		return Predator, nil
	}
	return 0, fmt.Errorf("unknown species %q", name)
}

// MarshalText implements encoding.TextMarshaler so species serialise by name.
func (s Species) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Species) UnmarshalText(text []byte) error {
	v, err := ParseSpecies(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
