// Package components defines the ECS components carried by every animal on the island.
package components

// Organism bundles identity and per-year movement state.
type Organism struct {
	Species Species
	Moved   bool // set when the animal migrated this year, cleared by aging
}
