// Package telemetry provides yearly population statistics, bookmarks of notable
// years, season timing and CSV output for island runs.
package telemetry

import "github.com/pthm-cable/biosim/components"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventBirth EventType = iota
	EventDeath
	EventKill
	EventMigration
	EventGrazing
)

func (t EventType) String() string {
	switch t {
	case EventBirth:
		return "birth"
	case EventDeath:
		return "death"
	case EventKill:
		return "kill"
	case EventMigration:
		return "migration"
	case EventGrazing:
		return "grazing"
	default:
		return "unknown"
	}
}

// Event is a batch of identical occurrences observed during one season pass.
type Event struct {
	Type    EventType
	Species components.Species
	Count   int
	Amount  float64 // fodder or prey weight eaten
}

// NewBirthEvent reports n newborns of species s.
func NewBirthEvent(s components.Species, n int) Event {
	return Event{Type: EventBirth, Species: s, Count: n}
}

// NewDeathEvent reports n deaths of species s.
func NewDeathEvent(s components.Species, n int) Event {
	return Event{Type: EventDeath, Species: s, Count: n}
}

// NewKillEvent reports n grazers eaten by predators, weighing eaten in total.
func NewKillEvent(n int, eaten float64) Event {
	return Event{Type: EventKill, Species: components.Predator, Count: n, Amount: eaten}
}

// NewMigrationEvent reports n animals of species s changing cells.
func NewMigrationEvent(s components.Species, n int) Event {
	return Event{Type: EventMigration, Species: s, Count: n}
}

// NewGrazingEvent reports fodder eaten by grazers.
func NewGrazingEvent(eaten float64) Event {
	return Event{Type: EventGrazing, Species: components.Grazer, Amount: eaten}
}
