package island

import (
	"errors"
	"fmt"
)

var (
	// ErrGeometry is wrapped by every *GeometryError.
	ErrGeometry = errors.New("invalid island geometry")
	// ErrPlacement is wrapped by every *PlacementError.
	ErrPlacement = errors.New("invalid population entry")
	// ErrConfiguration is wrapped by every *ConfigurationError.
	ErrConfiguration = errors.New("invalid configuration")
)

// GeometryError reports a geography the island cannot be built from.
// Row and Col are -1 when the problem is not tied to a cell.
type GeometryError struct {
	Row, Col int
	Reason   string
}

func (e *GeometryError) Error() string {
	switch {
	case e.Row < 0:
		return fmt.Sprintf("%v: %s", ErrGeometry, e.Reason)
	case e.Col < 0:
		return fmt.Sprintf("%v: row %d: %s", ErrGeometry, e.Row, e.Reason)
	default:
		return fmt.Sprintf("%v: cell (%d, %d): %s", ErrGeometry, e.Row, e.Col, e.Reason)
	}
}

func (e *GeometryError) Unwrap() error {
	return ErrGeometry
}

// PlacementError reports a rejected population entry. Animal is the index of
// the offending animal inside the entry, or -1 when the whole entry was
// rejected.
type PlacementError struct {
	Index    int
	Animal   int
	Row, Col int
	Reason   string
}

func (e *PlacementError) Error() string {
	if e.Animal < 0 {
		return fmt.Sprintf("entry %d at (%d, %d): %s", e.Index, e.Row, e.Col, e.Reason)
	}
	return fmt.Sprintf("entry %d animal %d at (%d, %d): %s", e.Index, e.Animal, e.Row, e.Col, e.Reason)
}

func (e *PlacementError) Unwrap() error {
	return ErrPlacement
}

// ConfigurationError reports a rejected parameter change. Err usually is a
// *config.ParameterError.
type ConfigurationError struct {
	Scope string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v for %s: %v", ErrConfiguration, e.Scope, e.Err)
}

func (e *ConfigurationError) Unwrap() []error {
	return []error{ErrConfiguration, e.Err}
}
