package components

// Position is the grid cell an animal currently lives in.
type Position struct {
	Row, Col int
}

// Offset is a relative grid step.
type Offset struct {
	DRow, DCol int
}

// NeighborOffsets lists the four orthogonal neighbours in draw order:
// north, west, east, south.
var NeighborOffsets = [4]Offset{
	{DRow: -1, DCol: 0},
	{DRow: 0, DCol: -1},
	{DRow: 0, DCol: 1},
	{DRow: 1, DCol: 0},
}

// Step returns the position reached by applying o.
func (p Position) Step(o Offset) Position {
	return Position{Row: p.Row + o.DRow, Col: p.Col + o.DCol}
}
