package components

// Body holds the physical state that drives every stochastic rule.
// Fitness is derived from Weight and Age and must be refreshed whenever either changes.
type Body struct {
	Weight  float64 // kg
	Age     int     // years
	Fitness float64 // [0, 1)
}
