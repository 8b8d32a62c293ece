package systems

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
)

// maxFitness is the largest representable fitness; fitness stays in [0, 1).
var maxFitness = math.Nextafter(1, 0)

// AnimalModel holds the per-species parameters and the stochastic rules that
// act on a single animal. The rules shared by both species live here; the
// species-specific feeding behaviour is delegated to the Diet.
type AnimalModel struct {
	Species components.Species
	params  config.SpeciesParams
	diet    Diet
}

// NewAnimalModel builds the model for species s.
func NewAnimalModel(s components.Species, p config.SpeciesParams) *AnimalModel {
	var diet Diet = grazing{}
	if s == components.Predator {
		diet = hunting{}
	}
	return &AnimalModel{Species: s, params: p, diet: diet}
}

// Params returns the model's parameters.
func (m *AnimalModel) Params() config.SpeciesParams {
	return m.params
}

// Appetite returns the amount of food the animal tries to eat per year.
func (m *AnimalModel) Appetite() float64 {
	return m.params.Appetite
}

// Diet returns the species' feeding strategy.
func (m *AnimalModel) Diet() Diet {
	return m.diet
}

// sigmoid is 1/(1+exp(sign*phi*(x-half))).
func sigmoid(x, half, phi, sign float64) float64 {
	return 1 / (1 + math.Exp(sign*phi*(x-half)))
}

// Fitness combines a sigmoid falling with age and one rising with weight.
func (m *AnimalModel) Fitness(weight float64, age int) float64 {
	if weight <= 0 {
		return 0
	}
	p := &m.params
	f := sigmoid(float64(age), p.AgeHalf, p.PhiAge, +1) * sigmoid(weight, p.WeightHalf, p.PhiWeight, -1)
	return math.Min(f, maxFitness)
}

// Refresh recomputes b.Fitness from its weight and age.
func (m *AnimalModel) Refresh(b *components.Body) {
	b.Fitness = m.Fitness(b.Weight, b.Age)
}

// DeathProbability is omega*(1-fitness), clamped to [0, 1].
// A starved animal (weight <= 0, hence fitness 0) dies with certainty.
func (m *AnimalModel) DeathProbability(weight, fitness float64) float64 {
	if weight <= 0 || fitness <= 0 {
		return 1
	}
	return clamp01(m.params.Omega * (1 - fitness))
}

// BirthThreshold is the weight below which a birth is impossible.
func (m *AnimalModel) BirthThreshold() float64 {
	return m.params.Zeta * (m.params.BirthWeight + m.params.BirthWeightSigma)
}

// BirthProbability returns the chance that an animal gives birth this year when
// n animals of its species (itself included) share its cell.
func (m *AnimalModel) BirthProbability(weight, fitness float64, n int) float64 {
	if n < 2 || weight < m.BirthThreshold() {
		return 0
	}
	return math.Min(1, m.params.Gamma*fitness*float64(n-1))
}

// BirthWeight draws a newborn weight from the species' birth weight distribution.
func (m *AnimalModel) BirthWeight(rng *rand.Rand) float64 {
	d := distuv.Normal{Mu: m.params.BirthWeight, Sigma: m.params.BirthWeightSigma, Src: rng}
	return d.Rand()
}

// GiveBirth draws the newborn's weight and charges the mother xi times that
// weight. The birth is cancelled, leaving the mother untouched, when the draw
// is not positive or would leave the mother with no weight.
func (m *AnimalModel) GiveBirth(mother *components.Body, rng *rand.Rand) (float64, bool) {
	w := m.BirthWeight(rng)
	if w <= 0 {
		return 0, false
	}
	loss := m.params.Xi * w
	if mother.Weight-loss <= 0 {
		return 0, false
	}
	mother.Weight -= loss
	m.Refresh(mother)
	return w, true
}

// MovementProbability is mu*fitness, clamped to [0, 1].
func (m *AnimalModel) MovementProbability(fitness float64) float64 {
	return clamp01(m.params.Mu * fitness)
}

// RelativeAbundance is food / ((n+1)*F) where n is the number of animals of
// the same species already in the cell.
func (m *AnimalModel) RelativeAbundance(food float64, n int) float64 {
	if m.params.Appetite <= 0 {
		return 0
	}
	return food / (float64(n+1) * m.params.Appetite)
}

// Propensity is exp(lambda*abundance).
func (m *AnimalModel) Propensity(abundance float64) float64 {
	return math.Exp(m.PropensityExponent(abundance))
}

// PropensityExponent is lambda*abundance, the log of Propensity.
func (m *AnimalModel) PropensityExponent(abundance float64) float64 {
	return m.params.Lambda * abundance
}

// Propensities turns the exponents of the valid candidates into weights
// scaled so the largest is 1. Only ratios matter to ChooseDestination, and
// the scaling keeps exp from overflowing. Invalid candidates get 0.
func Propensities(exponents []float64, valid []bool) []float64 {
	top := math.Inf(-1)
	for i, x := range exponents {
		if valid[i] && !math.IsNaN(x) {
			top = math.Max(top, x)
		}
	}
	props := make([]float64, len(exponents))
	if math.IsInf(top, -1) {
		return props
	}
	for i, x := range exponents {
		if !valid[i] || math.IsNaN(x) {
			continue
		}
		if math.IsInf(top, 1) {
			// Only the infinitely attractive candidates remain.
			if math.IsInf(x, 1) {
				props[i] = 1
			}
			continue
		}
		props[i] = math.Exp(x - top)
	}
	return props
}

// ChooseDestination normalises the propensities into a discrete distribution
// and picks one index with a single uniform draw against its cumulative sum.
// Infinite propensities share all the weight. It returns -1, without drawing,
// when no candidate has positive propensity.
func (m *AnimalModel) ChooseDestination(propensities []float64, rng *rand.Rand) int {
	if len(propensities) == 0 {
		return -1
	}
	total := floats.Sum(propensities)
	if math.IsInf(total, 1) {
		finite := make([]float64, len(propensities))
		for i, p := range propensities {
			if math.IsInf(p, 1) {
				finite[i] = 1
			}
		}
		propensities, total = finite, floats.Sum(finite)
	}
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		return -1
	}
	probs := make([]float64, len(propensities))
	floats.ScaleTo(probs, 1/total, propensities)
	cum := floats.CumSum(make([]float64, len(probs)), probs)

	u := rng.Float64()
	for i, c := range cum {
		if u < c && propensities[i] > 0 {
			return i
		}
	}
	// Rounding left u above the last cumulative value.
	for i := len(propensities) - 1; i >= 0; i-- {
		if propensities[i] > 0 {
			return i
		}
	}
	return -1
}

// LoseWeight applies the yearly weight loss.
func (m *AnimalModel) LoseWeight(b *components.Body) {
	b.Weight -= m.params.Eta * b.Weight
	m.Refresh(b)
}

// Gain adds beta times the eaten amount to the animal's weight.
func (m *AnimalModel) Gain(b *components.Body, eaten float64) {
	b.Weight += m.params.Beta * eaten
	m.Refresh(b)
}

// KillProbability is the chance that a predator of fitness pf kills a grazer of
// fitness gf: 0 when pf <= gf, otherwise (pf-gf)/DeltaPhiMax capped at 1.
func (m *AnimalModel) KillProbability(pf, gf float64) float64 {
	if pf <= gf {
		return 0
	}
	if m.params.DeltaPhiMax <= 0 {
		return 1
	}
	return math.Min(1, (pf-gf)/m.params.DeltaPhiMax)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
