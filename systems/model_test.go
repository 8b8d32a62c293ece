package systems

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
)

func grazerModel() *AnimalModel {
	return NewAnimalModel(components.Grazer, config.MustDefault().Grazer)
}

func predatorModel() *AnimalModel {
	return NewAnimalModel(components.Predator, config.MustDefault().Predator)
}

// ---------- Fitness ----------

func TestFitness_Range(t *testing.T) {
	for _, m := range []*AnimalModel{grazerModel(), predatorModel()} {
		for age := 0; age <= 200; age += 5 {
			for w := 0.0; w <= 500; w += 2.5 {
				f := m.Fitness(w, age)
				if f < 0 || f >= 1 {
					t.Fatalf("%v fitness(%v, %d) = %v out of [0, 1)", m.Species, w, age, f)
				}
			}
		}
		// Extreme inputs saturate both sigmoids to 1 in float64.
		if f := m.Fitness(1e6, 0); f >= 1 {
			t.Errorf("%v saturated fitness = %v, want < 1", m.Species, f)
		}
	}
}

func TestFitness_ZeroWeight(t *testing.T) {
	m := grazerModel()
	if f := m.Fitness(0, 5); f != 0 {
		t.Errorf("fitness at weight 0 = %v", f)
	}
	if f := m.Fitness(-3, 5); f != 0 {
		t.Errorf("fitness at negative weight = %v", f)
	}
}

func TestFitness_Monotonic(t *testing.T) {
	m := grazerModel()
	prev := math.Inf(1)
	for age := 0; age < 150; age++ {
		f := m.Fitness(20, age)
		if f > prev {
			t.Fatalf("fitness increased with age at %d: %v > %v", age, f, prev)
		}
		prev = f
	}
	prev = -1
	for w := 0.5; w < 100; w += 0.5 {
		f := m.Fitness(w, 10)
		if f < prev {
			t.Fatalf("fitness decreased with weight at %v: %v < %v", w, f, prev)
		}
		prev = f
	}
}

func TestFitness_HalfPoints(t *testing.T) {
	m := grazerModel()
	p := m.Params()
	// At both half points each sigmoid is exactly 0.5.
	got := m.Fitness(p.WeightHalf, int(p.AgeHalf))
	if math.Abs(got-0.25) > 1e-12 {
		t.Errorf("fitness at half points = %v, want 0.25", got)
	}
}

// ---------- Probabilities ----------

func TestDeathProbability(t *testing.T) {
	m := grazerModel()
	if p := m.DeathProbability(0, 0.5); p != 1 {
		t.Errorf("starved death p = %v, want 1", p)
	}
	if p := m.DeathProbability(10, 0); p != 1 {
		t.Errorf("zero fitness death p = %v, want 1", p)
	}
	want := m.Params().Omega * (1 - 0.75)
	if p := m.DeathProbability(10, 0.75); math.Abs(p-want) > 1e-12 {
		t.Errorf("death p = %v, want %v", p, want)
	}
}

func TestBirthProbability(t *testing.T) {
	m := grazerModel()
	threshold := m.BirthThreshold() // 3.5 * (8 + 1.5)

	tests := []struct {
		name    string
		weight  float64
		fitness float64
		n       int
		want    float64
	}{
		{"alone", 100, 0.9, 1, 0},
		{"below threshold", threshold - 0.01, 0.9, 10, 0},
		{"at threshold", threshold, 0.5, 2, 0.2 * 0.5},
		{"scaled by crowd", 50, 0.5, 5, 0.2 * 0.5 * 4},
		{"capped", 50, 0.9, 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.BirthProbability(tt.weight, tt.fitness, tt.n)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("BirthProbability = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMovementProbability_Clamped(t *testing.T) {
	m := NewAnimalModel(components.Grazer, config.SpeciesParams{Mu: 4})
	if p := m.MovementProbability(0.5); p != 1 {
		t.Errorf("movement p = %v, want clamp to 1", p)
	}
	if p := grazerModel().MovementProbability(0.5); math.Abs(p-0.125) > 1e-12 {
		t.Errorf("movement p = %v, want 0.125", p)
	}
}

func TestKillProbability(t *testing.T) {
	m := predatorModel() // DeltaPhiMax 10
	tests := []struct {
		pf, gf, want float64
	}{
		{0.2, 0.5, 0},
		{0.5, 0.5, 0},
		{0.9, 0.4, 0.05},
	}
	for _, tt := range tests {
		if got := m.KillProbability(tt.pf, tt.gf); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("KillProbability(%v, %v) = %v, want %v", tt.pf, tt.gf, got, tt.want)
		}
	}

	sharp := NewAnimalModel(components.Predator, config.SpeciesParams{DeltaPhiMax: 0.1})
	if got := sharp.KillProbability(0.9, 0.4); got != 1 {
		t.Errorf("capped kill p = %v, want 1", got)
	}
}

func TestRelativeAbundance(t *testing.T) {
	m := grazerModel() // F = 10
	if got := m.RelativeAbundance(100, 1); got != 5 {
		t.Errorf("abundance = %v, want 5", got)
	}
	if got := m.RelativeAbundance(0, 3); got != 0 {
		t.Errorf("abundance of empty cell = %v", got)
	}
	if got := m.Propensity(0); got != 1 {
		t.Errorf("propensity(0) = %v, want 1", got)
	}
}

// ---------- Weight changes ----------

func TestGiveBirth(t *testing.T) {
	m := grazerModel()
	rng := rand.New(rand.NewPCG(3, 3))

	light := components.Body{Weight: 1, Age: 3}
	m.Refresh(&light)
	if _, ok := m.GiveBirth(&light, rng); ok {
		t.Fatal("birth should be cancelled when the mother cannot afford it")
	}
	if light.Weight != 1 {
		t.Errorf("cancelled birth changed mother weight to %v", light.Weight)
	}

	heavy := components.Body{Weight: 100, Age: 3}
	m.Refresh(&heavy)
	before := heavy.Fitness
	w, ok := m.GiveBirth(&heavy, rng)
	if !ok || w <= 0 {
		t.Fatalf("GiveBirth = %v, %v", w, ok)
	}
	want := 100 - m.Params().Xi*w
	if math.Abs(heavy.Weight-want) > 1e-9 {
		t.Errorf("mother weight = %v, want %v", heavy.Weight, want)
	}
	if heavy.Fitness >= before {
		t.Errorf("fitness not refreshed after birth: %v >= %v", heavy.Fitness, before)
	}
}

func TestLoseWeightAndGain(t *testing.T) {
	m := grazerModel() // eta 0.05, beta 0.9
	b := components.Body{Weight: 20, Age: 2}
	m.LoseWeight(&b)
	if math.Abs(b.Weight-19) > 1e-12 {
		t.Errorf("weight after loss = %v, want 19", b.Weight)
	}
	m.Gain(&b, 10)
	if math.Abs(b.Weight-28) > 1e-12 {
		t.Errorf("weight after gain = %v, want 28", b.Weight)
	}
	if b.Fitness != m.Fitness(b.Weight, b.Age) {
		t.Error("fitness not refreshed")
	}
}

// ---------- Destination choice ----------

func TestChooseDestination(t *testing.T) {
	m := grazerModel()
	rng := rand.New(rand.NewPCG(7, 7))

	if got := m.ChooseDestination([]float64{0, 0, 0, 0}, rng); got != -1 {
		t.Errorf("all zero propensities chose %d", got)
	}
	if got := m.ChooseDestination(nil, rng); got != -1 {
		t.Errorf("no candidates chose %d", got)
	}
	for i := 0; i < 50; i++ {
		if got := m.ChooseDestination([]float64{0, 0, 2.5, 0}, rng); got != 2 {
			t.Fatalf("single candidate chose %d", got)
		}
		if got := m.ChooseDestination([]float64{0, math.Inf(1), 0, 1}, rng); got != 1 {
			t.Fatalf("infinite candidate lost to %d", got)
		}
	}

	counts := make([]int, 2)
	for i := 0; i < 10000; i++ {
		counts[m.ChooseDestination([]float64{1, 3}, rng)]++
	}
	if frac := float64(counts[1]) / 10000; frac < 0.72 || frac > 0.78 {
		t.Errorf("weighted choice fraction = %v, want about 0.75", frac)
	}
}

func TestPropensities(t *testing.T) {
	tests := []struct {
		name      string
		exponents []float64
		valid     []bool
		want      []float64
	}{
		{"largest is one", []float64{0, math.Log(4)}, []bool{true, true}, []float64{0.25, 1}},
		{"invalid ignored", []float64{5, 1}, []bool{false, true}, []float64{0, 1}},
		{"none valid", []float64{1, 2}, []bool{false, false}, []float64{0, 0}},
		{"huge exponents", []float64{1e4, 1e4 - math.Log(2), 0}, []bool{true, true, true}, []float64{1, 0.5, 0}},
		{"infinite exponent", []float64{math.Inf(1), 3}, []bool{true, true}, []float64{1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Propensities(tt.exponents, tt.valid)
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("weight %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
