package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/island"
	"github.com/pthm-cable/biosim/telemetry"
)

func steadyYears(n, grazers, predators, kills int) []telemetry.YearStats {
	years := make([]telemetry.YearStats, n)
	for i := range years {
		years[i] = telemetry.YearStats{Year: i + 1, Grazers: grazers, Predators: predators, Kills: kills}
	}
	return years
}

func TestComputeQuality(t *testing.T) {
	tests := []struct {
		name  string
		years []telemetry.YearStats
		min   float64
		max   float64
	}{
		{"too short", steadyYears(qualityWarmupYears, 100, 10, 15), 0, 0},
		{"no predators", steadyYears(50, 100, 0, 0), 0, 0},
		// ratio 10, kills 1.5 per predator, zero variance.
		{"ideal", steadyYears(50, 100, 10, 15), 0.999, 1},
		{"skewed ratio", steadyYears(50, 1000, 5, 0), 0.3, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := computeQuality(tt.years)
			if q < tt.min || q > tt.max {
				t.Errorf("quality = %v, want in [%v, %v]", q, tt.min, tt.max)
			}
		})
	}
}

func TestComputeFitness(t *testing.T) {
	if got := computeFitness(100, 0); got != -100 {
		t.Errorf("fitness = %v, want -100", got)
	}
	if got := computeFitness(100, 1); math.Abs(got+120) > 1e-9 {
		t.Errorf("fitness = %v, want -120", got)
	}
	if computeFitness(200, 0) >= computeFitness(100, 1) {
		t.Error("survival must dominate quality")
	}
}

func TestBelowCount(t *testing.T) {
	run := 0
	for _, n := range []int{2, 1, 0} {
		run = belowCount(run, n)
	}
	if run != 3 {
		t.Errorf("run = %d, want 3", run)
	}
	if belowCount(run, minViablePop) != 0 {
		t.Error("a viable year must reset the run")
	}
}

const testScenario = `
geography:
  - OOOOO
  - OJJJO
  - OJSJO
  - OOOOO
population:
  - loc: [1, 1]
    pop:
      - {species: Grazer, age: 5, weight: 20}
      - {species: Grazer, age: 5, weight: 20}
      - {species: Grazer, age: 5, weight: 20}
      - {species: Grazer, age: 5, weight: 20}
      - {species: Predator, age: 5, weight: 20}
`

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(testScenario), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEvaluatorDeterministic(t *testing.T) {
	sc, err := island.LoadScenario(writeScenario(t))
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	base := config.MustDefault()
	x := pv.ExtractFromConfig(base)

	a := NewFitnessEvaluator(pv, 8, []int64{1, 2}, sc, base).Evaluate(x)
	b := NewFitnessEvaluator(pv, 8, []int64{1, 2}, sc, base).Evaluate(x)
	if a != b {
		t.Errorf("same seeds gave %v and %v", a, b)
	}
	if a > 0 || a < -8*1.2 {
		t.Errorf("fitness %v outside [-9.6, 0]", a)
	}
}

func TestCalibrateWritesResults(t *testing.T) {
	dir := t.TempDir()
	opts := calibrateOptions{
		ScenarioPath: writeScenario(t),
		Years:        3,
		Seeds:        1,
		MaxEvals:     4,
		OutputDir:    filepath.Join(dir, "out"),
	}
	var out bytes.Buffer
	if err := calibrate(opts, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Best parameters:") {
		t.Errorf("output:\n%s", out.String())
	}

	if _, err := config.Load(filepath.Join(opts.OutputDir, "best_config.yaml")); err != nil {
		t.Errorf("best_config.yaml: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(opts.OutputDir, "calibrate_log.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "eval,fitness,survival_years,quality,params") {
		t.Errorf("log header: %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestCalibratedValuesOverrideScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	content := testScenario + "parameters:\n  Grazer: {gamma: 0.01, xi: 0.5}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	sc, err := island.LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	sc, base, err := foldScenario(sc, config.MustDefault())
	if err != nil {
		t.Fatal(err)
	}

	pv := NewParamVector()
	x := pv.ExtractFromConfig(base)
	for i, spec := range pv.Specs {
		if spec.Name == "grazer_gamma" {
			x[i] = 0.5
		}
	}
	cfg, err := pv.ApplyToConfig(base, x)
	if err != nil {
		t.Fatal(err)
	}

	fe := NewFitnessEvaluator(pv, 1, []int64{1}, sc, base)
	isl, err := fe.buildIsland(cfg, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := isl.Config().Grazer.Gamma; got != 0.5 {
		t.Errorf("grazer gamma = %v, want the calibrated 0.5", got)
	}
	if got := isl.Config().Grazer.Xi; got != 0.5 {
		t.Errorf("grazer xi = %v, want the scenario's 0.5", got)
	}
}
