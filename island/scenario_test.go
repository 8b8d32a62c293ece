package island

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
)

const testScenario = `
geography: |
  OOOOO
  OJJSO
  OOOOO
population:
  - loc: [1, 1]
    pop:
      - {species: Herbivore, age: 5, weight: 20}
      - {species: Herbivore, age: 5, weight: 20}
  - loc: [1, 3]
    pop:
      - {species: Carnivore, age: 5, weight: 20}
parameters:
  grazer:
    F: 15
  predator:
    DeltaPhiMax: 8
  terrain:
    J:
      f_max: 700
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, testScenario))
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Geography) != 3 || sc.Geography[1] != "OJJSO" {
		t.Errorf("geography = %q", sc.Geography)
	}
	if len(sc.Population) != 2 || len(sc.Population[0].Pop) != 2 {
		t.Errorf("population = %+v", sc.Population)
	}
	if sc.Parameters.Species["grazer"]["F"] != 15 || sc.Parameters.Terrain["J"]["f_max"] != 700 {
		t.Errorf("parameters = %+v", sc.Parameters)
	}

	isl, err := sc.Build(config.MustDefault(), true)
	if err != nil {
		t.Fatal(err)
	}
	cfg := isl.Config()
	if cfg.Grazer.Appetite != 15 || cfg.Predator.DeltaPhiMax != 8 || cfg.Jungle.MaxFodder != 700 {
		t.Errorf("overrides not applied: %+v %+v %+v", cfg.Grazer, cfg.Predator, cfg.Jungle)
	}
	snap := isl.Snapshot()
	if snap.PerSpecies[components.Grazer] != 2 || snap.PerSpecies[components.Predator] != 1 {
		t.Errorf("population = %v", snap.PerSpecies)
	}
}

func TestScenario_GeographyList(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, "geography: [OOO, OJO, OOO]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Geography) != 3 || sc.Geography[1] != "OJO" {
		t.Errorf("geography = %q", sc.Geography)
	}
}

func TestScenario_BuildErrors(t *testing.T) {
	bad := `
geography: [OOO, OJO, OOO]
population:
  - loc: [0, 0]
    pop: [{species: Grazer, age: 1, weight: 5}]
  - loc: [1, 1]
    pop: [{species: Grazer, age: 1, weight: 5}]
`
	sc, err := LoadScenario(writeScenario(t, bad))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sc.Build(nil, true); !errors.Is(err, ErrPlacement) {
		t.Errorf("strict build: err = %v, want ErrPlacement", err)
	}
	isl, err := sc.Build(nil, false)
	if err != nil {
		t.Fatalf("lenient build: %v", err)
	}
	if n := isl.Snapshot().Total; n != 1 {
		t.Errorf("lenient build placed %d animals, want 1", n)
	}

	sc.Parameters.Species = map[string]map[string]float64{"grazer": {"eta": 0}}
	if _, err := sc.Build(nil, false); !errors.Is(err, config.ErrInvalidParameter) {
		t.Errorf("bad override: err = %v", err)
	}

	sc.Geography = Geography{"OJO"}
	if _, err := sc.Build(nil, false); !errors.Is(err, ErrGeometry) {
		t.Errorf("bad geography: err = %v", err)
	}
}
