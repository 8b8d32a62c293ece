package main

import (
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/island"
	"github.com/pthm-cable/biosim/telemetry"
)

// FitnessEvaluator runs headless islands and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	years      int
	seeds      []int64
	scenario   *island.Scenario
	baseConfig *config.Config
	logger     *slog.Logger

	mu          sync.Mutex
	bestFitness float64
	lastQuality float64 // quality from most recent Evaluate call
	lastYears   float64 // mean survival from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. The scenario is built with
// baseCfg as given, so overrides the scenario carries must already be folded
// into baseCfg (see foldScenario).
func NewFitnessEvaluator(params *ParamVector, years int, seeds []int64, scenario *island.Scenario, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		years:       years,
		seeds:       seeds,
		scenario:    scenario,
		baseConfig:  baseCfg,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		bestFitness: math.Inf(1),
	}
}

// BestFitness returns the lowest mean fitness seen so far.
func (fe *FitnessEvaluator) BestFitness() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestFitness
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// LastSurvival returns the mean survival in years from the most recent evaluation.
func (fe *FitnessEvaluator) LastSurvival() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastYears
}

// A species below minViablePop for graceYears consecutive years counts as
// functionally extinct.
const (
	minViablePop = 3
	graceYears   = 5
)

// runResult holds the results from a single island run.
type runResult struct {
	survivalYears int
	years         []telemetry.YearStats
}

type seedResult struct {
	fitness  float64
	quality  float64
	survival int
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// An invalid vector scores +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg, err := fe.params.ApplyToConfig(fe.baseConfig, x)
	if err != nil {
		return math.Inf(1)
	}

	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			r := fe.runIsland(cfg, s)
			quality := computeQuality(r.years)
			results[idx] = seedResult{
				fitness:  computeFitness(r.survivalYears, quality),
				quality:  quality,
				survival: r.survivalYears,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality, totalYears float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		totalYears += float64(r.survival)
	}
	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	fe.bestFitness = math.Min(fe.bestFitness, avgFitness)
	fe.lastQuality = totalQuality / n
	fe.lastYears = totalYears / n
	fe.mu.Unlock()

	return avgFitness
}

// foldScenario applies the scenario's parameter overrides to cfg and returns
// the scenario without them. Calibrated values applied to the returned config
// then take precedence over the scenario's.
func foldScenario(sc *island.Scenario, cfg *config.Config) (*island.Scenario, *config.Config, error) {
	folded, err := sc.ApplyParameters(cfg)
	if err != nil {
		return nil, nil, err
	}
	return sc.WithoutParameters(), folded, nil
}

// buildIsland builds the scenario for one seed.
func (fe *FitnessEvaluator) buildIsland(cfg *config.Config, seed int64) (*island.Island, error) {
	cfg = cfg.Clone()
	cfg.Seed = seed
	return fe.scenario.Build(cfg, false, island.WithLogger(fe.logger))
}

// runIsland runs one seed until functional extinction or fe.years.
func (fe *FitnessEvaluator) runIsland(cfg *config.Config, seed int64) *runResult {
	result := &runResult{}
	isl, err := fe.buildIsland(cfg, seed)
	if err != nil {
		return result
	}

	var grazersBelow, predatorsBelow int
	for y := 0; y < fe.years; y++ {
		isl.AdvanceYear()
		stats := isl.LastYearStats()
		result.years = append(result.years, stats)

		if stats.Grazers == 0 || stats.Predators == 0 {
			result.survivalYears = stats.Year
			return result
		}
		grazersBelow = belowCount(grazersBelow, stats.Grazers)
		predatorsBelow = belowCount(predatorsBelow, stats.Predators)
		if grazersBelow >= graceYears || predatorsBelow >= graceYears {
			result.survivalYears = stats.Year
			return result
		}
	}
	result.survivalYears = fe.years
	return result
}

func belowCount(run, count int) int {
	if count < minViablePop {
		return run + 1
	}
	return 0
}

// computeFitness is -(survival × (1 + 0.2 × quality)). Survival dominates;
// quality separates configs with similar survival.
func computeFitness(survivalYears int, quality float64) float64 {
	return -(float64(survivalYears) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.35
	qualityWeightStability = 0.40
	qualityWeightHunting   = 0.25

	qualityWarmupYears = 10 // skip the founding years
	qualityMinPop      = minViablePop
	targetRatio        = 10.0 // grazers per predator
	targetKillsPerPred = 1.5
)

// computeQuality scores coexistence in [0, 1] from the yearly stats.
func computeQuality(years []telemetry.YearStats) float64 {
	if len(years) <= qualityWarmupYears {
		return 0
	}

	var ratioSum, huntSum float64
	var count int
	grazers := make([]float64, 0, len(years))
	predators := make([]float64, 0, len(years))

	for _, y := range years[qualityWarmupYears:] {
		if y.Grazers < qualityMinPop || y.Predators < qualityMinPop {
			continue
		}
		grazers = append(grazers, float64(y.Grazers))
		predators = append(predators, float64(y.Predators))

		logErr := math.Log(float64(y.Grazers) / float64(y.Predators) / targetRatio)
		ratioSum += math.Exp(-logErr * logErr)

		killsPerPred := float64(y.Kills) / float64(y.Predators)
		huntSum += math.Exp(-math.Pow((killsPerPred-targetKillsPerPred)/targetKillsPerPred, 2))
		count++
	}
	if count == 0 {
		return 0
	}

	cvGrazers := telemetry.CoefficientOfVariation(grazers)
	cvPredators := telemetry.CoefficientOfVariation(predators)
	stability := math.Exp(-(cvGrazers*cvGrazers + cvPredators*cvPredators))

	quality := qualityWeightRatio*ratioSum/float64(count) +
		qualityWeightStability*stability +
		qualityWeightHunting*huntSum/float64(count)
	return clamp01(quality)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
