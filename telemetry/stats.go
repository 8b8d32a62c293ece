package telemetry

import (
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// YearStats holds aggregated statistics for one simulated year.
type YearStats struct {
	Year int `csv:"year"`

	// Population counts at year end
	Grazers   int `csv:"grazers"`
	Predators int `csv:"predators"`

	// Events during the year
	GrazerBirths     int `csv:"grazer_births"`
	PredatorBirths   int `csv:"predator_births"`
	GrazerDeaths     int `csv:"grazer_deaths"`
	PredatorDeaths   int `csv:"predator_deaths"`
	Kills            int `csv:"kills"`
	GrazerMigrants   int `csv:"grazer_migrants"`
	PredatorMigrants int `csv:"predator_migrants"`

	// Food
	FodderEaten float64 `csv:"fodder_eaten"`
	PreyEaten   float64 `csv:"prey_eaten"`
	FodderLeft  float64 `csv:"fodder_left"` // total fodder on the island at year end

	// Weight and fitness at year end
	GrazerWeightMean    float64 `csv:"grazer_weight_mean"`
	PredatorWeightMean  float64 `csv:"predator_weight_mean"`
	GrazerFitnessMean   float64 `csv:"grazer_fitness_mean"`
	PredatorFitnessMean float64 `csv:"predator_fitness_mean"`
}

// Distribution summarises a sample of values.
type Distribution struct {
	Mean float64
	Std  float64
	P10  float64
	P50  float64
	P90  float64
}

// Percentile returns the empirical p-quantile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(math.Max(0, math.Min(1, p)), stat.Empirical, sorted, nil)
}

// Describe computes mean, standard deviation and percentiles of values.
// The input is not modified.
func Describe(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	var d Distribution
	if n == 1 {
		d.Mean = values[0]
	} else {
		d.Mean, d.Std = stat.MeanStdDev(values, nil)
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	d.P10 = Percentile(sorted, 0.10)
	d.P50 = Percentile(sorted, 0.50)
	d.P90 = Percentile(sorted, 0.90)
	return d
}

// CoefficientOfVariation is std/mean, or 0 when the mean is not positive.
func CoefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(values, nil)
	if mean <= 0 {
		return 0
	}
	return std / mean
}

// LogValue implements slog.LogValuer for structured logging.
func (s YearStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("year", s.Year),
		slog.Int("grazers", s.Grazers),
		slog.Int("predators", s.Predators),
		slog.Int("grazer_births", s.GrazerBirths),
		slog.Int("predator_births", s.PredatorBirths),
		slog.Int("grazer_deaths", s.GrazerDeaths),
		slog.Int("predator_deaths", s.PredatorDeaths),
		slog.Int("kills", s.Kills),
		slog.Int("grazer_migrants", s.GrazerMigrants),
		slog.Int("predator_migrants", s.PredatorMigrants),
		slog.Float64("fodder_eaten", s.FodderEaten),
		slog.Float64("prey_eaten", s.PreyEaten),
		slog.Float64("fodder_left", s.FodderLeft),
		slog.Float64("grazer_weight_mean", s.GrazerWeightMean),
		slog.Float64("predator_weight_mean", s.PredatorWeightMean),
		slog.Float64("grazer_fitness_mean", s.GrazerFitnessMean),
		slog.Float64("predator_fitness_mean", s.PredatorFitnessMean),
	)
}

// LogStats logs the year stats at info level.
func (s YearStats) LogStats(logger *slog.Logger) {
	logger.Info("year", "stats", s)
}
