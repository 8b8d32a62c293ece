package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/island"
	"github.com/pthm-cable/biosim/telemetry"
)

// EvalRecord is one row of calibrate_log.csv.
type EvalRecord struct {
	Eval     int     `csv:"eval"`
	Fitness  float64 `csv:"fitness"`
	Survival float64 `csv:"survival_years"`
	Quality  float64 `csv:"quality"`
	Params   string  `csv:"params"`
}

// calibrateOptions holds the command line settings.
type calibrateOptions struct {
	ScenarioPath string
	ConfigPath   string
	Years        int
	Seeds        int
	MaxEvals     int
	Population   int
	OutputDir    string
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	if err := newCalibrateCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCalibrateCmd() *cobra.Command {
	var opts calibrateOptions
	cmd := &cobra.Command{
		Use:          "calibrate",
		Short:        "Search species parameters for stable grazer/predator coexistence",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return calibrate(opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.ScenarioPath, "scenario", "", "Scenario YAML file (required)")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "Base config YAML file (empty = use defaults)")
	cmd.Flags().IntVar(&opts.Years, "years", 200, "Maximum simulated years per run")
	cmd.Flags().IntVar(&opts.Seeds, "seeds", 3, "Number of seeds per evaluation")
	cmd.Flags().IntVar(&opts.MaxEvals, "max-evals", 200, "Maximum number of evaluations")
	cmd.Flags().IntVar(&opts.Population, "population", 0, "CMA-ES population size (0 = auto)")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "", "Output directory for results (required)")
	cmd.MarkFlagRequired("scenario")
	cmd.MarkFlagRequired("output")
	return cmd
}

func calibrate(opts calibrateOptions, out io.Writer) error {
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	baseCfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	scenario, err := island.LoadScenario(opts.ScenarioPath)
	if err != nil {
		return err
	}
	// Reject broken scenarios before spending evaluations on them.
	if _, err := scenario.Build(baseCfg, true, island.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))); err != nil {
		return err
	}
	scenario, baseCfg, err = foldScenario(scenario, baseCfg)
	if err != nil {
		return err
	}

	params := NewParamVector()

	evalSeeds := make([]int64, max(opts.Seeds, 1))
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, opts.Years, evalSeeds, scenario, baseCfg)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	popSize := opts.Population
	if popSize == 0 {
		// 4 + floor(3 ln n)
		popSize = 4 + int(3.0*math.Log(float64(dim)))
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: opts.MaxEvals,
		Concurrent:      0,
	}

	evalLog, err := telemetry.CreateCSVLog(filepath.Join(opts.OutputDir, "calibrate_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer evalLog.Close()

	evalCount := 0
	bestFitness := math.Inf(1)
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			record := EvalRecord{
				Eval:     evalCount,
				Fitness:  fitness,
				Survival: evaluator.LastSurvival(),
				Quality:  evaluator.LastQuality(),
				Params:   params.Format(clamped),
			}
			if err := evalLog.Write([]EvalRecord{record}); err != nil {
				fmt.Fprintf(out, "writing log: %v\n", err)
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(opts.MaxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			fmt.Fprintf(out, "Eval %d/%d: survived=%.1fy quality=%.2f (best=%.1f) | elapsed: %s, ETA: %s\n",
				evalCount, opts.MaxEvals, record.Survival, record.Quality, evaluator.BestFitness(),
				formatDuration(elapsed), formatDuration(remaining))
			return fitness
		},
	}

	fmt.Fprintf(out, "Starting CMA-ES calibration with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, opts.MaxEvals)
	fmt.Fprintf(out, "Seeds per evaluation: %d, years per run: %d\n", len(evalSeeds), opts.Years)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		fmt.Fprintf(out, "calibration ended: %v\n", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		return fmt.Errorf("no evaluation completed")
	}

	fmt.Fprintf(out, "\nCalibration complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Fprintf(out, "Best fitness: %.1f\n\nBest parameters:\n", bestFitness)
	for i, spec := range params.Specs {
		fmt.Fprintf(out, "  %s: %.6f\n", spec.Name, bestParams[i])
	}

	bestCfg, err := params.ApplyToConfig(baseCfg, bestParams)
	if err != nil {
		return err
	}
	configOutPath := filepath.Join(opts.OutputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nBest config saved to: %s\n", configOutPath)
	return nil
}
