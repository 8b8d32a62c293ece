package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/island"
	"github.com/pthm-cable/biosim/islandgen"
	"github.com/pthm-cable/biosim/telemetry"
)

// runOptions holds the settings of one simulation run.
type runOptions struct {
	ScenarioPath string
	Years        int // 0 = config run.years
	Seed         int64
	SeedSet      bool
	OutputDir    string
	LogEvery     int // 0 = config run.log_every
	Lenient      bool
	Perf         bool
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation for a number of years",
		Long: `Build an island from a scenario file and run it year by year.

Without --scenario a random island is generated from the seed and stocked
with a starting herd in its first habitable cell.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, os.Stdout)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			var opts runOptions
			opts.ScenarioPath, _ = cmd.Flags().GetString("scenario")
			opts.Years, _ = cmd.Flags().GetInt("years")
			opts.Seed, _ = cmd.Flags().GetInt64("seed")
			opts.SeedSet = cmd.Flags().Changed("seed")
			opts.OutputDir, _ = cmd.Flags().GetString("output-dir")
			opts.LogEvery, _ = cmd.Flags().GetInt("log-every")
			opts.Lenient, _ = cmd.Flags().GetBool("lenient")
			opts.Perf, _ = cmd.Flags().GetBool("perf")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err = runSimulation(ctx, cfg, opts, logger)
			return err
		},
	}
	cmd.Flags().String("scenario", "", "Scenario YAML file (empty = generated island)")
	cmd.Flags().Int("years", 0, "Years to simulate (0 = config run.years)")
	cmd.Flags().Int64("seed", 0, "RNG seed (overrides config seed)")
	cmd.Flags().String("output-dir", "", "Directory for CSV telemetry and config snapshot")
	cmd.Flags().Int("log-every", 0, "Log year statistics every N years (0 = config run.log_every)")
	cmd.Flags().Bool("lenient", false, "Skip invalid population entries instead of failing")
	cmd.Flags().Bool("perf", false, "Time every season and write perf.csv")
	return cmd
}

// defaultScenario builds a generated island with a starting herd of grazers
// and a few predators.
func defaultScenario(seed int64) *island.Scenario {
	gen := islandgen.DefaultGenConfig()
	gen.Seed = seed
	rows := islandgen.Generate(gen)

	sc := &island.Scenario{Geography: rows}
	for r, row := range rows {
		for c, sym := range row {
			if sym != 'J' && sym != 'S' && sym != 'D' {
				continue
			}
			var pop []island.AnimalSpec
			for i := 0; i < 50; i++ {
				pop = append(pop, island.AnimalSpec{Species: "Grazer", Age: 5, Weight: 20})
			}
			for i := 0; i < 20; i++ {
				pop = append(pop, island.AnimalSpec{Species: "Predator", Age: 5, Weight: 20})
			}
			sc.Population = []island.PopulationEntry{{Loc: []int{r, c}, Pop: pop}}
			return sc
		}
	}
	return sc
}

// runSimulation runs opts.Years years and returns the finished island.
// Cancelling ctx stops the run between years.
func runSimulation(ctx context.Context, cfg *config.Config, opts runOptions, logger *slog.Logger) (*island.Island, error) {
	cfg = cfg.Clone()
	if opts.SeedSet {
		cfg.Seed = opts.Seed
	}
	years := opts.Years
	if years <= 0 {
		years = cfg.Run.Years
	}
	logEvery := opts.LogEvery
	if logEvery <= 0 {
		logEvery = max(cfg.Run.LogEvery, 1)
	}

	var sc *island.Scenario
	if opts.ScenarioPath != "" {
		var err error
		if sc, err = island.LoadScenario(opts.ScenarioPath); err != nil {
			return nil, err
		}
	} else {
		sc = defaultScenario(cfg.Seed)
	}

	var perf *telemetry.PerfCollector
	if opts.Perf {
		perf = telemetry.NewPerfCollector(logEvery)
	}

	isl, err := sc.Build(cfg, !opts.Lenient, island.WithLogger(logger), island.WithPerf(perf))
	if err != nil {
		return nil, fmt.Errorf("building island: %w", err)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	defer output.Close()
	if err := output.WriteConfig(isl.Config()); err != nil {
		return nil, err
	}

	bookmarks := telemetry.NewBookmarkDetector(isl.Config().Telemetry)

	logger.Info("starting simulation",
		"seed", cfg.Seed,
		"years", years,
		"rows", isl.Rows(),
		"cols", isl.Cols(),
		"output_dir", opts.OutputDir,
	)

	for y := 0; y < years; y++ {
		if err := ctx.Err(); err != nil {
			logger.Info("simulation interrupted", "year", isl.Year())
			break
		}
		isl.AdvanceYear()
		stats := isl.LastYearStats()

		if err := output.WriteYear(stats); err != nil {
			return isl, err
		}
		if err := output.WriteDistribution(isl.LastDistribution()); err != nil {
			return isl, err
		}
		for _, b := range bookmarks.Check(stats) {
			b.LogBookmark(logger)
			if err := output.WriteBookmark(b); err != nil {
				return isl, err
			}
		}

		if stats.Year%logEvery == 0 {
			stats.LogStats(logger)
			if perf != nil {
				ps := perf.Stats()
				logger.Info("perf", "stats", ps)
				if err := output.WritePerf(ps, stats.Year); err != nil {
					return isl, err
				}
			}
		}
	}

	snap := isl.Snapshot()
	logger.Info("simulation finished",
		"year", snap.Year,
		"animals", snap.Total,
		"grazers", snap.PerSpecies[components.Grazer],
		"predators", snap.PerSpecies[components.Predator],
	)
	return isl, nil
}
