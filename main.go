package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "biosim",
		Short: "Island predator/prey population simulation",
		Long: `biosim simulates grazers and predators living on an island of
jungle, savannah, desert, mountain and ocean cells.

Each simulated year runs six seasons in order: feeding, procreation,
migration, aging, weight loss and death.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (empty = use defaults)")
	rootCmd.PersistentFlags().String("log-format", "json", "Log format: json or text")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newRunCmd(),
		newGenerateCmd(),
		newParamsCmd(),
	)
	return rootCmd
}
