package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/biosim/islandgen"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a randomly generated island geography",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := islandgen.DefaultGenConfig()
			gen.Rows, _ = cmd.Flags().GetInt("rows")
			gen.Cols, _ = cmd.Flags().GetInt("cols")
			gen.Seed, _ = cmd.Flags().GetInt64("seed")

			out := cmd.OutOrStdout()
			for _, row := range islandgen.Generate(gen) {
				fmt.Fprintln(out, row)
			}
			return nil
		},
	}
	cmd.Flags().Int("rows", 21, "Number of rows")
	cmd.Flags().Int("cols", 21, "Number of columns")
	cmd.Flags().Int64("seed", 1, "Noise seed")
	return cmd
}
