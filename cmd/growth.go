package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/popstat-cli/internal/analysis"
	"github.com/KaramelBytes/popstat-cli/internal/dataset"
	"github.com/KaramelBytes/popstat-cli/internal/diag"
	"github.com/KaramelBytes/popstat-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	growthOutput  string
	growthLoader  loaderFlags
	growthFilters filterFlags
)

var growthCmd = &cobra.Command{
	Use:   "growth <file-or-url>",
	Short: "Compute year-over-year growth rates per country",
	Long:  `Growth sorts the dataset by country and year, appends a growth_rate column with the percent change against each country's previous year, and writes the result as CSV.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := growthLoader.options()
		if err != nil {
			return err
		}
		cand := activeConfig().Candidates()

		t, err := loadInput(cmd.Context(), args[0], opt)
		if err != nil {
			return err
		}
		debugf("loaded %s: %d rows, %d columns", t.Name(), t.NumRows(), len(t.Columns()))

		sink := &diag.Collector{}
		clean := pipeline.Clean(t, sink)
		clean = growthFilters.apply(cmd, clean, cand, sink)

		out := analysis.GrowthRates(clean, cand, sink)
		drainDiags(sink)

		if growthOutput != "" {
			if err := dataset.SaveCSV(growthOutput, out); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote growth rates to %s\n", growthOutput)
			return nil
		}
		return dataset.WriteCSV(os.Stdout, out)
	},
}

func init() {
	rootCmd.AddCommand(growthCmd)
	growthCmd.Flags().StringVarP(&growthOutput, "output", "o", "", "optional path to write the result (CSV)")
	growthLoader.register(growthCmd)
	growthFilters.register(growthCmd)
}
