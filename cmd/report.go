package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/popstat-cli/internal/analysis"
	"github.com/KaramelBytes/popstat-cli/internal/dataset"
	"github.com/KaramelBytes/popstat-cli/internal/diag"
	"github.com/KaramelBytes/popstat-cli/internal/pipeline"
	"github.com/KaramelBytes/popstat-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	repCount       int
	repOutputPath  string
	repWorkspace   string
	repDescription string
	repLoader      loaderFlags
	repFilters     filterFlags
)

var reportCmd = &cobra.Command{
	Use:   "report [file-or-url]",
	Short: "Run the full population analysis and print a report",
	Long: `Report runs the whole pipeline over a dataset: load, clean, filter,
aggregate per country, rank the latest populations, and render the result.
Without an argument it fetches the configured dataset URL. The year floor
from the config applies unless --from or --to is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := repLoader.options()
		if err != nil {
			return err
		}
		c := activeConfig()
		cand := c.Candidates()

		src := c.DatasetURL
		if src == "" {
			src = dataset.DefaultPopulationURL
		}
		if len(args) == 1 {
			src = args[0]
		}

		n := repCount
		if !cmd.Flags().Changed("top") && c.TopN > 0 {
			n = c.TopN
		}

		t, err := loadInput(cmd.Context(), src, opt)
		if err != nil {
			return err
		}
		debugf("loaded %s: %d rows, %d columns", t.Name(), t.NumRows(), len(t.Columns()))

		sink := &diag.Collector{}
		clean := pipeline.Clean(t, sink)

		r := repFilters.timeRange(cmd)
		if r.Unbounded() && c.YearFrom > 0 {
			r = pipeline.From(float64(c.YearFrom))
		}
		filtered := pipeline.FilterByTimeRange(clean, cand, r, sink)
		if repFilters.europe {
			filtered = pipeline.FilterEuropean(filtered, cand, sink)
		}
		if len(repFilters.entities) > 0 {
			filtered = pipeline.FilterByEntities(filtered, cand, repFilters.entities, sink)
		}

		rep := report.New(src)
		if repFilters.europe {
			rep.Title = report.EuropeanTitle
		}
		rep.RowsLoaded = t.NumRows()
		rep.RowsClean = clean.NumRows()
		rep.Summarize(filtered, cand)

		rep.Top, err = analysis.TopN(filtered, cand, n, true, sink)
		if err != nil {
			return err
		}
		rep.Aggregates = analysis.AggregateByEntity(filtered, cand, sink)
		sort.SliceStable(rep.Aggregates, func(i, j int) bool {
			return rep.Aggregates[i].Entity < rep.Aggregates[j].Entity
		})
		rep.Notes = sink.Messages()

		written := false
		if repOutputPath != "" {
			if err := os.WriteFile(repOutputPath, []byte(rep.Markdown()), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote report to %s\n", repOutputPath)
			written = true
		}
		if repWorkspace != "" {
			base := strings.TrimSuffix(t.Name(), filepath.Ext(t.Name()))
			if err := attachToWorkspace(repWorkspace, base+".report.md", rep.Markdown(), src, repDescription, opt, cand); err != nil {
				return err
			}
			written = true
		}
		if !written {
			fmt.Print(rep.Console())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().IntVarP(&repCount, "top", "n", 10, "how many countries to rank")
	reportCmd.Flags().StringVarP(&repOutputPath, "output", "o", "", "optional path to write the report (Markdown)")
	reportCmd.Flags().StringVarP(&repWorkspace, "workspace", "w", "", "workspace name to attach the report")
	reportCmd.Flags().StringVar(&repDescription, "desc", "", "description when attaching to a workspace")
	repLoader.register(reportCmd)
	repFilters.register(reportCmd)
}
