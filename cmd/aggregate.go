package cmd

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/popstat-cli/internal/analysis"
	"github.com/KaramelBytes/popstat-cli/internal/diag"
	"github.com/KaramelBytes/popstat-cli/internal/pipeline"
	"github.com/KaramelBytes/popstat-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	aggSortKey string
	aggLoader  loaderFlags
	aggFilters filterFlags
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <file-or-url>",
	Short: "Aggregate the value column per country (count, mean, min, max, sum)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := aggLoader.options()
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
		clean = aggFilters.apply(cmd, clean, cand, sink)

		recs := analysis.AggregateByEntity(clean, cand, sink)
		if err := sortAggregates(recs, aggSortKey); err != nil {
			return err
		}
		drainDiags(sink)
		if len(recs) == 0 {
			fmt.Println("(no aggregates)")
			return nil
		}
		fmt.Print(report.AggregatesTable(recs))
		return nil
	},
}

// sortAggregates reorders recs in place. The empty key keeps the table's
// first-seen entity order; numeric keys sort descending.
func sortAggregates(recs []analysis.AggregateRecord, key string) error {
	var less func(a, b analysis.AggregateRecord) bool
	switch key {
	case "":
		return nil
	case "entity":
		less = func(a, b analysis.AggregateRecord) bool { return a.Entity < b.Entity }
	case "count":
		less = func(a, b analysis.AggregateRecord) bool { return a.Count > b.Count }
	case "mean":
		less = func(a, b analysis.AggregateRecord) bool { return a.Mean > b.Mean }
	case "min":
		less = func(a, b analysis.AggregateRecord) bool { return a.Min > b.Min }
	case "max":
		less = func(a, b analysis.AggregateRecord) bool { return a.Max > b.Max }
	case "sum":
		less = func(a, b analysis.AggregateRecord) bool { return a.Sum > b.Sum }
	default:
		return fmt.Errorf("unsupported --sort: %s (use entity|count|mean|min|max|sum)", key)
	}
	sort.SliceStable(recs, func(i, j int) bool { return less(recs[i], recs[j]) })
	return nil
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
	aggregateCmd.Flags().StringVar(&aggSortKey, "sort", "", "order rows by: entity|count|mean|min|max|sum (default: first appearance)")
	aggLoader.register(aggregateCmd)
	aggFilters.register(aggregateCmd)
}
