package cmd

import (
	"fmt"

	"github.com/KaramelBytes/popstat-cli/internal/analysis"
	"github.com/KaramelBytes/popstat-cli/internal/diag"
	"github.com/KaramelBytes/popstat-cli/internal/export"
	"github.com/KaramelBytes/popstat-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	expDSN     string
	expTable   string
	expLoader  loaderFlags
	expFilters filterFlags
)

var exportCmd = &cobra.Command{
	Use:   "export <file-or-url>",
	Short: "Export per-country aggregates to Postgres",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if expDSN == "" {
			return fmt.Errorf("--dsn is required")
		}
		opt, err := expLoader.options()
		if err != nil {
			return err
		}
		c := activeConfig()
		cand := c.Candidates()

		tableName := expTable
		if tableName == "" {
			tableName = c.ExportTable
		}

		t, err := loadInput(cmd.Context(), args[0], opt)
		if err != nil {
			return err
		}
		debugf("loaded %s: %d rows, %d columns", t.Name(), t.NumRows(), len(t.Columns()))

		sink := &diag.Collector{}
		clean := pipeline.Clean(t, sink)
		clean = expFilters.apply(cmd, clean, cand, sink)

		recs := analysis.AggregateByEntity(clean, cand, sink)
		drainDiags(sink)
		if len(recs) == 0 {
			fmt.Println("(no aggregates to export)")
			return nil
		}
		if err := export.Aggregates(cmd.Context(), expDSN, tableName, recs); err != nil {
			return err
		}
		fmt.Printf("✓ Exported %d aggregate rows to %s\n", len(recs), tableName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&expDSN, "dsn", "", "Postgres connection string (required)")
	exportCmd.Flags().StringVar(&expTable, "table", "", "destination table name (default: from config)")
	expLoader.register(exportCmd)
	expFilters.register(exportCmd)
}
