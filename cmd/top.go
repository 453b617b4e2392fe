package cmd

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KaramelBytes/popstat-cli/internal/analysis"
	"github.com/KaramelBytes/popstat-cli/internal/diag"
	"github.com/KaramelBytes/popstat-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	topCount   int
	topLatest  bool
	topLoader  loaderFlags
	topFilters filterFlags
)

var topCmd = &cobra.Command{
	Use:   "top <file-or-url>",
	Short: "Rank countries by their population value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := topLoader.options()
		if err != nil {
			return err
		}
		c := activeConfig()
		cand := c.Candidates()

		n := topCount
		if !cmd.Flags().Changed("top") && c.TopN > 0 {
			n = c.TopN
		}

		t, err := loadInput(cmd.Context(), args[0], opt)
		if err != nil {
			return err
		}
		debugf("loaded %s: %d rows, %d columns", t.Name(), t.NumRows(), len(t.Columns()))

		sink := &diag.Collector{}
		clean := pipeline.Clean(t, sink)
		clean = topFilters.apply(cmd, clean, cand, sink)

		rows, err := analysis.TopN(clean, cand, n, topLatest, sink)
		if err != nil {
			return err
		}
		drainDiags(sink)
		if len(rows) == 0 {
			fmt.Println("(no ranking)")
			return nil
		}

		p := message.NewPrinter(language.English)
		for i, r := range rows {
			switch {
			case r.Entity == "":
				p.Printf("%d. %.0f\n", i+1, r.Value)
			case r.Time.IsNull() || r.Time.IsUndefined():
				p.Printf("%d. %s: %.0f\n", i+1, r.Entity, r.Value)
			default:
				p.Printf("%d. %s: %.0f (%s)\n", i+1, r.Entity, r.Value, r.Time)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(topCmd)
	topCmd.Flags().IntVarP(&topCount, "top", "n", 10, "how many countries to rank")
	topCmd.Flags().BoolVar(&topLatest, "latest", true, "reduce each country to its most recent row before ranking")
	topLoader.register(topCmd)
	topFilters.register(topCmd)
}
