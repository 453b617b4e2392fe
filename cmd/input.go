package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/KaramelBytes/popstat-cli/internal/dataset"
	"github.com/KaramelBytes/popstat-cli/internal/diag"
	"github.com/KaramelBytes/popstat-cli/internal/pipeline"
	"github.com/KaramelBytes/popstat-cli/internal/table"
	"github.com/spf13/cobra"
)

// loaderFlags holds the per-command dataset parsing flags so every command
// reads input the same way.
type loaderFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	maxRows    int
	sheetName  string
	sheetIndex int
}

func (lf *loaderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&lf.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	cmd.Flags().StringVar(&lf.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	cmd.Flags().StringVar(&lf.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	cmd.Flags().IntVar(&lf.maxRows, "max-rows", 0, "maximum rows to load (0 = unlimited)")
	cmd.Flags().StringVar(&lf.sheetName, "sheet-name", "", "XLSX: sheet name to load")
	cmd.Flags().IntVar(&lf.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func (lf *loaderFlags) options() (dataset.Options, error) {
	var opt dataset.Options
	if lf.maxRows > 0 {
		opt.MaxRows = lf.maxRows
	}
	if lf.delimiter != "" {
		switch lf.delimiter {
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		default:
			return opt, fmt.Errorf("unsupported --delimiter: %s", lf.delimiter)
		}
	}
	switch strings.ToLower(strings.TrimSpace(lf.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", lf.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(lf.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", lf.thousands)
	}
	opt.SheetName = lf.sheetName
	opt.SheetIndex = lf.sheetIndex
	return opt, nil
}

// filterFlags holds the row-selection flags shared by the analysis commands.
type filterFlags struct {
	yearFrom float64
	yearTo   float64
	europe   bool
	entities []string
}

func (ff *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&ff.yearFrom, "from", 0, "keep rows with time >= this year")
	cmd.Flags().Float64Var(&ff.yearTo, "to", 0, "keep rows with time <= this year")
	cmd.Flags().BoolVar(&ff.europe, "europe", false, "keep only the European country preset")
	cmd.Flags().StringSliceVar(&ff.entities, "entities", nil, "comma-separated entity names to keep (repeatable)")
}

// timeRange builds the inclusive year window from the flags actually set on
// the command line.
func (ff *filterFlags) timeRange(cmd *cobra.Command) pipeline.TimeRange {
	f := cmd.Flags()
	switch {
	case f.Changed("from") && f.Changed("to"):
		return pipeline.Between(ff.yearFrom, ff.yearTo)
	case f.Changed("from"):
		return pipeline.From(ff.yearFrom)
	case f.Changed("to"):
		return pipeline.Until(ff.yearTo)
	default:
		return pipeline.TimeRange{}
	}
}

// apply runs the selected filters over t in a fixed order. Filters commute,
// so the order only affects diagnostics.
func (ff *filterFlags) apply(cmd *cobra.Command, t *table.Table, cand table.Candidates, sink diag.Sink) *table.Table {
	if r := ff.timeRange(cmd); !r.Unbounded() {
		t = pipeline.FilterByTimeRange(t, cand, r, sink)
	}
	if ff.europe {
		t = pipeline.FilterEuropean(t, cand, sink)
	}
	if len(ff.entities) > 0 {
		t = pipeline.FilterByEntities(t, cand, ff.entities, sink)
	}
	return t
}

// isRemote reports whether the dataset argument is an http(s) URL.
func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// loadInput reads a dataset from a local path or, when the argument is a
// URL, downloads it with the configured retry policy.
func loadInput(ctx context.Context, pathOrURL string, opt dataset.Options) (*table.Table, error) {
	if isRemote(pathOrURL) {
		f := dataset.NewFetcher(activeConfig().FetchOptions())
		return f.Fetch(ctx, pathOrURL, opt)
	}
	return dataset.Load(pathOrURL, opt)
}
