package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/KaramelBytes/popstat-cli/internal/diag"
	"github.com/KaramelBytes/popstat-cli/internal/pipeline"
	"github.com/KaramelBytes/popstat-cli/internal/report"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	abOutputDir string
	abQuiet     bool
	abLoader    loaderFlags
)

// batchWorkers bounds how many datasets are analyzed at once.
const batchWorkers = 4

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple datasets concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandBatchArgs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		opt, err := abLoader.options()
		if err != nil {
			return err
		}
		cand := activeConfig().Candidates()

		total := len(files)
		summaries := make([]string, total)
		var done atomic.Int64

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(batchWorkers)
		for i, path := range files {
			i, path := i, path // per-iteration copies; required for correct capture before go1.22 loop semantics
			g.Go(func() error {
				t, err := loadInput(ctx, path, opt)
				if err != nil {
					return fmt.Errorf("analyze %s: %w", path, err)
				}
				sink := &diag.Collector{}
				clean := pipeline.Clean(t, sink)

				rep := report.New(t.Name())
				rep.RowsLoaded = t.NumRows()
				rep.RowsClean = clean.NumRows()
				rep.Summarize(clean, cand)
				rep.Notes = sink.Messages()
				summaries[i] = rep.Markdown()

				if !abQuiet {
					fmt.Printf("[%d/%d] Analyzed %s\n", done.Add(1), total, filepath.Base(path))
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i, path := range files {
			if abOutputDir == "" {
				if !abQuiet {
					fmt.Println(summaries[i])
				}
				continue
			}
			if err := os.MkdirAll(abOutputDir, 0o755); err != nil {
				return err
			}
			base := filepath.Base(path)
			safe := strings.TrimSuffix(base, filepath.Ext(base))
			outFile := filepath.Join(abOutputDir, safe+".summary.md")
			if err := os.WriteFile(outFile, []byte(summaries[i]), 0o644); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !abQuiet {
				fmt.Printf("✓ Wrote %s\n", outFile)
			}
		}
		return nil
	},
}

// expandBatchArgs resolves glob patterns and literal paths into a sorted,
// duplicate-free file list. URLs pass through untouched; arguments that
// match nothing and name no existing file are dropped.
func expandBatchArgs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if isRemote(arg) {
				matches = []string{arg}
			} else if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutputDir, "output-dir", "", "directory to write per-dataset summaries (default: print to stdout)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
	abLoader.register(analyzeBatchCmd)
}
