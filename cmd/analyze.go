package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/popstat-cli/internal/dataset"
	"github.com/KaramelBytes/popstat-cli/internal/diag"
	"github.com/KaramelBytes/popstat-cli/internal/pipeline"
	"github.com/KaramelBytes/popstat-cli/internal/report"
	"github.com/KaramelBytes/popstat-cli/internal/table"
	"github.com/KaramelBytes/popstat-cli/internal/utils"
	"github.com/KaramelBytes/popstat-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	anaWorkspace   string
	anaOutputPath  string
	anaDescription string
	anaLoader      loaderFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file-or-url>",
	Short: "Analyze a dataset and produce a concise summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt, err := anaLoader.options()
		if err != nil {
			return err
		}
		cand := activeConfig().Candidates()

		t, err := loadInput(cmd.Context(), path, opt)
		if err != nil {
			return err
		}
		debugf("loaded %s: %d rows, %d columns", t.Name(), t.NumRows(), len(t.Columns()))

		sink := &diag.Collector{}
		clean := pipeline.Clean(t, sink)

		rep := report.New(t.Name())
		rep.RowsLoaded = t.NumRows()
		rep.RowsClean = clean.NumRows()
		rep.Summarize(clean, cand)
		rep.Notes = sink.Messages()
		md := rep.Markdown()

		// Decide where to write: --output path, or attach to workspace, or stdout
		written := false
		if anaOutputPath != "" {
			if err := os.WriteFile(anaOutputPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote analysis to %s\n", anaOutputPath)
			written = true
		}
		if anaWorkspace != "" {
			base := strings.TrimSuffix(t.Name(), filepath.Ext(t.Name()))
			if err := attachToWorkspace(anaWorkspace, base+".summary.md", md, path, anaDescription, opt, cand); err != nil {
				return err
			}
			written = true
		}
		if !written {
			fmt.Println(md)
		}
		return nil
	},
}

// attachToWorkspace writes a rendered summary under the workspace's
// summaries directory and registers the dataset when it is a local file the
// workspace does not know yet.
func attachToWorkspace(wsName, fileName, content, datasetPath, desc string, opt dataset.Options, cand table.Candidates) error {
	dir, err := resolveWorkspaceDirByName(wsName)
	if err != nil {
		return err
	}
	w, err := workspace.Load(dir)
	if err != nil {
		return err
	}
	outDir := filepath.Join(w.RootDir(), "summaries")
	if err := utils.EnsureDir(outDir); err != nil {
		return err
	}
	outFile := filepath.Join(outDir, fileName)
	if err := os.WriteFile(outFile, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write workspace summary: %w", err)
	}
	if desc == "" {
		desc = "Auto-generated dataset summary"
	}
	if _, known := w.Find(filepath.Base(datasetPath)); !known && !isRemote(datasetPath) {
		if _, _, err := w.AddDataset(datasetPath, desc, opt, cand); err != nil {
			return err
		}
	}
	if err := w.Save(); err != nil {
		return err
	}
	fmt.Printf("✓ Added analysis to workspace '%s' as %s\n", w.Name, fileName)
	return nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaWorkspace, "workspace", "w", "", "workspace name to attach the summary")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	analyzeCmd.Flags().StringVar(&anaDescription, "desc", "", "description when attaching to a workspace")
	anaLoader.register(analyzeCmd)
}
