package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/popstat-cli/internal/dataset"
	"github.com/spf13/cobra"
)

var fetchOutput string

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Download a dataset snapshot to disk",
	Long:  `Fetch downloads a dataset over HTTP with the configured timeout and retry policy and saves the raw bytes. Without an argument it fetches the configured dataset URL.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := activeConfig()
		src := c.DatasetURL
		if src == "" {
			src = dataset.DefaultPopulationURL
		}
		if len(args) == 1 {
			src = args[0]
		}
		if !isRemote(src) {
			return fmt.Errorf("fetch needs an http(s) URL, got %s", src)
		}

		f := dataset.NewFetcher(c.FetchOptions())
		body, err := f.FetchRaw(cmd.Context(), src)
		if err != nil {
			return err
		}

		out := fetchOutput
		if out == "" {
			out = dataset.NameFromURL(src)
		}
		if err := os.WriteFile(out, body, 0o644); err != nil {
			return fmt.Errorf("save dataset: %w", err)
		}
		fmt.Printf("✓ Saved %s (%d bytes)\n", out, len(body))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "path to save the download (default: file name from the URL)")
}
