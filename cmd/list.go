package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/popstat-cli/internal/utils"
	"github.com/KaramelBytes/popstat-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	listWorkspaces bool
	listDatasets   bool
	listWsName     string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces or registered datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listWorkspaces == listDatasets { // either both true or both false
			return fmt.Errorf("specify exactly one of --workspaces or --datasets")
		}
		if listWorkspaces {
			return listAllWorkspaces()
		}
		// list datasets
		var dir string
		var err error
		if listWsName != "" {
			dir, err = resolveWorkspaceDirByName(listWsName)
		} else {
			dir, err = utils.FindWorkspaceRoot("")
		}
		if err != nil {
			return err
		}
		w, err := workspace.Load(dir)
		if err != nil {
			return err
		}
		if len(w.Datasets) == 0 {
			fmt.Println("(no datasets)")
			return nil
		}
		for _, d := range w.Sorted() {
			fmt.Printf("- %s: %s, %d rows (%s)\n", d.ID, d.Name, d.Rows, d.Description)
		}
		return nil
	},
}

func listAllWorkspaces() error {
	root, err := defaultWorkspacesDir()
	if err != nil {
		return err
	}
	dirs, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	found := false
	for _, e := range dirs {
		if !e.IsDir() {
			continue
		}
		wj := filepath.Join(root, e.Name(), "workspace.json")
		if _, err := os.Stat(wj); err == nil {
			fmt.Printf("- %s\n", e.Name())
			found = true
		}
	}
	if !found {
		fmt.Println("(no workspaces)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listWorkspaces, "workspaces", false, "list workspaces")
	listCmd.Flags().BoolVar(&listDatasets, "datasets", false, "list datasets in a workspace")
	listCmd.Flags().StringVarP(&listWsName, "workspace", "w", "", "workspace name for --datasets (default: workspace enclosing the current directory)")
}
