package cmd

import (
	"fmt"

	"github.com/KaramelBytes/popstat-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	addWorkspace string
	addDesc      string
	addLoader    loaderFlags
)

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Register a dataset in a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := args[0]
		if addWorkspace == "" {
			return fmt.Errorf("--workspace is required")
		}
		if isRemote(file) {
			return fmt.Errorf("add registers local files; use 'popstat fetch %s' first", file)
		}
		opt, err := addLoader.options()
		if err != nil {
			return err
		}
		dir, err := resolveWorkspaceDirByName(addWorkspace)
		if err != nil {
			return err
		}
		w, err := workspace.Load(dir)
		if err != nil {
			return err
		}
		d, t, err := w.AddDataset(file, addDesc, opt, activeConfig().Candidates())
		if err != nil {
			return err
		}
		if err := w.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Dataset added: %s (%d rows, %d columns)\n", d.Name, t.NumRows(), len(t.Columns()))
		if d.EntityCol != "" || d.TimeCol != "" || d.ValueCol != "" {
			fmt.Printf("  resolved: entity=%s time=%s value=%s\n", d.EntityCol, d.TimeCol, d.ValueCol)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addWorkspace, "workspace", "w", "", "workspace name")
	addCmd.Flags().StringVar(&addDesc, "desc", "", "dataset description")
	addLoader.register(addCmd)
}
