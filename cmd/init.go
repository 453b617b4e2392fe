package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/popstat-cli/internal/utils"
	"github.com/KaramelBytes/popstat-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	initDescription string
)

var initCmd = &cobra.Command{
	Use:   "init <workspace-name>",
	Short: "Initialize a new dataset workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		root, err := defaultWorkspacesDir()
		if err != nil {
			return err
		}
		wsDir := filepath.Join(root, name)
		// Refuse to overwrite an existing workspace.
		if info, err := os.Stat(wsDir); err == nil && info.IsDir() {
			wsFile := filepath.Join(wsDir, "workspace.json")
			if _, err := os.Stat(wsFile); err == nil {
				return fmt.Errorf("workspace already exists at %s", wsDir)
			}
			entries, err := os.ReadDir(wsDir)
			if err != nil {
				return fmt.Errorf("inspect workspace directory: %w", err)
			}
			if len(entries) > 0 {
				return fmt.Errorf("directory %s already exists and is not empty; refusing to initialize workspace", wsDir)
			}
		} else if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("stat workspace directory: %w", err)
		}
		if err := utils.EnsureDir(wsDir); err != nil {
			return err
		}
		w := workspace.New(name, initDescription, wsDir)
		if err := w.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Workspace initialized: %s\n", wsDir)
		return nil
	},
}

func defaultWorkspacesDir() (string, error) {
	if cfg != nil && cfg.WorkspacesDir != "" {
		dir := cfg.WorkspacesDir
		if strings.HasPrefix(dir, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home dir: %w", err)
			}
			dir = strings.TrimPrefix(dir, "~")
			dir = strings.TrimPrefix(dir, string(os.PathSeparator))
			dir = strings.TrimPrefix(dir, "/")
			dir = filepath.Join(home, dir)
		}
		dir = filepath.Clean(dir)
		if err := utils.EnsureDir(dir); err != nil {
			return "", err
		}
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	dir := filepath.Join(home, ".popstat", "workspaces")
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

func resolveWorkspaceDirByName(name string) (string, error) {
	if name == "" {
		return "", errors.New("workspace name is required")
	}
	root, err := defaultWorkspacesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initDescription, "desc", "d", "", "workspace description")
}
