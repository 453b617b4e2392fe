package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/popstat-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set PopStat configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("dataset_url: %s\n", cfg.DatasetURL)
		fmt.Printf("top_n: %d\n", cfg.TopN)
		fmt.Printf("year_from: %d\n", cfg.YearFrom)
		fmt.Printf("entity_candidates: %s\n", strings.Join(cfg.EntityCandidates, ","))
		fmt.Printf("time_candidates: %s\n", strings.Join(cfg.TimeCandidates, ","))
		fmt.Printf("value_candidates: %s\n", strings.Join(cfg.ValueCandidates, ","))
		fmt.Printf("workspaces_dir: %s\n", cfg.WorkspacesDir)
		fmt.Printf("export_table: %s\n", cfg.ExportTable)
		fmt.Printf("fetch_timeout_sec: %d\n", cfg.FetchTimeoutSec)
		fmt.Printf("retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		fmt.Printf("retry_base_delay_ms: %d\n", cfg.RetryBaseDelayMs)
		fmt.Printf("retry_max_delay_ms: %d\n", cfg.RetryMaxDelayMs)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "dataset_url":
			cfg.DatasetURL = val
		case "top_n":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for top_n: %v", val)
			}
			cfg.TopN = i
		case "year_from":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for year_from: %v", val)
			}
			cfg.YearFrom = i
		case "entity_candidates":
			cfg.EntityCandidates = splitCandidates(val)
		case "time_candidates":
			cfg.TimeCandidates = splitCandidates(val)
		case "value_candidates":
			cfg.ValueCandidates = splitCandidates(val)
		case "workspaces_dir":
			cfg.WorkspacesDir = val
		case "export_table":
			cfg.ExportTable = val
		case "fetch_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for fetch_timeout_sec: %v", val)
			}
			cfg.FetchTimeoutSec = i
		case "retry_max_attempts":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for retry_max_attempts: %v", val)
			}
			cfg.RetryMaxAttempts = i
		case "retry_base_delay_ms":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for retry_base_delay_ms: %v", val)
			}
			cfg.RetryBaseDelayMs = i
		case "retry_max_delay_ms":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for retry_max_delay_ms: %v", val)
			}
			cfg.RetryMaxDelayMs = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

// splitCandidates parses a comma-separated column list, preserving case and
// dropping empty entries.
func splitCandidates(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
