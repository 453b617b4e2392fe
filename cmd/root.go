package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/popstat-cli/internal/config"
	"github.com/KaramelBytes/popstat-cli/internal/diag"
	"github.com/spf13/cobra"
)

var (
	// Global flags (wired later to config/viper)
	cfgFile string
	debug   bool
	// Fetch/retry flags (override config if set)
	flagFetchTimeoutSec  int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "popstat",
	Short: "PopStat CLI: load, clean and summarize population datasets",
	Long:  `PopStat is a CLI tool that loads tabular population datasets (CSV/TSV/XLSX, local or remote), resolves their country/year/value columns, cleans them, and produces aggregates, rankings, growth rates and reports.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.popstat/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print pipeline diagnostics to stderr")
	rootCmd.PersistentFlags().IntVar(&flagFetchTimeoutSec, "fetch-timeout", 0, "dataset fetch timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max retry attempts on 429/5xx (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("fetch-timeout") && flagFetchTimeoutSec > 0 {
		cfg.FetchTimeoutSec = flagFetchTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}
}

// activeConfig returns the loaded config, falling back to defaults when the
// config file could not be read at startup.
func activeConfig() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return &cfgpkg.Global{}
	}
	cfg = c
	return cfg
}

// drainDiags prints collected pipeline notices to stderr with the warning
// marker. The pipeline never fails loudly on degraded input, so this is where
// the user learns about dropped rows and unresolved columns.
func drainDiags(sink *diag.Collector) {
	if sink == nil || sink.Len() == 0 {
		return
	}
	for _, n := range sink.Notices() {
		fmt.Fprintf(os.Stderr, "⚠ %s\n", n.String())
	}
}

func debugf(format string, args ...any) {
	if !debug {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
