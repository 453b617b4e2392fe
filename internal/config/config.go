package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/popstat-cli/internal/dataset"
	"github.com/KaramelBytes/popstat-cli/internal/table"
)

// Global configuration structure.
type Global struct {
	EntityCandidates []string `mapstructure:"entity_candidates" yaml:"entity_candidates"`
	TimeCandidates   []string `mapstructure:"time_candidates" yaml:"time_candidates"`
	ValueCandidates  []string `mapstructure:"value_candidates" yaml:"value_candidates"`

	DatasetURL string `mapstructure:"dataset_url" yaml:"dataset_url"`
	TopN       int    `mapstructure:"top_n" yaml:"top_n"`
	YearFrom   int    `mapstructure:"year_from" yaml:"year_from"`

	WorkspacesDir string `mapstructure:"workspaces_dir" yaml:"workspaces_dir"`
	ExportTable   string `mapstructure:"export_table" yaml:"export_table"`

	// HTTP/Retry configuration
	FetchTimeoutSec  int `mapstructure:"fetch_timeout_sec" yaml:"fetch_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`
}

// Candidates maps the configured column names onto a resolver candidate set.
func (c *Global) Candidates() table.Candidates {
	cand := table.DefaultCandidates()
	if len(c.EntityCandidates) > 0 {
		cand.Entity = c.EntityCandidates
	}
	if len(c.TimeCandidates) > 0 {
		cand.Time = c.TimeCandidates
	}
	if len(c.ValueCandidates) > 0 {
		cand.Value = c.ValueCandidates
	}
	return cand
}

// FetchOptions maps the HTTP/retry settings onto fetcher options.
func (c *Global) FetchOptions() dataset.FetchOptions {
	return dataset.FetchOptions{
		Timeout:   time.Duration(c.FetchTimeoutSec) * time.Second,
		RetryMax:  c.RetryMaxAttempts,
		BaseDelay: time.Duration(c.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:  time.Duration(c.RetryMaxDelayMs) * time.Millisecond,
	}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.popstat/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".popstat")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("POPSTAT")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("entity_candidates", table.DefaultCandidates().Entity)
	v.SetDefault("time_candidates", table.DefaultCandidates().Time)
	v.SetDefault("value_candidates", table.DefaultCandidates().Value)
	v.SetDefault("dataset_url", dataset.DefaultPopulationURL)
	v.SetDefault("top_n", 10)
	v.SetDefault("year_from", 2000)
	v.SetDefault("export_table", "population_aggregates")
	// HTTP/retry defaults
	v.SetDefault("fetch_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".popstat")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve workspaces_dir default: ~/.popstat/workspaces
	if c.WorkspacesDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.WorkspacesDir = filepath.Join(home, ".popstat", "workspaces")
	}
	return &c, nil
}
