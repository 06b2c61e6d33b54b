package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haukened/ipmon/internal/ipmon/common/log"
	"github.com/haukened/ipmon/internal/ipmon/config"
)

var (
	configPath string
	cfg        *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Track published provider IP ranges and project them into firewall rules",
	Long: `ipmon captures the provider's published IP range documents once a day,
reports what changed, aggregates the history into metrics and renders the
current ranges as firewall rule files.

Configuration comes from defaults, an optional config file (--config) and
IPMON_* environment variables, in that order.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a yaml, json or toml config file")
}

// loadConfig loads and validates the configuration and configures the
// global logger. Commands that need no configuration skip it.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations["config"] == "skip" {
		return nil
	}
	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := log.Configure(loaded.Env, loaded.LogLevel); err != nil {
		return fmt.Errorf("logging configuration error: %w", err)
	}
	cfg = loaded
	log.Debug(map[string]any{
		"version":    version,
		"env":        cfg.Env,
		"log_level":  cfg.LogLevel,
		"data_dir":   cfg.DataDir,
		"export_dir": cfg.ExportDir,
		"cache_dir":  cfg.CacheDir,
	}, "configuration loaded")
	return nil
}
