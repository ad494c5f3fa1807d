package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"beacon-dashboard/internal/config"
	"beacon-dashboard/internal/logging"
)

var configPath string

// NewRootCmd returns the Cobra entrypoint for the dashboard server and tools.
func NewRootCmd() *cobra.Command {
	configPath = ""
	root := &cobra.Command{
		Use:   "beacon",
		Short: "Live survey dashboard backed by a Monday.com board",
		Long: "Beacon serves a cached gateway over a Monday.com board and a dashboard that " +
			"polls it, tallying answers per opportunity.",
		Example: "  beacon serve\n" +
			"  beacon token set\n" +
			"  beacon snapshot --url http://127.0.0.1:8787/api/survey-data",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "Path to config file (default: <data dir>/config.yml)")
	root.AddCommand(newServeCmd())
	root.AddCommand(newSnapshotCmd())
	root.AddCommand(newTokenCmd())
	root.AddCommand(newConfigCmd())
	return root
}

// dataDir is BEACON_DATA_DIR, else the user config dir.
func dataDir() string {
	if v := os.Getenv("BEACON_DATA_DIR"); v != "" {
		return v
	}
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "beacon")
	}
	return "."
}

// loadConfig reads --config, or bootstraps the default file into the data
// dir. Validation errors abort; warnings are logged.
func loadConfig() (config.Config, string, error) {
	path := configPath
	dir := dataDir()
	if path == "" {
		p, err := config.EnsureUserConfig(dir)
		if err != nil {
			return config.Config{}, "", fmt.Errorf("config bootstrap: %w", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, path, fmt.Errorf("load config %s: %w", path, err)
	}
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = dir
	}

	normalized, vr := config.NormalizeAndValidate(cfg)
	logger := logging.New("config")
	for _, w := range vr.Warnings {
		logger.Printf("[config] warning: %s", w)
	}
	if err := vr.Err(); err != nil {
		return config.Config{}, path, err
	}
	return normalized, path, nil
}
