package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/pkg/config"
	"github.com/agrisense/agrisense/pkg/logger"
)

var (
	// Global flags
	alertsFile  string
	indicesFile string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "agrisense",
	Short: "AgriSense - composite crop stress alert engine",
	Long: `AgriSense Unified CLI

Converts fused daily weather and satellite index series into
explainable crop stress alerts and multi-day events.

Usage:
  go run ./cmd/agrisense [command]

Examples:
  go run ./cmd/agrisense pipeline
  go run ./cmd/agrisense detect --alerts config/alerts.yaml
  go run ./cmd/agrisense serve
  go run ./cmd/agrisense config check`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&alertsFile, "alerts", "", "alert strategy YAML (default from ALERT_CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&indicesFile, "indices", "", "satellite index CSV (default <data_dir>/<strategy_id>/indices.csv)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadApp loads the environment config and builds the logger.
func loadApp() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}

// loadAlerts loads and validates the alert strategy YAML named by the
// --alerts flag or the environment.
func loadAlerts(appCfg *config.Config) (*alertconfig.Config, *alertconfig.RunSnapshot, error) {
	path := alertsFile
	if path == "" {
		path = appCfg.AlertConfigPath
	}
	cfg, raw, err := alertconfig.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load alert config %s: %w", path, err)
	}
	snap, err := alertconfig.NewRunSnapshot(cfg, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot alert config: %w", err)
	}
	return cfg, snap, nil
}

// indicesPath resolves the satellite index CSV location.
func indicesPath(appCfg *config.Config, alertCfg *alertconfig.Config) string {
	if indicesFile != "" {
		return indicesFile
	}
	return filepath.Join(appCfg.DataDir, alertCfg.Meta.StrategyID, "indices.csv")
}
