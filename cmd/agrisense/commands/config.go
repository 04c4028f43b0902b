package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// configCmd groups alert strategy config inspection.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the alert strategy config",
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the strategy YAML and print its hash",
	Long: `Loads the alert strategy YAML, runs full validation and prints the
resolved ranges plus the config hash recorded with every run.

Example:
  go run ./cmd/agrisense config check --alerts config/alerts.yaml`,
	RunE: runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	appCfg, _, err := loadApp()
	if err != nil {
		return err
	}
	alertCfg, snap, err := loadAlerts(appCfg)
	if err != nil {
		return err
	}

	dataStart, dataEnd := alertCfg.Period.DataRange()
	reportStart, reportEnd := alertCfg.Period.ReportRange()

	fmt.Printf("Strategy:    %s\n", alertCfg.Meta.StrategyID)
	fmt.Printf("Region:      %.4f, %.4f\n", alertCfg.Meta.Latitude, alertCfg.Meta.Longitude)
	fmt.Printf("Data range:  %s .. %s\n",
		dataStart.Format("2006-01-02"), dataEnd.Format("2006-01-02"))
	fmt.Printf("Report:      %s .. %s\n",
		reportStart.Format("2006-01-02"), reportEnd.Format("2006-01-02"))
	fmt.Printf("Categories:  %s\n", strings.Join(alertCfg.Rules.Categories, ", "))
	fmt.Printf("Gating mode: %s\n", alertCfg.Gating.Mode)
	fmt.Printf("Config hash: %s\n", snap.ConfigHash)
	fmt.Println("OK")
	return nil
}
