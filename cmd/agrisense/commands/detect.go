package commands

import (
	"github.com/spf13/cobra"

	"github.com/agrisense/agrisense/internal/fetch/indices"
	"github.com/agrisense/agrisense/internal/fetch/openmeteo"
	"github.com/agrisense/agrisense/internal/pipeline"
	"github.com/agrisense/agrisense/internal/report"
	"github.com/agrisense/agrisense/pkg/redis"
)

// detectCmd runs detection without touching Postgres. Useful for
// iterating on thresholds against a local index CSV.
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run detection and reports without the database",
	Long: `Runs the fetch, fuse and detection stages and writes the markdown
report plus stage summaries. Nothing is persisted to Postgres, so this
is safe to run while tuning thresholds.

Example:
  go run ./cmd/agrisense detect --alerts config/alerts.yaml --indices data/field/indices.csv`,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	appCfg, log, err := loadApp()
	if err != nil {
		return err
	}
	alertCfg, snap, err := loadAlerts(appCfg)
	if err != nil {
		return err
	}

	redisClient, err := redis.New(appCfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, weather cache disabled")
	}
	var cache *redis.Cache
	if redisClient != nil {
		defer redisClient.Close()
		cache = redis.NewCache(redisClient, "agrisense")
	}

	opts := pipeline.Options{
		Weather:     openmeteo.NewClient(appCfg.OpenMeteo, cache, log),
		Indices:     indices.NewReader(log),
		IndicesPath: indicesPath(appCfg, alertCfg),
		Reports:     report.NewWriter(appCfg.DataDir, log),
	}

	out, err := pipeline.New(alertCfg, snap, opts, log).Run(cmd.Context())
	if err != nil {
		return err
	}

	printSummary(out)
	return nil
}
