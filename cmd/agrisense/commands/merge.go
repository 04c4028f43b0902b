package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agrisense/agrisense/internal/fetch/indices"
	"github.com/agrisense/agrisense/internal/fetch/openmeteo"
	"github.com/agrisense/agrisense/internal/pipeline"
	"github.com/agrisense/agrisense/internal/timeseries"
	"github.com/agrisense/agrisense/pkg/redis"
)

// mergeCmd builds the fused series and prints coverage, without
// running detection. Useful to sanity-check inputs before a run.
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Fuse weather and indices, print coverage",
	Long: `Fetches weather, loads the index CSV and fuses both onto the daily
grid, then prints coverage statistics. No detection, persistence or
reports.

Example:
  go run ./cmd/agrisense merge --indices data/field/indices.csv`,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
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
	}

	series, stats, err := pipeline.New(alertCfg, snap, opts, log).BuildSeries(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Fused %d days (%s .. %s)\n", stats.Days,
		series.Start.Format("2006-01-02"), series.End.Format("2006-01-02"))
	fmt.Printf("  weather: %d days (%.0f%%)\n", stats.WeatherDays,
		pct(stats.WeatherDays, stats.Days))
	fmt.Printf("  indices: %d days (%.0f%%), ndvi fill %.0f%%\n", stats.IndexDays,
		pct(stats.IndexDays, stats.Days),
		100*series.FillCoverage(timeseries.FieldNDVI))
	if n := stats.DuplicateWeather + stats.DuplicateIndex; n > 0 {
		fmt.Printf("  duplicates resolved by last write: %d\n", n)
	}
	if n := stats.OutOfRangeWeather + stats.OutOfRangeIndex; n > 0 {
		fmt.Printf("  rows outside the data range dropped: %d\n", n)
	}
	return nil
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
