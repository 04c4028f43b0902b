package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agrisense/agrisense/internal/fetch/openmeteo"
	"github.com/agrisense/agrisense/internal/timeseries"
	"github.com/agrisense/agrisense/pkg/redis"
)

// fetchCmd fetches the weather series and writes it to CSV, for
// inspection or offline runs.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the daily weather series to CSV",
	Long: `Fetches the configured region's daily weather from Open-Meteo
over the data range and writes <data_dir>/<strategy_id>/weather.csv.

Example:
  go run ./cmd/agrisense fetch`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	appCfg, log, err := loadApp()
	if err != nil {
		return err
	}
	alertCfg, _, err := loadAlerts(appCfg)
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

	client := openmeteo.NewClient(appCfg.OpenMeteo, cache, log)
	start, end := alertCfg.Period.DataRange()
	days, meta, err := client.FetchDaily(cmd.Context(),
		alertCfg.Meta.Latitude, alertCfg.Meta.Longitude, start, end)
	if err != nil {
		return err
	}

	dir := filepath.Join(appCfg.DataDir, alertCfg.Meta.StrategyID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, "weather.csv")
	if err := writeWeatherCSV(path, days); err != nil {
		return err
	}

	fmt.Printf("Fetched %d days (grid %.4f, %.4f) -> %s\n",
		len(days), meta.Latitude, meta.Longitude, path)
	return nil
}

func writeWeatherCSV(path string, days []timeseries.WeatherDay) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"date", "temperature_2m_max", "temperature_2m_min",
		"precipitation_sum", "relative_humidity_2m_mean", "wind_speed_10m_max"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, d := range days {
		row := []string{
			d.Date.Format("2006-01-02"),
			num(d.TempMax), num(d.TempMin), num(d.Precipitation),
			num(d.RelHumidity), num(d.WindMax),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func num(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
