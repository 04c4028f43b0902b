package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agrisense/agrisense/internal/fetch/indices"
	"github.com/agrisense/agrisense/internal/fetch/openmeteo"
	"github.com/agrisense/agrisense/internal/pipeline"
	"github.com/agrisense/agrisense/internal/report"
	"github.com/agrisense/agrisense/internal/store"
	"github.com/agrisense/agrisense/pkg/database"
	"github.com/agrisense/agrisense/pkg/redis"
)

// pipelineCmd runs the full pipeline: fetch, fuse, detect, persist,
// report.
var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the full alert pipeline",
	Long: `Runs one end-to-end alert pipeline pass:

1. Fetch daily weather from Open-Meteo (cached)
2. Load the satellite index CSV
3. Fuse both into a continuous daily series
4. Run QC, gating, rules and event merging
5. Persist the run to Postgres
6. Write the markdown report and stage summaries

Example:
  go run ./cmd/agrisense pipeline
  go run ./cmd/agrisense pipeline --no-db`,
	RunE: runPipeline,
}

var pipelineNoDB bool

func init() {
	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.Flags().BoolVar(&pipelineNoDB, "no-db", false, "skip Postgres persistence")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	appCfg, log, err := loadApp()
	if err != nil {
		return err
	}
	alertCfg, snap, err := loadAlerts(appCfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	opts := pipeline.Options{
		Indices:     indices.NewReader(log),
		IndicesPath: indicesPath(appCfg, alertCfg),
		Reports:     report.NewWriter(appCfg.DataDir, log),
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
	opts.Weather = openmeteo.NewClient(appCfg.OpenMeteo, cache, log)

	if !pipelineNoDB {
		db, err := database.New(appCfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		st := store.New(db, log)
		if err := st.EnsureSchema(ctx); err != nil {
			return err
		}
		opts.Store = st
	}

	out, err := pipeline.New(alertCfg, snap, opts, log).Run(ctx)
	if err != nil {
		return err
	}

	printSummary(out)
	return nil
}

func printSummary(out *pipeline.Output) {
	s := out.Result.Summary
	fmt.Println("=== AgriSense pipeline run ===")
	fmt.Printf("Days: %d total, %d QC ok, %d gating ok\n",
		s.TotalDays, s.QCOKDays, s.GatingOKDays)
	fmt.Printf("Alert days: %d raw, %d gated\n", s.RawAlertDays, s.GatedAlertDays)
	fmt.Printf("Events: %d\n", len(out.Result.Events))
	for _, ev := range out.Result.Events {
		fmt.Printf("  %-18s %s .. %s (%d days)\n", ev.Type,
			ev.Start.Format("2006-01-02"), ev.End.Format("2006-01-02"),
			ev.DurationDays)
	}
	if out.RunID != 0 {
		fmt.Printf("Run ID: %d\n", out.RunID)
	}
	if out.ReportPath != "" {
		fmt.Printf("Report: %s\n", out.ReportPath)
	}
}
