package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agrisense/agrisense/internal/fetch/indices"
	"github.com/agrisense/agrisense/internal/fetch/openmeteo"
	"github.com/agrisense/agrisense/internal/pipeline"
	"github.com/agrisense/agrisense/internal/report"
	"github.com/agrisense/agrisense/internal/scheduler"
	"github.com/agrisense/agrisense/internal/scheduler/jobs"
	"github.com/agrisense/agrisense/internal/store"
	"github.com/agrisense/agrisense/pkg/database"
	"github.com/agrisense/agrisense/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the pipeline on a cron schedule",
	Long: `Starts the scheduler daemon and runs the full alert pipeline on a
cron schedule (default 05:30 UTC daily, after new satellite composites
and the previous day's weather become available).

Example:
  go run ./cmd/agrisense scheduler
  go run ./cmd/agrisense scheduler --schedule "0 0 6 * * *"`,
	RunE: runScheduler,
}

var schedulerCron string

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().StringVar(&schedulerCron, "schedule", "", "cron expression with seconds (default daily 05:30 UTC)")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	appCfg, log, err := loadApp()
	if err != nil {
		return err
	}
	alertCfg, snap, err := loadAlerts(appCfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	redisClient, err := redis.New(appCfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, weather cache disabled")
	}
	var cache *redis.Cache
	if redisClient != nil {
		defer redisClient.Close()
		cache = redis.NewCache(redisClient, "agrisense")
	}

	db, err := database.New(appCfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	st := store.New(db, log)
	if err := st.EnsureSchema(ctx); err != nil {
		return err
	}

	opts := pipeline.Options{
		Weather:     openmeteo.NewClient(appCfg.OpenMeteo, cache, log),
		Indices:     indices.NewReader(log),
		IndicesPath: indicesPath(appCfg, alertCfg),
		Store:       st,
		Reports:     report.NewWriter(appCfg.DataDir, log),
	}
	p := pipeline.New(alertCfg, snap, opts, log)

	sched := scheduler.New(log)
	job := jobs.NewPipelineJob(p, schedulerCron, log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("register job: %w", err)
	}
	sched.Start()

	fmt.Println("Scheduler started")
	fmt.Printf("  - %s (%s)\n", job.Name(), job.Schedule())
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Stopping scheduler...")
	sched.Stop()

	return nil
}
