// Package jobs holds the scheduled job implementations.
package jobs

import (
	"context"
	"fmt"

	"github.com/agrisense/agrisense/internal/pipeline"
	"github.com/agrisense/agrisense/pkg/logger"
)

// PipelineJob runs the full alert pipeline on a schedule, after the
// nightly provider data refresh.
type PipelineJob struct {
	pipeline *pipeline.Pipeline
	schedule string
	logger   *logger.Logger
}

// NewPipelineJob creates a pipeline job. schedule may be empty to use
// the default (05:30 UTC daily).
func NewPipelineJob(p *pipeline.Pipeline, schedule string, log *logger.Logger) *PipelineJob {
	if schedule == "" {
		schedule = "0 30 5 * * *"
	}
	return &PipelineJob{pipeline: p, schedule: schedule, logger: log}
}

// Name returns the job name.
func (j *PipelineJob) Name() string {
	return "alert_pipeline"
}

// Schedule returns the cron schedule.
func (j *PipelineJob) Schedule() string {
	return j.schedule
}

// Run executes one full pipeline pass.
func (j *PipelineJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled alert pipeline")

	out, err := j.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":     out.RunID,
		"gated_days": out.Result.Summary.GatedAlertDays,
		"events":     len(out.Result.Events),
	}).Info("Scheduled alert pipeline finished")
	return nil
}
