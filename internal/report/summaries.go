// Package report renders a pipeline run for humans and downstream
// tooling: per-stage JSON summaries mirroring the pipeline stages
// (fuse, QC, raw alerts, gated alerts, events) and a markdown report.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/internal/engine"
	"github.com/agrisense/agrisense/internal/timeseries"
	"github.com/agrisense/agrisense/pkg/logger"
)

// Writer renders run artifacts under a base directory.
type Writer struct {
	baseDir string
	logger  *logger.Logger
}

// NewWriter creates a writer rooted at baseDir.
func NewWriter(baseDir string, log *logger.Logger) *Writer {
	return &Writer{baseDir: baseDir, logger: log}
}

// StageSummary is the common envelope of each stage file.
type StageSummary struct {
	Stage      string      `json:"stage"`
	StrategyID string      `json:"strategy_id"`
	ConfigHash string      `json:"config_hash"`
	Detail     interface{} `json:"detail"`
}

type mergedDetail struct {
	Days         int     `json:"days"`
	WeatherDays  int     `json:"weather_days"`
	IndexDays    int     `json:"index_days"`
	Duplicates   int     `json:"duplicate_rows"`
	WeatherRate  float64 `json:"weather_coverage"`
	IndexRate    float64 `json:"index_coverage"`
	NDVIFillRate float64 `json:"ndvi_fill_coverage"`
	NDMIFillRate float64 `json:"ndmi_fill_coverage"`
}

type qcDetail struct {
	TotalDays  int            `json:"total_days"`
	OKDays     int            `json:"qc_ok_days"`
	PassRate   float64        `json:"qc_pass_rate"`
	SkipCounts map[string]int `json:"skip_counts"`
}

type alertDetail struct {
	AlertDays int            `json:"alert_days"`
	ByCat     map[string]int `json:"by_category"`
}

type eventsDetail struct {
	Events       int            `json:"events"`
	ByType       map[string]int `json:"by_type"`
	MergeGapDays int            `json:"merge_gap_days"`
}

// WriteStageSummaries writes the five per-stage JSON files for one
// run into <base>/<strategy_id>/summaries/.
func (w *Writer) WriteStageSummaries(cfg *alertconfig.Config, hash string, series *timeseries.Series, stats timeseries.FuseStats, result *engine.Result) error {
	dir := filepath.Join(w.baseDir, cfg.Meta.StrategyID, "summaries")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create summaries dir failed: %w", err)
	}

	s := result.Summary
	stages := []struct {
		file   string
		stage  string
		detail interface{}
	}{
		{"01_merged.json", "merged_daily", mergedDetail{
			Days:         stats.Days,
			WeatherDays:  stats.WeatherDays,
			IndexDays:    stats.IndexDays,
			Duplicates:   stats.DuplicateWeather + stats.DuplicateIndex,
			WeatherRate:  rate(stats.WeatherDays, stats.Days),
			IndexRate:    rate(stats.IndexDays, stats.Days),
			NDVIFillRate: series.FillCoverage(timeseries.FieldNDVI),
			NDMIFillRate: series.FillCoverage(timeseries.FieldNDMI),
		}},
		{"02_qc.json", "quality_control", qcDetail{
			TotalDays:  s.TotalDays,
			OKDays:     s.QCOKDays,
			PassRate:   rate(s.QCOKDays, s.TotalDays),
			SkipCounts: skipNames(s.SkipCounts),
		}},
		{"03_raw_alerts.json", "raw_alerts", alertDetail{
			AlertDays: s.RawAlertDays,
			ByCat:     catNames(s.RawCounts),
		}},
		{"04_gated_alerts.json", "gated_alerts", alertDetail{
			AlertDays: s.GatedAlertDays,
			ByCat:     catNames(s.GatedCounts),
		}},
		{"05_events.json", "events", eventsDetail{
			Events:       len(result.Events),
			ByType:       catNames(s.EventCounts),
			MergeGapDays: cfg.Merge.GapDays,
		}},
	}

	for _, st := range stages {
		payload := StageSummary{
			Stage:      st.stage,
			StrategyID: cfg.Meta.StrategyID,
			ConfigHash: hash,
			Detail:     st.detail,
		}
		if err := writeJSON(filepath.Join(dir, st.file), payload); err != nil {
			return err
		}
	}

	w.logger.WithField("dir", dir).Info("Wrote stage summaries")
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s failed: %w", filepath.Base(path), err)
	}
	return nil
}

func rate(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func skipNames(m map[engine.SkipReason]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func catNames(m map[engine.Category]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
