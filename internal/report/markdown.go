package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/internal/engine"
)

// WriteMarkdown renders the run report to
// <base>/<strategy_id>/alert_report.md and returns its path.
func (w *Writer) WriteMarkdown(cfg *alertconfig.Config, hash string, result *engine.Result) (string, error) {
	dir := filepath.Join(w.baseDir, cfg.Meta.StrategyID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir failed: %w", err)
	}
	path := filepath.Join(dir, "alert_report.md")
	if err := os.WriteFile(path, []byte(Render(cfg, hash, result)), 0o644); err != nil {
		return "", fmt.Errorf("write report failed: %w", err)
	}
	w.logger.WithField("path", path).Info("Wrote alert report")
	return path, nil
}

// Render builds the markdown report body.
func Render(cfg *alertconfig.Config, hash string, result *engine.Result) string {
	var b strings.Builder
	s := result.Summary

	fmt.Fprintf(&b, "# Alert Report — %s\n\n", cfg.Meta.RegionName)
	fmt.Fprintf(&b, "- Strategy: `%s` (config %s)\n", cfg.Meta.StrategyID, short(hash))
	fmt.Fprintf(&b, "- Region: %s (%.4f, %.4f)\n",
		cfg.Meta.RegionID, cfg.Meta.Latitude, cfg.Meta.Longitude)
	fmt.Fprintf(&b, "- Report window: %s .. %s\n",
		cfg.Period.ReportStart, cfg.Period.ReportEnd)
	fmt.Fprintf(&b, "- Generated: %s\n\n", time.Now().UTC().Format(time.RFC3339))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Stage | Days |\n|---|---|\n")
	fmt.Fprintf(&b, "| Report window | %d |\n", s.TotalDays)
	fmt.Fprintf(&b, "| QC ok | %d |\n", s.QCOKDays)
	fmt.Fprintf(&b, "| Gating ok | %d |\n", s.GatingOKDays)
	fmt.Fprintf(&b, "| Raw alert days | %d |\n", s.RawAlertDays)
	fmt.Fprintf(&b, "| Gated alert days | %d |\n\n", s.GatedAlertDays)

	if len(s.SkipCounts) > 0 {
		b.WriteString("## Data quality\n\n| Skip reason | Days |\n|---|---|\n")
		for _, r := range []engine.SkipReason{
			engine.SkipOK, engine.SkipNoRemoteSensing,
			engine.SkipStale, engine.SkipLowCanopy,
		} {
			if n := s.SkipCounts[r]; n > 0 {
				fmt.Fprintf(&b, "| %s | %d |\n", r, n)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("## Events\n\n")
	if len(result.Events) == 0 {
		b.WriteString("No events in the report window.\n")
	} else {
		b.WriteString("| Type | Span | Days | Peak | Evidence |\n|---|---|---|---|---|\n")
		for _, ev := range result.Events {
			peak := "—"
			if ev.Peak != nil {
				peak = fmt.Sprintf("%s %.3f on %s",
					ev.MetricName, *ev.Peak, ev.PeakDate.Format("2006-01-02"))
			}
			fmt.Fprintf(&b, "| %s | %s .. %s | %d | %s | %s |\n",
				ev.Type,
				ev.Start.Format("2006-01-02"), ev.End.Format("2006-01-02"),
				ev.DurationDays, peak,
				strings.Join(ev.ReasonUnion, "<br>"))
		}
	}
	b.WriteString("\n")

	if days := gatedDays(result); len(days) > 0 {
		b.WriteString("## Gated alert days\n\n| Date | Categories | Reasons |\n|---|---|---|\n")
		for _, day := range days {
			var reasons []string
			for _, c := range day.Gated {
				if out := day.Outcome(c); out != nil && out.Reason != "" {
					reasons = append(reasons, out.Reason)
				}
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n",
				day.Date.Format("2006-01-02"), day.Label,
				strings.Join(reasons, "<br>"))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Thresholds\n\n")
	r := cfg.Rules
	fmt.Fprintf(&b, "- drought: ndmi_dry %.3f, ndmi_strong %.3f, msi_dry %.3f, msi_strong %.3f, precip_low7 %.1fmm\n",
		r.Drought.NDMIDry, r.Drought.NDMIStrong, r.Drought.MSIDry,
		r.Drought.MSIStrong, r.Drought.PrecipLow7)
	fmt.Fprintf(&b, "- cold_stress: tmean7 %.1f°C, rh_min %.0f%%\n",
		r.ColdStress.Tmean7, r.ColdStress.RHMin)
	fmt.Fprintf(&b, "- heat_stress: tmean7 %.1f°C, rh_max %.0f%%, evi_stress %.3f\n",
		r.HeatStress.Tmean7, r.HeatStress.RHMax, r.HeatStress.EVIStress)
	fmt.Fprintf(&b, "- nutrient_or_pest: ndre_low %.3f, gndvi_low %.3f, evi_stress %.3f\n",
		r.Nutrient.NDRELow, r.Nutrient.GNDVILow, r.Nutrient.EVIStress)
	fmt.Fprintf(&b, "- waterlogging: ndmi_wet %.3f, precip_high7 %.1fmm\n",
		r.Waterlogging.NDMIWet, r.Waterlogging.PrecipHigh7)
	fmt.Fprintf(&b, "- merge gap: %d days\n", cfg.Merge.GapDays)

	return b.String()
}

func gatedDays(result *engine.Result) []engine.DayAlert {
	var out []engine.DayAlert
	for _, day := range result.Days {
		if len(day.Gated) > 0 {
			out = append(out, day)
		}
	}
	return out
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
