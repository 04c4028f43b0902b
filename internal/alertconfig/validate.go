package alertconfig

import (
	"fmt"
	"time"
)

// ValidationError names the offending field; any instance aborts the
// run before the first row is processed.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// KnownCategories is the fixed category set in canonical order.
var KnownCategories = []string{
	"drought",
	"cold_stress",
	"heat_stress",
	"nutrient_or_pest",
	"waterlogging",
}

// Validate checks all configuration constraints. It also applies the
// report-range defaults (report window falls back to the data window).
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}
	if cfg.Meta.Latitude < -90 || cfg.Meta.Latitude > 90 {
		return ValidationError{"meta.latitude", "must be in [-90, 90]"}
	}
	if cfg.Meta.Longitude < -180 || cfg.Meta.Longitude > 180 {
		return ValidationError{"meta.longitude", "must be in [-180, 180]"}
	}

	// === Period ===
	if cfg.Period.DataStart == "" || cfg.Period.DataEnd == "" {
		return ValidationError{"period", "data_start and data_end are required"}
	}
	dataStart, err := parseDate(cfg.Period.DataStart)
	if err != nil {
		return ValidationError{"period.data_start", err.Error()}
	}
	dataEnd, err := parseDate(cfg.Period.DataEnd)
	if err != nil {
		return ValidationError{"period.data_end", err.Error()}
	}
	if dataStart.After(dataEnd) {
		return ValidationError{"period", "data_start must be <= data_end"}
	}

	if cfg.Period.ReportStart == "" {
		cfg.Period.ReportStart = cfg.Period.DataStart
	}
	if cfg.Period.ReportEnd == "" {
		cfg.Period.ReportEnd = cfg.Period.DataEnd
	}
	reportStart, err := parseDate(cfg.Period.ReportStart)
	if err != nil {
		return ValidationError{"period.report_start", err.Error()}
	}
	reportEnd, err := parseDate(cfg.Period.ReportEnd)
	if err != nil {
		return ValidationError{"period.report_end", err.Error()}
	}
	if reportStart.After(reportEnd) {
		return ValidationError{"period", "report_start must be <= report_end"}
	}
	if reportStart.Before(dataStart) || reportEnd.After(dataEnd) {
		return ValidationError{"period", "report range must lie within the data range"}
	}

	// === RemoteSensing ===
	if cfg.RemoteSensing.WindowHalfDays <= 0 {
		return ValidationError{"remote_sensing.window_half_days", "must be > 0"}
	}
	switch cfg.RemoteSensing.WindowMode {
	case WindowSymmetric, WindowPastOnly:
	default:
		return ValidationError{"remote_sensing.window_mode", "must be symmetric or past_only"}
	}
	if cfg.RemoteSensing.MaxAgeDays <= 0 {
		return ValidationError{"remote_sensing.max_age_days", "must be > 0"}
	}

	// === Gating ===
	switch cfg.Gating.Mode {
	case GatingOff, GatingMonthWindow, GatingCanopyObs, GatingBoth:
	default:
		return ValidationError{"gating.mode", fmt.Sprintf("unknown mode %q", cfg.Gating.Mode)}
	}
	needsMonths := cfg.Gating.Mode == GatingMonthWindow || cfg.Gating.Mode == GatingBoth
	if needsMonths && len(cfg.Gating.Months) == 0 {
		return ValidationError{"gating.months", "required for month_window and both modes"}
	}
	seen := make(map[int]bool)
	for i, m := range cfg.Gating.Months {
		if m < 1 || m > 12 {
			return ValidationError{
				Field:   fmt.Sprintf("gating.months[%d]", i),
				Message: fmt.Sprintf("must be in 1..12, got %d", m),
			}
		}
		if seen[m] {
			return ValidationError{
				Field:   fmt.Sprintf("gating.months[%d]", i),
				Message: fmt.Sprintf("duplicate month %d", m),
			}
		}
		seen[m] = true
	}
	needsObs := cfg.Gating.Mode == GatingCanopyObs || cfg.Gating.Mode == GatingBoth
	if needsObs && cfg.Gating.CanopyObsMin <= 0 {
		return ValidationError{"gating.canopy_obs_min", "must be > 0 for canopy_obs and both modes"}
	}
	if cfg.Gating.ResetOnSeasonStart && len(cfg.Gating.Months) == 0 {
		return ValidationError{"gating.reset_on_season_start", "requires gating.months"}
	}

	// === Rules ===
	if len(cfg.Rules.Categories) == 0 {
		return ValidationError{"rules.categories", "required"}
	}
	known := make(map[string]bool, len(KnownCategories))
	for _, c := range KnownCategories {
		known[c] = true
	}
	seenCat := make(map[string]bool)
	for i, c := range cfg.Rules.Categories {
		if !known[c] {
			return ValidationError{
				Field:   fmt.Sprintf("rules.categories[%d]", i),
				Message: fmt.Sprintf("unknown category %q", c),
			}
		}
		if seenCat[c] {
			return ValidationError{
				Field:   fmt.Sprintf("rules.categories[%d]", i),
				Message: fmt.Sprintf("duplicate category %q", c),
			}
		}
		seenCat[c] = true
	}

	d := cfg.Rules.Drought
	if d.NDMIStrong >= d.NDMIDry {
		return ValidationError{"rules.drought", "ndmi_strong must be < ndmi_dry"}
	}
	if d.MSIStrong <= d.MSIDry {
		return ValidationError{"rules.drought", "msi_strong must be > msi_dry"}
	}
	if d.PrecipLow7 < 0 {
		return ValidationError{"rules.drought.precip_low7", "must be >= 0"}
	}

	if cfg.Rules.ColdStress.Tmean7 >= cfg.Rules.HeatStress.Tmean7 {
		return ValidationError{"rules", "cold_stress.tmean7 must be < heat_stress.tmean7"}
	}
	if err := validatePct(cfg.Rules.ColdStress.RHMin, "rules.cold_stress.rh_min"); err != nil {
		return err
	}
	if err := validatePct(cfg.Rules.HeatStress.RHMax, "rules.heat_stress.rh_max"); err != nil {
		return err
	}
	if err := validatePct(cfg.Rules.Nutrient.RHHigh, "rules.nutrient_or_pest.rh_high"); err != nil {
		return err
	}

	w := cfg.Rules.Waterlogging
	if w.PrecipHigh7 <= cfg.Rules.Drought.PrecipLow7 {
		return ValidationError{"rules.waterlogging.precip_high7", "must be > drought.precip_low7"}
	}

	// === Merge ===
	if cfg.Merge.GapDays < 0 {
		return ValidationError{"merge.gap_days", "must be >= 0"}
	}

	return nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be YYYY-MM-DD: %v", err)
	}
	return t, nil
}

// validatePct checks a relative-humidity percentage (0-100).
func validatePct(v float64, field string) error {
	if v < 0 || v > 100 {
		return ValidationError{field, "must be in [0, 100]"}
	}
	return nil
}
