package alertconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
meta:
  strategy_id: test_field
  region_id: r1
  region_name: Test Field
  latitude: 37.45
  longitude: 126.70
  timezone: UTC
period:
  data_start: "2024-04-01"
  data_end: "2024-10-31"
remote_sensing:
  window_half_days: 3
  window_mode: symmetric
  max_age_days: 5
  canopy_ndvi_min: 0.35
  canopy_evi_min: 0.20
gating:
  mode: both
  months: [4, 5, 6, 7, 8, 9, 10]
  canopy_obs_min: 3
  reset_on_season_start: true
rules:
  categories: [drought, cold_stress, heat_stress, nutrient_or_pest, waterlogging]
  drought:
    ndmi_dry: 0.25
    ndmi_strong: 0.15
    msi_dry: 0.8
    msi_strong: 1.2
    precip_low7: 20.0
    evi_cover: 0.20
    ndvi_crop: 0.35
  cold_stress:
    tmean7: 5.0
    rh_min: 75
  heat_stress:
    tmean7: 30.0
    rh_max: 30
    evi_stress: 0.2
  nutrient_or_pest:
    ndre_low: 0.28
    gndvi_low: 0.50
    evi_stress: 0.2
    rh_high: 85
  waterlogging:
    ndmi_wet: 0.60
    precip_high7: 40.0
merge:
  gap_days: 1
`

func TestParseValid(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "test_field", cfg.Meta.StrategyID)
	assert.Equal(t, 3, cfg.RemoteSensing.WindowHalfDays)
	assert.Equal(t, 0.25, cfg.Rules.Drought.NDMIDry)
	assert.Equal(t, 1, cfg.Merge.GapDays)
}

func TestParseRejectsUnknownField(t *testing.T) {
	doc := validYAML + "\nbogus_section:\n  x: 1\n"
	_, err := Parse([]byte(doc))
	assert.Error(t, err)
}

func TestReportRangeDefaultsToDataRange(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "2024-04-01", cfg.Period.ReportStart)
	assert.Equal(t, "2024-10-31", cfg.Period.ReportEnd)

	reportStart, reportEnd := cfg.Period.ReportRange()
	dataStart, dataEnd := cfg.Period.DataRange()
	assert.Equal(t, dataStart, reportStart)
	assert.Equal(t, dataEnd, reportEnd)
}

func TestValidateFailures(t *testing.T) {
	mutate := func(fn func(*Config)) *Config {
		cfg, err := Parse([]byte(validYAML))
		require.NoError(t, err)
		fn(cfg)
		return cfg
	}

	tests := []struct {
		name  string
		cfg   *Config
		field string
	}{
		{
			name:  "missing strategy id",
			cfg:   mutate(func(c *Config) { c.Meta.StrategyID = "" }),
			field: "meta.strategy_id",
		},
		{
			name:  "latitude out of range",
			cfg:   mutate(func(c *Config) { c.Meta.Latitude = 93 }),
			field: "meta.latitude",
		},
		{
			name:  "inverted data range",
			cfg:   mutate(func(c *Config) { c.Period.DataStart = "2024-11-01" }),
			field: "period",
		},
		{
			name: "report outside data range",
			cfg: mutate(func(c *Config) {
				c.Period.ReportEnd = "2024-12-01"
			}),
			field: "period",
		},
		{
			name:  "bad window mode",
			cfg:   mutate(func(c *Config) { c.RemoteSensing.WindowMode = "centered" }),
			field: "remote_sensing.window_mode",
		},
		{
			name:  "zero max age",
			cfg:   mutate(func(c *Config) { c.RemoteSensing.MaxAgeDays = 0 }),
			field: "remote_sensing.max_age_days",
		},
		{
			name:  "unknown gating mode",
			cfg:   mutate(func(c *Config) { c.Gating.Mode = "seasonal" }),
			field: "gating.mode",
		},
		{
			name:  "month out of range",
			cfg:   mutate(func(c *Config) { c.Gating.Months = []int{4, 13} }),
			field: "gating.months[1]",
		},
		{
			name:  "duplicate month",
			cfg:   mutate(func(c *Config) { c.Gating.Months = []int{4, 4} }),
			field: "gating.months[1]",
		},
		{
			name: "months required for month_window",
			cfg: mutate(func(c *Config) {
				c.Gating.Months = nil
				c.Gating.ResetOnSeasonStart = false
			}),
			field: "gating.months",
		},
		{
			name:  "unknown category",
			cfg:   mutate(func(c *Config) { c.Rules.Categories = []string{"drought", "locusts"} }),
			field: "rules.categories[1]",
		},
		{
			name:  "duplicate category",
			cfg:   mutate(func(c *Config) { c.Rules.Categories = []string{"drought", "drought"} }),
			field: "rules.categories[1]",
		},
		{
			name:  "ndmi tiers inverted",
			cfg:   mutate(func(c *Config) { c.Rules.Drought.NDMIStrong = 0.3 }),
			field: "rules.drought",
		},
		{
			name:  "cold above heat",
			cfg:   mutate(func(c *Config) { c.Rules.ColdStress.Tmean7 = 31 }),
			field: "rules",
		},
		{
			name:  "humidity over 100",
			cfg:   mutate(func(c *Config) { c.Rules.Nutrient.RHHigh = 130 }),
			field: "rules.nutrient_or_pest.rh_high",
		},
		{
			name:  "waterlogging below drought precip",
			cfg:   mutate(func(c *Config) { c.Rules.Waterlogging.PrecipHigh7 = 10 }),
			field: "rules.waterlogging.precip_high7",
		},
		{
			name:  "negative gap",
			cfg:   mutate(func(c *Config) { c.Merge.GapDays = -1 }),
			field: "merge.gap_days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			require.Error(t, err)

			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestHashDeterministic(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	h1, err := Hash(cfg)
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	h2, err := Hash(cfg)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestHashChangesWithThreshold(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	h1, err := Hash(cfg)
	require.NoError(t, err)

	cfg.Rules.Drought.NDMIDry = 0.30
	h2, err := Hash(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestNewRunSnapshot(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	snap, err := NewRunSnapshot(cfg, []byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "test_field", snap.StrategyID)
	assert.Len(t, snap.ConfigHash, 64)
	assert.Equal(t, validYAML, snap.ConfigYAML)
	assert.False(t, snap.CreatedAt.IsZero())
}
