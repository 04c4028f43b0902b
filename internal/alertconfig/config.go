package alertconfig

import "time"

// Config is the full alert strategy configuration: observation period,
// remote-sensing support policy, season gating, per-category rule
// thresholds and event merging.
type Config struct {
	Meta          Meta          `yaml:"meta" json:"meta"`
	Period        Period        `yaml:"period" json:"period"`
	RemoteSensing RemoteSensing `yaml:"remote_sensing" json:"remote_sensing"`
	Gating        Gating        `yaml:"gating" json:"gating"`
	Rules         Rules         `yaml:"rules" json:"rules"`
	Merge         Merge         `yaml:"merge" json:"merge"`
}

// Meta identifies the monitored region and strategy revision.
type Meta struct {
	StrategyID string  `yaml:"strategy_id" json:"strategy_id"`
	RegionID   string  `yaml:"region_id" json:"region_id"`
	RegionName string  `yaml:"region_name" json:"region_name"`
	Latitude   float64 `yaml:"latitude" json:"latitude"`
	Longitude  float64 `yaml:"longitude" json:"longitude"`
	Timezone   string  `yaml:"timezone" json:"timezone"`
}

// Period defines the inclusive data and report windows (YYYY-MM-DD).
// report_start/report_end default to the data bounds and must lie
// within them.
type Period struct {
	DataStart   string `yaml:"data_start" json:"data_start"`
	DataEnd     string `yaml:"data_end" json:"data_end"`
	ReportStart string `yaml:"report_start" json:"report_start"`
	ReportEnd   string `yaml:"report_end" json:"report_end"`
}

// Window mode values for RemoteSensing.WindowMode.
const (
	WindowSymmetric = "symmetric"
	WindowPastOnly  = "past_only"
)

// RemoteSensing controls per-day observation support and canopy
// confidence. A day is supported when a non-missing index observation
// exists within window_half_days of it (future-dated observations are
// allowed only in symmetric mode), and the observation is no older
// than max_age_days. Canopy is considered reliable when NDVI or EVI
// clears its minimum.
type RemoteSensing struct {
	WindowHalfDays int     `yaml:"window_half_days" json:"window_half_days"`
	WindowMode     string  `yaml:"window_mode" json:"window_mode"`
	MaxAgeDays     int     `yaml:"max_age_days" json:"max_age_days"`
	CanopyNDVIMin  float64 `yaml:"canopy_ndvi_min" json:"canopy_ndvi_min"`
	CanopyEVIMin   float64 `yaml:"canopy_evi_min" json:"canopy_evi_min"`
}

// Gating mode values.
const (
	GatingOff         = "off"
	GatingMonthWindow = "month_window"
	GatingCanopyObs   = "canopy_obs"
	GatingBoth        = "both"
)

// Gating controls per-day alert eligibility, independent of rule
// outcomes. months is the growing-season month set (1-12);
// canopy_obs_min is the cumulative count of canopy-ready days required
// before alerts are eligible. reset_on_season_start restarts that
// counter on the first season month of each year.
type Gating struct {
	Mode               string `yaml:"mode" json:"mode"`
	Months             []int  `yaml:"months" json:"months"`
	CanopyObsMin       int    `yaml:"canopy_obs_min" json:"canopy_obs_min"`
	ResetOnSeasonStart bool   `yaml:"reset_on_season_start" json:"reset_on_season_start"`
}

// Rules holds per-category thresholds. Categories lists the category
// names in declaration order; that order drives the day-level composite
// label and the deterministic iteration order of the engine.
type Rules struct {
	Categories   []string     `yaml:"categories" json:"categories"`
	Drought      Drought      `yaml:"drought" json:"drought"`
	ColdStress   ColdStress   `yaml:"cold_stress" json:"cold_stress"`
	HeatStress   HeatStress   `yaml:"heat_stress" json:"heat_stress"`
	Nutrient     Nutrient     `yaml:"nutrient_or_pest" json:"nutrient_or_pest"`
	Waterlogging Waterlogging `yaml:"waterlogging" json:"waterlogging"`
}

// Drought thresholds. The strong tier (NDMI below ndmi_strong, or MSI
// above msi_strong) triggers alone; the soft tier (NDMI below ndmi_dry
// or MSI above msi_dry) additionally requires 7-day precipitation below
// precip_low7. Canopy cover (EVI at or above evi_cover, or NDVI at or
// above ndvi_crop) is a precondition unless index_independent is set,
// in which case the soft precipitation clause alone may trigger.
type Drought struct {
	NDMIDry          float64 `yaml:"ndmi_dry" json:"ndmi_dry"`
	NDMIStrong       float64 `yaml:"ndmi_strong" json:"ndmi_strong"`
	MSIDry           float64 `yaml:"msi_dry" json:"msi_dry"`
	MSIStrong        float64 `yaml:"msi_strong" json:"msi_strong"`
	PrecipLow7       float64 `yaml:"precip_low7" json:"precip_low7"`
	EVICover         float64 `yaml:"evi_cover" json:"evi_cover"`
	NDVICrop         float64 `yaml:"ndvi_crop" json:"ndvi_crop"`
	IndexIndependent bool    `yaml:"index_independent" json:"index_independent"`
}

// ColdStress thresholds: trailing 7-day mean temperature below tmean7
// combined with relative humidity above rh_min (frost/mold correlate).
type ColdStress struct {
	Tmean7 float64 `yaml:"tmean7" json:"tmean7"`
	RHMin  float64 `yaml:"rh_min" json:"rh_min"`
}

// HeatStress thresholds: trailing 7-day mean temperature above tmean7,
// dry air (RH below rh_max) and EVI below evi_stress as index
// confirmation.
type HeatStress struct {
	Tmean7    float64 `yaml:"tmean7" json:"tmean7"`
	RHMax     float64 `yaml:"rh_max" json:"rh_max"`
	EVIStress float64 `yaml:"evi_stress" json:"evi_stress"`
}

// Nutrient thresholds: any of the index deficits (NDRE below ndre_low,
// GNDVI below gndvi_low, EVI below evi_stress) is sufficient; humidity
// above rh_high adds a corroborating clause. Moisture indices at
// drought levels veto the category to avoid misclassification.
type Nutrient struct {
	NDRELow   float64 `yaml:"ndre_low" json:"ndre_low"`
	GNDVILow  float64 `yaml:"gndvi_low" json:"gndvi_low"`
	EVIStress float64 `yaml:"evi_stress" json:"evi_stress"`
	RHHigh    float64 `yaml:"rh_high" json:"rh_high"`
}

// Waterlogging thresholds: wet canopy (NDMI above ndmi_wet) with 7-day
// precipitation above precip_high7.
type Waterlogging struct {
	NDMIWet     float64 `yaml:"ndmi_wet" json:"ndmi_wet"`
	PrecipHigh7 float64 `yaml:"precip_high7" json:"precip_high7"`
}

// Merge controls event merging. Daily triggers of the same category
// separated by at most gap_days are fused into one event; gap_days 0
// merges only strictly consecutive dates.
type Merge struct {
	GapDays int `yaml:"gap_days" json:"gap_days"`
}

const dateLayout = "2006-01-02"

// DataRange returns the parsed inclusive data window. Valid only after
// Validate has succeeded.
func (p Period) DataRange() (time.Time, time.Time) {
	start, _ := time.Parse(dateLayout, p.DataStart)
	end, _ := time.Parse(dateLayout, p.DataEnd)
	return start, end
}

// ReportRange returns the parsed inclusive report window. Valid only
// after Validate has succeeded (which also applies data-range defaults).
func (p Period) ReportRange() (time.Time, time.Time) {
	start, _ := time.Parse(dateLayout, p.ReportStart)
	end, _ := time.Parse(dateLayout, p.ReportEnd)
	return start, end
}

// MonthSet returns the season months as a lookup set.
func (g Gating) MonthSet() map[time.Month]bool {
	set := make(map[time.Month]bool, len(g.Months))
	for _, m := range g.Months {
		set[time.Month(m)] = true
	}
	return set
}

// RunSnapshot captures the exact configuration a pipeline run used,
// for reproducibility.
type RunSnapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	StrategyID string    `json:"strategy_id"`
	CreatedAt  time.Time `json:"created_at"`
}
