package engine

import (
	"fmt"
	"time"

	"github.com/agrisense/agrisense/internal/timeseries"
)

// Category is one stress category the rule evaluator knows about.
type Category string

const (
	CategoryDrought      Category = "drought"
	CategoryColdStress   Category = "cold_stress"
	CategoryHeatStress   Category = "heat_stress"
	CategoryNutrient     Category = "nutrient_or_pest"
	CategoryWaterlogging Category = "waterlogging"

	// EventComposite is the type of a cross-category merged event.
	// It is never a rule category.
	EventComposite Category = "composite"
)

// SkipReason classifies a day's remote-sensing support quality.
type SkipReason string

const (
	SkipOK              SkipReason = "ok"
	SkipNoRemoteSensing SkipReason = "no_remote_sensing"
	SkipStale           SkipReason = "stale"
	SkipLowCanopy       SkipReason = "low_canopy_confidence"
)

// SupportStatus is the resolver output for one date: whether a usable
// index observation exists within the window and how old it is.
type SupportStatus struct {
	Supported bool      `json:"rs_support"`
	Age       int       `json:"rs_age"`
	ObsDate   time.Time `json:"obs_date,omitzero"`
}

// ResolvedIndices carries, per index, the nearest in-window
// observation for a date. Fields are nil when no observation of that
// index falls inside the window.
type ResolvedIndices struct {
	NDVI  *float64
	NDMI  *float64
	NDRE  *float64
	EVI   *float64
	GNDVI *float64
	MSI   *float64
}

// Index returns the resolved value for the given field, or nil.
func (r ResolvedIndices) Index(f timeseries.IndexField) *float64 {
	switch f {
	case timeseries.FieldNDVI:
		return r.NDVI
	case timeseries.FieldNDMI:
		return r.NDMI
	case timeseries.FieldNDRE:
		return r.NDRE
	case timeseries.FieldEVI:
		return r.EVI
	case timeseries.FieldGNDVI:
		return r.GNDVI
	case timeseries.FieldMSI:
		return r.MSI
	default:
		return nil
	}
}

// QCResult is the per-day quality verdict. Never mutated after
// classification.
type QCResult struct {
	Reason      SkipReason    `json:"skip_reason"`
	CanopyReady bool          `json:"canopy_ready"`
	Support     SupportStatus `json:"support"`
}

// GatingDecision is the per-day eligibility verdict. ObsCount is the
// cumulative canopy-ready day count at this date, for diagnostics.
type GatingDecision struct {
	OK       bool `json:"gating_ok"`
	InSeason bool `json:"in_season"`
	ObsCount int  `json:"canopy_obs_count"`
}

// RuleOutcome is one category's verdict for one date, independent of
// QC and gating. Reason cites only the clauses that contributed.
// Metric is the category's qualifying value for peak tracking, nil
// when the underlying series value is missing.
type RuleOutcome struct {
	Category   Category `json:"category"`
	Triggered  bool     `json:"triggered"`
	Reason     string   `json:"reason,omitempty"`
	MetricName string   `json:"metric_name,omitempty"`
	Metric     *float64 `json:"metric,omitempty"`
}

// DayAlert is the assembled per-day record: QC, gating, all rule
// outcomes, and the raw and gated category sets in configuration
// order.
type DayAlert struct {
	Date     time.Time      `json:"date"`
	QC       QCResult       `json:"qc"`
	Gating   GatingDecision `json:"gating"`
	Outcomes []RuleOutcome  `json:"outcomes"`

	Raw   []Category `json:"raw_categories"`
	Gated []Category `json:"gated_categories"`

	// Label joins the gated categories for display, e.g.
	// "drought+cold_stress". Empty when nothing passed gating.
	Label string `json:"label,omitempty"`
}

// Outcome returns the rule outcome for category c, or nil.
func (d *DayAlert) Outcome(c Category) *RuleOutcome {
	for i := range d.Outcomes {
		if d.Outcomes[i].Category == c {
			return &d.Outcomes[i]
		}
	}
	return nil
}

// Event is a merged span of daily triggers. For single-category
// events Categories holds exactly that category; composite events
// list every contributing category in configuration order.
type Event struct {
	Type         Category    `json:"event_type"`
	Categories   []Category  `json:"categories"`
	Start        time.Time   `json:"start_date"`
	End          time.Time   `json:"end_date"`
	DurationDays int         `json:"duration_days"`
	MetricName   string      `json:"peak_metric_name,omitempty"`
	Peak         *float64    `json:"peak_metric,omitempty"`
	PeakDate     time.Time   `json:"peak_date,omitzero"`
	ReasonUnion  []string    `json:"reason_union"`
	MemberDates  []time.Time `json:"member_dates"`
}

// Summary holds the run counters the engine exposes downstream. The
// stage counts are internally consistent: GatedAlertDays <= QCOKDays
// <= TotalDays.
type Summary struct {
	TotalDays      int `json:"total_days"`
	QCOKDays       int `json:"qc_ok_days"`
	GatingOKDays   int `json:"gating_ok_days"`
	RawAlertDays   int `json:"raw_alert_days"`
	GatedAlertDays int `json:"gated_alert_days"`

	SkipCounts  map[SkipReason]int `json:"skip_counts"`
	RawCounts   map[Category]int   `json:"raw_counts"`
	GatedCounts map[Category]int   `json:"gated_counts"`
	EventCounts map[Category]int   `json:"event_counts"`
}

// Result is one full engine pass over the report window.
type Result struct {
	Days    []DayAlert `json:"days"`
	Events  []Event    `json:"events"`
	Summary Summary    `json:"summary"`
}

// OrderingError reports a non-monotonic or duplicate date reaching the
// event merger. It is a fatal precondition violation.
type OrderingError struct {
	Date time.Time
	Prev time.Time
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("event merger: date %s out of order (previous %s)",
		e.Date.Format("2006-01-02"), e.Prev.Format("2006-01-02"))
}
