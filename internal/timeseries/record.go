package timeseries

import "time"

// DailyRecord is one fused row of the regional series: weather
// aggregates plus remote-sensing index observations for a calendar
// date. Index fields are nil on dates without a usable satellite
// observation; weather fields are nil when the provider had a gap.
// Records are immutable once the series is fused.
type DailyRecord struct {
	Date time.Time `json:"date"`

	// Weather (daily)
	TempMax       *float64 `json:"temperature_2m_max,omitempty"`
	TempMin       *float64 `json:"temperature_2m_min,omitempty"`
	Precipitation *float64 `json:"precipitation_sum,omitempty"`
	RelHumidity   *float64 `json:"relative_humidity_2m_mean,omitempty"`
	WindMax       *float64 `json:"wind_speed_10m_max,omitempty"`

	// Weather (derived trailing aggregates)
	Tmean   *float64 `json:"tmean,omitempty"`
	Tmean7  *float64 `json:"tmean_7d,omitempty"`
	Precip7 *float64 `json:"precip_7d,omitempty"`

	// Remote-sensing index observations
	NDVI  *float64 `json:"ndvi_mean,omitempty"`
	NDMI  *float64 `json:"ndmi_mean,omitempty"`
	NDRE  *float64 `json:"ndre_mean,omitempty"`
	EVI   *float64 `json:"evi_mean,omitempty"`
	GNDVI *float64 `json:"gndvi_mean,omitempty"`
	MSI   *float64 `json:"msi_mean,omitempty"`
}

// HasIndexObservation reports whether any index was observed this day.
func (r *DailyRecord) HasIndexObservation() bool {
	return r.NDVI != nil || r.NDMI != nil || r.NDRE != nil ||
		r.EVI != nil || r.GNDVI != nil || r.MSI != nil
}

// IndexField identifies one remote-sensing index series.
type IndexField int

const (
	FieldNDVI IndexField = iota
	FieldNDMI
	FieldNDRE
	FieldEVI
	FieldGNDVI
	FieldMSI
)

// String returns the column-style name of the index.
func (f IndexField) String() string {
	switch f {
	case FieldNDVI:
		return "ndvi"
	case FieldNDMI:
		return "ndmi"
	case FieldNDRE:
		return "ndre"
	case FieldEVI:
		return "evi"
	case FieldGNDVI:
		return "gndvi"
	case FieldMSI:
		return "msi"
	default:
		return "unknown"
	}
}

// Index returns the observation for the given field, or nil.
func (r *DailyRecord) Index(f IndexField) *float64 {
	switch f {
	case FieldNDVI:
		return r.NDVI
	case FieldNDMI:
		return r.NDMI
	case FieldNDRE:
		return r.NDRE
	case FieldEVI:
		return r.EVI
	case FieldGNDVI:
		return r.GNDVI
	case FieldMSI:
		return r.MSI
	default:
		return nil
	}
}

// AllIndexFields lists every index series in a fixed order.
var AllIndexFields = []IndexField{
	FieldNDVI, FieldNDMI, FieldNDRE, FieldEVI, FieldGNDVI, FieldMSI,
}

// Float returns a pointer to v. Convenience for building records.
func Float(v float64) *float64 {
	return &v
}

// Day truncates t to UTC midnight. All series dates are normalized
// through this before comparison.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
