package openmeteo

import "time"

// dailyVariables is the full variable set requested from the archive
// API. minimalVariables is the reduced set retried when the full
// request is rejected (some archive datasets lack the humidity and
// wind aggregates).
var (
	dailyVariables = []string{
		"temperature_2m_max",
		"temperature_2m_min",
		"precipitation_sum",
		"relative_humidity_2m_mean",
		"wind_speed_10m_max",
	}
	minimalVariables = []string{
		"temperature_2m_max",
		"temperature_2m_min",
		"precipitation_sum",
	}
)

// response is the archive API daily response shape. Missing values
// arrive as JSON null.
type response struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Elevation float64 `json:"elevation"`
	Daily     daily   `json:"daily"`
}

type daily struct {
	Time          []string   `json:"time"`
	TempMax       []*float64 `json:"temperature_2m_max"`
	TempMin       []*float64 `json:"temperature_2m_min"`
	Precipitation []*float64 `json:"precipitation_sum"`
	RelHumidity   []*float64 `json:"relative_humidity_2m_mean"`
	WindMax       []*float64 `json:"wind_speed_10m_max"`
}

// Metadata describes the grid cell the provider actually served,
// which can differ slightly from the requested coordinates.
type Metadata struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timezone  string    `json:"timezone"`
	Elevation float64   `json:"elevation"`
	Variables []string  `json:"variables"`
	FetchedAt time.Time `json:"fetched_at"`
	FromCache bool      `json:"from_cache"`
}
