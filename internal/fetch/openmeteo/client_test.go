package openmeteo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agrisense/agrisense/pkg/config"
	"github.com/agrisense/agrisense/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
	"latitude": 36.55,
	"longitude": 128.72,
	"timezone": "UTC",
	"elevation": 92.0,
	"daily": {
		"time": ["2024-07-01", "2024-07-02", "2024-07-03"],
		"temperature_2m_max": [29.1, 30.4, null],
		"temperature_2m_min": [19.2, 20.1, 18.8],
		"precipitation_sum": [0.0, 4.2, 11.0],
		"relative_humidity_2m_mean": [61.0, 70.5, 82.0],
		"wind_speed_10m_max": [12.3, 9.8, 15.1]
	}
}`

func testClient(baseURL string) *Client {
	cfg := config.OpenMeteoConfig{
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
		RatePerSecond:  100,
		CacheTTL:       time.Hour,
	}
	return NewClient(cfg, nil, logger.NewNop())
}

func TestFetchDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "36.5500", r.URL.Query().Get("latitude"))
		assert.Equal(t, "2024-07-01", r.URL.Query().Get("start_date"))
		assert.Contains(t, r.URL.Query().Get("daily"), "relative_humidity_2m_mean")
		fmt.Fprint(w, sampleResponse)
	}))
	defer srv.Close()

	days, meta, err := testClient(srv.URL).FetchDaily(context.Background(),
		36.55, 128.72, date("2024-07-01"), date("2024-07-03"))
	require.NoError(t, err)
	require.Len(t, days, 3)

	require.NotNil(t, days[0].TempMax)
	assert.Equal(t, 29.1, *days[0].TempMax)
	assert.Nil(t, days[2].TempMax) // null passes through as missing
	require.NotNil(t, days[2].Precipitation)
	assert.Equal(t, 11.0, *days[2].Precipitation)

	assert.Equal(t, 36.55, meta.Latitude)
	assert.Equal(t, dailyVariables, meta.Variables)
	assert.False(t, meta.FromCache)
}

func TestFetchDailyMinimalFallback(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if strings.Contains(r.URL.Query().Get("daily"), "relative_humidity_2m_mean") {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error": true, "reason": "unknown variable"}`)
			return
		}
		fmt.Fprint(w, `{
			"latitude": 36.55, "longitude": 128.72, "timezone": "UTC", "elevation": 92.0,
			"daily": {
				"time": ["2024-07-01"],
				"temperature_2m_max": [29.1],
				"temperature_2m_min": [19.2],
				"precipitation_sum": [0.0]
			}
		}`)
	}))
	defer srv.Close()

	days, meta, err := testClient(srv.URL).FetchDaily(context.Background(),
		36.55, 128.72, date("2024-07-01"), date("2024-07-01"))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, days, 1)
	assert.Nil(t, days[0].RelHumidity)
	assert.Equal(t, minimalVariables, meta.Variables)
}

func TestFetchDailyBothAttemptsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, _, err := testClient(srv.URL).FetchDaily(context.Background(),
		36.55, 128.72, date("2024-07-01"), date("2024-07-01"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open-meteo fetch failed")
}

func TestFetchDailyEmptyDailyBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"latitude": 1, "longitude": 1, "daily": {"time": []}}`)
	}))
	defer srv.Close()

	_, _, err := testClient(srv.URL).FetchDaily(context.Background(),
		36.55, 128.72, date("2024-07-01"), date("2024-07-01"))
	require.Error(t, err)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
