package engine

import (
	"context"
	"testing"

	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/internal/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *alertconfig.Config {
	rs := testRemoteSensing()
	rs.MaxAgeDays = 2
	return &alertconfig.Config{
		Meta: alertconfig.Meta{StrategyID: "test-region-v1"},
		Period: alertconfig.Period{
			DataStart:   "2024-07-01",
			DataEnd:     "2024-07-31",
			ReportStart: "2024-07-01",
			ReportEnd:   "2024-07-31",
		},
		RemoteSensing: rs,
		Gating: alertconfig.Gating{
			Mode:   alertconfig.GatingMonthWindow,
			Months: []int{6, 7, 8},
		},
		Rules: testRules(),
		Merge: alertconfig.Merge{GapDays: 1},
	}
}

// julySeries builds a month of dry weather with a three-day moisture
// dip (days 10..12), satellite coverage ending on the 20th, and a
// cold wet spell (days 25..31) that falls entirely outside coverage.
func julySeries(t *testing.T) *timeseries.Series {
	t.Helper()

	var weather []timeseries.WeatherDay
	for i := 1; i <= 31; i++ {
		d := date("2024-07-01").AddDate(0, 0, i-1)
		w := timeseries.WeatherDay{
			Date:          d,
			TempMax:       fp(24),
			TempMin:       fp(14),
			Precipitation: fp(0),
			RelHumidity:   fp(60),
		}
		if i >= 25 {
			w.TempMax = fp(6)
			w.TempMin = fp(0)
			w.RelHumidity = fp(88)
		}
		weather = append(weather, w)
	}

	var samples []timeseries.IndexSample
	for i := 1; i <= 20; i++ {
		d := date("2024-07-01").AddDate(0, 0, i-1)
		s := timeseries.IndexSample{
			Date:  d,
			NDVI:  fp(0.60),
			NDMI:  fp(0.38),
			NDRE:  fp(0.34),
			EVI:   fp(0.40),
			GNDVI: fp(0.58),
			MSI:   fp(0.55),
		}
		if i >= 10 && i <= 12 {
			s.NDMI = fp(0.175)
		}
		samples = append(samples, s)
	}

	series, _, err := timeseries.Fuse(weather, samples, date("2024-07-01"), date("2024-07-31"))
	require.NoError(t, err)
	return series
}

func TestEngineRunFullPass(t *testing.T) {
	eng, err := New(testConfig(), nopLogger())
	require.NoError(t, err)

	result, err := eng.Run(context.Background(), julySeries(t))
	require.NoError(t, err)
	require.Len(t, result.Days, 31)

	s := result.Summary
	assert.Equal(t, 31, s.TotalDays)
	assert.Equal(t, 22, s.QCOKDays) // coverage through the 20th plus two fresh days
	assert.Equal(t, 1, s.SkipCounts[SkipStale])
	assert.Equal(t, 8, s.SkipCounts[SkipNoRemoteSensing])

	// The dry-spell days carry drought alerts in both views.
	assert.Equal(t, 3, s.RawCounts[CategoryDrought])
	assert.Equal(t, 3, s.GatedCounts[CategoryDrought])

	require.Len(t, result.Events, 1)
	ev := result.Events[0]
	assert.Equal(t, CategoryDrought, ev.Type)
	assert.Equal(t, date("2024-07-10"), ev.Start)
	assert.Equal(t, date("2024-07-12"), ev.End)
	assert.Equal(t, 3, ev.DurationDays)
	require.NotNil(t, ev.Peak)
	assert.Equal(t, 0.175, *ev.Peak)
	assert.Equal(t, 1, s.EventCounts[CategoryDrought])
}

func TestEngineStageCountsConsistent(t *testing.T) {
	eng, err := New(testConfig(), nopLogger())
	require.NoError(t, err)

	result, err := eng.Run(context.Background(), julySeries(t))
	require.NoError(t, err)

	s := result.Summary
	assert.LessOrEqual(t, s.GatedAlertDays, s.QCOKDays)
	assert.LessOrEqual(t, s.QCOKDays, s.TotalDays)
	assert.LessOrEqual(t, s.RawAlertDays, s.QCOKDays)
	for c, gated := range s.GatedCounts {
		assert.LessOrEqual(t, gated, s.RawCounts[c], "category %s", c)
	}
}

func TestEngineGatedImpliesRaw(t *testing.T) {
	eng, err := New(testConfig(), nopLogger())
	require.NoError(t, err)

	result, err := eng.Run(context.Background(), julySeries(t))
	require.NoError(t, err)

	for _, day := range result.Days {
		for _, c := range day.Gated {
			assert.Contains(t, day.Raw, c, "date %s", day.Date.Format("2006-01-02"))
		}
		for _, c := range day.Raw {
			assert.Equal(t, SkipOK, day.QC.Reason, "raw alert on non-ok day %s (%s)",
				day.Date.Format("2006-01-02"), c)
		}
	}
}

func TestEngineSkipSuppressesCanopyCategories(t *testing.T) {
	eng, err := New(testConfig(), nopLogger())
	require.NoError(t, err)

	result, err := eng.Run(context.Background(), julySeries(t))
	require.NoError(t, err)

	// The cold wet spell (days 25..31) has no remote-sensing support,
	// so cold stress never reaches the raw view despite qualifying
	// weather.
	for _, day := range result.Days {
		if day.QC.Reason != SkipNoRemoteSensing {
			continue
		}
		assert.Empty(t, day.Raw, "date %s", day.Date.Format("2006-01-02"))
		out := day.Outcome(CategoryColdStress)
		require.NotNil(t, out)
		assert.False(t, out.Triggered)
	}
	assert.Zero(t, result.Summary.RawCounts[CategoryColdStress])
}

func TestEngineRejectsSeriesNotCoveringDataRange(t *testing.T) {
	eng, err := New(testConfig(), nopLogger())
	require.NoError(t, err)

	short, _, err := timeseries.Fuse(nil, nil, date("2024-07-05"), date("2024-07-31"))
	require.NoError(t, err)

	_, err = eng.Run(context.Background(), short)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not cover data range")
}

func TestEngineRejectsReportOutsideDataRange(t *testing.T) {
	cfg := testConfig()
	cfg.Period.ReportEnd = "2024-08-15"
	eng, err := New(cfg, nopLogger())
	require.NoError(t, err)

	series, _, err := timeseries.Fuse(nil, nil, date("2024-07-01"), date("2024-07-31"))
	require.NoError(t, err)

	_, err = eng.Run(context.Background(), series)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside data range")
}

func TestEngineHonorsContextCancellation(t *testing.T) {
	eng, err := New(testConfig(), nopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = eng.Run(ctx, julySeries(t))
	assert.ErrorIs(t, err, context.Canceled)
}
