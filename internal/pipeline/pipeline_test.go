package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/internal/engine"
	"github.com/agrisense/agrisense/internal/fetch/openmeteo"
	"github.com/agrisense/agrisense/internal/report"
	"github.com/agrisense/agrisense/internal/timeseries"
	"github.com/agrisense/agrisense/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWeather struct {
	days []timeseries.WeatherDay
	err  error
}

func (f *fakeWeather) FetchDaily(ctx context.Context, lat, lon float64, start, end time.Time) ([]timeseries.WeatherDay, *openmeteo.Metadata, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.days, &openmeteo.Metadata{Latitude: lat, Longitude: lon}, nil
}

type fakeIndices struct {
	samples []timeseries.IndexSample
	err     error
}

func (f *fakeIndices) ReadFile(path string) ([]timeseries.IndexSample, error) {
	return f.samples, f.err
}

type fakeStore struct {
	saved *engine.Result
}

func (f *fakeStore) SaveResult(ctx context.Context, snap *alertconfig.RunSnapshot, result *engine.Result) (int64, error) {
	f.saved = result
	return 42, nil
}

func fp(v float64) *float64 { return &v }

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func pipelineConfig() *alertconfig.Config {
	return &alertconfig.Config{
		Meta: alertconfig.Meta{StrategyID: "test-1", RegionName: "Test", Latitude: 36.5, Longitude: 128.7},
		Period: alertconfig.Period{
			DataStart: "2024-07-01", DataEnd: "2024-07-05",
			ReportStart: "2024-07-01", ReportEnd: "2024-07-05",
		},
		RemoteSensing: alertconfig.RemoteSensing{
			WindowHalfDays: 3, WindowMode: alertconfig.WindowSymmetric,
			MaxAgeDays: 5, CanopyNDVIMin: 0.35, CanopyEVIMin: 0.20,
		},
		Gating: alertconfig.Gating{Mode: alertconfig.GatingOff},
		Rules: alertconfig.Rules{
			Categories: []string{"drought"},
			Drought: alertconfig.Drought{
				NDMIDry: 0.25, NDMIStrong: 0.15, MSIDry: 0.8, MSIStrong: 1.2,
				PrecipLow7: 20, EVICover: 0.2, NDVICrop: 0.35,
			},
		},
		Merge: alertconfig.Merge{GapDays: 0},
	}
}

func fiveDays() ([]timeseries.WeatherDay, []timeseries.IndexSample) {
	var weather []timeseries.WeatherDay
	var samples []timeseries.IndexSample
	for i := 0; i < 5; i++ {
		d := date("2024-07-01").AddDate(0, 0, i)
		weather = append(weather, timeseries.WeatherDay{
			Date: d, TempMax: fp(28), TempMin: fp(18), Precipitation: fp(0), RelHumidity: fp(55),
		})
		samples = append(samples, timeseries.IndexSample{
			Date: d, NDVI: fp(0.6), NDMI: fp(0.18), EVI: fp(0.4),
		})
	}
	return weather, samples
}

func TestPipelineRun(t *testing.T) {
	cfg := pipelineConfig()
	snap := &alertconfig.RunSnapshot{StrategyID: cfg.Meta.StrategyID, ConfigHash: "deadbeef"}
	weather, samples := fiveDays()
	st := &fakeStore{}

	p := New(cfg, snap, Options{
		Weather:     &fakeWeather{days: weather},
		Indices:     &fakeIndices{samples: samples},
		IndicesPath: "unused.csv",
		Store:       st,
		Reports:     report.NewWriter(t.TempDir(), logger.NewNop()),
	}, logger.NewNop())

	out, err := p.Run(context.Background())
	require.NoError(t, err)

	// Dry NDMI with a dry week fires drought on every day.
	assert.Equal(t, 5, out.Result.Summary.GatedCounts[engine.CategoryDrought])
	require.Len(t, out.Result.Events, 1)
	assert.Equal(t, 5, out.Result.Events[0].DurationDays)

	assert.Equal(t, int64(42), out.RunID)
	require.NotNil(t, st.saved)
	assert.NotEmpty(t, out.ReportPath)
}

func TestPipelineRunWithoutStoreOrReports(t *testing.T) {
	cfg := pipelineConfig()
	snap := &alertconfig.RunSnapshot{StrategyID: cfg.Meta.StrategyID}
	weather, samples := fiveDays()

	p := New(cfg, snap, Options{
		Weather: &fakeWeather{days: weather},
		Indices: &fakeIndices{samples: samples},
	}, logger.NewNop())

	out, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, out.RunID)
	assert.Empty(t, out.ReportPath)
}

func TestPipelineFetchFailure(t *testing.T) {
	cfg := pipelineConfig()
	p := New(cfg, &alertconfig.RunSnapshot{}, Options{
		Weather: &fakeWeather{err: errors.New("provider down")},
		Indices: &fakeIndices{},
	}, logger.NewNop())

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch weather failed")
}

func TestPipelineIndicesFailure(t *testing.T) {
	cfg := pipelineConfig()
	weather, _ := fiveDays()
	p := New(cfg, &alertconfig.RunSnapshot{}, Options{
		Weather: &fakeWeather{days: weather},
		Indices: &fakeIndices{err: errors.New("no such file")},
	}, logger.NewNop())

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load indices failed")
}
