// Package pipeline orchestrates one end-to-end run: fetch weather,
// load satellite indices, fuse the daily series, run the alert engine
// and hand the result to persistence and reporting.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/internal/engine"
	"github.com/agrisense/agrisense/internal/fetch/openmeteo"
	"github.com/agrisense/agrisense/internal/report"
	"github.com/agrisense/agrisense/internal/timeseries"
	"github.com/agrisense/agrisense/pkg/logger"
)

// WeatherFetcher provides the daily weather series for a coordinate.
type WeatherFetcher interface {
	FetchDaily(ctx context.Context, lat, lon float64, start, end time.Time) ([]timeseries.WeatherDay, *openmeteo.Metadata, error)
}

// IndexLoader provides satellite index samples.
type IndexLoader interface {
	ReadFile(path string) ([]timeseries.IndexSample, error)
}

// ResultStore persists one engine result.
type ResultStore interface {
	SaveResult(ctx context.Context, snap *alertconfig.RunSnapshot, result *engine.Result) (int64, error)
}

// Pipeline wires one configured run. store may be nil (file-only
// runs) and reports may be nil (detection-only runs).
type Pipeline struct {
	alertCfg    *alertconfig.Config
	snapshot    *alertconfig.RunSnapshot
	weather     WeatherFetcher
	indices     IndexLoader
	indicesPath string
	store       ResultStore
	reports     *report.Writer
	logger      *logger.Logger
}

// Options collects the pipeline collaborators.
type Options struct {
	Weather     WeatherFetcher
	Indices     IndexLoader
	IndicesPath string
	Store       ResultStore
	Reports     *report.Writer
}

// New creates a pipeline for one validated configuration snapshot.
func New(alertCfg *alertconfig.Config, snap *alertconfig.RunSnapshot, opts Options, log *logger.Logger) *Pipeline {
	return &Pipeline{
		alertCfg:    alertCfg,
		snapshot:    snap,
		weather:     opts.Weather,
		indices:     opts.Indices,
		indicesPath: opts.IndicesPath,
		store:       opts.Store,
		reports:     opts.Reports,
		logger:      log,
	}
}

// Output is everything one run produced.
type Output struct {
	Series     *timeseries.Series
	Stats      timeseries.FuseStats
	Result     *engine.Result
	RunID      int64
	ReportPath string
}

// Run executes the full pipeline.
func (p *Pipeline) Run(ctx context.Context) (*Output, error) {
	series, stats, err := p.BuildSeries(ctx)
	if err != nil {
		return nil, err
	}

	result, err := p.Detect(ctx, series)
	if err != nil {
		return nil, err
	}

	out := &Output{Series: series, Stats: stats, Result: result}

	if p.store != nil {
		runID, err := p.store.SaveResult(ctx, p.snapshot, result)
		if err != nil {
			return nil, fmt.Errorf("persist run failed: %w", err)
		}
		out.RunID = runID
	}

	if p.reports != nil {
		if err := p.reports.WriteStageSummaries(p.alertCfg, p.snapshot.ConfigHash, series, stats, result); err != nil {
			return nil, err
		}
		path, err := p.reports.WriteMarkdown(p.alertCfg, p.snapshot.ConfigHash, result)
		if err != nil {
			return nil, err
		}
		out.ReportPath = path
	}

	return out, nil
}

// BuildSeries fetches and fuses the input series over the data range.
func (p *Pipeline) BuildSeries(ctx context.Context) (*timeseries.Series, timeseries.FuseStats, error) {
	dataStart, dataEnd := p.alertCfg.Period.DataRange()

	weather, meta, err := p.weather.FetchDaily(ctx,
		p.alertCfg.Meta.Latitude, p.alertCfg.Meta.Longitude, dataStart, dataEnd)
	if err != nil {
		return nil, timeseries.FuseStats{}, fmt.Errorf("fetch weather failed: %w", err)
	}
	p.logger.WithFields(map[string]interface{}{
		"days":       len(weather),
		"from_cache": meta.FromCache,
	}).Debug("Weather series ready")

	samples, err := p.indices.ReadFile(p.indicesPath)
	if err != nil {
		return nil, timeseries.FuseStats{}, fmt.Errorf("load indices failed: %w", err)
	}

	series, stats, err := timeseries.Fuse(weather, samples, dataStart, dataEnd)
	if err != nil {
		return nil, timeseries.FuseStats{}, fmt.Errorf("fuse series failed: %w", err)
	}
	if dup := stats.DuplicateWeather + stats.DuplicateIndex; dup > 0 {
		p.logger.WithField("rows", dup).Warn("Duplicate dates in input, kept last write")
	}
	return series, stats, nil
}

// Detect runs the alert engine over an already fused series.
func (p *Pipeline) Detect(ctx context.Context, series *timeseries.Series) (*engine.Result, error) {
	eng, err := engine.New(p.alertCfg, p.logger)
	if err != nil {
		return nil, err
	}
	return eng.Run(ctx, series)
}
