package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agrisense/agrisense/internal/timeseries"
	"github.com/agrisense/agrisense/pkg/config"
	"github.com/agrisense/agrisense/pkg/httputil"
	"github.com/agrisense/agrisense/pkg/logger"
	"github.com/agrisense/agrisense/pkg/redis"
)

// Client fetches daily ERA5 weather aggregates from the Open-Meteo
// archive API. Responses are cached by coordinates and range so
// repeated pipeline runs over the same window do not re-hit the
// provider.
type Client struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	logger     *logger.Logger
	baseURL    string
	cacheTTL   time.Duration
}

// NewClient creates an Open-Meteo client. cache may be nil to disable
// response caching.
func NewClient(cfg config.OpenMeteoConfig, cache *redis.Cache, log *logger.Logger) *Client {
	httpClient := httputil.New(log, cfg.RequestTimeout).
		WithRateLimit(cfg.RatePerSecond)
	return &Client{
		httpClient: httpClient,
		cache:      cache,
		logger:     log,
		baseURL:    cfg.BaseURL,
		cacheTTL:   cfg.CacheTTL,
	}
}

// FetchDaily fetches the daily series for one coordinate over an
// inclusive date range. The full variable set is tried first; when
// the provider rejects it, the minimal set is retried and the missing
// variables stay nil in the result.
func (c *Client) FetchDaily(ctx context.Context, lat, lon float64, start, end time.Time) ([]timeseries.WeatherDay, *Metadata, error) {
	key := redis.WeatherKey(lat, lon,
		start.Format("2006-01-02"), end.Format("2006-01-02"))

	if c.cache != nil {
		var cached response
		hit, err := c.cache.Get(ctx, key, &cached)
		if err != nil {
			c.logger.WithError(err).Warn("Weather cache read failed")
		}
		if hit {
			c.logger.WithField("key", key).Debug("Weather cache hit")
			days, meta := c.convert(&cached, dailyVariables)
			meta.FromCache = true
			return days, meta, nil
		}
	}

	resp, variables, err := c.fetchWithFallback(ctx, lat, lon, start, end)
	if err != nil {
		return nil, nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, resp, c.cacheTTL); err != nil {
			c.logger.WithError(err).Warn("Weather cache write failed")
		}
	}

	days, meta := c.convert(resp, variables)
	c.logger.WithFields(map[string]interface{}{
		"lat":       lat,
		"lon":       lon,
		"days":      len(days),
		"variables": len(variables),
	}).Info("Fetched daily weather")
	return days, meta, nil
}

// fetchWithFallback requests the full variable set, then retries with
// the minimal set on a client-error response.
func (c *Client) fetchWithFallback(ctx context.Context, lat, lon float64, start, end time.Time) (*response, []string, error) {
	resp, err := c.fetch(ctx, lat, lon, start, end, dailyVariables)
	if err == nil {
		return resp, dailyVariables, nil
	}

	c.logger.WithError(err).Warn("Full variable set rejected, retrying with minimal set")
	resp, minErr := c.fetch(ctx, lat, lon, start, end, minimalVariables)
	if minErr != nil {
		return nil, nil, fmt.Errorf("open-meteo fetch failed: %w (minimal retry: %v)", err, minErr)
	}
	return resp, minimalVariables, nil
}

func (c *Client) fetch(ctx context.Context, lat, lon float64, start, end time.Time, variables []string) (*response, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("start_date", start.Format("2006-01-02"))
	params.Set("end_date", end.Format("2006-01-02"))
	params.Set("daily", strings.Join(variables, ","))
	params.Set("timezone", "UTC")

	fullURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}
	if len(out.Daily.Time) == 0 {
		return nil, fmt.Errorf("empty daily block in response")
	}
	return &out, nil
}

// convert maps the columnar provider response to per-day rows.
// Rows with unparseable dates are dropped with a warning.
func (c *Client) convert(resp *response, variables []string) ([]timeseries.WeatherDay, *Metadata) {
	days := make([]timeseries.WeatherDay, 0, len(resp.Daily.Time))
	for i, ts := range resp.Daily.Time {
		d, err := time.Parse("2006-01-02", ts)
		if err != nil {
			c.logger.WithField("time", ts).Warn("Skipping unparseable date in response")
			continue
		}
		days = append(days, timeseries.WeatherDay{
			Date:          d,
			TempMax:       at(resp.Daily.TempMax, i),
			TempMin:       at(resp.Daily.TempMin, i),
			Precipitation: at(resp.Daily.Precipitation, i),
			RelHumidity:   at(resp.Daily.RelHumidity, i),
			WindMax:       at(resp.Daily.WindMax, i),
		})
	}

	meta := &Metadata{
		Latitude:  resp.Latitude,
		Longitude: resp.Longitude,
		Timezone:  resp.Timezone,
		Elevation: resp.Elevation,
		Variables: variables,
		FetchedAt: time.Now().UTC(),
	}
	return days, meta
}

func at(col []*float64, i int) *float64 {
	if i >= len(col) {
		return nil
	}
	return col[i]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
