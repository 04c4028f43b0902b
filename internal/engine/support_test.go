package engine

import (
	"testing"

	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/internal/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sparseSeries(t *testing.T, samples []timeseries.IndexSample) *timeseries.Series {
	t.Helper()
	s, _, err := timeseries.Fuse(nil, samples, date("2024-07-01"), date("2024-07-31"))
	require.NoError(t, err)
	return s
}

func TestResolveSameDayWins(t *testing.T) {
	s := sparseSeries(t, []timeseries.IndexSample{
		{Date: date("2024-07-09"), NDVI: fp(0.4)},
		{Date: date("2024-07-10"), NDVI: fp(0.5)},
		{Date: date("2024-07-11"), NDVI: fp(0.6)},
	})
	r := NewResolver(testRemoteSensing())

	sup, res := r.Resolve(s, date("2024-07-10"))
	assert.True(t, sup.Supported)
	assert.Equal(t, 0, sup.Age)
	require.NotNil(t, res.NDVI)
	assert.Equal(t, 0.5, *res.NDVI)
}

func TestResolveTieBreakPrefersPast(t *testing.T) {
	s := sparseSeries(t, []timeseries.IndexSample{
		{Date: date("2024-07-08"), NDVI: fp(0.4)},
		{Date: date("2024-07-12"), NDVI: fp(0.6)},
	})
	r := NewResolver(testRemoteSensing())

	sup, res := r.Resolve(s, date("2024-07-10"))
	assert.True(t, sup.Supported)
	assert.Equal(t, 2, sup.Age)
	assert.Equal(t, date("2024-07-08"), sup.ObsDate)
	require.NotNil(t, res.NDVI)
	assert.Equal(t, 0.4, *res.NDVI)
}

func TestResolvePastOnlyIgnoresFuture(t *testing.T) {
	s := sparseSeries(t, []timeseries.IndexSample{
		{Date: date("2024-07-11"), NDVI: fp(0.6)},
	})
	rs := testRemoteSensing()
	rs.WindowMode = alertconfig.WindowPastOnly
	r := NewResolver(rs)

	sup, res := r.Resolve(s, date("2024-07-10"))
	assert.False(t, sup.Supported)
	assert.Nil(t, res.NDVI)

	// Symmetric mode sees the same observation one day ahead.
	sup, res = NewResolver(testRemoteSensing()).Resolve(s, date("2024-07-10"))
	assert.True(t, sup.Supported)
	assert.Equal(t, 1, sup.Age)
	require.NotNil(t, res.NDVI)
}

func TestResolveNoObservationWithinWindow(t *testing.T) {
	s := sparseSeries(t, []timeseries.IndexSample{
		{Date: date("2024-07-01"), NDVI: fp(0.4)},
	})
	r := NewResolver(testRemoteSensing()) // half-width 3

	sup, _ := r.Resolve(s, date("2024-07-10"))
	assert.False(t, sup.Supported)
}

func TestResolvePerIndexNearest(t *testing.T) {
	// NDVI observed two days back, NDMI only one day ahead: each index
	// resolves to its own nearest observation.
	s := sparseSeries(t, []timeseries.IndexSample{
		{Date: date("2024-07-08"), NDVI: fp(0.45)},
		{Date: date("2024-07-11"), NDMI: fp(0.22)},
	})
	r := NewResolver(testRemoteSensing())

	sup, res := r.Resolve(s, date("2024-07-10"))
	assert.True(t, sup.Supported)
	assert.Equal(t, 1, sup.Age) // nearest any-index observation
	require.NotNil(t, res.NDVI)
	assert.Equal(t, 0.45, *res.NDVI)
	require.NotNil(t, res.NDMI)
	assert.Equal(t, 0.22, *res.NDMI)
	assert.Nil(t, res.MSI)
}

func TestResolveDeterministic(t *testing.T) {
	s := sparseSeries(t, []timeseries.IndexSample{
		{Date: date("2024-07-08"), NDVI: fp(0.4), NDMI: fp(0.3)},
		{Date: date("2024-07-12"), NDVI: fp(0.6)},
	})
	r := NewResolver(testRemoteSensing())

	supA, resA := r.Resolve(s, date("2024-07-10"))
	supB, resB := r.Resolve(s, date("2024-07-10"))
	assert.Equal(t, supA, supB)
	assert.Equal(t, resA, resB)
}
