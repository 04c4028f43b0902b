package indices

import (
	"strings"
	"testing"

	"github.com/agrisense/agrisense/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMapsColumnsByHeader(t *testing.T) {
	csv := `date,ndvi_mean,ndmi_mean,evi_mean,extra
2024-07-01,0.62,0.38,0.41,ignored
2024-07-06,0.58,,0.39,ignored
`
	samples, err := NewReader(logger.NewNop()).Read(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, samples, 2)

	require.NotNil(t, samples[0].NDVI)
	assert.Equal(t, 0.62, *samples[0].NDVI)
	assert.Nil(t, samples[0].NDRE) // column absent entirely

	assert.Nil(t, samples[1].NDMI) // empty cell
	require.NotNil(t, samples[1].EVI)
	assert.Equal(t, 0.39, *samples[1].EVI)
}

func TestReadNaNAndMalformedCellsAreMissing(t *testing.T) {
	csv := `date,ndvi_mean,msi_mean
2024-07-01,NaN,not-a-number
`
	samples, err := NewReader(logger.NewNop()).Read(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Nil(t, samples[0].NDVI)
	assert.Nil(t, samples[0].MSI)
}

func TestReadSkipsBadDateRows(t *testing.T) {
	csv := `date,ndvi_mean
garbage,0.5
2024-07-02,0.6
`
	samples, err := NewReader(logger.NewNop()).Read(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "2024-07-02", samples[0].Date.Format("2006-01-02"))
}

func TestReadTimestampDates(t *testing.T) {
	csv := `time,gndvi_mean
2024-07-01 00:00:00,0.55
`
	samples, err := NewReader(logger.NewNop()).Read(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, samples, 1)
	require.NotNil(t, samples[0].GNDVI)
}

func TestReadRejectsHeaderWithoutDate(t *testing.T) {
	_, err := NewReader(logger.NewNop()).Read(strings.NewReader("ndvi_mean\n0.5\n"))
	assert.Error(t, err)
}
