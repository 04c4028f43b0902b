// Package indices ingests satellite index exports: CSV files with a
// date column and one *_mean column per index, as produced by
// zonal-statistics tooling. Cells may be empty or NaN on dates
// without a usable composite.
package indices

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agrisense/agrisense/internal/timeseries"
	"github.com/agrisense/agrisense/pkg/logger"
)

// Reader parses index sample CSVs.
type Reader struct {
	logger *logger.Logger
}

// NewReader creates a CSV reader.
func NewReader(log *logger.Logger) *Reader {
	return &Reader{logger: log}
}

// ReadFile loads every sample from a CSV file.
func (r *Reader) ReadFile(path string) ([]timeseries.IndexSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file failed: %w", err)
	}
	defer f.Close()

	samples, err := r.Read(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return samples, nil
}

// Read parses samples from a CSV stream. The header row names the
// columns; unknown columns are ignored, and a row with an
// unparseable date is skipped with a warning rather than failing the
// whole ingest.
func (r *Reader) Read(src io.Reader) ([]timeseries.IndexSample, error) {
	cr := csv.NewReader(src)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header failed: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	dateCol, ok := cols["date"]
	if !ok {
		if dateCol, ok = cols["time"]; !ok {
			return nil, fmt.Errorf("no date column in header %v", header)
		}
	}

	var samples []timeseries.IndexSample
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row failed: %w", err)
		}

		d, err := parseDate(row[dateCol])
		if err != nil {
			r.logger.WithFields(map[string]interface{}{
				"line":  line,
				"value": row[dateCol],
			}).Warn("Skipping row with unparseable date")
			continue
		}

		samples = append(samples, timeseries.IndexSample{
			Date:  d,
			NDVI:  cell(row, cols, "ndvi_mean"),
			NDMI:  cell(row, cols, "ndmi_mean"),
			NDRE:  cell(row, cols, "ndre_mean"),
			EVI:   cell(row, cols, "evi_mean"),
			GNDVI: cell(row, cols, "gndvi_mean"),
			MSI:   cell(row, cols, "msi_mean"),
		})
	}
	return samples, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	// Timestamp exports carry a time component.
	return time.Parse("2006-01-02 15:04:05", s)
}

// cell parses one numeric cell; empty, NaN or malformed values read
// as missing.
func cell(row []string, cols map[string]int, name string) *float64 {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return nil
	}
	s := strings.TrimSpace(row[i])
	if s == "" || strings.EqualFold(s, "nan") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
