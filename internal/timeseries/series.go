package timeseries

import (
	"fmt"
	"time"
)

// WeatherDay is a provider-shaped daily weather row before fusion.
type WeatherDay struct {
	Date          time.Time
	TempMax       *float64
	TempMin       *float64
	Precipitation *float64
	RelHumidity   *float64
	WindMax       *float64
}

// IndexSample is one satellite index composite before fusion. Dates
// are sparse; most calendar days have no sample.
type IndexSample struct {
	Date  time.Time
	NDVI  *float64
	NDMI  *float64
	NDRE  *float64
	EVI   *float64
	GNDVI *float64
	MSI   *float64
}

// Series is a continuous, date-ascending daily grid over a closed
// range. Every calendar day in [Start, End] has exactly one record.
type Series struct {
	Start   time.Time
	End     time.Time
	Records []DailyRecord
}

// FuseStats reports what fusion kept and dropped.
type FuseStats struct {
	Days              int
	WeatherDays       int
	IndexDays         int
	DuplicateWeather  int
	DuplicateIndex    int
	OutOfRangeWeather int
	OutOfRangeIndex   int
}

// Fuse left-joins weather and index samples onto a continuous daily
// grid over [start, end]. Duplicate dates within one input resolve by
// last write; the count is surfaced in FuseStats so callers can warn.
// Samples outside the range are dropped, not an error.
func Fuse(weather []WeatherDay, indices []IndexSample, start, end time.Time) (*Series, FuseStats, error) {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil, FuseStats{}, fmt.Errorf("fuse: end %s before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	days := int(end.Sub(start).Hours()/24) + 1
	recs := make([]DailyRecord, days)
	idx := make(map[time.Time]int, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		recs[i] = DailyRecord{Date: d}
		idx[d] = i
	}

	stats := FuseStats{Days: days}
	seenW := make(map[time.Time]bool, len(weather))
	for _, w := range weather {
		d := Day(w.Date)
		i, ok := idx[d]
		if !ok {
			stats.OutOfRangeWeather++
			continue
		}
		if seenW[d] {
			stats.DuplicateWeather++
		} else {
			seenW[d] = true
			stats.WeatherDays++
		}
		r := &recs[i]
		r.TempMax = w.TempMax
		r.TempMin = w.TempMin
		r.Precipitation = w.Precipitation
		r.RelHumidity = w.RelHumidity
		r.WindMax = w.WindMax
	}

	seenI := make(map[time.Time]bool, len(indices))
	for _, s := range indices {
		d := Day(s.Date)
		i, ok := idx[d]
		if !ok {
			stats.OutOfRangeIndex++
			continue
		}
		if seenI[d] {
			stats.DuplicateIndex++
		} else {
			seenI[d] = true
			stats.IndexDays++
		}
		r := &recs[i]
		r.NDVI = s.NDVI
		r.NDMI = s.NDMI
		r.NDRE = s.NDRE
		r.EVI = s.EVI
		r.GNDVI = s.GNDVI
		r.MSI = s.MSI
	}

	sr := &Series{Start: start, End: end, Records: recs}
	sr.deriveAggregates()
	return sr, stats, nil
}

// deriveAggregates fills Tmean, Tmean7 and Precip7. Trailing windows
// are 7 days inclusive of the current day and tolerate gaps: the mean
// and sum use whatever values are present, requiring at least one.
func (s *Series) deriveAggregates() {
	for i := range s.Records {
		r := &s.Records[i]
		if r.TempMax != nil && r.TempMin != nil {
			r.Tmean = Float((*r.TempMax + *r.TempMin) / 2)
		}
	}
	for i := range s.Records {
		r := &s.Records[i]
		lo := i - 6
		if lo < 0 {
			lo = 0
		}
		var tSum, pSum float64
		var tN, pN int
		for j := lo; j <= i; j++ {
			w := &s.Records[j]
			if w.Tmean != nil {
				tSum += *w.Tmean
				tN++
			}
			if w.Precipitation != nil {
				pSum += *w.Precipitation
				pN++
			}
		}
		if tN > 0 {
			r.Tmean7 = Float(tSum / float64(tN))
		}
		if pN > 0 {
			r.Precip7 = Float(pSum)
		}
	}
}

// At returns the record for date d, or nil when d is outside the grid.
func (s *Series) At(d time.Time) *DailyRecord {
	d = Day(d)
	if d.Before(s.Start) || d.After(s.End) {
		return nil
	}
	i := int(d.Sub(s.Start).Hours() / 24)
	return &s.Records[i]
}

// Slice returns the records covering [from, to], clamped to the grid.
func (s *Series) Slice(from, to time.Time) []DailyRecord {
	from, to = Day(from), Day(to)
	if from.Before(s.Start) {
		from = s.Start
	}
	if to.After(s.End) {
		to = s.End
	}
	if to.Before(from) {
		return nil
	}
	lo := int(from.Sub(s.Start).Hours() / 24)
	hi := int(to.Sub(s.Start).Hours() / 24)
	return s.Records[lo : hi+1]
}
