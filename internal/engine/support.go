package engine

import (
	"time"

	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/internal/timeseries"
)

// Resolver finds, per date, the nearest usable remote-sensing
// observation within the configured window. Pure and deterministic:
// the same series and date always resolve identically.
type Resolver struct {
	halfDays int
	pastOnly bool
}

// NewResolver builds a resolver from the remote-sensing policy.
func NewResolver(rs alertconfig.RemoteSensing) *Resolver {
	return &Resolver{
		halfDays: rs.WindowHalfDays,
		pastOnly: rs.WindowMode == alertconfig.WindowPastOnly,
	}
}

// Resolve scans [d-w, d+w] (symmetric) or [d-w, d] (past-only) on the
// series grid, nearest offset first. The day itself wins over any
// neighbor, and on equal distance the past date wins over the future
// one. Returns overall support (nearest date carrying any index
// observation) and the nearest per-index values.
func (r *Resolver) Resolve(s *timeseries.Series, d time.Time) (SupportStatus, ResolvedIndices) {
	var sup SupportStatus
	var res ResolvedIndices
	remaining := len(timeseries.AllIndexFields)

	for _, off := range r.offsets() {
		rec := s.At(d.AddDate(0, 0, off))
		if rec == nil {
			continue
		}
		if !sup.Supported && rec.HasIndexObservation() {
			sup.Supported = true
			sup.Age = abs(off)
			sup.ObsDate = rec.Date
		}
		for _, f := range timeseries.AllIndexFields {
			if res.Index(f) != nil {
				continue
			}
			if v := rec.Index(f); v != nil {
				setIndex(&res, f, v)
				remaining--
			}
		}
		if sup.Supported && remaining == 0 {
			break
		}
	}
	return sup, res
}

// offsets yields candidate day offsets in preference order:
// 0, -1, +1, -2, +2, ... for symmetric mode, 0, -1, -2, ... for
// past-only mode.
func (r *Resolver) offsets() []int {
	out := make([]int, 0, 2*r.halfDays+1)
	out = append(out, 0)
	for k := 1; k <= r.halfDays; k++ {
		out = append(out, -k)
		if !r.pastOnly {
			out = append(out, k)
		}
	}
	return out
}

func setIndex(res *ResolvedIndices, f timeseries.IndexField, v *float64) {
	switch f {
	case timeseries.FieldNDVI:
		res.NDVI = v
	case timeseries.FieldNDMI:
		res.NDMI = v
	case timeseries.FieldNDRE:
		res.NDRE = v
	case timeseries.FieldEVI:
		res.EVI = v
	case timeseries.FieldGNDVI:
		res.GNDVI = v
	case timeseries.FieldMSI:
		res.MSI = v
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
