package engine

import "github.com/agrisense/agrisense/internal/alertconfig"

// Classifier assigns the per-day skip reason from resolver output and
// canopy thresholds.
type Classifier struct {
	maxAge  int
	ndviMin float64
	eviMin  float64
}

// NewClassifier builds a classifier from the remote-sensing policy.
func NewClassifier(rs alertconfig.RemoteSensing) *Classifier {
	return &Classifier{
		maxAge:  rs.MaxAgeDays,
		ndviMin: rs.CanopyNDVIMin,
		eviMin:  rs.CanopyEVIMin,
	}
}

// Classify applies the skip policy in priority order: no observation,
// then staleness, then canopy confidence. Staleness is checked before
// canopy because a stale high reading is still untrustworthy. Canopy
// is reliable when NDVI or EVI clears its minimum.
func (c *Classifier) Classify(sup SupportStatus, res ResolvedIndices) QCResult {
	out := QCResult{Support: sup}

	if !sup.Supported {
		out.Reason = SkipNoRemoteSensing
		return out
	}
	if sup.Age > c.maxAge {
		out.Reason = SkipStale
		return out
	}

	ndviOK := res.NDVI != nil && *res.NDVI >= c.ndviMin
	eviOK := res.EVI != nil && *res.EVI >= c.eviMin
	if !ndviOK && !eviOK {
		out.Reason = SkipLowCanopy
		return out
	}

	out.Reason = SkipOK
	out.CanopyReady = true
	return out
}
