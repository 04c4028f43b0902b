package engine

import (
	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/internal/timeseries"
)

// DroughtRule implements the two-tier drought check. The strong tier
// (NDMI below ndmi_strong or MSI above msi_strong) triggers alone;
// the soft tier (NDMI below ndmi_dry or MSI above msi_dry) also needs
// 7-day precipitation below precip_low7. Crop cover (NDVI or EVI over
// its floor) is a precondition so bare soil does not read as drought.
// With index_independent set, the precipitation deficit alone may
// trigger without any index support.
type DroughtRule struct {
	t alertconfig.Drought
}

// NewDroughtRule creates a drought rule with the given thresholds.
func NewDroughtRule(t alertconfig.Drought) *DroughtRule {
	return &DroughtRule{t: t}
}

func (r *DroughtRule) Category() Category { return CategoryDrought }

func (r *DroughtRule) CanopyDependent() bool { return !r.t.IndexIndependent }

// Evaluate checks the strong tier first, then the soft tier, then the
// index-independent precipitation fallback. All comparisons are
// strict.
func (r *DroughtRule) Evaluate(rec *timeseries.DailyRecord, res ResolvedIndices) RuleOutcome {
	out := RuleOutcome{
		Category:   CategoryDrought,
		MetricName: "ndmi",
		Metric:     res.NDMI,
	}

	cover := atLeast(res.NDVI, r.t.NDVICrop) || atLeast(res.EVI, r.t.EVICover)
	var ev clauses

	if cover {
		switch {
		case below(res.NDMI, r.t.NDMIStrong):
			ev.addf("ndmi %.3f < ndmi_strong %.3f", *res.NDMI, r.t.NDMIStrong)
		case above(res.MSI, r.t.MSIStrong):
			ev.addf("msi %.3f > msi_strong %.3f", *res.MSI, r.t.MSIStrong)
		case (below(res.NDMI, r.t.NDMIDry) || above(res.MSI, r.t.MSIDry)) &&
			below(rec.Precip7, r.t.PrecipLow7):
			if below(res.NDMI, r.t.NDMIDry) {
				ev.addf("ndmi %.3f < ndmi_dry %.3f", *res.NDMI, r.t.NDMIDry)
			} else {
				ev.addf("msi %.3f > msi_dry %.3f", *res.MSI, r.t.MSIDry)
			}
			ev.addf("precip_7d %.1fmm < precip_low7 %.1fmm", *rec.Precip7, r.t.PrecipLow7)
		}
	}

	if len(ev) == 0 && r.t.IndexIndependent && below(rec.Precip7, r.t.PrecipLow7) {
		ev.addf("precip_7d %.1fmm < precip_low7 %.1fmm", *rec.Precip7, r.t.PrecipLow7)
		if out.Metric == nil {
			out.MetricName = "precip_7d"
			out.Metric = rec.Precip7
		}
	}

	if len(ev) > 0 {
		out.Triggered = true
		out.Reason = ev.join()
	}
	return out
}
