package engine

import (
	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/internal/timeseries"
)

// NutrientRule flags nutrient deficiency or pest pressure from
// red-edge, green and enhanced vegetation index deficits. Any single
// deficit is sufficient; each contributes its own clause. Elevated
// humidity adds a corroborating clause (fungal pressure) but never
// triggers alone. Moisture indices at drought levels veto the
// category so moisture stress is not misread as nutrient stress.
type NutrientRule struct {
	t alertconfig.Nutrient

	// drought soft thresholds, for the moisture veto
	ndmiDry float64
	msiDry  float64
}

// NewNutrientRule creates a nutrient rule. The drought thresholds
// feed the moisture veto.
func NewNutrientRule(t alertconfig.Nutrient, d alertconfig.Drought) *NutrientRule {
	return &NutrientRule{t: t, ndmiDry: d.NDMIDry, msiDry: d.MSIDry}
}

func (r *NutrientRule) Category() Category { return CategoryNutrient }

func (r *NutrientRule) CanopyDependent() bool { return true }

func (r *NutrientRule) Evaluate(rec *timeseries.DailyRecord, res ResolvedIndices) RuleOutcome {
	out := RuleOutcome{
		Category:   CategoryNutrient,
		MetricName: "ndre",
		Metric:     res.NDRE,
	}

	if below(res.NDMI, r.ndmiDry) || above(res.MSI, r.msiDry) {
		return out
	}

	var ev clauses
	if below(res.NDRE, r.t.NDRELow) {
		ev.addf("ndre %.3f < ndre_low %.3f", *res.NDRE, r.t.NDRELow)
	}
	if below(res.GNDVI, r.t.GNDVILow) {
		ev.addf("gndvi %.3f < gndvi_low %.3f", *res.GNDVI, r.t.GNDVILow)
	}
	if below(res.EVI, r.t.EVIStress) {
		ev.addf("evi %.3f < evi_stress %.3f", *res.EVI, r.t.EVIStress)
	}
	if len(ev) == 0 {
		return out
	}

	if above(rec.RelHumidity, r.t.RHHigh) {
		ev.addf("rh %.0f%% > rh_high %.0f%%", *rec.RelHumidity, r.t.RHHigh)
	}
	out.Triggered = true
	out.Reason = ev.join()
	return out
}
