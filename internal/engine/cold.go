package engine

import (
	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/internal/timeseries"
)

// ColdStressRule fires when the trailing 7-day mean temperature drops
// below the cold threshold while humidity stays elevated (frost and
// mold conditions). Both conditions are required.
type ColdStressRule struct {
	t alertconfig.ColdStress
}

// NewColdStressRule creates a cold-stress rule with the given thresholds.
func NewColdStressRule(t alertconfig.ColdStress) *ColdStressRule {
	return &ColdStressRule{t: t}
}

func (r *ColdStressRule) Category() Category { return CategoryColdStress }

func (r *ColdStressRule) CanopyDependent() bool { return true }

func (r *ColdStressRule) Evaluate(rec *timeseries.DailyRecord, res ResolvedIndices) RuleOutcome {
	out := RuleOutcome{
		Category:   CategoryColdStress,
		MetricName: "tmean_7d",
		Metric:     rec.Tmean7,
	}

	if below(rec.Tmean7, r.t.Tmean7) && above(rec.RelHumidity, r.t.RHMin) {
		var ev clauses
		ev.addf("tmean_7d %.1f°C < cold_tmean7 %.1f°C", *rec.Tmean7, r.t.Tmean7)
		ev.addf("rh %.0f%% > rh_min %.0f%%", *rec.RelHumidity, r.t.RHMin)
		out.Triggered = true
		out.Reason = ev.join()
	}
	return out
}
