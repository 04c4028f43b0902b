package engine

import (
	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/internal/timeseries"
)

// HeatStressRule fires when the trailing 7-day mean temperature rises
// above the heat threshold under dry air, confirmed by a depressed
// EVI. The confirmation requires an in-window EVI observation: a
// missing index leaves the rule not-triggered.
type HeatStressRule struct {
	t alertconfig.HeatStress
}

// NewHeatStressRule creates a heat-stress rule with the given thresholds.
func NewHeatStressRule(t alertconfig.HeatStress) *HeatStressRule {
	return &HeatStressRule{t: t}
}

func (r *HeatStressRule) Category() Category { return CategoryHeatStress }

func (r *HeatStressRule) CanopyDependent() bool { return true }

func (r *HeatStressRule) Evaluate(rec *timeseries.DailyRecord, res ResolvedIndices) RuleOutcome {
	out := RuleOutcome{
		Category:   CategoryHeatStress,
		MetricName: "tmean_7d",
		Metric:     rec.Tmean7,
	}

	if !above(rec.Tmean7, r.t.Tmean7) || !below(rec.RelHumidity, r.t.RHMax) {
		return out
	}
	if !below(res.EVI, r.t.EVIStress) {
		return out
	}

	var ev clauses
	ev.addf("tmean_7d %.1f°C > heat_tmean7 %.1f°C", *rec.Tmean7, r.t.Tmean7)
	ev.addf("rh %.0f%% < rh_max %.0f%%", *rec.RelHumidity, r.t.RHMax)
	ev.addf("evi %.3f < evi_stress %.3f", *res.EVI, r.t.EVIStress)
	out.Triggered = true
	out.Reason = ev.join()
	return out
}
