package engine

import (
	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/internal/timeseries"
)

// WaterloggingRule is drought's inverse: a saturated canopy (NDMI
// above ndmi_wet) with heavy 7-day precipitation. Both conditions are
// required.
type WaterloggingRule struct {
	t alertconfig.Waterlogging
}

// NewWaterloggingRule creates a waterlogging rule with the given thresholds.
func NewWaterloggingRule(t alertconfig.Waterlogging) *WaterloggingRule {
	return &WaterloggingRule{t: t}
}

func (r *WaterloggingRule) Category() Category { return CategoryWaterlogging }

func (r *WaterloggingRule) CanopyDependent() bool { return true }

func (r *WaterloggingRule) Evaluate(rec *timeseries.DailyRecord, res ResolvedIndices) RuleOutcome {
	out := RuleOutcome{
		Category:   CategoryWaterlogging,
		MetricName: "precip_7d",
		Metric:     rec.Precip7,
	}

	if above(res.NDMI, r.t.NDMIWet) && above(rec.Precip7, r.t.PrecipHigh7) {
		var ev clauses
		ev.addf("ndmi %.3f > ndmi_wet %.3f", *res.NDMI, r.t.NDMIWet)
		ev.addf("precip_7d %.1fmm > precip_high7 %.1fmm", *rec.Precip7, r.t.PrecipHigh7)
		out.Triggered = true
		out.Reason = ev.join()
	}
	return out
}
