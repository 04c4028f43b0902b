package engine

import (
	"fmt"

	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/internal/timeseries"
	"github.com/agrisense/agrisense/pkg/logger"
)

// Evaluator runs every configured category rule against one day.
// Rules are held in configuration declaration order, which fixes the
// outcome order, the composite label order and the merger's category
// iteration order.
type Evaluator struct {
	rules  []Rule
	logger *logger.Logger
}

// NewEvaluator builds the rule set from the configured category list.
func NewEvaluator(r alertconfig.Rules, log *logger.Logger) (*Evaluator, error) {
	rules := make([]Rule, 0, len(r.Categories))
	for _, name := range r.Categories {
		switch Category(name) {
		case CategoryDrought:
			rules = append(rules, NewDroughtRule(r.Drought))
		case CategoryColdStress:
			rules = append(rules, NewColdStressRule(r.ColdStress))
		case CategoryHeatStress:
			rules = append(rules, NewHeatStressRule(r.HeatStress))
		case CategoryNutrient:
			rules = append(rules, NewNutrientRule(r.Nutrient, r.Drought))
		case CategoryWaterlogging:
			rules = append(rules, NewWaterloggingRule(r.Waterlogging))
		default:
			return nil, fmt.Errorf("evaluator: unknown category %q", name)
		}
	}
	return &Evaluator{rules: rules, logger: log}, nil
}

// Categories returns the configured category order.
func (e *Evaluator) Categories() []Category {
	out := make([]Category, len(e.rules))
	for i, r := range e.rules {
		out[i] = r.Category()
	}
	return out
}

// Evaluate runs all rules for one day. Canopy-dependent rules are
// forced not-triggered when the skip reason is not ok, since the
// index support behind them is untrustworthy; their outcome still
// carries the category and metric name so downstream shapes stay
// uniform.
func (e *Evaluator) Evaluate(rec *timeseries.DailyRecord, res ResolvedIndices, skip SkipReason) []RuleOutcome {
	outcomes := make([]RuleOutcome, 0, len(e.rules))
	for _, r := range e.rules {
		if skip != SkipOK && r.CanopyDependent() {
			outcomes = append(outcomes, RuleOutcome{Category: r.Category()})
			continue
		}
		out := r.Evaluate(rec, res)
		if out.Triggered {
			e.logger.WithFields(map[string]interface{}{
				"date":     rec.Date.Format("2006-01-02"),
				"category": string(out.Category),
				"reason":   out.Reason,
			}).Debug("Rule triggered")
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// canopyDependent reports whether the configured rule for c needs
// trustworthy index support.
func (e *Evaluator) canopyDependent(c Category) bool {
	for _, r := range e.rules {
		if r.Category() == c {
			return r.CanopyDependent()
		}
	}
	return true
}
