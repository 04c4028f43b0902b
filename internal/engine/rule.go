package engine

import (
	"fmt"
	"strings"

	"github.com/agrisense/agrisense/internal/timeseries"
)

// Rule is one category's pure evaluation function over a daily record
// and its resolved indices. Implementations are stateless; missing
// inputs make the affected condition false, never an error.
type Rule interface {
	Category() Category

	// CanopyDependent rules are forced not-triggered when the day's
	// skip reason is not ok, and suppressed by gating.
	CanopyDependent() bool

	Evaluate(rec *timeseries.DailyRecord, res ResolvedIndices) RuleOutcome
}

// clauses accumulates the evidence strings that actually contributed
// to a decision, in evaluation order.
type clauses []string

func (c *clauses) addf(format string, args ...interface{}) {
	*c = append(*c, fmt.Sprintf(format, args...))
}

func (c clauses) join() string {
	return strings.Join(c, "; ")
}

// below reports v < threshold for a possibly missing value.
func below(v *float64, threshold float64) bool {
	return v != nil && *v < threshold
}

// above reports v > threshold for a possibly missing value.
func above(v *float64, threshold float64) bool {
	return v != nil && *v > threshold
}

// atLeast reports v >= threshold for a possibly missing value.
func atLeast(v *float64, threshold float64) bool {
	return v != nil && *v >= threshold
}
