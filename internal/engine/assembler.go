package engine

import (
	"strings"
	"time"
)

// AssembleDay combines QC, gating and rule outcomes into the two
// daily alert views. Raw records any triggered category on a QC-ok
// day; gated additionally requires gating to pass. Gating suppresses
// canopy-dependent categories only: a weather-only category that
// triggered raw survives into the gated view even on an ineligible
// day (outside the season there is no canopy to protect, but a
// precipitation deficit is still a precipitation deficit).
func AssembleDay(e *Evaluator, date time.Time, qc QCResult, gate GatingDecision, outcomes []RuleOutcome) DayAlert {
	day := DayAlert{
		Date:     date,
		QC:       qc,
		Gating:   gate,
		Outcomes: outcomes,
	}

	for _, out := range outcomes {
		if !out.Triggered || qc.Reason != SkipOK {
			continue
		}
		day.Raw = append(day.Raw, out.Category)
		if gate.OK || !e.canopyDependent(out.Category) {
			day.Gated = append(day.Gated, out.Category)
		}
	}

	if len(day.Gated) > 0 {
		names := make([]string, len(day.Gated))
		for i, c := range day.Gated {
			names[i] = string(c)
		}
		day.Label = strings.Join(names, "+")
	}
	return day
}
