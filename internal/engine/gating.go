package engine

import (
	"time"

	"github.com/agrisense/agrisense/internal/alertconfig"
)

// Gate decides per-day alert eligibility independent of rule
// outcomes: gating can suppress an eligible day but never fabricates
// a trigger. It carries the cumulative canopy-ready counter across an
// ascending-date scan, so a Gate serves exactly one run and must see
// every day of the data window in order.
type Gate struct {
	mode     string
	months   map[time.Month]bool
	obsMin   int
	resetOn  bool
	count    int
	inSeason bool
	started  bool
}

// NewGate builds a fresh gate for one pipeline run.
func NewGate(g alertconfig.Gating) *Gate {
	return &Gate{
		mode:    g.Mode,
		months:  g.MonthSet(),
		obsMin:  g.CanopyObsMin,
		resetOn: g.ResetOnSeasonStart,
	}
}

// Advance consumes the next day in strictly ascending order and
// returns its gating decision. The canopy counter includes the
// current day: a day whose own observation confirms canopy counts
// toward its own eligibility.
func (g *Gate) Advance(d time.Time, canopyReady bool) GatingDecision {
	inSeason := g.months[d.Month()]
	if g.resetOn && inSeason && g.started && !g.inSeason {
		g.count = 0
	}
	g.inSeason = inSeason
	g.started = true

	if canopyReady {
		g.count++
	}

	dec := GatingDecision{InSeason: inSeason, ObsCount: g.count}
	switch g.mode {
	case alertconfig.GatingOff:
		dec.OK = true
	case alertconfig.GatingMonthWindow:
		dec.OK = inSeason
	case alertconfig.GatingCanopyObs:
		dec.OK = g.count >= g.obsMin
	case alertconfig.GatingBoth:
		dec.OK = inSeason && g.count >= g.obsMin
	}
	return dec
}
