package engine

import (
	"testing"

	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/stretchr/testify/assert"
)

func TestGateModeOff(t *testing.T) {
	g := NewGate(alertconfig.Gating{Mode: alertconfig.GatingOff})

	dec := g.Advance(date("2024-01-15"), false)
	assert.True(t, dec.OK)
}

func TestGateMonthWindow(t *testing.T) {
	g := NewGate(alertconfig.Gating{
		Mode:   alertconfig.GatingMonthWindow,
		Months: []int{5, 6, 7, 8, 9},
	})

	assert.False(t, g.Advance(date("2024-04-30"), true).OK)
	assert.True(t, g.Advance(date("2024-05-01"), true).OK)
	assert.True(t, g.Advance(date("2024-09-30"), true).OK)
	assert.False(t, g.Advance(date("2024-10-01"), true).OK)
}

func TestGateCanopyObsCounterIncludesCurrentDay(t *testing.T) {
	g := NewGate(alertconfig.Gating{
		Mode:         alertconfig.GatingCanopyObs,
		CanopyObsMin: 3,
	})

	d := date("2024-06-01")
	assert.False(t, g.Advance(d, true).OK)                  // count 1
	assert.False(t, g.Advance(d.AddDate(0, 0, 1), true).OK) // count 2
	assert.False(t, g.Advance(d.AddDate(0, 0, 2), false).OK)
	dec := g.Advance(d.AddDate(0, 0, 3), true) // count 3
	assert.True(t, dec.OK)
	assert.Equal(t, 3, dec.ObsCount)

	// The counter never regresses: a later unready day stays eligible.
	assert.True(t, g.Advance(d.AddDate(0, 0, 4), false).OK)
}

func TestGateBothRequiresSeasonAndCounter(t *testing.T) {
	g := NewGate(alertconfig.Gating{
		Mode:         alertconfig.GatingBoth,
		Months:       []int{6},
		CanopyObsMin: 2,
	})

	// In season but counter short.
	assert.False(t, g.Advance(date("2024-06-01"), true).OK)
	// Counter reached and in season.
	assert.True(t, g.Advance(date("2024-06-02"), true).OK)
	// Counter holds but out of season.
	assert.False(t, g.Advance(date("2024-07-01"), true).OK)
}

func TestGateResetOnSeasonStart(t *testing.T) {
	g := NewGate(alertconfig.Gating{
		Mode:               alertconfig.GatingCanopyObs,
		Months:             []int{6},
		CanopyObsMin:       2,
		ResetOnSeasonStart: true,
	})

	// Counter accumulates before the season.
	g.Advance(date("2024-05-30"), true)
	g.Advance(date("2024-05-31"), true)

	// Entering the season month resets it.
	dec := g.Advance(date("2024-06-01"), true)
	assert.Equal(t, 1, dec.ObsCount)
	assert.False(t, dec.OK)
	assert.True(t, g.Advance(date("2024-06-02"), true).OK)
}

func TestGateNoResetWhenFlagOff(t *testing.T) {
	g := NewGate(alertconfig.Gating{
		Mode:         alertconfig.GatingCanopyObs,
		Months:       []int{6},
		CanopyObsMin: 2,
	})

	g.Advance(date("2024-05-30"), true)
	g.Advance(date("2024-05-31"), true)
	dec := g.Advance(date("2024-06-01"), false)
	assert.Equal(t, 2, dec.ObsCount)
	assert.True(t, dec.OK)
}
