package engine

import (
	"fmt"
	"sort"
	"time"
)

// lowerIsExtreme maps each category's peak direction: true when a
// lower metric value is more extreme (drought moisture, cold
// temperature, nutrient red-edge), false when higher is (heat
// temperature, waterlogging precipitation).
var lowerIsExtreme = map[Category]bool{
	CategoryDrought:      true,
	CategoryColdStress:   true,
	CategoryHeatStress:   false,
	CategoryNutrient:     true,
	CategoryWaterlogging: false,
}

// Merger folds the gated daily alert stream into events: one
// ascending pass per category fusing runs within the gap tolerance,
// then a cross-category pass fusing overlapping or near-adjacent
// spans into composite events. gapDays counts the missing days
// tolerated inside a run; 0 merges only strictly consecutive dates.
type Merger struct {
	gapDays int
	order   []Category
}

// NewMerger creates a merger for one run. order fixes the category
// iteration and tie-break order; pass the configured declaration
// order.
func NewMerger(gapDays int, order []Category) *Merger {
	return &Merger{gapDays: gapDays, order: order}
}

// Merge builds all events from the assembled day stream. Days must
// arrive in strictly ascending date order; a duplicate or
// out-of-order date is a fatal precondition violation naming the
// offending date.
func (m *Merger) Merge(days []DayAlert) ([]Event, error) {
	for i := 1; i < len(days); i++ {
		if !days[i].Date.After(days[i-1].Date) {
			return nil, &OrderingError{Date: days[i].Date, Prev: days[i-1].Date}
		}
	}

	var singles []Event
	for _, cat := range m.order {
		singles = append(singles, m.mergeCategory(cat, days)...)
	}

	return m.mergeComposite(singles), nil
}

// mergeCategory runs the idle/open state machine for one category.
func (m *Merger) mergeCategory(cat Category, days []DayAlert) []Event {
	var events []Event
	var open *Event

	for i := range days {
		day := &days[i]
		if !hasCategory(day.Gated, cat) {
			continue
		}
		out := day.Outcome(cat)
		if out == nil {
			continue
		}

		if open != nil && m.withinGap(open.End, day.Date) {
			open.End = day.Date
			open.MemberDates = append(open.MemberDates, day.Date)
			unionReason(open, out.Reason)
			updatePeak(open, cat, day.Date, out)
			continue
		}
		if open != nil {
			events = append(events, m.close(*open))
		}
		ev := Event{
			Type:        cat,
			Categories:  []Category{cat},
			Start:       day.Date,
			End:         day.Date,
			MemberDates: []time.Time{day.Date},
			MetricName:  out.MetricName,
		}
		unionReason(&ev, out.Reason)
		updatePeak(&ev, cat, day.Date, out)
		open = &ev
	}
	if open != nil {
		events = append(events, m.close(*open))
	}
	return events
}

// mergeComposite chains single-category events whose spans overlap or
// sit within the gap tolerance, and fuses chains spanning at least
// two distinct categories into one composite event. The pass is
// idempotent: its output contains no two events still within reach of
// each other.
func (m *Merger) mergeComposite(singles []Event) []Event {
	if len(singles) == 0 {
		return nil
	}
	sorted := make([]Event, len(singles))
	copy(sorted, singles)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return m.orderIndex(sorted[i].Type) < m.orderIndex(sorted[j].Type)
	})

	var out []Event
	group := []Event{sorted[0]}
	groupEnd := sorted[0].End
	flush := func() {
		if len(group) == 1 {
			out = append(out, group[0])
		} else {
			out = append(out, m.composite(group))
		}
	}
	for _, ev := range sorted[1:] {
		if m.withinGap(groupEnd, ev.Start) || !ev.Start.After(groupEnd) {
			group = append(group, ev)
			if ev.End.After(groupEnd) {
				groupEnd = ev.End
			}
			continue
		}
		flush()
		group = []Event{ev}
		groupEnd = ev.End
	}
	flush()
	return out
}

// composite fuses a chained group into one composite event. The
// reason union prefixes each entry with its source category; member
// dates are the sorted union of all contributing dates. Peak,
// MetricName and PeakDate stay zero: members track different metrics
// (ndmi vs tmean_7d vs precip_7d), so no single peak is meaningful.
// The category-prefixed reason union still cites the contributing
// values per member.
func (m *Merger) composite(group []Event) Event {
	ev := Event{
		Type:  EventComposite,
		Start: group[0].Start,
		End:   group[0].End,
	}
	seenCat := make(map[Category]bool)
	seenDate := make(map[time.Time]bool)
	seenReason := make(map[string]bool)
	for _, g := range group {
		if g.Start.Before(ev.Start) {
			ev.Start = g.Start
		}
		if g.End.After(ev.End) {
			ev.End = g.End
		}
		seenCat[g.Type] = true
		for _, d := range g.MemberDates {
			if !seenDate[d] {
				seenDate[d] = true
				ev.MemberDates = append(ev.MemberDates, d)
			}
		}
		for _, r := range g.ReasonUnion {
			entry := fmt.Sprintf("%s: %s", g.Type, r)
			if !seenReason[entry] {
				seenReason[entry] = true
				ev.ReasonUnion = append(ev.ReasonUnion, entry)
			}
		}
	}
	for _, c := range m.order {
		if seenCat[c] {
			ev.Categories = append(ev.Categories, c)
		}
	}
	sort.Slice(ev.MemberDates, func(i, j int) bool {
		return ev.MemberDates[i].Before(ev.MemberDates[j])
	})
	ev.DurationDays = daysBetween(ev.Start, ev.End) + 1
	return ev
}

func (m *Merger) close(ev Event) Event {
	ev.DurationDays = daysBetween(ev.Start, ev.End) + 1
	return ev
}

// withinGap reports whether a trigger on next may join a run ending
// at end: the count of skipped days between them is at most gapDays.
func (m *Merger) withinGap(end, next time.Time) bool {
	return daysBetween(end, next) <= m.gapDays+1
}

func (m *Merger) orderIndex(c Category) int {
	for i, o := range m.order {
		if o == c {
			return i
		}
	}
	return len(m.order)
}

func unionReason(ev *Event, reason string) {
	if reason == "" {
		return
	}
	for _, r := range ev.ReasonUnion {
		if r == reason {
			return
		}
	}
	ev.ReasonUnion = append(ev.ReasonUnion, reason)
}

func updatePeak(ev *Event, cat Category, date time.Time, out *RuleOutcome) {
	if out == nil || out.Metric == nil {
		return
	}
	v := *out.Metric
	if ev.Peak == nil ||
		(lowerIsExtreme[cat] && v < *ev.Peak) ||
		(!lowerIsExtreme[cat] && v > *ev.Peak) {
		p := v
		ev.Peak = &p
		ev.PeakDate = date
	}
}

func hasCategory(set []Category, c Category) bool {
	for _, s := range set {
		if s == c {
			return true
		}
	}
	return false
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
