package store

import (
	"context"
	"fmt"
	"time"
)

// DayRow is one persisted gated-alert day.
type DayRow struct {
	Date            time.Time `json:"date"`
	SkipReason      string    `json:"skip_reason"`
	CanopyReady     bool      `json:"canopy_ready"`
	GatingOK        bool      `json:"gating_ok"`
	RawCategories   []string  `json:"raw_categories"`
	GatedCategories []string  `json:"gated_categories"`
	Label           string    `json:"label,omitempty"`
}

// EventRow is one persisted event.
type EventRow struct {
	ID           int64       `json:"id"`
	EventType    string      `json:"event_type"`
	Categories   []string    `json:"categories"`
	StartDate    time.Time   `json:"start_date"`
	EndDate      time.Time   `json:"end_date"`
	DurationDays int         `json:"duration_days"`
	MetricName   string      `json:"metric_name,omitempty"`
	PeakValue    *float64    `json:"peak_value,omitempty"`
	PeakDate     *time.Time  `json:"peak_date,omitempty"`
	ReasonUnion  []string    `json:"reason_union"`
	MemberDates  []time.Time `json:"member_dates"`
}

// AlertDays returns a run's day rows in date order, optionally only
// those carrying a gated alert.
func (s *Store) AlertDays(ctx context.Context, runID int64, gatedOnly bool) ([]DayRow, error) {
	query := `
		SELECT date, skip_reason, canopy_ready, gating_ok,
		       raw_categories, gated_categories, label
		FROM alerts.days
		WHERE run_id = $1`
	if gatedOnly {
		query += ` AND cardinality(gated_categories) > 0`
	}
	query += ` ORDER BY date`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query alert days failed: %w", err)
	}
	defer rows.Close()

	var out []DayRow
	for rows.Next() {
		var d DayRow
		if err := rows.Scan(&d.Date, &d.SkipReason, &d.CanopyReady,
			&d.GatingOK, &d.RawCategories, &d.GatedCategories, &d.Label); err != nil {
			return nil, fmt.Errorf("scan alert day failed: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert days failed: %w", err)
	}
	return out, nil
}

// Events returns a run's events ordered by start date.
func (s *Store) Events(ctx context.Context, runID int64) ([]EventRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_type, categories, start_date, end_date,
		       duration_days, metric_name, peak_value, peak_date,
		       reason_union, member_dates
		FROM alerts.events
		WHERE run_id = $1
		ORDER BY start_date, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query events failed: %w", err)
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var e EventRow
		if err := rows.Scan(&e.ID, &e.EventType, &e.Categories,
			&e.StartDate, &e.EndDate, &e.DurationDays, &e.MetricName,
			&e.PeakValue, &e.PeakDate, &e.ReasonUnion, &e.MemberDates); err != nil {
			return nil, fmt.Errorf("scan event failed: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events failed: %w", err)
	}
	return out, nil
}
