package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/internal/engine"
)

// RunRecord is one persisted run header.
type RunRecord struct {
	ID             int64     `json:"id"`
	StrategyID     string    `json:"strategy_id"`
	ConfigHash     string    `json:"config_hash"`
	TotalDays      int       `json:"total_days"`
	QCOKDays       int       `json:"qc_ok_days"`
	GatingOKDays   int       `json:"gating_ok_days"`
	RawAlertDays   int       `json:"raw_alert_days"`
	GatedAlertDays int       `json:"gated_alert_days"`
	CreatedAt      time.Time `json:"created_at"`
}

// ErrNoRuns is returned when a strategy has no persisted runs yet.
var ErrNoRuns = errors.New("store: no runs found")

// SaveResult persists one engine result atomically: run header, day
// rows and events in a single transaction. Returns the new run id.
func (s *Store) SaveResult(ctx context.Context, snap *alertconfig.RunSnapshot, result *engine.Result) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO alerts.runs (
			strategy_id, config_hash, config_yaml,
			total_days, qc_ok_days, gating_ok_days,
			raw_alert_days, gated_alert_days
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		snap.StrategyID, snap.ConfigHash, snap.ConfigYAML,
		result.Summary.TotalDays, result.Summary.QCOKDays,
		result.Summary.GatingOKDays, result.Summary.RawAlertDays,
		result.Summary.GatedAlertDays,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("insert run failed: %w", err)
	}

	if err := s.insertDays(ctx, tx, runID, result.Days); err != nil {
		return 0, err
	}
	if err := s.insertEvents(ctx, tx, runID, result.Events); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit failed: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"run_id":      runID,
		"strategy_id": snap.StrategyID,
		"days":        len(result.Days),
		"events":      len(result.Events),
	}).Info("Persisted alert run")
	return runID, nil
}

func (s *Store) insertDays(ctx context.Context, tx pgx.Tx, runID int64, days []engine.DayAlert) error {
	batch := &pgx.Batch{}
	for i := range days {
		day := &days[i]
		reasons := make(map[string]string, len(day.Outcomes))
		for _, out := range day.Outcomes {
			if out.Triggered {
				reasons[string(out.Category)] = out.Reason
			}
		}
		reasonsJSON, err := json.Marshal(reasons)
		if err != nil {
			return fmt.Errorf("marshal reasons failed: %w", err)
		}
		batch.Queue(`
			INSERT INTO alerts.days (
				run_id, date, skip_reason, canopy_ready, gating_ok,
				raw_categories, gated_categories, label, reasons
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			runID, day.Date, string(day.QC.Reason), day.QC.CanopyReady,
			day.Gating.OK, categoryNames(day.Raw), categoryNames(day.Gated),
			day.Label, reasonsJSON)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert days failed: %w", err)
	}
	return nil
}

func (s *Store) insertEvents(ctx context.Context, tx pgx.Tx, runID int64, events []engine.Event) error {
	batch := &pgx.Batch{}
	for _, ev := range events {
		var peakDate *time.Time
		if !ev.PeakDate.IsZero() {
			d := ev.PeakDate
			peakDate = &d
		}
		batch.Queue(`
			INSERT INTO alerts.events (
				run_id, event_type, categories, start_date, end_date,
				duration_days, metric_name, peak_value, peak_date,
				reason_union, member_dates
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			runID, string(ev.Type), categoryNames(ev.Categories),
			ev.Start, ev.End, ev.DurationDays, ev.MetricName,
			ev.Peak, peakDate, ev.ReasonUnion, ev.MemberDates)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert events failed: %w", err)
	}
	return nil
}

// LatestRun returns the most recent run header for a strategy.
func (s *Store) LatestRun(ctx context.Context, strategyID string) (*RunRecord, error) {
	var r RunRecord
	err := s.pool.QueryRow(ctx, `
		SELECT id, strategy_id, config_hash, total_days, qc_ok_days,
		       gating_ok_days, raw_alert_days, gated_alert_days, created_at
		FROM alerts.runs
		WHERE strategy_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, strategyID,
	).Scan(&r.ID, &r.StrategyID, &r.ConfigHash, &r.TotalDays, &r.QCOKDays,
		&r.GatingOKDays, &r.RawAlertDays, &r.GatedAlertDays, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("query latest run failed: %w", err)
	}
	return &r, nil
}

func categoryNames(cats []engine.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}
