package engine

import (
	"context"
	"fmt"

	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/internal/timeseries"
	"github.com/agrisense/agrisense/pkg/logger"
)

// Engine is one configured alert pipeline: resolver, QC, gating,
// rules and merger. Build one per run; the gating counter and merger
// state are not reusable across runs.
type Engine struct {
	cfg       *alertconfig.Config
	logger    *logger.Logger
	resolver  *Resolver
	qc        *Classifier
	evaluator *Evaluator
}

// New wires an engine from a validated configuration.
func New(cfg *alertconfig.Config, log *logger.Logger) (*Engine, error) {
	eval, err := NewEvaluator(cfg.Rules, log)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       cfg,
		logger:    log,
		resolver:  NewResolver(cfg.RemoteSensing),
		qc:        NewClassifier(cfg.RemoteSensing),
		evaluator: eval,
	}, nil
}

// Run executes one full pass: a single ascending scan from the data
// start (so the gating counter warms up before the report window)
// through the report end, then event merging over the gated stream.
// Day records are emitted for the report window only.
func (e *Engine) Run(ctx context.Context, series *timeseries.Series) (*Result, error) {
	dataStart, dataEnd := e.cfg.Period.DataRange()
	reportStart, reportEnd := e.cfg.Period.ReportRange()

	if series.Start.After(dataStart) || series.End.Before(dataEnd) {
		return nil, fmt.Errorf("engine: series %s..%s does not cover data range %s..%s",
			series.Start.Format(dateLayout), series.End.Format(dateLayout),
			dataStart.Format(dateLayout), dataEnd.Format(dateLayout))
	}
	if reportStart.Before(dataStart) || reportEnd.After(dataEnd) {
		return nil, fmt.Errorf("engine: report range %s..%s outside data range %s..%s",
			reportStart.Format(dateLayout), reportEnd.Format(dateLayout),
			dataStart.Format(dateLayout), dataEnd.Format(dateLayout))
	}

	gate := NewGate(e.cfg.Gating)
	result := &Result{Summary: newSummary()}

	for d := dataStart; !d.After(reportEnd); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sup, res := e.resolver.Resolve(series, d)
		qc := e.qc.Classify(sup, res)
		gating := gate.Advance(d, qc.CanopyReady)

		if d.Before(reportStart) {
			continue
		}

		rec := series.At(d)
		outcomes := e.evaluator.Evaluate(rec, res, qc.Reason)
		day := AssembleDay(e.evaluator, d, qc, gating, outcomes)
		result.Days = append(result.Days, day)
		countDay(&result.Summary, &day)
	}

	merger := NewMerger(e.cfg.Merge.GapDays, e.evaluator.Categories())
	events, err := merger.Merge(result.Days)
	if err != nil {
		return nil, err
	}
	result.Events = events
	for _, ev := range events {
		result.Summary.EventCounts[ev.Type]++
	}

	e.logger.WithFields(map[string]interface{}{
		"total_days":   result.Summary.TotalDays,
		"qc_ok_days":   result.Summary.QCOKDays,
		"gated_days":   result.Summary.GatedAlertDays,
		"event_count":  len(events),
		"report_start": reportStart.Format(dateLayout),
		"report_end":   reportEnd.Format(dateLayout),
	}).Info("Alert engine run complete")

	return result, nil
}

const dateLayout = "2006-01-02"

func newSummary() Summary {
	return Summary{
		SkipCounts:  make(map[SkipReason]int),
		RawCounts:   make(map[Category]int),
		GatedCounts: make(map[Category]int),
		EventCounts: make(map[Category]int),
	}
}

func countDay(s *Summary, day *DayAlert) {
	s.TotalDays++
	s.SkipCounts[day.QC.Reason]++
	if day.QC.Reason == SkipOK {
		s.QCOKDays++
	}
	if day.Gating.OK {
		s.GatingOKDays++
	}
	if len(day.Raw) > 0 {
		s.RawAlertDays++
	}
	if len(day.Gated) > 0 {
		s.GatedAlertDays++
	}
	for _, c := range day.Raw {
		s.RawCounts[c]++
	}
	for _, c := range day.Gated {
		s.GatedCounts[c]++
	}
}
