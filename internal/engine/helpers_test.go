package engine

import (
	"time"

	"github.com/agrisense/agrisense/internal/alertconfig"
	"github.com/agrisense/agrisense/internal/timeseries"
	"github.com/agrisense/agrisense/pkg/logger"
)

func fp(v float64) *float64 { return &v }

func nopLogger() *logger.Logger { return logger.NewNop() }

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testRemoteSensing() alertconfig.RemoteSensing {
	return alertconfig.RemoteSensing{
		WindowHalfDays: 3,
		WindowMode:     alertconfig.WindowSymmetric,
		MaxAgeDays:     5,
		CanopyNDVIMin:  0.35,
		CanopyEVIMin:   0.20,
	}
}

func testRules() alertconfig.Rules {
	return alertconfig.Rules{
		Categories: []string{
			"drought", "cold_stress", "heat_stress",
			"nutrient_or_pest", "waterlogging",
		},
		Drought: alertconfig.Drought{
			NDMIDry:    0.25,
			NDMIStrong: 0.15,
			MSIDry:     0.8,
			MSIStrong:  1.2,
			PrecipLow7: 20.0,
			EVICover:   0.20,
			NDVICrop:   0.35,
		},
		ColdStress: alertconfig.ColdStress{Tmean7: 5.0, RHMin: 75},
		HeatStress: alertconfig.HeatStress{Tmean7: 30.0, RHMax: 30, EVIStress: 0.2},
		Nutrient: alertconfig.Nutrient{
			NDRELow:   0.28,
			GNDVILow:  0.50,
			EVIStress: 0.2,
			RHHigh:    85,
		},
		Waterlogging: alertconfig.Waterlogging{NDMIWet: 0.60, PrecipHigh7: 40.0},
	}
}

func testEvaluator() *Evaluator {
	eval, err := NewEvaluator(testRules(), logger.NewNop())
	if err != nil {
		panic(err)
	}
	return eval
}

func allCategories() []Category {
	return []Category{
		CategoryDrought, CategoryColdStress, CategoryHeatStress,
		CategoryNutrient, CategoryWaterlogging,
	}
}

// healthyRecord is a benign in-season day: mild weather, full canopy,
// no stress signal in any index.
func healthyRecord(d time.Time) timeseries.DailyRecord {
	return timeseries.DailyRecord{
		Date:          d,
		TempMax:       fp(24),
		TempMin:       fp(14),
		Tmean:         fp(19),
		Tmean7:        fp(19),
		Precipitation: fp(4),
		Precip7:       fp(28),
		RelHumidity:   fp(60),
		NDVI:          fp(0.62),
		NDMI:          fp(0.38),
		NDRE:          fp(0.34),
		EVI:           fp(0.41),
		GNDVI:         fp(0.58),
		MSI:           fp(0.55),
	}
}

func resolvedFrom(rec timeseries.DailyRecord) ResolvedIndices {
	return ResolvedIndices{
		NDVI:  rec.NDVI,
		NDMI:  rec.NDMI,
		NDRE:  rec.NDRE,
		EVI:   rec.EVI,
		GNDVI: rec.GNDVI,
		MSI:   rec.MSI,
	}
}

// gatedDay builds a DayAlert where the given categories fire with the
// given per-category metric values, QC ok and gating open.
func gatedDay(d time.Time, metrics map[Category]*float64, reasons map[Category]string) DayAlert {
	day := DayAlert{
		Date:   d,
		QC:     QCResult{Reason: SkipOK, CanopyReady: true},
		Gating: GatingDecision{OK: true},
	}
	for _, c := range allCategories() {
		out := RuleOutcome{Category: c}
		if m, ok := metrics[c]; ok {
			out.Triggered = true
			out.Metric = m
			out.MetricName = string(c) + "_metric"
			out.Reason = reasons[c]
			day.Raw = append(day.Raw, c)
			day.Gated = append(day.Gated, c)
		}
		day.Outcomes = append(day.Outcomes, out)
	}
	return day
}
