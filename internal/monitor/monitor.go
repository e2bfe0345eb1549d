// Package monitor persists a metrics baseline across periodic runs, computes
// week-over-week trend deltas, raises alerts, and tracks the consecutive
// stable-weeks streak.
//
// The baseline file is read then rewritten as two separate, unlocked
// filesystem operations. Concurrent monitor invocations would race; the
// design assumes exactly one scheduled invocation per period.
package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/config"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/metrics"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/model"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/safefile"
)

const (
	baselineFile      = "monitoring-baseline.json"
	weeklyFilePattern = "monitoring-week-%d.json"

	// A streak of this many stable weeks counts as fully proven.
	provenWeeks = 4

	// Stability requires the trigger rate at or under this percentage.
	stableTriggerRate = 1.0

	// Band for closest-to-baseline metrics.
	closeTolerance = 0.1
)

// preference states how a tracked metric should move against its baseline.
type preference int

const (
	lowerIsBetter preference = iota
	higherIsBetter
	closestToBaseline
)

// trackedMetric is one of the six metrics compared every period.
type trackedMetric struct {
	name   string
	prefer preference
	value  func(model.AuditMetrics) float64
}

var trackedMetrics = []trackedMetric{
	{"forbidden_chars_after", lowerIsBetter, func(m model.AuditMetrics) float64 { return float64(m.AsciiCharsAfter) }},
	{"failsafe_trigger_rate", lowerIsBetter, func(m model.AuditMetrics) float64 { return m.FailsafeTriggerRate }},
	{"extraction_success_rate", higherIsBetter, func(m model.AuditMetrics) float64 { return m.ExtractionSuccessRate }},
	{"clean_report_rate", higherIsBetter, func(m model.AuditMetrics) float64 { return m.CleanReportRate() }},
	{"total_stage_duration_ms", closestToBaseline, func(m model.AuditMetrics) float64 { return float64(m.TotalDurationMS) }},
	{"avg_visuals_per_report", closestToBaseline, func(m model.AuditMetrics) float64 { return m.AvgVisualsPerReport }},
}

// Run performs one monitoring period: load (or synthesize) the baseline,
// collect current metrics, compare, alert, update the streak, and persist
// both the overwritten baseline and the write-once weekly snapshot.
func Run(logger *zap.Logger, cfg config.Config) (model.WeeklyMonitoringResult, error) {
	baseline, err := loadBaseline(cfg.StateDir)
	if err != nil {
		return model.WeeklyMonitoringResult{}, err
	}

	current := metrics.Collect(logger, cfg)
	week := baseline.WeekNumber + 1

	result := model.WeeklyMonitoringResult{
		WeekNumber:  week,
		GeneratedAt: time.Now().UTC(),
		Metrics:     current,
		Comparisons: compare(baseline.Metrics, current),
		Alerts:      buildAlerts(current, cfg.Thresholds),
	}
	result.OverallHealth = overallHealth(result.Alerts)

	result.Stable = isStable(result, current)
	if result.Stable {
		result.StableWeeks = baseline.StableWeeks + 1
	} else {
		result.StableWeeks = 0
	}
	result.FullyProven = result.StableWeeks >= provenWeeks

	logger.Info("monitoring period evaluated",
		zap.Int("week", week),
		zap.String("health", string(result.OverallHealth)),
		zap.Int("alerts", len(result.Alerts)),
		zap.Int("stable_weeks", result.StableWeeks))

	if err := persist(logger, cfg.StateDir, baseline, result); err != nil {
		return model.WeeklyMonitoringResult{}, err
	}
	return result, nil
}

// loadBaseline reads the persisted baseline, synthesizing an initial one
// (week 0, not yet stable) when none exists yet.
func loadBaseline(stateDir string) (model.MonitoringBaseline, error) {
	path := filepath.Join(stateDir, baselineFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.MonitoringBaseline{}, nil
		}
		return model.MonitoringBaseline{}, fmt.Errorf("read baseline: %w", err)
	}
	var baseline model.MonitoringBaseline
	if err := json.Unmarshal(data, &baseline); err != nil {
		return model.MonitoringBaseline{}, fmt.Errorf("parse baseline %s: %w", path, err)
	}
	return baseline, nil
}

func compare(baseline, current model.AuditMetrics) []model.MetricComparison {
	out := make([]model.MetricComparison, 0, len(trackedMetrics))
	for _, tm := range trackedMetrics {
		b := tm.value(baseline)
		c := tm.value(current)
		out = append(out, model.MetricComparison{
			Metric:   tm.name,
			Baseline: b,
			Current:  c,
			Delta:    c - b,
			Status:   comparisonStatus(tm.prefer, b, c),
		})
	}
	return out
}

func comparisonStatus(prefer preference, baseline, current float64) model.ComparisonStatus {
	delta := current - baseline
	switch prefer {
	case lowerIsBetter:
		switch {
		case delta < 0:
			return model.ComparisonImproved
		case delta == 0:
			return model.ComparisonStable
		default:
			return model.ComparisonDegraded
		}
	case higherIsBetter:
		switch {
		case delta > 0:
			return model.ComparisonImproved
		case delta == 0:
			return model.ComparisonStable
		default:
			return model.ComparisonDegraded
		}
	default: // closestToBaseline
		base := math.Abs(baseline)
		band := closeTolerance * math.Max(base, 1)
		if math.Abs(delta) <= band {
			return model.ComparisonStable
		}
		return model.ComparisonDegraded
	}
}

// buildAlerts applies the fixed hard thresholds. Any forbidden character in
// delivered output is always critical.
func buildAlerts(m model.AuditMetrics, t config.Thresholds) []model.Alert {
	var alerts []model.Alert

	if m.AsciiCharsAfter > 0 {
		alerts = append(alerts, model.Alert{
			Severity: model.AlertCritical,
			Metric:   "forbidden_chars_after",
			Message:  fmt.Sprintf("%d forbidden character(s) present in delivered reports", m.AsciiCharsAfter),
		})
	}
	if m.FailsafeRateKnown && m.FailsafeTriggerRate > *t.FailsafeWarnRate {
		alerts = append(alerts, model.Alert{
			Severity: model.AlertWarning,
			Metric:   "failsafe_trigger_rate",
			Message:  fmt.Sprintf("failsafe trigger rate %.2f%% exceeds %.0f%%", m.FailsafeTriggerRate, *t.FailsafeWarnRate),
		})
	}
	if m.ExtractionRateKnown && m.ExtractionSuccessRate < *t.ExtractionWarnRate {
		alerts = append(alerts, model.Alert{
			Severity: model.AlertWarning,
			Metric:   "extraction_success_rate",
			Message:  fmt.Sprintf("extraction success rate %.1f%% below %.0f%%", m.ExtractionSuccessRate, *t.ExtractionWarnRate),
		})
	}
	if m.TotalDurationMS > *t.StageDurationWarnMS {
		alerts = append(alerts, model.Alert{
			Severity: model.AlertWarning,
			Metric:   "total_stage_duration_ms",
			Message:  fmt.Sprintf("pipeline stages took %dms, threshold %dms", m.TotalDurationMS, *t.StageDurationWarnMS),
		})
	}
	return alerts
}

func overallHealth(alerts []model.Alert) model.Health {
	health := model.HealthHealthy
	for _, a := range alerts {
		if a.Severity == model.AlertCritical {
			return model.HealthCritical
		}
		health = model.HealthWarning
	}
	return health
}

// isStable applies the streak criteria: zero alerts, zero forbidden
// characters, and a trigger rate at or under 1%.
func isStable(result model.WeeklyMonitoringResult, m model.AuditMetrics) bool {
	return len(result.Alerts) == 0 &&
		m.AsciiCharsAfter == 0 &&
		m.FailsafeTriggerRate <= stableTriggerRate
}

// persist overwrites the baseline and writes the immutable weekly snapshot.
// An already-present snapshot for this week is left untouched.
func persist(logger *zap.Logger, stateDir string, prior model.MonitoringBaseline, result model.WeeklyMonitoringResult) error {
	dir, err := safefile.EnsureDir(stateDir, 0o700)
	if err != nil {
		return fmt.Errorf("ensure state dir: %w", err)
	}

	baseline := model.MonitoringBaseline{
		Timestamp:   result.GeneratedAt,
		Metrics:     result.Metrics,
		WeekNumber:  result.WeekNumber,
		Stable:      result.Stable,
		StableWeeks: result.StableWeeks,
	}
	baselineData, err := json.MarshalIndent(baseline, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal baseline: %w", err)
	}
	if err := safefile.WriteFileAtomic(filepath.Join(dir, baselineFile), baselineData, 0o600); err != nil {
		return fmt.Errorf("write baseline: %w", err)
	}

	weeklyData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal weekly snapshot: %w", err)
	}
	weeklyPath := filepath.Join(dir, fmt.Sprintf(weeklyFilePattern, result.WeekNumber))
	if err := safefile.WriteFileOnce(weeklyPath, weeklyData, 0o600); err != nil {
		if errors.Is(err, safefile.ErrExists) {
			logger.Warn("weekly snapshot already exists, leaving it untouched",
				zap.String("path", weeklyPath))
			return nil
		}
		return fmt.Errorf("write weekly snapshot: %w", err)
	}
	return nil
}
