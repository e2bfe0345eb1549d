package metrics

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/model"
)

// Known pipeline artifact locations, relative to the output root. Each is
// optional; absence degrades exactly one derived metric.
const (
	phaseOutputPattern  = "phase%d_output.json"
	phaseCount          = 4
	consolidatedDir     = "consolidated"
	consolidatedPattern = "consolidated-analysis-*.json"
	failsafeFile        = "failsafe-triggers.json"

	baselineFile = "monitoring-baseline.json"

	// Trigger-rate movement inside this band counts as stable.
	trendTolerance = 0.5
)

type phaseOutput struct {
	Metadata struct {
		TotalDurationMS int64 `json:"total_duration_ms"`
	} `json:"metadata"`
}

func readStageDurations(logger *zap.Logger, outputRoot string, m *model.AuditMetrics) {
	for i := 1; i <= phaseCount; i++ {
		stage := fmt.Sprintf("phase%d", i)
		path := filepath.Join(outputRoot, fmt.Sprintf(phaseOutputPattern, i))

		var out phaseOutput
		if err := readJSON(path, &out); err != nil {
			logger.Warn("stage duration unavailable", zap.String("stage", stage), zap.Error(err))
			m.StageDurations = append(m.StageDurations, model.StageDuration{Stage: stage})
			continue
		}
		m.StageDurations = append(m.StageDurations, model.StageDuration{
			Stage:      stage,
			DurationMS: out.Metadata.TotalDurationMS,
			Available:  true,
		})
		m.TotalDurationMS += out.Metadata.TotalDurationMS
	}
}

type consolidatedAnalysis struct {
	Analytics struct {
		VisualizationsRequested int `json:"visualizations_requested"`
		VisualizationsRendered  int `json:"visualizations_rendered"`
	} `json:"analytics"`
}

func readConsolidated(logger *zap.Logger, outputRoot string, m *model.AuditMetrics) {
	pattern := filepath.Join(outputRoot, consolidatedDir, consolidatedPattern)
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		logger.Warn("consolidated analysis unavailable", zap.String("pattern", pattern))
		return
	}
	sort.Strings(matches)
	latest := matches[len(matches)-1]

	var ca consolidatedAnalysis
	if err := readJSON(latest, &ca); err != nil {
		logger.Warn("consolidated analysis unreadable", zap.String("path", latest), zap.Error(err))
		return
	}
	if ca.Analytics.VisualizationsRequested <= 0 {
		logger.Warn("consolidated analysis has no visualization counts", zap.String("path", latest))
		return
	}

	rate := float64(ca.Analytics.VisualizationsRendered) / float64(ca.Analytics.VisualizationsRequested) * 100
	m.ExtractionSuccessRate = math.Min(rate, 100)
	m.ExtractionRateKnown = true
}

type failsafeTriggers struct {
	Triggers int `json:"triggers"`
	Reports  int `json:"reports"`
}

func readFailsafeTriggers(logger *zap.Logger, outputRoot string, m *model.AuditMetrics) {
	path := filepath.Join(outputRoot, failsafeFile)

	var ft failsafeTriggers
	if err := readJSON(path, &ft); err != nil {
		logger.Warn("failsafe trigger counts unavailable", zap.String("path", path), zap.Error(err))
		return
	}
	m.FailsafeTriggers = ft.Triggers
	if ft.Reports > 0 {
		m.FailsafeTriggerRate = float64(ft.Triggers) / float64(ft.Reports) * 100
	}
	m.FailsafeRateKnown = true
}

// compareBaseline labels the failsafe trigger-rate trend against the
// persisted monitoring baseline, if one exists.
func compareBaseline(logger *zap.Logger, stateDir string, m model.AuditMetrics) model.Trend {
	path := filepath.Join(stateDir, baselineFile)

	var baseline model.MonitoringBaseline
	if err := readJSON(path, &baseline); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("monitoring baseline unreadable", zap.String("path", path), zap.Error(err))
		}
		return model.TrendUnknown
	}
	if !m.FailsafeRateKnown || !baseline.Metrics.FailsafeRateKnown {
		return model.TrendUnknown
	}

	delta := m.FailsafeTriggerRate - baseline.Metrics.FailsafeTriggerRate
	switch {
	case math.Abs(delta) <= trendTolerance:
		return model.TrendStable
	case delta < 0:
		return model.TrendImproving
	default:
		return model.TrendDegrading
	}
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
