package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/config"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/model"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	reports := filepath.Join(root, "output", "reports")
	if err := os.MkdirAll(reports, 0o755); err != nil {
		t.Fatal(err)
	}
	page := "<html><body><svg viewBox=\"0 0 10 10\"></svg></body></html>"
	if err := os.WriteFile(filepath.Join(reports, "acme.html"), []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}
	return config.Config{}.Resolve(root)
}

func TestRunFirstPeriodSynthesizesBaseline(t *testing.T) {
	cfg := testConfig(t)

	result, err := Run(zap.NewNop(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.WeekNumber != 1 {
		t.Errorf("WeekNumber = %d, want 1", result.WeekNumber)
	}
	if result.OverallHealth != model.HealthHealthy {
		t.Errorf("OverallHealth = %q, want healthy", result.OverallHealth)
	}
	if !result.Stable || result.StableWeeks != 1 {
		t.Errorf("Stable = %v StableWeeks = %d, want stable streak of 1", result.Stable, result.StableWeeks)
	}
	if result.FullyProven {
		t.Error("FullyProven after one week")
	}

	if _, err := os.Stat(filepath.Join(cfg.StateDir, "monitoring-baseline.json")); err != nil {
		t.Errorf("baseline not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.StateDir, "monitoring-week-1.json")); err != nil {
		t.Errorf("weekly snapshot not written: %v", err)
	}
}

func TestRunStreakReachesFullyProven(t *testing.T) {
	cfg := testConfig(t)

	var last model.WeeklyMonitoringResult
	for week := 1; week <= 4; week++ {
		result, err := Run(zap.NewNop(), cfg)
		if err != nil {
			t.Fatalf("week %d: %v", week, err)
		}
		if result.WeekNumber != week {
			t.Fatalf("week %d: WeekNumber = %d", week, result.WeekNumber)
		}
		if result.StableWeeks != week {
			t.Fatalf("week %d: StableWeeks = %d", week, result.StableWeeks)
		}
		last = result
	}
	if !last.FullyProven {
		t.Error("four consecutive stable weeks should be fully proven")
	}
}

func TestRunStreakResetsOnCriticalAlert(t *testing.T) {
	cfg := testConfig(t)

	for week := 1; week <= 2; week++ {
		if _, err := Run(zap.NewNop(), cfg); err != nil {
			t.Fatal(err)
		}
	}

	dirty := "<html><body>─│┐</body></html>"
	reportPath := filepath.Join(cfg.ReportDirs[0], "acme.html")
	if err := os.WriteFile(reportPath, []byte(dirty), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Run(zap.NewNop(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.OverallHealth != model.HealthCritical {
		t.Errorf("OverallHealth = %q, want critical", result.OverallHealth)
	}
	if result.Stable || result.StableWeeks != 0 {
		t.Errorf("Stable = %v StableWeeks = %d, want streak reset", result.Stable, result.StableWeeks)
	}
	found := false
	for _, a := range result.Alerts {
		if a.Metric == "forbidden_chars_after" && a.Severity == model.AlertCritical {
			found = true
		}
	}
	if !found {
		t.Error("missing critical forbidden_chars_after alert")
	}
}

func TestRunMalformedBaselineFails(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(cfg.StateDir, "monitoring-baseline.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Run(zap.NewNop(), cfg); err == nil {
		t.Error("expected error for malformed baseline")
	}
}

func TestRunLeavesExistingSnapshotUntouched(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		t.Fatal(err)
	}
	snapshot := filepath.Join(cfg.StateDir, "monitoring-week-1.json")
	original := []byte(`{"week_number":1}`)
	if err := os.WriteFile(snapshot, original, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Run(zap.NewNop(), cfg); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(snapshot)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(original) {
		t.Error("existing weekly snapshot was overwritten")
	}
}

func TestRunBaselineRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	written := model.MonitoringBaseline{
		Timestamp:   time.Now().UTC(),
		WeekNumber:  6,
		Stable:      true,
		StableWeeks: 2,
		Metrics:     model.AuditMetrics{FilesScanned: 1},
	}
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		t.Fatal(err)
	}
	data, err := json.MarshalIndent(written, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(cfg.StateDir, "monitoring-baseline.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	result, err := Run(zap.NewNop(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.WeekNumber != 7 {
		t.Errorf("WeekNumber = %d, want 7", result.WeekNumber)
	}
	if result.StableWeeks != 3 {
		t.Errorf("StableWeeks = %d, want streak continued to 3", result.StableWeeks)
	}
}

func TestComparisonStatus(t *testing.T) {
	tests := []struct {
		prefer   preference
		baseline float64
		current  float64
		want     model.ComparisonStatus
	}{
		{lowerIsBetter, 5, 3, model.ComparisonImproved},
		{lowerIsBetter, 5, 5, model.ComparisonStable},
		{lowerIsBetter, 5, 8, model.ComparisonDegraded},
		{higherIsBetter, 90, 95, model.ComparisonImproved},
		{higherIsBetter, 90, 90, model.ComparisonStable},
		{higherIsBetter, 90, 70, model.ComparisonDegraded},
		{closestToBaseline, 1000, 1050, model.ComparisonStable},
		{closestToBaseline, 1000, 1200, model.ComparisonDegraded},
		{closestToBaseline, 0, 0.05, model.ComparisonStable},
		{closestToBaseline, 0, 2, model.ComparisonDegraded},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			got := comparisonStatus(tt.prefer, tt.baseline, tt.current)
			if got != tt.want {
				t.Errorf("comparisonStatus(%v, %v, %v) = %q, want %q",
					tt.prefer, tt.baseline, tt.current, got, tt.want)
			}
		})
	}
}

func TestCompareCoversTrackedMetrics(t *testing.T) {
	baseline := model.AuditMetrics{
		AsciiCharsAfter:       2,
		FailsafeTriggerRate:   4,
		ExtractionSuccessRate: 90,
		TotalDurationMS:       1000,
		AvgVisualsPerReport:   3,
		TotalReports:          10,
		CleanReports:          8,
	}
	current := model.AuditMetrics{
		AsciiCharsAfter:       0,
		FailsafeTriggerRate:   2,
		ExtractionSuccessRate: 95,
		TotalDurationMS:       1020,
		AvgVisualsPerReport:   3.1,
		TotalReports:          10,
		CleanReports:          10,
	}

	comparisons := compare(baseline, current)
	if len(comparisons) != len(trackedMetrics) {
		t.Fatalf("got %d comparisons, want %d", len(comparisons), len(trackedMetrics))
	}
	byName := map[string]model.MetricComparison{}
	for _, c := range comparisons {
		byName[c.Metric] = c
	}
	for name, want := range map[string]model.ComparisonStatus{
		"forbidden_chars_after":   model.ComparisonImproved,
		"failsafe_trigger_rate":   model.ComparisonImproved,
		"extraction_success_rate": model.ComparisonImproved,
		"clean_report_rate":       model.ComparisonImproved,
		"total_stage_duration_ms": model.ComparisonStable,
		"avg_visuals_per_report":  model.ComparisonStable,
	} {
		got, ok := byName[name]
		if !ok {
			t.Errorf("missing comparison for %s", name)
			continue
		}
		if got.Status != want {
			t.Errorf("%s status = %q, want %q", name, got.Status, want)
		}
	}
}

func TestBuildAlertsThresholds(t *testing.T) {
	thresholds := config.Config{}.Resolve(t.TempDir()).Thresholds

	clean := model.AuditMetrics{
		FailsafeRateKnown:     true,
		FailsafeTriggerRate:   2,
		ExtractionRateKnown:   true,
		ExtractionSuccessRate: 99,
		TotalDurationMS:       1000,
	}
	if alerts := buildAlerts(clean, thresholds); len(alerts) != 0 {
		t.Errorf("clean metrics produced alerts: %v", alerts)
	}

	noisy := model.AuditMetrics{
		AsciiCharsAfter:       1,
		FailsafeRateKnown:     true,
		FailsafeTriggerRate:   10,
		ExtractionRateKnown:   true,
		ExtractionSuccessRate: 50,
		TotalDurationMS:       10 * 60 * 1000,
	}
	alerts := buildAlerts(noisy, thresholds)
	if len(alerts) != 4 {
		t.Fatalf("got %d alerts, want 4: %v", len(alerts), alerts)
	}
	if alerts[0].Severity != model.AlertCritical {
		t.Errorf("forbidden-char alert severity = %q, want critical", alerts[0].Severity)
	}

	unknown := model.AuditMetrics{
		FailsafeTriggerRate:   100,
		ExtractionSuccessRate: 0,
	}
	if alerts := buildAlerts(unknown, thresholds); len(alerts) != 0 {
		t.Errorf("unknown rates should not alert, got %v", alerts)
	}
}

func TestOverallHealth(t *testing.T) {
	if got := overallHealth(nil); got != model.HealthHealthy {
		t.Errorf("no alerts = %q, want healthy", got)
	}
	warn := []model.Alert{{Severity: model.AlertWarning}}
	if got := overallHealth(warn); got != model.HealthWarning {
		t.Errorf("warning alert = %q, want warning", got)
	}
	mixed := []model.Alert{{Severity: model.AlertWarning}, {Severity: model.AlertCritical}}
	if got := overallHealth(mixed); got != model.HealthCritical {
		t.Errorf("critical alert = %q, want critical", got)
	}
}
