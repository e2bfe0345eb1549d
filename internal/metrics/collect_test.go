package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/config"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(root string) config.Config {
	return config.Config{
		OutputRoot: filepath.Join(root, "output"),
		ReportDirs: []string{filepath.Join(root, "output", "reports")},
		StateDir:   filepath.Join(root, "state"),
	}.Resolve(root)
}

func TestCollect_ScansTreeAndReports(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)

	writeFile(t, filepath.Join(cfg.OutputRoot, "notes.md"), "clean narrative")
	writeFile(t, filepath.Join(cfg.OutputRoot, "draft.txt"), "dirty ── draft")
	writeFile(t, filepath.Join(cfg.OutputRoot, "image.png"), "binary, not scanned ──")
	writeFile(t, cfg.ReportDirs[0]+"/clean.html", "<html><svg></svg><svg></svg></html>")
	writeFile(t, cfg.ReportDirs[0]+"/dirty.html", "<html>┌──┐</html>")

	m := Collect(zap.NewNop(), cfg)

	if m.FilesScanned != 4 {
		t.Fatalf("FilesScanned = %d, want 4 (png excluded)", m.FilesScanned)
	}
	if m.TotalReports != 2 || m.CleanReports != 1 {
		t.Fatalf("reports: total=%d clean=%d", m.TotalReports, m.CleanReports)
	}
	if m.AsciiCharsAfter != 4 {
		t.Fatalf("AsciiCharsAfter = %d, want 4", m.AsciiCharsAfter)
	}
	if m.FilesWithAscii != 2 {
		t.Fatalf("FilesWithAscii = %d, want 2", m.FilesWithAscii)
	}
	if m.AvgVisualsPerReport != 1 {
		t.Fatalf("AvgVisualsPerReport = %v, want 1 (2 svg across 2 reports)", m.AvgVisualsPerReport)
	}
	if m.FailsafeRateKnown || m.ExtractionRateKnown {
		t.Fatalf("absent artifacts must stay unknown: %+v", m)
	}
	if m.FailsafeTrend != model.TrendUnknown {
		t.Fatalf("trend without baseline = %q, want unknown", m.FailsafeTrend)
	}
}

func TestCollect_CleanTreeFullElimination(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeFile(t, cfg.ReportDirs[0]+"/a.html", "<html>clean</html>")

	m := Collect(zap.NewNop(), cfg)
	if m.EliminationRate != 100 {
		t.Fatalf("EliminationRate = %v, want 100 for clean tree", m.EliminationRate)
	}
	if m.CleanReportRate() != 100 {
		t.Fatalf("CleanReportRate = %v", m.CleanReportRate())
	}
}

func TestCollect_ReadsOptionalArtifacts(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)

	for i := 1; i <= 4; i++ {
		writeFile(t, filepath.Join(cfg.OutputRoot, fmt.Sprintf("phase%d_output.json", i)),
			fmt.Sprintf(`{"metadata":{"total_duration_ms":%d}}`, i*1000))
	}
	writeFile(t, filepath.Join(cfg.OutputRoot, "consolidated", "consolidated-analysis-c1-20260830.json"),
		`{"analytics":{"visualizations_requested":10,"visualizations_rendered":9}}`)
	writeFile(t, filepath.Join(cfg.OutputRoot, "failsafe-triggers.json"),
		`{"triggers":1,"reports":50}`)

	m := Collect(zap.NewNop(), cfg)

	if len(m.StageDurations) != 4 || m.TotalDurationMS != 10000 {
		t.Fatalf("stage durations: %+v total=%d", m.StageDurations, m.TotalDurationMS)
	}
	if !m.ExtractionRateKnown || m.ExtractionSuccessRate != 90 {
		t.Fatalf("extraction rate: known=%v rate=%v", m.ExtractionRateKnown, m.ExtractionSuccessRate)
	}
	if !m.FailsafeRateKnown || m.FailsafeTriggerRate != 2 {
		t.Fatalf("failsafe rate: known=%v rate=%v", m.FailsafeRateKnown, m.FailsafeTriggerRate)
	}
}

func TestCollect_ExtractionRateCappedAt100(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeFile(t, filepath.Join(cfg.OutputRoot, "consolidated", "consolidated-analysis-c1.json"),
		`{"analytics":{"visualizations_requested":5,"visualizations_rendered":8}}`)

	m := Collect(zap.NewNop(), cfg)
	if m.ExtractionSuccessRate != 100 {
		t.Fatalf("rate = %v, want capped 100", m.ExtractionSuccessRate)
	}
}

func TestCollect_MalformedArtifactDegradesOnlyItself(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeFile(t, filepath.Join(cfg.OutputRoot, "failsafe-triggers.json"), "{not json")
	writeFile(t, filepath.Join(cfg.OutputRoot, "phase1_output.json"), `{"metadata":{"total_duration_ms":500}}`)

	m := Collect(zap.NewNop(), cfg)
	if m.FailsafeRateKnown {
		t.Fatal("malformed trigger file must leave rate unknown")
	}
	if len(m.StageDurations) == 0 || !m.StageDurations[0].Available {
		t.Fatalf("phase1 duration should still be read: %+v", m.StageDurations)
	}
}

func TestCollect_TrendAgainstBaseline(t *testing.T) {
	tests := []struct {
		name         string
		baselineRate float64
		currentRate  string // failsafe-triggers.json content
		want         model.Trend
	}{
		{"improving", 10, `{"triggers":1,"reports":100}`, model.TrendImproving},
		{"stable", 1, `{"triggers":1,"reports":100}`, model.TrendStable},
		{"degrading", 1, `{"triggers":10,"reports":100}`, model.TrendDegrading},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			cfg := testConfig(root)
			writeFile(t, filepath.Join(cfg.OutputRoot, "failsafe-triggers.json"), tt.currentRate)
			writeFile(t, filepath.Join(cfg.StateDir, "monitoring-baseline.json"), fmt.Sprintf(
				`{"week_number":2,"metrics":{"failsafe_trigger_rate":%v,"failsafe_rate_known":true}}`, tt.baselineRate))

			m := Collect(zap.NewNop(), cfg)
			if m.FailsafeTrend != tt.want {
				t.Fatalf("trend = %q, want %q", m.FailsafeTrend, tt.want)
			}
		})
	}
}
