// Package report persists and renders the consolidated audit report.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/dashboard"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/model"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/safefile"
)

// Paths returns the JSON and markdown artifact paths for a run inside dir.
func Paths(dir, runID string) (jsonPath, markdownPath string) {
	base := "audit-" + runID
	return filepath.Join(dir, base+".json"), filepath.Join(dir, base+".md")
}

// Write persists both artifact forms of the report under dir and returns
// their paths.
func Write(dir string, r model.ConsolidatedReport) (jsonPath, markdownPath string, err error) {
	abs, err := safefile.EnsureDir(dir, 0o700)
	if err != nil {
		return "", "", fmt.Errorf("ensure audit dir: %w", err)
	}
	jsonPath, markdownPath = Paths(abs, r.RunID)
	if err := WriteJSON(jsonPath, r); err != nil {
		return "", "", err
	}
	if err := WriteMarkdown(markdownPath, r); err != nil {
		return "", "", err
	}
	return jsonPath, markdownPath, nil
}

func WriteJSON(path string, r model.ConsolidatedReport) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal consolidated report: %w", err)
	}
	if err := safefile.WriteFileAtomic(path, b, 0o600); err != nil {
		return fmt.Errorf("write report json: %w", err)
	}
	return nil
}

func WriteMarkdown(path string, r model.ConsolidatedReport) error {
	if err := safefile.WriteFileAtomic(path, []byte(RenderMarkdown(r)), 0o600); err != nil {
		return fmt.Errorf("write report markdown: %w", err)
	}
	return nil
}

// RenderMarkdown renders the full run report: metadata, per-phase checklist
// results, collected metrics, then the executive summary.
func RenderMarkdown(r model.ConsolidatedReport) string {
	var b bytes.Buffer

	b.WriteString("# Visualization Quality Audit\n\n")
	b.WriteString(fmt.Sprintf("- Run ID: `%s`\n", r.RunID))
	b.WriteString(fmt.Sprintf("- Generated: `%s`\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	b.WriteString(fmt.Sprintf("- Duration: `%d ms`\n", r.DurationMS))
	b.WriteString(fmt.Sprintf("- Overall: **%s** (score %.1f/100)\n\n", r.Status, r.OverallScore))

	b.WriteString("## Phase Results\n\n")
	b.WriteString("| Phase | Score | Status |\n")
	b.WriteString("| --- | ---: | --- |\n")
	for _, p := range r.Phases {
		b.WriteString(fmt.Sprintf("| %s | %.1f | %s |\n", p.Phase, p.Score, p.Status))
	}
	b.WriteString("\n")

	for _, p := range r.Phases {
		b.WriteString(fmt.Sprintf("### %s\n\n", p.Phase))
		if strings.TrimSpace(p.Error) != "" {
			b.WriteString(fmt.Sprintf("Phase error: %s\n\n", sanitizeInline(p.Error)))
		}
		for _, c := range p.Checks {
			line := fmt.Sprintf("- [%s] %s/%s", c.Status, c.Category, c.Item)
			if strings.TrimSpace(c.Message) != "" {
				line += ": " + sanitizeInline(c.Message)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Collected Metrics\n\n")
	b.WriteString(fmt.Sprintf("- Files scanned: %d (%d with forbidden characters)\n", r.Metrics.FilesScanned, r.Metrics.FilesWithAscii))
	b.WriteString(fmt.Sprintf("- Forbidden characters: %d before, %d after (%.1f%% eliminated)\n",
		r.Metrics.AsciiCharsBefore, r.Metrics.AsciiCharsAfter, r.Metrics.EliminationRate))
	if r.Metrics.FailsafeRateKnown {
		b.WriteString(fmt.Sprintf("- Failsafe trigger rate: %.2f%% (trend %s)\n", r.Metrics.FailsafeTriggerRate, r.Metrics.FailsafeTrend))
	} else {
		b.WriteString("- Failsafe trigger rate: not measured\n")
	}
	if r.Metrics.ExtractionRateKnown {
		b.WriteString(fmt.Sprintf("- Extraction success rate: %.1f%%\n", r.Metrics.ExtractionSuccessRate))
	} else {
		b.WriteString("- Extraction success rate: not measured\n")
	}
	for _, sd := range r.Metrics.StageDurations {
		if sd.Available {
			b.WriteString(fmt.Sprintf("- Stage `%s`: %d ms\n", sd.Stage, sd.DurationMS))
		} else {
			b.WriteString(fmt.Sprintf("- Stage `%s`: duration unavailable\n", sd.Stage))
		}
	}
	b.WriteString(fmt.Sprintf("- Reports: %d total, %d clean (%.1f%%), %.1f visuals/report average\n\n",
		r.Metrics.TotalReports, r.Metrics.CleanReports, r.Metrics.CleanReportRate(), r.Metrics.AvgVisualsPerReport))

	b.WriteString(dashboard.RenderMarkdown(r.Summary))
	return b.String()
}

func sanitizeInline(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 300 {
		return s[:300] + "..."
	}
	return s
}
