// Package dashboard turns phase results and metrics into the executive
// summary: qualitative findings, a metrics-achieved table, prioritized
// recommendations, and one overall verdict. Everything here is pure
// derivation; persistence belongs to the report package.
package dashboard

import (
	"fmt"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/config"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/model"
)

// recommendAllPassScore is the per-phase bar for the "no changes needed"
// recommendation.
const recommendAllPassScore = 80

// Build derives the executive summary from one audit run.
func Build(phases []model.AuditPhaseResult, m model.AuditMetrics, t config.Thresholds) model.ExecutiveSummary {
	findings := buildFindings(phases, m, t)
	rows := buildMetricRows(m, t)

	summary := model.ExecutiveSummary{
		Findings:        findings,
		Metrics:         rows,
		Recommendations: buildRecommendations(phases, m, t),
	}

	statuses := make([]model.PhaseStatus, 0, len(findings)+len(rows))
	for _, f := range findings {
		statuses = append(statuses, f.Status)
	}
	for _, r := range rows {
		statuses = append(statuses, r.Status)
	}
	summary.OverallStatus = model.WorstStatus(statuses...)

	switch summary.OverallStatus {
	case model.StatusPass:
		summary.Conclusion = "All defense layers are effective; delivered reports are free of forbidden artifacts."
		summary.NextPhase = "Continue scheduled monitoring; no remediation required."
	case model.StatusWarn:
		summary.Conclusion = "Defense layers are largely effective but at least one indicator needs attention."
		summary.NextPhase = "Address warning-level findings before the next reporting period."
	default:
		summary.Conclusion = "At least one defense layer failed; forbidden artifacts can reach delivered reports."
		summary.NextPhase = "Remediate failing layers immediately and re-run the audit."
	}
	return summary
}

func buildFindings(phases []model.AuditPhaseResult, m model.AuditMetrics, t config.Thresholds) []model.Finding {
	findings := []model.Finding{
		{
			Name:    "prompt-guidance layer",
			Status:  statusForScore(phaseScore(phases, "prompts")),
			Summary: fmt.Sprintf("guidance sources scored %.0f", phaseScore(phases, "prompts")),
		},
		extractionFinding(m, t),
		failsafeFinding(m, t),
		{
			Name:    "continuous integration",
			Status:  statusForScore(phaseScore(phases, "functional")),
			Summary: fmt.Sprintf("self-tests scored %.0f", phaseScore(phases, "functional")),
		},
		reportQualityFinding(m),
		performanceFinding(m, t),
		{
			Name:    "visualization coverage",
			Status:  statusForScore(phaseScore(phases, "integration")),
			Summary: fmt.Sprintf("consumer integration scored %.0f", phaseScore(phases, "integration")),
		},
	}
	return findings
}

func extractionFinding(m model.AuditMetrics, t config.Thresholds) model.Finding {
	f := model.Finding{Name: "extraction layer"}
	if !m.ExtractionRateKnown {
		f.Status = model.StatusWarn
		f.Summary = "extraction success rate unavailable"
		return f
	}
	f.Summary = fmt.Sprintf("extraction success rate %.1f%%", m.ExtractionSuccessRate)
	switch {
	case m.ExtractionSuccessRate >= 99:
		f.Status = model.StatusPass
	case m.ExtractionSuccessRate >= *t.ExtractionWarnRate:
		f.Status = model.StatusWarn
	default:
		f.Status = model.StatusFail
	}
	return f
}

func failsafeFinding(m model.AuditMetrics, t config.Thresholds) model.Finding {
	f := model.Finding{Name: "failsafe layer"}
	if !m.FailsafeRateKnown {
		f.Status = model.StatusWarn
		f.Summary = "failsafe trigger rate unavailable"
		return f
	}
	f.Summary = fmt.Sprintf("failsafe trigger rate %.2f%% (%s)", m.FailsafeTriggerRate, m.FailsafeTrend)
	switch {
	case m.FailsafeTriggerRate <= *t.FailsafePassRate:
		f.Status = model.StatusPass
	case m.FailsafeTriggerRate <= *t.FailsafeWarnRate:
		f.Status = model.StatusWarn
	default:
		f.Status = model.StatusFail
	}
	return f
}

func reportQualityFinding(m model.AuditMetrics) model.Finding {
	f := model.Finding{Name: "report quality"}
	rate := m.CleanReportRate()
	f.Summary = fmt.Sprintf("%d/%d reports clean (%.1f%%)", m.CleanReports, m.TotalReports, rate)
	switch {
	case m.AsciiCharsAfter == 0 && rate == 100:
		f.Status = model.StatusPass
	case rate >= 90:
		f.Status = model.StatusWarn
	default:
		f.Status = model.StatusFail
	}
	return f
}

func performanceFinding(m model.AuditMetrics, t config.Thresholds) model.Finding {
	f := model.Finding{Name: "performance"}
	f.Summary = fmt.Sprintf("pipeline stages took %dms", m.TotalDurationMS)
	if m.TotalDurationMS > *t.StageDurationWarnMS {
		f.Status = model.StatusWarn
		return f
	}
	f.Status = model.StatusPass
	return f
}

func buildMetricRows(m model.AuditMetrics, t config.Thresholds) []model.MetricRow {
	rows := []model.MetricRow{
		{
			Name:   "forbidden characters in delivered reports",
			Value:  fmt.Sprintf("%d", m.AsciiCharsAfter),
			Target: "0",
			Status: passIf(m.AsciiCharsAfter == 0, model.StatusFail),
		},
		{
			Name:   "elimination rate",
			Value:  fmt.Sprintf("%.1f%%", m.EliminationRate),
			Target: "100%",
			Status: passIf(m.EliminationRate >= 100, model.StatusWarn),
		},
		failsafeRow(m, t),
		extractionRow(m, t),
		{
			Name:   "clean report rate",
			Value:  fmt.Sprintf("%.1f%%", m.CleanReportRate()),
			Target: "100%",
			Status: passIf(m.CleanReportRate() == 100, model.StatusFail),
		},
		{
			Name:   "average visuals per report",
			Value:  fmt.Sprintf("%.1f", m.AvgVisualsPerReport),
			Target: ">=1",
			Status: passIf(m.AvgVisualsPerReport >= 1 || m.TotalReports == 0, model.StatusWarn),
		},
	}
	return rows
}

func failsafeRow(m model.AuditMetrics, t config.Thresholds) model.MetricRow {
	row := model.MetricRow{
		Name:   "failsafe trigger rate",
		Target: fmt.Sprintf("<=%.0f%%", *t.FailsafePassRate),
	}
	if !m.FailsafeRateKnown {
		row.Value = "unavailable"
		row.Status = model.StatusWarn
		return row
	}
	row.Value = fmt.Sprintf("%.2f%%", m.FailsafeTriggerRate)
	switch {
	case m.FailsafeTriggerRate <= *t.FailsafePassRate:
		row.Status = model.StatusPass
	case m.FailsafeTriggerRate <= *t.FailsafeWarnRate:
		row.Status = model.StatusWarn
	default:
		row.Status = model.StatusFail
	}
	return row
}

func extractionRow(m model.AuditMetrics, t config.Thresholds) model.MetricRow {
	row := model.MetricRow{
		Name:   "extraction success rate",
		Target: fmt.Sprintf(">=%.0f%%", *t.ExtractionWarnRate),
	}
	if !m.ExtractionRateKnown {
		row.Value = "unavailable"
		row.Status = model.StatusWarn
		return row
	}
	row.Value = fmt.Sprintf("%.1f%%", m.ExtractionSuccessRate)
	row.Status = passIf(m.ExtractionSuccessRate >= *t.ExtractionWarnRate, model.StatusFail)
	return row
}

// standingRecommendations are always appended, regardless of run outcome.
var standingRecommendations = []model.Recommendation{
	{Priority: model.PriorityMedium, Action: "Review guidance sources for drift against renderer capabilities"},
	{Priority: model.PriorityLow, Action: "Continue scheduled weekly monitoring runs"},
	{Priority: model.PriorityLow, Action: "Keep the forbidden-glyph set aligned with report typography"},
}

func buildRecommendations(phases []model.AuditPhaseResult, m model.AuditMetrics, t config.Thresholds) []model.Recommendation {
	var issues []model.Recommendation

	if m.AsciiCharsAfter > 0 {
		issues = append(issues, model.Recommendation{
			Priority: model.PriorityCritical,
			Action:   fmt.Sprintf("Remove %d residual forbidden character(s) from delivered reports", m.AsciiCharsAfter),
		})
	}
	if score := phaseScore(phases, "structural"); score < 100 {
		issues = append(issues, model.Recommendation{
			Priority: model.PriorityHigh,
			Action:   fmt.Sprintf("Restore missing required artifacts (structural score %.0f)", score),
		})
	}
	if m.FailsafeRateKnown && m.FailsafeTriggerRate > *t.FailsafeWarnRate {
		issues = append(issues, model.Recommendation{
			Priority: model.PriorityHigh,
			Action:   fmt.Sprintf("Investigate failsafe trigger rate of %.2f%% (threshold %.0f%%)", m.FailsafeTriggerRate, *t.FailsafeWarnRate),
		})
	}

	if allPhasesAtLeast(phases, recommendAllPassScore) && m.AsciiCharsAfter == 0 {
		issues = []model.Recommendation{{
			Priority: model.PriorityLow,
			Action:   "No changes needed; all layers performing within thresholds",
		}}
	}

	return append(issues, standingRecommendations...)
}

func allPhasesAtLeast(phases []model.AuditPhaseResult, min float64) bool {
	for _, p := range phases {
		if p.Score < min {
			return false
		}
	}
	return true
}

func phaseScore(phases []model.AuditPhaseResult, name string) float64 {
	for _, p := range phases {
		if p.Phase == name {
			return p.Score
		}
	}
	return 0
}

func statusForScore(score float64) model.PhaseStatus {
	switch {
	case score >= 90:
		return model.StatusPass
	case score >= 60:
		return model.StatusWarn
	default:
		return model.StatusFail
	}
}

func passIf(ok bool, otherwise model.PhaseStatus) model.PhaseStatus {
	if ok {
		return model.StatusPass
	}
	return otherwise
}
