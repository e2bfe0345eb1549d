package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func statusStyle(s model.PhaseStatus) lipgloss.Style {
	switch s {
	case model.StatusPass:
		return passStyle
	case model.StatusWarn:
		return warnStyle
	default:
		return failStyle
	}
}

// RenderText produces the fixed-width terminal rendering of the summary.
// Pure function, no I/O.
func RenderText(s model.ExecutiveSummary) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Executive Dashboard"))
	b.WriteString("  ")
	b.WriteString(statusStyle(s.OverallStatus).Render(string(s.OverallStatus)))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Findings"))
	b.WriteString("\n")
	for _, f := range s.Findings {
		b.WriteString(fmt.Sprintf("  %s %-26s %s\n",
			statusStyle(f.Status).Render(fmt.Sprintf("[%-4s]", f.Status)),
			f.Name, f.Summary))
	}

	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Metrics Achieved"))
	b.WriteString("\n")
	for _, r := range s.Metrics {
		b.WriteString(fmt.Sprintf("  %s %-44s %12s  target %s\n",
			statusStyle(r.Status).Render(fmt.Sprintf("[%-4s]", r.Status)),
			r.Name, r.Value, r.Target))
	}

	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Recommendations"))
	b.WriteString("\n")
	for _, r := range s.Recommendations {
		b.WriteString(fmt.Sprintf("  (%s) %s\n", r.Priority, r.Action))
	}

	b.WriteString("\n")
	b.WriteString(s.Conclusion)
	b.WriteString("\n")
	b.WriteString(s.NextPhase)
	b.WriteString("\n")

	return boxStyle.Render(b.String()) + "\n"
}

// RenderMarkdown produces the tabular document rendering of the summary.
// Pure function, no I/O.
func RenderMarkdown(s model.ExecutiveSummary) string {
	var b strings.Builder

	b.WriteString("## Executive Summary\n\n")
	b.WriteString(fmt.Sprintf("Overall status: **%s**\n\n", s.OverallStatus))

	b.WriteString("### Findings\n\n")
	b.WriteString("| Layer | Status | Summary |\n|---|---|---|\n")
	for _, f := range s.Findings {
		b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", f.Name, f.Status, f.Summary))
	}

	b.WriteString("\n### Metrics Achieved\n\n")
	b.WriteString("| Metric | Value | Target | Status |\n|---|---|---|---|\n")
	for _, r := range s.Metrics {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", r.Name, r.Value, r.Target, r.Status))
	}

	b.WriteString("\n### Recommendations\n\n")
	for _, r := range s.Recommendations {
		b.WriteString(fmt.Sprintf("- **%s**: %s\n", r.Priority, r.Action))
	}

	b.WriteString("\n")
	b.WriteString(s.Conclusion)
	b.WriteString("\n\n")
	b.WriteString(s.NextPhase)
	b.WriteString("\n")
	return b.String()
}
