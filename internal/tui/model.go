package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/progress"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type phaseState struct {
	Phase      string
	Status     string
	Score      float64
	DurationMS int64
	StartedAt  time.Time
	Error      string
}

type eventMsg struct {
	event progress.Event
	ok    bool
}

type uiModel struct {
	events <-chan progress.Event

	runID      string
	runStatus  string
	runScore   float64
	startedAt  time.Time
	finishedAt time.Time

	showDetails bool
	done        bool

	phases map[string]phaseState
	order  []string

	logLines []string
	tick     int
}

func newModel(events <-chan progress.Event) uiModel {
	return uiModel{
		events:      events,
		runStatus:   "running",
		phases:      make(map[string]phaseState),
		showDetails: true,
		logLines:    make([]string, 0, 24),
	}
}

func waitForEvent(ch <-chan progress.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		return eventMsg{event: ev, ok: ok}
	}
}

type tickMsg time.Time

func nextTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m uiModel) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), nextTick())
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "d":
			m.showDetails = !m.showDetails
		case "q", "ctrl+c":
			if m.done {
				return m, tea.Quit
			}
		}
		return m, nil
	case eventMsg:
		if !msg.ok {
			m.done = true
			return m, tea.Quit
		}
		m.applyEvent(msg.event)
		return m, waitForEvent(m.events)
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, nextTick()
	default:
		return m, nil
	}
}

func (m uiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Visualization Quality Audit"))
	b.WriteString("\n")
	if m.runStatus == "running" {
		b.WriteString(fmt.Sprintf("Active: %s\n", runningStyle.Render(m.frame(0))))
	}
	b.WriteString(fmt.Sprintf("Run: %s\n", valueOrDash(m.runID)))
	b.WriteString(fmt.Sprintf("Status: %s\n", styleStatus(m.runStatus).Render(strings.ToUpper(valueOrDash(m.runStatus)))))
	if m.done {
		b.WriteString(fmt.Sprintf("Score: %.1f/100\n", m.runScore))
	}
	b.WriteString(fmt.Sprintf("Elapsed: %s\n", m.elapsedString()))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-14s %-11s %-8s %-10s", "Phase", "Status", "Score", "Duration")))
	b.WriteString("\n")

	for idx, name := range m.order {
		p := m.phases[name]
		status := p.Status
		if strings.TrimSpace(status) == "" {
			status = "pending"
		}
		display := status
		if strings.EqualFold(status, "running") {
			display = "running " + m.frame(idx)
		}
		score := "-"
		if !strings.EqualFold(status, "running") && !strings.EqualFold(status, "pending") {
			score = fmt.Sprintf("%.1f", p.Score)
		}
		line := fmt.Sprintf("%-14s %-11s %-8s %-10s", name, display, score, m.durationDisplay(p, status))
		b.WriteString(styleStatus(status).Render(line))
		b.WriteString("\n")
	}

	if m.showDetails {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Recent Events"))
		b.WriteString("\n")
		if len(m.logLines) == 0 {
			b.WriteString(idleStyle.Render("No events yet."))
			b.WriteString("\n")
		} else {
			for _, line := range m.logLines {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(helpStyle.Render("Press q to close"))
	} else {
		b.WriteString(helpStyle.Render("d toggle details"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m *uiModel) applyEvent(e progress.Event) {
	at := e.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	switch e.Type {
	case progress.EventRunStarted:
		m.runID = e.RunID
		m.runStatus = "running"
		m.startedAt = at
		m.appendEventLine(at, fmt.Sprintf("run started (%s)", valueOrDash(e.RunID)))
	case progress.EventRunWarning:
		m.appendEventLine(at, fmt.Sprintf("warning: %s", firstNonEmpty(e.Message, e.Error)))
	case progress.EventPhaseStarted:
		p := m.ensurePhase(e.Phase)
		p.Status = "running"
		p.StartedAt = at
		m.phases[e.Phase] = p
		m.appendEventLine(at, fmt.Sprintf("%s started", e.Phase))
	case progress.EventPhaseFinished:
		p := m.ensurePhase(e.Phase)
		p.Status = firstNonEmpty(e.Status, "unknown")
		p.Score = e.Score
		p.DurationMS = e.DurationMS
		p.Error = strings.TrimSpace(e.Error)
		m.phases[e.Phase] = p
		msg := fmt.Sprintf("%s finished status=%s score=%.1f duration=%s", e.Phase, p.Status, e.Score, durationString(e.DurationMS))
		if p.Error != "" {
			msg += " error=" + p.Error
		}
		m.appendEventLine(at, msg)
	case progress.EventRunFinished:
		m.runStatus = firstNonEmpty(e.Status, "unknown")
		m.runScore = e.Score
		m.finishedAt = at
		m.done = true
		m.appendEventLine(at, fmt.Sprintf("run finished status=%s score=%.1f duration=%s",
			m.runStatus, e.Score, durationString(e.DurationMS)))
	}
}

// ensurePhase registers a phase in arrival order on first sight. Arrival
// order is the orchestrator's phase order, so no sorting here.
func (m *uiModel) ensurePhase(name string) phaseState {
	if name == "" {
		return phaseState{}
	}
	p, ok := m.phases[name]
	if !ok {
		p = phaseState{Phase: name, Status: "pending"}
		m.order = append(m.order, name)
	}
	return p
}

func (m uiModel) elapsedString() string {
	if m.startedAt.IsZero() {
		return "0s"
	}
	end := time.Now().UTC()
	if !m.finishedAt.IsZero() {
		end = m.finishedAt
	}
	return end.Sub(m.startedAt).Round(time.Second).String()
}

func (m *uiModel) appendEventLine(at time.Time, text string) {
	line := fmt.Sprintf("[%s] %s", at.Format("15:04:05"), strings.TrimSpace(text))
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > 12 {
		m.logLines = m.logLines[len(m.logLines)-12:]
	}
}

func (m uiModel) durationDisplay(p phaseState, status string) string {
	if strings.EqualFold(status, "running") && !p.StartedAt.IsZero() {
		return durationString(time.Since(p.StartedAt).Milliseconds())
	}
	return durationString(p.DurationMS)
}

func durationString(ms int64) string {
	if ms <= 0 {
		return "0s"
	}
	return (time.Duration(ms) * time.Millisecond).Round(time.Millisecond).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

func valueOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

func styleStatus(status string) lipgloss.Style {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "PASS":
		return passStyle
	case "WARN":
		return warnStyle
	case "FAIL", "ERROR":
		return failStyle
	case "RUNNING":
		return runningStyle
	default:
		return idleStyle
	}
}

func (m uiModel) frame(idx int) string {
	frames := []string{"-", "\\", "|", "/"}
	return frames[(m.tick+idx)%len(frames)]
}
