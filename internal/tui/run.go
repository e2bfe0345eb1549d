// Package tui renders live audit progress as a terminal dashboard.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/progress"
)

type Options struct {
	Events <-chan progress.Event
}

// Run blocks until the event channel closes or the user quits a finished
// run.
func Run(opts Options) error {
	if opts.Events == nil {
		return fmt.Errorf("tui events channel is required")
	}

	m := newModel(opts.Events)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
