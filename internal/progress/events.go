package progress

import "time"

type EventType string

const (
	EventRunStarted    EventType = "run_started"
	EventRunWarning    EventType = "run_warning"
	EventRunFinished   EventType = "run_finished"
	EventPhaseStarted  EventType = "phase_started"
	EventPhaseFinished EventType = "phase_finished"
)

type Event struct {
	Type       EventType `json:"type"`
	At         time.Time `json:"at"`
	RunID      string    `json:"run_id,omitempty"`
	Phase      string    `json:"phase,omitempty"`
	Status     string    `json:"status,omitempty"`
	Score      float64   `json:"score,omitempty"`
	Message    string    `json:"message,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
}
