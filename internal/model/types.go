package model

import "time"

// CheckStatus is the outcome of a single audit check.
type CheckStatus string

const (
	CheckPass CheckStatus = "PASS"
	CheckFail CheckStatus = "FAIL"
	CheckWarn CheckStatus = "WARN"
	CheckSkip CheckStatus = "SKIP"
)

// PhaseStatus is the outcome of a whole audit phase or run.
type PhaseStatus string

const (
	StatusPass  PhaseStatus = "PASS"
	StatusWarn  PhaseStatus = "WARN"
	StatusFail  PhaseStatus = "FAIL"
	StatusError PhaseStatus = "ERROR"
)

// WorstStatus reduces statuses by precedence: FAIL (and ERROR) > WARN > PASS.
// An empty input yields PASS.
func WorstStatus(statuses ...PhaseStatus) PhaseStatus {
	worst := StatusPass
	for _, s := range statuses {
		switch s {
		case StatusFail, StatusError:
			return StatusFail
		case StatusWarn:
			worst = StatusWarn
		}
	}
	return worst
}

// AuditCheck is one check outcome inside a phase. Immutable once logged.
type AuditCheck struct {
	Phase    string      `json:"phase"`
	Category string      `json:"category"`
	Item     string      `json:"item"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Detail   string      `json:"detail,omitempty"`
}

// AuditPhaseResult is the scored outcome of one orchestrator phase.
type AuditPhaseResult struct {
	Phase      string       `json:"phase"`
	Score      float64      `json:"score"`
	Status     PhaseStatus  `json:"status"`
	Checks     []AuditCheck `json:"checks"`
	DurationMS int64        `json:"duration_ms"`
	Error      string       `json:"error,omitempty"`
}

// StageDuration is the measured duration of one upstream pipeline stage.
type StageDuration struct {
	Stage      string `json:"stage"`
	DurationMS int64  `json:"duration_ms"`
	Available  bool   `json:"available"`
}

// AuditMetrics is the flat counter record produced by one collector run.
// Recomputed fresh each run, never persisted incrementally.
type AuditMetrics struct {
	CollectedAt time.Time `json:"collected_at"`

	FilesScanned    int `json:"files_scanned"`
	FilesWithAscii  int `json:"files_with_ascii"`
	AsciiCharsFound int `json:"ascii_chars_found"`

	AsciiCharsBefore int     `json:"ascii_chars_before"`
	AsciiCharsAfter  int     `json:"ascii_chars_after"`
	EliminationRate  float64 `json:"elimination_rate"`

	FailsafeTriggerRate float64 `json:"failsafe_trigger_rate"`
	FailsafeTriggers    int     `json:"failsafe_triggers"`
	FailsafeTrend       Trend   `json:"failsafe_trend"`
	// FailsafeRateKnown distinguishes a true zero rate from a missing
	// trigger-count artifact, so absent data is visible instead of
	// silently diluting scores.
	FailsafeRateKnown bool `json:"failsafe_rate_known"`

	ExtractionSuccessRate float64 `json:"extraction_success_rate"`
	ExtractionRateKnown   bool    `json:"extraction_rate_known"`

	StageDurations  []StageDuration `json:"stage_durations"`
	TotalDurationMS int64           `json:"total_duration_ms"`

	TotalReports        int     `json:"total_reports"`
	CleanReports        int     `json:"clean_reports"`
	AvgVisualsPerReport float64 `json:"avg_visuals_per_report"`
}

// CleanReportRate is the share of scanned reports with zero forbidden
// characters, in percent. Returns 100 when no reports were found.
func (m AuditMetrics) CleanReportRate() float64 {
	if m.TotalReports == 0 {
		return 100
	}
	return float64(m.CleanReports) / float64(m.TotalReports) * 100
}

// Trend labels movement of a metric against the persisted baseline.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDegrading Trend = "degrading"
	TrendUnknown   Trend = "unknown"
)

// Finding is one named defense-layer assessment in the executive summary.
type Finding struct {
	Name    string      `json:"name"`
	Status  PhaseStatus `json:"status"`
	Summary string      `json:"summary"`
}

// MetricRow is one row of the metrics-achieved table.
type MetricRow struct {
	Name   string      `json:"name"`
	Value  string      `json:"value"`
	Target string      `json:"target"`
	Status PhaseStatus `json:"status"`
}

// Recommendation priorities, highest first.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

type Recommendation struct {
	Priority string `json:"priority"`
	Action   string `json:"action"`
}

// ExecutiveSummary is derived from phase results and metrics; it is only
// persisted as part of the containing ConsolidatedReport.
type ExecutiveSummary struct {
	OverallStatus   PhaseStatus      `json:"overall_status"`
	Findings        []Finding        `json:"findings"`
	Metrics         []MetricRow      `json:"metrics_achieved"`
	Recommendations []Recommendation `json:"recommendations"`
	Conclusion      string           `json:"conclusion"`
	NextPhase       string           `json:"next_phase"`
}

// ConsolidatedReport is the primary deliverable artifact of an audit run.
type ConsolidatedReport struct {
	RunID        string             `json:"run_id"`
	GeneratedAt  time.Time          `json:"generated_at"`
	DurationMS   int64              `json:"duration_ms"`
	Phases       []AuditPhaseResult `json:"phases"`
	Metrics      AuditMetrics       `json:"metrics"`
	Summary      ExecutiveSummary   `json:"executive_summary"`
	OverallScore float64            `json:"overall_score"`
	Status       PhaseStatus        `json:"overall_status"`
}

// MonitoringBaseline is the persisted snapshot from the prior monitoring
// period. Overwritten every run; single scheduled writer assumed.
type MonitoringBaseline struct {
	Timestamp   time.Time    `json:"timestamp"`
	Metrics     AuditMetrics `json:"metrics"`
	WeekNumber  int          `json:"week_number"`
	Stable      bool         `json:"stable"`
	StableWeeks int          `json:"stable_weeks"`
}

// ComparisonStatus labels a single metric's movement for the week.
type ComparisonStatus string

const (
	ComparisonImproved ComparisonStatus = "improved"
	ComparisonStable   ComparisonStatus = "stable"
	ComparisonDegraded ComparisonStatus = "degraded"
)

type MetricComparison struct {
	Metric   string           `json:"metric"`
	Baseline float64          `json:"baseline"`
	Current  float64          `json:"current"`
	Delta    float64          `json:"delta"`
	Status   ComparisonStatus `json:"status"`
}

// Alert severities.
const (
	AlertCritical = "critical"
	AlertWarning  = "warning"
)

type Alert struct {
	Severity string `json:"severity"`
	Metric   string `json:"metric"`
	Message  string `json:"message"`
}

// Health is the overall verdict of one monitoring run.
type Health string

const (
	HealthHealthy  Health = "healthy"
	HealthWarning  Health = "warning"
	HealthCritical Health = "critical"
)

// WeeklyMonitoringResult is one per-period snapshot, written once and never
// overwritten.
type WeeklyMonitoringResult struct {
	WeekNumber    int                `json:"week_number"`
	GeneratedAt   time.Time          `json:"generated_at"`
	Metrics       AuditMetrics       `json:"metrics"`
	Comparisons   []MetricComparison `json:"comparisons"`
	Alerts        []Alert            `json:"alerts"`
	OverallHealth Health             `json:"overall_health"`
	Stable        bool               `json:"stable"`
	StableWeeks   int                `json:"stable_weeks"`
	FullyProven   bool               `json:"fully_proven"`
}
