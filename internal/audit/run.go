package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/config"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/dashboard"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/metrics"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/model"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/progress"
)

// Orchestrator runs the six audit phases strictly in sequence. Phases share
// nothing but the final results slice; a failure inside one phase is
// captured as an ERROR result and the remaining phases still run.
type Orchestrator struct {
	cfg    config.Config
	logger *zap.Logger
	sink   progress.Sink
}

func New(cfg config.Config, logger *zap.Logger, sink progress.Sink) *Orchestrator {
	if sink == nil {
		sink = progress.NoopSink{}
	}
	return &Orchestrator{cfg: cfg, logger: logger, sink: sink}
}

// phaseRunners maps each phase to its implementation. Covered for
// exhaustiveness against phaseOrder by the dispatch test.
func (o *Orchestrator) phaseRunners() map[Phase]func() model.AuditPhaseResult {
	return map[Phase]func() model.AuditPhaseResult{
		PhaseStructural:  o.runStructural,
		PhasePrompts:     o.runPrompts,
		PhaseIntegration: o.runIntegration,
		PhaseSchema:      o.runSchema,
		PhaseFunctional:  o.runFunctional,
		PhaseOutput:      o.runOutput,
	}
}

// Run executes every phase, collects consolidated metrics, and derives the
// executive summary. It only errors on configuration-level failures that
// preclude any audit at all.
func (o *Orchestrator) Run() (model.ConsolidatedReport, error) {
	started := time.Now()
	runID := started.UTC().Format("20060102-150405")

	o.sink.Emit(progress.Event{Type: progress.EventRunStarted, RunID: runID})
	o.logger.Info("audit started", zap.String("run_id", runID))

	runners := o.phaseRunners()
	results := make([]model.AuditPhaseResult, 0, len(phaseOrder))
	for _, phase := range phaseOrder {
		o.sink.Emit(progress.Event{Type: progress.EventPhaseStarted, RunID: runID, Phase: string(phase)})
		res := o.runPhase(phase, runners[phase])
		results = append(results, res)
		o.sink.Emit(progress.Event{
			Type:       progress.EventPhaseFinished,
			RunID:      runID,
			Phase:      string(phase),
			Status:     string(res.Status),
			Score:      res.Score,
			Error:      res.Error,
			DurationMS: res.DurationMS,
		})
		o.logger.Info("phase finished",
			zap.String("phase", string(phase)),
			zap.String("status", string(res.Status)),
			zap.Float64("score", res.Score))
	}

	consolidated := metrics.Collect(o.logger, o.cfg)
	summary := dashboard.Build(results, consolidated, o.cfg.Thresholds)

	report := model.ConsolidatedReport{
		RunID:        fmt.Sprintf("%s-%s", runID, uuid.NewString()[:8]),
		GeneratedAt:  started.UTC(),
		Phases:       results,
		Metrics:      consolidated,
		Summary:      summary,
		OverallScore: meanScore(results),
		Status:       overallStatus(results, summary),
		DurationMS:   time.Since(started).Milliseconds(),
	}

	o.sink.Emit(progress.Event{
		Type:       progress.EventRunFinished,
		RunID:      runID,
		Status:     string(report.Status),
		Score:      report.OverallScore,
		DurationMS: report.DurationMS,
	})
	o.logger.Info("audit finished",
		zap.String("run_id", report.RunID),
		zap.String("status", string(report.Status)),
		zap.Float64("score", report.OverallScore))
	return report, nil
}

// runPhase isolates phase-internal panics into an ERROR result so one broken
// phase cannot abort the batch.
func (o *Orchestrator) runPhase(phase Phase, fn func() model.AuditPhaseResult) (res model.AuditPhaseResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("phase failed",
				zap.String("phase", string(phase)),
				zap.Any("panic", r))
			res = errorResult(phase, fmt.Errorf("phase panic: %v", r))
		}
	}()
	return fn()
}

// Output phase: delegate to the metrics scan; full score only when the tree
// carries zero forbidden characters, otherwise a penalty per offending file.
// Finding no reportable artifact at all is a configuration failure that
// aborts this phase only.
func (o *Orchestrator) runOutput() model.AuditPhaseResult {
	started := time.Now()
	res := model.AuditPhaseResult{Phase: string(PhaseOutput)}

	m := metrics.Collect(o.logger, o.cfg)
	if m.FilesScanned == 0 {
		return errorResult(PhaseOutput, fmt.Errorf("no reportable artifact found under %s", o.cfg.OutputRoot))
	}

	status := model.CheckPass
	message := "output tree is clean"
	if m.AsciiCharsFound > 0 {
		status = model.CheckFail
		message = fmt.Sprintf("%d forbidden character(s) across %d file(s)", m.AsciiCharsFound, m.FilesWithAscii)
	}
	res.Checks = append(res.Checks, model.AuditCheck{
		Phase:    string(PhaseOutput),
		Category: "cleanliness",
		Item:     o.cfg.OutputRoot,
		Status:   status,
		Message:  message,
	})

	res.Score = clampScore(100 - 10*float64(m.FilesWithAscii))
	res.Status = statusForScore(res.Score)
	res.DurationMS = time.Since(started).Milliseconds()
	return res
}

func meanScore(results []model.AuditPhaseResult) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range results {
		sum += r.Score
	}
	return sum / float64(len(results))
}

func overallStatus(results []model.AuditPhaseResult, summary model.ExecutiveSummary) model.PhaseStatus {
	statuses := make([]model.PhaseStatus, 0, len(results)+1)
	for _, r := range results {
		statuses = append(statuses, r.Status)
	}
	statuses = append(statuses, summary.OverallStatus)
	return model.WorstStatus(statuses...)
}
