// Package audit runs the fixed battery of quality-enforcement phases and
// aggregates their scores into one consolidated report.
package audit

import (
	"fmt"
	"time"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/model"
)

// Phase is the closed set of audit phases. Adding a phase means adding it
// here, to phaseOrder, and to the dispatch table in run.go; the exhaustiveness
// test fails otherwise.
type Phase string

const (
	PhaseStructural  Phase = "structural"
	PhasePrompts     Phase = "prompts"
	PhaseIntegration Phase = "integration"
	PhaseSchema      Phase = "schema"
	PhaseFunctional  Phase = "functional"
	PhaseOutput      Phase = "output"
)

var phaseOrder = []Phase{
	PhaseStructural,
	PhasePrompts,
	PhaseIntegration,
	PhaseSchema,
	PhaseFunctional,
	PhaseOutput,
}

// Item is one named check inside a checklist phase.
type Item struct {
	Category string
	Name     string
	Run      func() (model.CheckStatus, string, string)
}

// runChecklist executes items in order and reduces them to one scored phase
// result. PASS scores full, WARN half, FAIL zero; SKIP is excluded from the
// denominator. The same reduction serves every checklist-style phase.
func runChecklist(phase Phase, items []Item) model.AuditPhaseResult {
	started := time.Now()
	res := model.AuditPhaseResult{Phase: string(phase)}

	total := 0
	earned := 0.0
	for _, it := range items {
		status, message, detail := it.Run()
		res.Checks = append(res.Checks, model.AuditCheck{
			Phase:    string(phase),
			Category: it.Category,
			Item:     it.Name,
			Status:   status,
			Message:  message,
			Detail:   detail,
		})
		switch status {
		case model.CheckSkip:
			continue
		case model.CheckPass:
			earned++
		case model.CheckWarn:
			earned += 0.5
		}
		total++
	}

	if total > 0 {
		res.Score = earned / float64(total) * 100
	} else {
		res.Score = 100
	}
	res.Status = statusForScore(res.Score)
	res.DurationMS = time.Since(started).Milliseconds()
	return res
}

// statusForScore maps a phase score onto the documented bands.
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

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func errorResult(phase Phase, err error) model.AuditPhaseResult {
	return model.AuditPhaseResult{
		Phase:  string(phase),
		Score:  0,
		Status: model.StatusError,
		Error:  fmt.Sprint(err),
	}
}
