package audit

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/model"
)

// Structural phase: the enumerated required artifacts must exist on disk.
func (o *Orchestrator) runStructural() model.AuditPhaseResult {
	items := make([]Item, 0, len(o.cfg.RequiredArtifacts))
	for _, artifact := range o.cfg.RequiredArtifacts {
		artifact := artifact
		items = append(items, Item{
			Category: "artifacts",
			Name:     artifact,
			Run: func() (model.CheckStatus, string, string) {
				info, err := os.Stat(artifact)
				if err != nil {
					return model.CheckFail, "missing", fmt.Sprint(err)
				}
				if info.IsDir() {
					return model.CheckFail, "expected a file, found a directory", ""
				}
				return model.CheckPass, "present", ""
			},
		})
	}
	return runChecklist(PhaseStructural, items)
}

// Marker patterns the prompts phase requires in every guidance source.
var (
	prohibitionPattern = regexp.MustCompile(`(?i)(never|must not|do not)[^.\n]{0,80}(ascii|box[- ]?drawing|text[- ]?(based )?(chart|diagram))`)
	guidanceMarker     = "json:visualization"
)

// Prompts phase: guidance sources must carry both the prohibition language
// and the visualization-guidance marker.
func (o *Orchestrator) runPrompts() model.AuditPhaseResult {
	var items []Item
	for _, source := range o.cfg.GuidanceSources {
		source := source
		items = append(items,
			Item{
				Category: "prohibition",
				Name:     source,
				Run: func() (model.CheckStatus, string, string) {
					content, err := os.ReadFile(source)
					if err != nil {
						return model.CheckFail, "guidance source unreadable", fmt.Sprint(err)
					}
					if !prohibitionPattern.MatchString(string(content)) {
						return model.CheckFail, "prohibition language not found", ""
					}
					return model.CheckPass, "prohibition language present", ""
				},
			},
			Item{
				Category: "visualization-guidance",
				Name:     source,
				Run: func() (model.CheckStatus, string, string) {
					content, err := os.ReadFile(source)
					if err != nil {
						return model.CheckFail, "guidance source unreadable", fmt.Sprint(err)
					}
					if !strings.Contains(string(content), guidanceMarker) {
						return model.CheckFail, fmt.Sprintf("marker %q not found", guidanceMarker), ""
					}
					return model.CheckPass, "visualization guidance present", ""
				},
			},
		)
	}
	return runChecklist(PhasePrompts, items)
}

// Detection patterns for the integration phase. The rendering path is the
// primary control; the sanitizer is a fallback layer.
var (
	renderPatterns = []string{
		"json:visualization",
		"<!-- visualization:",
		"render_visualizations",
	}
	sanitizerImportPatterns = []string{
		"ascii_sanitizer",
		"from sanitizer import",
	}
	sanitizerCallPatterns = []string{
		"sanitize(",
		"sanitize_html(",
	}
)

// Integration phase: a consumer module on the primary rendering path scores
// full marks even without sanitizer wiring; otherwise the module scores a
// weighted sum of rendering 50%, sanitizer import 25%, sanitizer call 25%.
func (o *Orchestrator) runIntegration() model.AuditPhaseResult {
	started := time.Now()
	res := model.AuditPhaseResult{Phase: string(PhaseIntegration)}

	if len(o.cfg.ConsumerModules) == 0 {
		res.Score = 100
		res.Status = model.StatusPass
		res.DurationMS = time.Since(started).Milliseconds()
		return res
	}

	total := 0.0
	for _, module := range o.cfg.ConsumerModules {
		score, status, message, detail := scoreConsumerModule(module)
		total += score
		res.Checks = append(res.Checks, model.AuditCheck{
			Phase:    string(PhaseIntegration),
			Category: "consumers",
			Item:     module,
			Status:   status,
			Message:  message,
			Detail:   detail,
		})
	}

	res.Score = clampScore(total / float64(len(o.cfg.ConsumerModules)))
	res.Status = statusForScore(res.Score)
	res.DurationMS = time.Since(started).Milliseconds()
	return res
}

func scoreConsumerModule(path string) (score float64, status model.CheckStatus, message, detail string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, model.CheckFail, "consumer module unreadable", fmt.Sprint(err)
	}
	content := string(data)

	renders := containsAny(content, renderPatterns)
	imports := containsAny(content, sanitizerImportPatterns)
	calls := containsAny(content, sanitizerCallPatterns)

	if renders {
		return 100, model.CheckPass, "uses primary rendering path", ""
	}

	score = 0
	if imports {
		score += 25
	}
	if calls {
		score += 25
	}
	detail = fmt.Sprintf("rendering=false sanitizer_import=%v sanitizer_call=%v", imports, calls)
	if score > 0 {
		return score, model.CheckWarn, "sanitizer fallback only, no rendering path", detail
	}
	return 0, model.CheckFail, "no visualization integration detected", detail
}

func containsAny(content string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(content, p) {
			return true
		}
	}
	return false
}

// Schema phase requirements for the canonical type-definition artifact.
var (
	requiredSchemaPatterns = []string{
		"VisualizationSpec",
		"kind",
		"title",
		"data",
	}
	prohibitedSchemaPatterns = []string{
		"ascii_chart",
		"ascii_art",
		"text_diagram",
	}
)

// Schema phase: binary pass/fail on the canonical type-definition artifact.
func (o *Orchestrator) runSchema() model.AuditPhaseResult {
	started := time.Now()
	res := model.AuditPhaseResult{Phase: string(PhaseSchema)}

	data, err := os.ReadFile(o.cfg.SchemaFile)
	if err != nil {
		res.Checks = append(res.Checks, model.AuditCheck{
			Phase:    string(PhaseSchema),
			Category: "schema",
			Item:     o.cfg.SchemaFile,
			Status:   model.CheckFail,
			Message:  "schema artifact unreadable",
			Detail:   fmt.Sprint(err),
		})
		res.Status = model.StatusFail
		res.DurationMS = time.Since(started).Milliseconds()
		return res
	}
	content := string(data)

	ok := true
	for _, p := range requiredSchemaPatterns {
		status := model.CheckPass
		message := "required pattern present"
		if !strings.Contains(content, p) {
			status = model.CheckFail
			message = "required pattern missing"
			ok = false
		}
		res.Checks = append(res.Checks, model.AuditCheck{
			Phase: string(PhaseSchema), Category: "required", Item: p, Status: status, Message: message,
		})
	}
	for _, p := range prohibitedSchemaPatterns {
		status := model.CheckPass
		message := "prohibited pattern absent"
		if strings.Contains(content, p) {
			status = model.CheckFail
			message = "prohibited pattern present"
			ok = false
		}
		res.Checks = append(res.Checks, model.AuditCheck{
			Phase: string(PhaseSchema), Category: "prohibited", Item: p, Status: status, Message: message,
		})
	}

	if ok {
		res.Score = 100
	}
	res.Status = statusForScore(res.Score)
	res.DurationMS = time.Since(started).Milliseconds()
	return res
}
