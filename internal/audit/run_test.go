package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/config"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/model"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/progress"
)

const guidanceFixture = "Never use ASCII box-drawing output.\n" +
	"All visuals go through ```json:visualization blocks.\n"

const compilerFixture = "def compile(report):\n" +
	"    return render_visualizations(report)\n"

const schemaFixture = "class VisualizationSpec(BaseModel):\n" +
	"    kind: str\n" +
	"    title: str\n" +
	"    data: list\n"

// fixtureProject lays out a fully healthy project tree and returns its
// resolved config.
func fixtureProject(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()

	writeFixture(t, root, "prompts/report-guidance.md", guidanceFixture)
	writeFixture(t, root, "prompts/visualization-guidance.md", guidanceFixture)
	writeFixture(t, root, "scripts/consolidate-phases.py", "# consolidation entry point\n")
	writeFixture(t, root, "scripts/phase4-compiler.py", compilerFixture)
	writeFixture(t, root, "scripts/phase4-idm-compiler.py", compilerFixture)
	writeFixture(t, root, "scripts/idm_models.py", schemaFixture)
	writeFixture(t, root, "templates/report.html", "<html><body></body></html>")
	writeFixture(t, root, "output/reports/report-20260831.html",
		"<html><body><svg viewBox=\"0 0 10 10\"></svg></body></html>")

	for i := 1; i <= 4; i++ {
		writeFixture(t, root, fmt.Sprintf("output/phase%d_output.json", i),
			`{"metadata":{"total_duration_ms":1000}}`)
	}
	writeFixture(t, root, "output/consolidated/consolidated-analysis-20260831.json",
		`{"analytics":{"visualizations_requested":10,"visualizations_rendered":10}}`)
	writeFixture(t, root, "output/failsafe-triggers.json", `{"triggers":0,"reports":10}`)

	return config.Config{}.Resolve(root)
}

func writeFixture(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPhaseRunnersCoverPhaseOrder(t *testing.T) {
	o := New(config.Config{}, zap.NewNop(), nil)
	runners := o.phaseRunners()
	if len(runners) != len(phaseOrder) {
		t.Errorf("dispatch table has %d entries, phase order has %d", len(runners), len(phaseOrder))
	}
	for _, phase := range phaseOrder {
		if runners[phase] == nil {
			t.Errorf("phase %q has no runner", phase)
		}
	}
}

func TestRunHealthyProjectPasses(t *testing.T) {
	cfg := fixtureProject(t)
	var events []progress.Event
	sink := progress.SinkFunc(func(e progress.Event) { events = append(events, e) })

	report, err := New(cfg, zap.NewNop(), sink).Run()
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Phases) != len(phaseOrder) {
		t.Fatalf("got %d phases, want %d", len(report.Phases), len(phaseOrder))
	}
	for i, p := range report.Phases {
		if p.Phase != string(phaseOrder[i]) {
			t.Errorf("phase[%d] = %q, want %q", i, p.Phase, phaseOrder[i])
		}
		if p.Status != model.StatusPass {
			t.Errorf("phase %q status = %v (score %.1f): %+v", p.Phase, p.Status, p.Score, p.Checks)
		}
	}
	if report.Status != model.StatusPass {
		t.Errorf("overall status = %v, want PASS", report.Status)
	}
	if report.OverallScore != 100 {
		t.Errorf("overall score = %v, want 100", report.OverallScore)
	}
	if report.RunID == "" {
		t.Error("empty run id")
	}

	wantEvents := 2 + 2*len(phaseOrder)
	if len(events) != wantEvents {
		t.Fatalf("got %d events, want %d", len(events), wantEvents)
	}
	if events[0].Type != progress.EventRunStarted {
		t.Errorf("first event = %v", events[0].Type)
	}
	if events[len(events)-1].Type != progress.EventRunFinished {
		t.Errorf("last event = %v", events[len(events)-1].Type)
	}
}

func TestRunPhaseIsolatesPanics(t *testing.T) {
	o := New(config.Config{}, zap.NewNop(), nil)
	res := o.runPhase(PhaseSchema, func() model.AuditPhaseResult {
		panic("boom")
	})
	if res.Status != model.StatusError {
		t.Errorf("status = %v, want ERROR", res.Status)
	}
	if res.Score != 0 {
		t.Errorf("score = %v, want 0", res.Score)
	}
	if res.Error == "" {
		t.Error("error text missing")
	}
}

func TestRunContinuesAfterBrokenPhase(t *testing.T) {
	// An unreadable schema artifact fails that phase but must not stop the
	// later phases from producing results.
	cfg := fixtureProject(t)
	if err := os.Remove(cfg.SchemaFile); err != nil {
		t.Fatal(err)
	}

	report, err := New(cfg, zap.NewNop(), nil).Run()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Phases) != len(phaseOrder) {
		t.Fatalf("got %d phases, want all %d", len(report.Phases), len(phaseOrder))
	}
	var schema, functional model.AuditPhaseResult
	for _, p := range report.Phases {
		switch p.Phase {
		case string(PhaseSchema):
			schema = p
		case string(PhaseFunctional):
			functional = p
		}
	}
	if schema.Status != model.StatusFail {
		t.Errorf("schema status = %v, want FAIL", schema.Status)
	}
	if functional.Status != model.StatusPass {
		t.Errorf("functional status = %v, want PASS despite earlier failure", functional.Status)
	}
	if report.Status != model.StatusFail {
		t.Errorf("overall status = %v, want FAIL", report.Status)
	}
}

func TestRunStructuralScoresMissingArtifacts(t *testing.T) {
	cfg := fixtureProject(t)
	if err := os.Remove(cfg.RequiredArtifacts[0]); err != nil {
		t.Fatal(err)
	}

	res := New(cfg, zap.NewNop(), nil).runStructural()
	want := float64(len(cfg.RequiredArtifacts)-1) / float64(len(cfg.RequiredArtifacts)) * 100
	if res.Score != want {
		t.Errorf("score = %v, want %v", res.Score, want)
	}
	if res.Checks[0].Status != model.CheckFail {
		t.Errorf("missing artifact check = %v, want FAIL", res.Checks[0].Status)
	}
}

func TestRunPromptsRequiresBothMarkers(t *testing.T) {
	cfg := fixtureProject(t)
	// Strip the prohibition language from one source; its marker check
	// still passes, so that source contributes half credit.
	if err := os.WriteFile(cfg.GuidanceSources[0],
		[]byte("All visuals go through ```json:visualization blocks.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := New(cfg, zap.NewNop(), nil).runPrompts()
	if res.Score != 75 {
		t.Errorf("score = %v, want 75", res.Score)
	}
	if res.Status != model.StatusWarn {
		t.Errorf("status = %v, want WARN", res.Status)
	}
}

func TestScoreConsumerModuleWeighting(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name       string
		content    string
		wantScore  float64
		wantStatus model.CheckStatus
	}{
		{"rendering path alone is full marks", "x = render_visualizations(r)\n", 100, model.CheckPass},
		{"import and call", "import ascii_sanitizer\nascii_sanitizer.sanitize(html)\n", 50, model.CheckWarn},
		{"import only", "import ascii_sanitizer\n", 25, model.CheckWarn},
		{"nothing", "print('hello')\n", 0, model.CheckFail},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := write(fmt.Sprintf("consumer_%d.py", i), tt.content)
			score, status, _, _ := scoreConsumerModule(path)
			if score != tt.wantScore {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
			if status != tt.wantStatus {
				t.Errorf("status = %v, want %v", status, tt.wantStatus)
			}
		})
	}

	if score, status, _, _ := scoreConsumerModule(filepath.Join(dir, "absent.py")); score != 0 || status != model.CheckFail {
		t.Errorf("unreadable module = %v/%v, want 0/FAIL", score, status)
	}
}

func TestRunSchemaIsBinary(t *testing.T) {
	cfg := fixtureProject(t)
	o := New(cfg, zap.NewNop(), nil)

	if res := o.runSchema(); res.Score != 100 || res.Status != model.StatusPass {
		t.Errorf("healthy schema = %v/%v", res.Score, res.Status)
	}

	if err := os.WriteFile(cfg.SchemaFile,
		[]byte(schemaFixture+"    ascii_chart: str\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if res := o.runSchema(); res.Score != 0 || res.Status != model.StatusFail {
		t.Errorf("prohibited pattern = %v/%v, want 0/FAIL", res.Score, res.Status)
	}

	if err := os.WriteFile(cfg.SchemaFile, []byte("class Nothing: pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if res := o.runSchema(); res.Score != 0 || res.Status != model.StatusFail {
		t.Errorf("missing required patterns = %v/%v, want 0/FAIL", res.Score, res.Status)
	}
}

func TestRunOutputPenalizesDirtyFiles(t *testing.T) {
	cfg := fixtureProject(t)
	o := New(cfg, zap.NewNop(), nil)

	if res := o.runOutput(); res.Score != 100 || res.Status != model.StatusPass {
		t.Errorf("clean tree = %v/%v", res.Score, res.Status)
	}

	for i := 0; i < 3; i++ {
		writeFixture(t, filepath.Dir(cfg.OutputRoot), fmt.Sprintf("output/dirty_%d.md", i),
			"┌─┐ chart └─┘")
	}
	res := o.runOutput()
	if res.Score != 70 {
		t.Errorf("score = %v, want 70 after three dirty files", res.Score)
	}
	if res.Status != model.StatusWarn {
		t.Errorf("status = %v, want WARN", res.Status)
	}
}

func TestRunOutputEmptyTreeIsError(t *testing.T) {
	root := t.TempDir()
	cfg := config.Config{}.Resolve(root)
	if err := os.MkdirAll(cfg.OutputRoot, 0o755); err != nil {
		t.Fatal(err)
	}

	res := New(cfg, zap.NewNop(), nil).runOutput()
	if res.Status != model.StatusError {
		t.Errorf("status = %v, want ERROR for empty output tree", res.Status)
	}
}

func TestMeanScoreAndOverallStatus(t *testing.T) {
	results := []model.AuditPhaseResult{
		{Score: 100, Status: model.StatusPass},
		{Score: 50, Status: model.StatusWarn},
	}
	if got := meanScore(results); got != 75 {
		t.Errorf("meanScore = %v, want 75", got)
	}
	if got := meanScore(nil); got != 0 {
		t.Errorf("meanScore(nil) = %v, want 0", got)
	}

	summary := model.ExecutiveSummary{OverallStatus: model.StatusPass}
	if got := overallStatus(results, summary); got != model.StatusWarn {
		t.Errorf("overallStatus = %v, want WARN from phases", got)
	}
	summary.OverallStatus = model.StatusFail
	if got := overallStatus(results, summary); got != model.StatusFail {
		t.Errorf("overallStatus = %v, want FAIL from summary", got)
	}
}
