package audit

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/ascii"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/extract"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/model"
)

const functionalSample = "header\n┌─────────┐\n│ fake 42 │\n└─────────┘\nfooter"

// Functional phase: a fixed list of named self-tests exercising the
// enforcement layers end to end, plus the optional external generation
// pipeline. The pipeline subprocess is blocking with no timeout; a hung
// pipeline blocks the audit until terminated externally.
func (o *Orchestrator) runFunctional() model.AuditPhaseResult {
	items := []Item{
		{Category: "self-test", Name: "sanitizer removes diagram blocks", Run: selfTestSanitizerRemoves},
		{Category: "self-test", Name: "sanitizer is idempotent", Run: selfTestSanitizerIdempotent},
		{Category: "self-test", Name: "extractor round-trips well-formed specs", Run: selfTestExtractorRoundTrip},
		{Category: "self-test", Name: "extractor isolates malformed blocks", Run: selfTestExtractorIsolation},
		{Category: "self-test", Name: "renderer emits vector markup", Run: o.selfTestRendererVector},
		{Category: "self-test", Name: "latest sample output is clean", Run: o.selfTestLatestReportClean},
	}
	if len(o.cfg.PipelineCommand) > 0 {
		items = append(items, Item{
			Category: "pipeline",
			Name:     "end-to-end generation pipeline",
			Run:      o.selfTestPipeline,
		})
	}
	return runChecklist(PhaseFunctional, items)
}

func selfTestSanitizerRemoves() (model.CheckStatus, string, string) {
	res := ascii.Sanitize(functionalSample, "functional")
	if !res.WasModified || len(res.RemovedBlocks) == 0 {
		return model.CheckFail, "diagram block was not removed", ""
	}
	if ascii.ContainsForbidden(res.SanitizedText) {
		return model.CheckFail, "forbidden glyphs survived sanitization", ""
	}
	return model.CheckPass, "diagram block removed", ""
}

func selfTestSanitizerIdempotent() (model.CheckStatus, string, string) {
	first := ascii.Sanitize(functionalSample, "functional")
	second := ascii.Sanitize(first.SanitizedText, "functional")
	if second.WasModified || second.SanitizedText != first.SanitizedText {
		return model.CheckFail, "second pass modified already-sanitized text", ""
	}
	return model.CheckPass, "sanitize is idempotent", ""
}

func selfTestExtractorRoundTrip() (model.CheckStatus, string, string) {
	in := "before\n```json:visualization\n{\"kind\":\"gauge\",\"title\":\"t\",\"data\":[{\"label\":\"l\",\"value\":1}]}\n```\nafter"
	res := extract.Extract(in, "functional")
	if len(res.Specs) != 1 || len(res.Errors) != 0 {
		return model.CheckFail, fmt.Sprintf("specs=%d errors=%d", len(res.Specs), len(res.Errors)), ""
	}
	if !strings.Contains(res.CleanedText, extract.Placeholder(0)) {
		return model.CheckFail, "placeholder missing from cleaned text", ""
	}
	return model.CheckPass, "well-formed spec extracted", ""
}

func selfTestExtractorIsolation() (model.CheckStatus, string, string) {
	in := "```json:visualization\n{broken\n```\n```json:visualization\n{\"kind\":\"gauge\",\"title\":\"t\",\"data\":[{\"label\":\"l\",\"value\":1}]}\n```"
	res := extract.Extract(in, "functional")
	if len(res.Errors) != 1 || len(res.Specs) != 1 {
		return model.CheckFail, fmt.Sprintf("specs=%d errors=%d", len(res.Specs), len(res.Errors)), ""
	}
	return model.CheckPass, "malformed block did not abort siblings", ""
}

func (o *Orchestrator) selfTestRendererVector() (model.CheckStatus, string, string) {
	report, err := o.latestReport()
	if err != nil {
		return model.CheckSkip, "no sample report available", fmt.Sprint(err)
	}
	data, err := os.ReadFile(report)
	if err != nil {
		return model.CheckFail, "sample report unreadable", fmt.Sprint(err)
	}
	if !strings.Contains(string(data), "<svg") {
		return model.CheckFail, "no vector markup in latest report", report
	}
	return model.CheckPass, "latest report carries vector markup", report
}

func (o *Orchestrator) selfTestLatestReportClean() (model.CheckStatus, string, string) {
	report, err := o.latestReport()
	if err != nil {
		return model.CheckSkip, "no sample report available", fmt.Sprint(err)
	}
	data, err := os.ReadFile(report)
	if err != nil {
		return model.CheckFail, "sample report unreadable", fmt.Sprint(err)
	}
	if n := ascii.CountOccurrences(string(data)); n > 0 {
		return model.CheckFail, fmt.Sprintf("%d forbidden character(s) in latest report", n), report
	}
	return model.CheckPass, "latest report is clean", report
}

func (o *Orchestrator) selfTestPipeline() (model.CheckStatus, string, string) {
	cmd := exec.Command(o.cfg.PipelineCommand[0], o.cfg.PipelineCommand[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return model.CheckFail, "pipeline command failed", fmt.Sprintf("%v: %s", err, truncate(string(out), 400))
	}
	return model.CheckPass, "pipeline command succeeded", ""
}

// latestReport returns the lexically newest report file. Report names embed
// timestamps, so lexical order is generation order.
func (o *Orchestrator) latestReport() (string, error) {
	var reports []string
	for _, dir := range o.cfg.ReportDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".html") {
				reports = append(reports, filepath.Join(dir, e.Name()))
			}
		}
	}
	if len(reports) == 0 {
		return "", fmt.Errorf("no report found under %s", strings.Join(o.cfg.ReportDirs, ", "))
	}
	sort.Strings(reports)
	return reports[len(reports)-1], nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
