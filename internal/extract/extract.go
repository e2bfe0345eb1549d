package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/ascii"
)

// blockPattern matches a fenced visualization block:
//
//	```json:visualization
//	{ ... }
//	```
var blockPattern = regexp.MustCompile("(?s)```json:visualization\\s*(.*?)```")

// ExtractionError records one malformed block. Non-fatal: siblings are still
// processed.
type ExtractionError struct {
	Offset  int    `json:"offset"`
	Message string `json:"message"`
}

// Violation is one contiguous run of forbidden glyphs found in prose that
// survived extraction.
type Violation struct {
	Offset  int    `json:"offset"`
	Length  int    `json:"length"`
	Snippet string `json:"snippet"`
}

// Result is the outcome of one extraction pass over a narrative section.
type Result struct {
	CleanedText     string              `json:"cleaned_text"`
	Specs           []VisualizationSpec `json:"specs"`
	Errors          []ExtractionError   `json:"extraction_errors,omitempty"`
	AsciiViolations []Violation         `json:"ascii_violations,omitempty"`
}

// Extract scans narrative text for fenced visualization blocks. Well-formed
// blocks are replaced with order-indexed placeholders and collected as specs;
// malformed blocks are recorded and left untouched. Remaining prose is then
// scanned for forbidden glyphs, one violation per contiguous run.
func Extract(text, context string) Result {
	res := Result{}
	if strings.TrimSpace(text) == "" {
		res.CleanedText = text
		return res
	}

	var out strings.Builder
	out.Grow(len(text))
	last := 0

	for _, loc := range blockPattern.FindAllStringSubmatchIndex(text, -1) {
		blockStart, blockEnd := loc[0], loc[1]
		payload := text[loc[2]:loc[3]]

		spec, err := parseSpec(payload)
		if err != nil {
			res.Errors = append(res.Errors, ExtractionError{
				Offset:  blockStart,
				Message: fmt.Sprintf("%s: %v", context, err),
			})
			// Leave the malformed block in place.
			out.WriteString(text[last:blockEnd])
			last = blockEnd
			continue
		}

		out.WriteString(text[last:blockStart])
		out.WriteString(Placeholder(len(res.Specs)))
		res.Specs = append(res.Specs, spec)
		last = blockEnd
	}
	out.WriteString(text[last:])

	res.CleanedText = out.String()
	res.AsciiViolations = findViolations(res.CleanedText)
	return res
}

// AssertQuality is the strict gate: callers that cannot tolerate forbidden
// glyphs fail hard instead of relying on downstream sanitization.
func AssertQuality(res Result, context string) error {
	if len(res.AsciiViolations) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %d forbidden character violation(s) in extracted text", context, len(res.AsciiViolations))
}

func parseSpec(payload string) (VisualizationSpec, error) {
	var spec VisualizationSpec
	dec := json.NewDecoder(strings.NewReader(payload))
	if err := dec.Decode(&spec); err != nil {
		return VisualizationSpec{}, fmt.Errorf("parse visualization block: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return VisualizationSpec{}, err
	}
	return spec, nil
}

const violationSnippetLen = 40

func findViolations(text string) []Violation {
	var violations []Violation
	runStart := -1
	runLen := 0

	flush := func(end int) {
		if runStart < 0 {
			return
		}
		snippet := text[runStart:end]
		if len(snippet) > violationSnippetLen {
			snippet = snippet[:violationSnippetLen]
		}
		violations = append(violations, Violation{
			Offset:  runStart,
			Length:  runLen,
			Snippet: snippet,
		})
		runStart = -1
		runLen = 0
	}

	for i, r := range text {
		if ascii.IsForbidden(r) {
			if runStart < 0 {
				runStart = i
			}
			runLen++
			continue
		}
		flush(i)
	}
	flush(len(text))
	return violations
}
