package ascii

import (
	"regexp"
	"strings"
)

const (
	// A line is treated as pseudo-diagram content when it carries at least
	// this many forbidden glyphs, or when forbidden glyphs make up at least
	// blockDensity of its runes.
	blockMinChars = 2
	blockDensity  = 0.15

	// Runs shorter than this are handled by per-rune stripping instead of
	// wholesale removal, so a stray arrow in prose does not delete the line.
	blockMinLines = 2
)

var newlineRuns = regexp.MustCompile(`\n{3,}`)

// RemovedBlock records one contiguous run of lines removed wholesale.
type RemovedBlock struct {
	StartOffset int `json:"start_offset"`
	LineCount   int `json:"line_count"`
	CharCount   int `json:"char_count"`
}

// Result is the outcome of one sanitize call.
type Result struct {
	SanitizedText    string         `json:"sanitized_text"`
	WasModified      bool           `json:"was_modified"`
	RemovedBlocks    []RemovedBlock `json:"removed_blocks,omitempty"`
	RemovedCharCount int            `json:"removed_char_count"`
}

// Sanitize removes forbidden pseudo-diagram content from plain text.
// Contiguous multi-line runs dense in forbidden glyphs are removed wholesale;
// remaining isolated forbidden glyphs are stripped individually; runs of
// three or more newlines collapse to two so paragraph structure survives.
//
// The returned text never contains a forbidden glyph, and sanitizing
// already-clean text reports WasModified=false with byte-identical (trimmed)
// output.
func Sanitize(text, context string) Result {
	return sanitize(text, context, false)
}

// SanitizeHTML applies the same algorithm to markup. Lines carrying tags are
// exempt from wholesale removal so tag pairs are never split; forbidden
// glyphs on those lines are still stripped rune by rune.
func SanitizeHTML(html, context string) Result {
	return sanitize(html, context, true)
}

type scannedLine struct {
	start     int
	text      string
	forbidden int
	runes     int
	hasTag    bool
}

func sanitize(text, context string, htmlMode bool) Result {
	_ = context // carried for symmetry with callers that log per-context

	lines := scanLines(text)
	drop := markBlocks(lines, htmlMode)

	var blocks []RemovedBlock
	removedChars := 0

	var b strings.Builder
	b.Grow(len(text))
	i := 0
	for i < len(lines) {
		if !drop[i] {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(lines[i].text)
			i++
			continue
		}
		block := RemovedBlock{StartOffset: lines[i].start}
		for i < len(lines) && drop[i] {
			block.LineCount++
			block.CharCount += lines[i].forbidden
			i++
		}
		removedChars += block.CharCount
		blocks = append(blocks, block)
		// Keep a paragraph break where the block used to be.
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
	}

	kept := b.String()
	stripped, strayCount := stripForbidden(kept)
	removedChars += strayCount

	collapsed := newlineRuns.ReplaceAllString(stripped, "\n\n")
	collapsedAny := collapsed != stripped

	return Result{
		SanitizedText:    strings.TrimSpace(collapsed),
		WasModified:      len(blocks) > 0 || strayCount > 0 || collapsedAny,
		RemovedBlocks:    blocks,
		RemovedCharCount: removedChars,
	}
}

func scanLines(text string) []scannedLine {
	raw := strings.Split(text, "\n")
	lines := make([]scannedLine, 0, len(raw))
	offset := 0
	for _, l := range raw {
		sl := scannedLine{start: offset, text: l, hasTag: strings.ContainsRune(l, '<')}
		for _, r := range l {
			sl.runes++
			if IsForbidden(r) {
				sl.forbidden++
			}
		}
		lines = append(lines, sl)
		offset += len(l) + 1
	}
	return lines
}

// markBlocks flags lines belonging to removable pseudo-diagram runs.
func markBlocks(lines []scannedLine, htmlMode bool) []bool {
	drop := make([]bool, len(lines))

	dense := func(l scannedLine) bool {
		if l.forbidden == 0 {
			return false
		}
		if htmlMode && l.hasTag {
			return false
		}
		if l.forbidden >= blockMinChars {
			return true
		}
		return float64(l.forbidden)/float64(l.runes) >= blockDensity
	}

	for i := 0; i < len(lines); {
		if !dense(lines[i]) {
			i++
			continue
		}
		j := i
		for j < len(lines) && dense(lines[j]) {
			j++
		}
		if j-i >= blockMinLines {
			for k := i; k < j; k++ {
				drop[k] = true
			}
		}
		i = j
	}
	return drop
}

func stripForbidden(text string) (string, int) {
	if !ContainsForbidden(text) {
		return text, 0
	}
	var b strings.Builder
	b.Grow(len(text))
	n := 0
	for _, r := range text {
		if IsForbidden(r) {
			n++
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), n
}
