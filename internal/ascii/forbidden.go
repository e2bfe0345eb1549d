// Package ascii detects and removes forbidden pseudo-diagram glyphs from
// report text. The forbidden set covers the Unicode ranges AI models reach
// for when faking charts in plain text: box drawing, block fills, geometric
// shapes, and arrows. The set is fixed; report content has no legitimate use
// for any of these code points.
package ascii

// forbiddenRanges are inclusive rune ranges banned from delivered output.
var forbiddenRanges = [][2]rune{
	{0x2190, 0x21FF}, // arrows
	{0x2500, 0x257F}, // box drawing
	{0x2580, 0x259F}, // block elements
	{0x25A0, 0x25FF}, // geometric shapes
}

// IsForbidden reports whether r belongs to the forbidden glyph set.
func IsForbidden(r rune) bool {
	for _, rng := range forbiddenRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}

// ContainsForbidden reports whether any forbidden glyph appears in text.
func ContainsForbidden(text string) bool {
	for _, r := range text {
		if IsForbidden(r) {
			return true
		}
	}
	return false
}

// CountOccurrences counts individual forbidden glyphs in text. Each matching
// rune counts once; contiguous runs are not collapsed.
func CountOccurrences(text string) int {
	n := 0
	for _, r := range text {
		if IsForbidden(r) {
			n++
		}
	}
	return n
}
