package ascii

// Report summarizes one sanitize call for logging and audit artifacts.
// Derivation only; no I/O.
type Report struct {
	Context         string `json:"context"`
	OriginalLength  int    `json:"original_length"`
	SanitizedLength int    `json:"sanitized_length"`
	BytesRemoved    int    `json:"bytes_removed"`
	RemovedBlocks   int    `json:"removed_blocks"`
	RemovedChars    int    `json:"removed_chars"`
	Modified        bool   `json:"modified"`
}

// GenerateReport derives before/after deltas for a completed sanitize call.
func GenerateReport(original string, res Result, context string) Report {
	delta := len(original) - len(res.SanitizedText)
	if delta < 0 {
		delta = 0
	}
	return Report{
		Context:         context,
		OriginalLength:  len(original),
		SanitizedLength: len(res.SanitizedText),
		BytesRemoved:    delta,
		RemovedBlocks:   len(res.RemovedBlocks),
		RemovedChars:    res.RemovedCharCount,
		Modified:        res.WasModified,
	}
}
