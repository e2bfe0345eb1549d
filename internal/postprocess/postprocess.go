// Package postprocess is the failsafe gate over fully assembled report
// output. Extraction and prompt guidance are the primary controls; anything
// this package has to remove means an upstream guarantee was violated, which
// is why sanitized passes log at error severity.
package postprocess

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/ascii"
)

// Options controls a post-processing pass.
type Options struct {
	// StrictMode fails on forbidden content instead of sanitizing it.
	StrictMode bool
	// Verbose adds per-block warnings to the result as well as the log.
	Verbose bool
}

// Result is the outcome of post-processing one report.
type Result struct {
	HTML           string       `json:"-"`
	ReportType     string       `json:"report_type"`
	ReportID       string       `json:"report_id"`
	AsciiDetected  bool         `json:"ascii_detected"`
	Sanitized      bool         `json:"sanitized"`
	ViolationCount int          `json:"violation_count"`
	Report         ascii.Report `json:"sanitization_report"`
	Warnings       []string     `json:"warnings,omitempty"`
}

// Item is one report in a batch.
type Item struct {
	HTML       string
	ReportType string
	ReportID   string
}

// BatchSummary aggregates a sequential batch pass.
type BatchSummary struct {
	Total     int      `json:"total"`
	Clean     int      `json:"clean"`
	Sanitized int      `json:"sanitized"`
	Results   []Result `json:"results"`
}

// Process gates one assembled report. Clean content passes through unchanged.
// Forbidden content fails immediately in strict mode, naming the report and
// violation count; otherwise it is sanitized, with one warning per removed
// block and an error-severity log entry.
func Process(logger *zap.Logger, html, reportType, reportID string, opts Options) (Result, error) {
	res := Result{
		HTML:       html,
		ReportType: reportType,
		ReportID:   reportID,
	}

	count := ascii.CountOccurrences(html)
	if count == 0 {
		logger.Info("report clean",
			zap.String("report_type", reportType),
			zap.String("report_id", reportID),
			zap.Int("bytes", len(html)))
		res.Report = ascii.GenerateReport(html, ascii.Result{SanitizedText: html}, contextFor(reportType, reportID))
		return res, nil
	}

	res.AsciiDetected = true
	res.ViolationCount = count

	if opts.StrictMode {
		return Result{}, fmt.Errorf("forbidden content in %s report %s: %d violation(s)", reportType, reportID, count)
	}

	sres := ascii.SanitizeHTML(html, contextFor(reportType, reportID))
	res.HTML = sres.SanitizedText
	res.Sanitized = true
	res.Report = ascii.GenerateReport(html, sres, contextFor(reportType, reportID))

	for _, block := range sres.RemovedBlocks {
		warning := fmt.Sprintf("removed %d-line block at offset %d (%d chars)",
			block.LineCount, block.StartOffset, block.CharCount)
		res.Warnings = append(res.Warnings, warning)
		logger.Warn("failsafe removed block",
			zap.String("report_type", reportType),
			zap.String("report_id", reportID),
			zap.String("block", warning))
	}

	logger.Error("failsafe sanitization triggered",
		zap.String("report_type", reportType),
		zap.String("report_id", reportID),
		zap.Int("violations", count),
		zap.Int("removed_blocks", len(sres.RemovedBlocks)),
		zap.Int("removed_chars", sres.RemovedCharCount))

	return res, nil
}

// ProcessBatch applies Process sequentially, in order, so log output stays
// deterministic. In strict mode the first violation aborts the batch.
func ProcessBatch(logger *zap.Logger, items []Item, opts Options) (BatchSummary, error) {
	summary := BatchSummary{Total: len(items)}
	for _, it := range items {
		res, err := Process(logger, it.HTML, it.ReportType, it.ReportID, opts)
		if err != nil {
			return summary, fmt.Errorf("batch aborted: %w", err)
		}
		if res.Sanitized {
			summary.Sanitized++
		} else {
			summary.Clean++
		}
		summary.Results = append(summary.Results, res)
	}
	return summary, nil
}

func contextFor(reportType, reportID string) string {
	return reportType + "/" + reportID
}
