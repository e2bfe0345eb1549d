// Package metrics scans accumulated pipeline output and derives the
// quantitative indicators consumed by the audit orchestrator, the executive
// dashboard, and the continuous monitor.
package metrics

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/ascii"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/config"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/model"
)

// visualMarker is the tag emitted by the vector renderer, used as a proxy
// for one rendered visual inside a delivered report.
const visualMarker = "<svg"

var scannedExtensions = map[string]bool{
	".html": true,
	".md":   true,
	".json": true,
	".txt":  true,
}

// Collect scans the output tree and derives fresh metrics. Optional
// artifacts (stage durations, consolidated analytics, failsafe triggers,
// monitoring baseline) are read best-effort: a missing or malformed file
// degrades only its own derived metric and logs a warning.
func Collect(logger *zap.Logger, cfg config.Config) model.AuditMetrics {
	m := model.AuditMetrics{CollectedAt: time.Now().UTC()}

	scanOutputTree(logger, cfg.OutputRoot, &m)
	scanReports(logger, cfg.ReportDirs, &m)

	m.AsciiCharsBefore = m.AsciiCharsFound
	if m.AsciiCharsBefore > 0 {
		m.EliminationRate = float64(m.AsciiCharsBefore-m.AsciiCharsAfter) / float64(m.AsciiCharsBefore) * 100
	} else {
		m.EliminationRate = 100
	}

	readStageDurations(logger, cfg.OutputRoot, &m)
	readConsolidated(logger, cfg.OutputRoot, &m)
	readFailsafeTriggers(logger, cfg.OutputRoot, &m)

	m.FailsafeTrend = compareBaseline(logger, cfg.StateDir, m)
	return m
}

func scanOutputTree(logger *zap.Logger, root string, m *model.AuditMetrics) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("skip unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !scannedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			logger.Warn("skip unreadable file", zap.String("path", path), zap.Error(readErr))
			return nil
		}
		m.FilesScanned++
		if n := ascii.CountOccurrences(string(data)); n > 0 {
			m.FilesWithAscii++
			m.AsciiCharsFound += n
		}
		return nil
	})
	if err != nil {
		logger.Warn("output tree scan incomplete", zap.String("root", root), zap.Error(err))
	}
}

func scanReports(logger *zap.Logger, reportDirs []string, m *model.AuditMetrics) {
	totalVisuals := 0
	for _, dir := range reportDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("skip report dir", zap.String("dir", dir), zap.Error(err))
			}
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".html") {
				continue
			}
			data, readErr := os.ReadFile(filepath.Join(dir, e.Name()))
			if readErr != nil {
				logger.Warn("skip unreadable report", zap.String("report", e.Name()), zap.Error(readErr))
				continue
			}
			content := string(data)
			m.TotalReports++
			n := ascii.CountOccurrences(content)
			m.AsciiCharsAfter += n
			if n == 0 {
				m.CleanReports++
			}
			totalVisuals += strings.Count(content, visualMarker)
		}
	}
	if m.TotalReports > 0 {
		m.AvgVisualsPerReport = float64(totalVisuals) / float64(m.TotalReports)
	}
}
