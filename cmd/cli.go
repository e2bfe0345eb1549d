// Package cmd wires the bizaudit subcommands to the audit, monitoring, and
// sanitization layers.
package cmd

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/ascii"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/audit"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/config"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/dashboard"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/extract"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/logging"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/model"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/monitor"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/postprocess"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/progress"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/report"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/tui"
	"github.com/Stackked239/bizHealth-Dennis-11.29.25-sub002/internal/version"
)

// exitError carries a process exit code alongside the error text. A FAIL
// verdict is exit 1; usage and internal errors are exit 2.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }
func (e exitError) Unwrap() error { return e.err }

// ExitCode maps an Execute error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 2
}

func Execute(args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "audit":
		return runAuditCmd(args[1:])
	case "monitor":
		return runMonitorCmd(args[1:])
	case "sanitize":
		return runSanitizeCmd(args[1:])
	case "extract":
		return runExtractCmd(args[1:])
	case "postprocess":
		return runPostprocessCmd(args[1:])
	case "version", "--version":
		fmt.Println("bizaudit", version.Version)
		return nil
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		return usageError(fmt.Sprintf("unknown command %q", args[0]))
	}
}

func runAuditCmd(args []string) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	fs.SetOutput(flag.CommandLine.Output())

	root := fs.String("root", ".", "Project root holding prompts/, scripts/, and the output tree")
	verbose := fs.Bool("verbose", false, "Enable verbose logs")
	enableTUI := fs.Bool("tui", false, "Enable interactive terminal UI")
	disableTUI := fs.Bool("no-tui", false, "Disable interactive terminal UI")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) != 0 {
		return usageError("usage: bizaudit audit [flags]")
	}
	if *enableTUI && *disableTUI {
		return errors.New("cannot set both --tui and --no-tui")
	}

	cfg, logger, err := loadEnvironment(*root, *verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	useTUI := isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stderr.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
	if *enableTUI {
		useTUI = true
	}
	if *disableTUI {
		useTUI = false
	}

	var consolidated model.ConsolidatedReport
	if useTUI {
		events := make(chan progress.Event, 128)
		sink := progress.NewChannelSink(events)

		type runResult struct {
			report model.ConsolidatedReport
			err    error
		}
		runDone := make(chan runResult, 1)
		go func() {
			defer close(events)
			r, err := audit.New(cfg, logger, sink).Run()
			runDone <- runResult{report: r, err: err}
		}()

		if err := tui.Run(tui.Options{Events: events}); err != nil {
			return err
		}
		result := <-runDone
		if result.err != nil {
			return result.err
		}
		consolidated = result.report
	} else {
		sink := progress.NewPlainSink(os.Stderr)
		consolidated, err = audit.New(cfg, logger, sink).Run()
		if err != nil {
			return err
		}
	}

	jsonPath, markdownPath, err := report.Write(cfg.AuditDir, consolidated)
	if err != nil {
		return err
	}

	fmt.Println(dashboard.RenderText(consolidated.Summary))
	fmt.Printf("run id:         %s\n", consolidated.RunID)
	fmt.Printf("overall:        %s (%.1f/100)\n", consolidated.Status, consolidated.OverallScore)
	fmt.Printf("audit json:     %s\n", jsonPath)
	fmt.Printf("audit markdown: %s\n", markdownPath)

	if consolidated.Status == model.StatusFail || consolidated.Status == model.StatusError {
		return exitError{code: 1, err: fmt.Errorf("audit verdict %s", consolidated.Status)}
	}
	return nil
}

func runMonitorCmd(args []string) error {
	fs := flag.NewFlagSet("monitor", flag.ContinueOnError)
	fs.SetOutput(flag.CommandLine.Output())

	root := fs.String("root", ".", "Project root holding the output tree and monitoring state")
	verbose := fs.Bool("verbose", false, "Enable verbose logs")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) != 0 {
		return usageError("usage: bizaudit monitor [flags]")
	}

	cfg, logger, err := loadEnvironment(*root, *verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	result, err := monitor.Run(logger, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("week:          %d\n", result.WeekNumber)
	fmt.Printf("health:        %s\n", result.OverallHealth)
	fmt.Printf("stable weeks:  %d\n", result.StableWeeks)
	if result.FullyProven {
		fmt.Println("system:        fully proven")
	}
	for _, c := range result.Comparisons {
		fmt.Printf("  %-26s %10.2f -> %-10.2f %s\n", c.Metric, c.Baseline, c.Current, c.Status)
	}
	for _, a := range result.Alerts {
		fmt.Printf("  [%s] %s\n", strings.ToUpper(a.Severity), a.Message)
	}

	if result.OverallHealth == model.HealthCritical {
		return exitError{code: 1, err: errors.New("monitoring health is critical")}
	}
	return nil
}

func runSanitizeCmd(args []string) error {
	fs := flag.NewFlagSet("sanitize", flag.ContinueOnError)
	fs.SetOutput(flag.CommandLine.Output())

	htmlMode := fs.Bool("html", false, "Preserve markup lines while removing diagram blocks")
	out := fs.String("out", "", "Write sanitized text to this file instead of stdout")
	contextName := fs.String("context", "cli", "Context label recorded in the sanitization report")

	if err := fs.Parse(args); err != nil {
		return err
	}
	input, err := readInput(fs.Args(), "bizaudit sanitize <file|-> [flags]")
	if err != nil {
		return err
	}

	var res ascii.Result
	if *htmlMode {
		res = ascii.SanitizeHTML(input, *contextName)
	} else {
		res = ascii.Sanitize(input, *contextName)
	}

	if *out != "" {
		if err := os.WriteFile(*out, []byte(res.SanitizedText), 0o600); err != nil {
			return fmt.Errorf("write sanitized output: %w", err)
		}
	} else {
		fmt.Println(res.SanitizedText)
	}

	r := ascii.GenerateReport(input, res, *contextName)
	fmt.Fprintf(os.Stderr, "modified=%v blocks_removed=%d chars_removed=%d bytes_removed=%d\n",
		r.Modified, r.RemovedBlocks, r.RemovedChars, r.BytesRemoved)
	return nil
}

func runExtractCmd(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(flag.CommandLine.Output())

	contextName := fs.String("context", "cli", "Context label recorded in extraction errors")
	strict := fs.Bool("strict", false, "Fail when forbidden glyph runs remain after extraction")

	if err := fs.Parse(args); err != nil {
		return err
	}
	input, err := readInput(fs.Args(), "bizaudit extract <file|-> [flags]")
	if err != nil {
		return err
	}

	res := extract.Extract(input, *contextName)
	if err := printJSON(os.Stdout, res); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "specs=%d errors=%d violations=%d\n",
		len(res.Specs), len(res.Errors), len(res.AsciiViolations))
	if *strict {
		if err := extract.AssertQuality(res, *contextName); err != nil {
			return exitError{code: 1, err: err}
		}
	}
	return nil
}

func runPostprocessCmd(args []string) error {
	fs := flag.NewFlagSet("postprocess", flag.ContinueOnError)
	fs.SetOutput(flag.CommandLine.Output())

	strict := fs.Bool("strict", false, "Fail on forbidden content instead of sanitizing")
	verbose := fs.Bool("verbose", false, "Enable verbose logs and per-block warnings")
	write := fs.Bool("write", false, "Rewrite sanitized files in place")
	reportType := fs.String("type", "business-assessment", "Report type label")

	if err := fs.Parse(args); err != nil {
		return err
	}
	files := fs.Args()
	if len(files) == 0 {
		return usageError("usage: bizaudit postprocess <file>... [flags]")
	}

	logger, err := logging.New(*verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	items := make([]postprocess.Item, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read report %s: %w", path, err)
		}
		items = append(items, postprocess.Item{
			HTML:       string(data),
			ReportType: *reportType,
			ReportID:   path,
		})
	}

	summary, err := postprocess.ProcessBatch(logger, items, postprocess.Options{
		StrictMode: *strict,
		Verbose:    *verbose,
	})
	if err != nil {
		return exitError{code: 1, err: err}
	}

	if *write {
		for i, res := range summary.Results {
			if !res.Sanitized {
				continue
			}
			if err := os.WriteFile(files[i], []byte(res.HTML), 0o600); err != nil {
				return fmt.Errorf("rewrite report %s: %w", files[i], err)
			}
			logger.Info("report rewritten", zap.String("path", files[i]))
		}
	}

	fmt.Printf("total=%d clean=%d sanitized=%d\n", summary.Total, summary.Clean, summary.Sanitized)
	return nil
}

func loadEnvironment(root string, verbose bool) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg = cfg.Resolve(root)
	if cfg.Verbose != nil && *cfg.Verbose {
		verbose = true
	}
	logger, err := logging.New(verbose)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// readInput resolves the single positional argument to file content, with
// "-" meaning stdin.
func readInput(args []string, usage string) (string, error) {
	if len(args) != 1 {
		return "", usageError("usage: " + usage)
	}
	if args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func usageError(msg string) error {
	printUsage()
	return errors.New(msg)
}

func printUsage() {
	fmt.Fprint(flag.CommandLine.Output(), `bizaudit - quality enforcement for generated business reports

Usage:
  bizaudit audit [flags]            Run the full audit battery
  bizaudit monitor [flags]          Run one continuous-monitoring period
  bizaudit sanitize <file|-> ...    Remove forbidden diagram content
  bizaudit extract <file|-> ...     Extract visualization specs from a report
  bizaudit postprocess <file>...    Failsafe-gate assembled report files
  bizaudit version                  Print the binary version
  bizaudit help                     Show this help

Flags (audit):
  --root     Project root (default ".")
  --tui      Force the interactive terminal UI
  --no-tui   Disable the interactive terminal UI
  --verbose  Verbose logs

Flags (monitor):
  --root     Project root (default ".")
  --verbose  Verbose logs

Flags (sanitize):
  --html     Preserve markup lines
  --out      Output file (default stdout)
  --context  Context label for the report

Flags (extract):
  --strict   Fail when forbidden glyph runs remain
  --context  Context label for extraction errors

Flags (postprocess):
  --strict   Fail instead of sanitizing
  --write    Rewrite sanitized files in place
  --type     Report type label
  --verbose  Verbose logs
`)
}
