// Package config loads audit configuration from layered yaml files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Thresholds holds the documented pass/warn/fail boundaries used by the
// dashboard and monitor. Percentages unless noted.
type Thresholds struct {
	FailsafePassRate    *float64 `yaml:"failsafe_pass_rate,omitempty"`
	FailsafeWarnRate    *float64 `yaml:"failsafe_warn_rate,omitempty"`
	ExtractionWarnRate  *float64 `yaml:"extraction_warn_rate,omitempty"`
	StageDurationWarnMS *int64   `yaml:"stage_duration_warn_ms,omitempty"`
}

// Config mirrors the common audit/monitor flag names. Zero values mean
// "not set"; Resolve fills defaults.
type Config struct {
	OutputRoot string   `yaml:"output_root,omitempty"`
	ReportDirs []string `yaml:"report_dirs,omitempty"`
	StateDir   string   `yaml:"state_dir,omitempty"`
	AuditDir   string   `yaml:"audit_dir,omitempty"`

	RequiredArtifacts []string `yaml:"required_artifacts,omitempty"`
	GuidanceSources   []string `yaml:"guidance_sources,omitempty"`
	ConsumerModules   []string `yaml:"consumer_modules,omitempty"`
	SchemaFile        string   `yaml:"schema_file,omitempty"`

	// PipelineCommand, when set, is executed as a blocking subprocess by the
	// functional phase to exercise the end-to-end generation path.
	PipelineCommand []string `yaml:"pipeline_command,omitempty"`

	Verbose    *bool      `yaml:"verbose,omitempty"`
	Thresholds Thresholds `yaml:"thresholds,omitempty"`
}

// Load reads config from layered sources:
//  1. ~/.bizaudit/config.yaml (global)
//  2. ./.bizaudit/config.yaml (repo-local, takes precedence)
//
// Missing files are silently ignored.
func Load() (Config, error) {
	var merged Config

	home, _ := os.UserHomeDir()
	if home != "" {
		globalPath := filepath.Join(home, ".bizaudit", "config.yaml")
		global, err := loadFile(globalPath)
		if err != nil {
			return Config{}, fmt.Errorf("load global config %s: %w", globalPath, err)
		}
		merged = merge(merged, global)
	}

	cwd, _ := os.Getwd()
	if cwd != "" {
		localPath := filepath.Join(cwd, ".bizaudit", "config.yaml")
		local, err := loadFile(localPath)
		if err != nil {
			return Config{}, fmt.Errorf("load local config %s: %w", localPath, err)
		}
		merged = merge(merged, local)
	}

	return merged, nil
}

// Resolve fills unset fields with defaults rooted at root.
func (c Config) Resolve(root string) Config {
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	join := func(parts ...string) string {
		return filepath.Join(append([]string{root}, parts...)...)
	}

	if c.OutputRoot == "" {
		c.OutputRoot = join("output")
	}
	if len(c.ReportDirs) == 0 {
		c.ReportDirs = []string{join("output", "reports")}
	}
	if c.StateDir == "" {
		c.StateDir = join(".bizaudit", "monitoring")
	}
	if c.AuditDir == "" {
		c.AuditDir = join(".bizaudit", "audit")
	}
	if len(c.RequiredArtifacts) == 0 {
		c.RequiredArtifacts = []string{
			join("prompts", "report-guidance.md"),
			join("prompts", "visualization-guidance.md"),
			join("scripts", "consolidate-phases.py"),
			join("scripts", "phase4-compiler.py"),
			join("scripts", "idm_models.py"),
			join("templates", "report.html"),
		}
	}
	if len(c.GuidanceSources) == 0 {
		c.GuidanceSources = []string{
			join("prompts", "report-guidance.md"),
			join("prompts", "visualization-guidance.md"),
		}
	}
	if len(c.ConsumerModules) == 0 {
		c.ConsumerModules = []string{
			join("scripts", "phase4-compiler.py"),
			join("scripts", "phase4-idm-compiler.py"),
		}
	}
	if c.SchemaFile == "" {
		c.SchemaFile = join("scripts", "idm_models.py")
	}

	t := &c.Thresholds
	if t.FailsafePassRate == nil {
		t.FailsafePassRate = f64(1)
	}
	if t.FailsafeWarnRate == nil {
		t.FailsafeWarnRate = f64(5)
	}
	if t.ExtractionWarnRate == nil {
		t.ExtractionWarnRate = f64(90)
	}
	if t.StageDurationWarnMS == nil {
		v := int64(5 * 60 * 1000)
		t.StageDurationWarnMS = &v
	}
	return c
}

func f64(v float64) *float64 { return &v }

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 {
		return Config{}, nil
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// merge applies overrides from b onto a. Non-zero fields in b win.
func merge(a, b Config) Config {
	if b.OutputRoot != "" {
		a.OutputRoot = b.OutputRoot
	}
	if len(b.ReportDirs) > 0 {
		a.ReportDirs = b.ReportDirs
	}
	if b.StateDir != "" {
		a.StateDir = b.StateDir
	}
	if b.AuditDir != "" {
		a.AuditDir = b.AuditDir
	}
	if len(b.RequiredArtifacts) > 0 {
		a.RequiredArtifacts = b.RequiredArtifacts
	}
	if len(b.GuidanceSources) > 0 {
		a.GuidanceSources = b.GuidanceSources
	}
	if len(b.ConsumerModules) > 0 {
		a.ConsumerModules = b.ConsumerModules
	}
	if b.SchemaFile != "" {
		a.SchemaFile = b.SchemaFile
	}
	if len(b.PipelineCommand) > 0 {
		a.PipelineCommand = b.PipelineCommand
	}
	if b.Verbose != nil {
		a.Verbose = b.Verbose
	}
	if b.Thresholds.FailsafePassRate != nil {
		a.Thresholds.FailsafePassRate = b.Thresholds.FailsafePassRate
	}
	if b.Thresholds.FailsafeWarnRate != nil {
		a.Thresholds.FailsafeWarnRate = b.Thresholds.FailsafeWarnRate
	}
	if b.Thresholds.ExtractionWarnRate != nil {
		a.Thresholds.ExtractionWarnRate = b.Thresholds.ExtractionWarnRate
	}
	if b.Thresholds.StageDurationWarnMS != nil {
		a.Thresholds.StageDurationWarnMS = b.Thresholds.StageDurationWarnMS
	}
	return a
}
