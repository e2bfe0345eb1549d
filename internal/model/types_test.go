package model

import "testing"

func TestWorstStatus_Precedence(t *testing.T) {
	tests := []struct {
		name string
		in   []PhaseStatus
		want PhaseStatus
	}{
		{"empty", nil, StatusPass},
		{"all pass", []PhaseStatus{StatusPass, StatusPass}, StatusPass},
		{"warn beats pass", []PhaseStatus{StatusPass, StatusWarn, StatusPass}, StatusWarn},
		{"fail beats warn", []PhaseStatus{StatusWarn, StatusFail}, StatusFail},
		{"error counts as fail", []PhaseStatus{StatusPass, StatusError}, StatusFail},
		{"fail first short-circuits", []PhaseStatus{StatusFail, StatusWarn}, StatusFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WorstStatus(tt.in...); got != tt.want {
				t.Fatalf("WorstStatus(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanReportRate(t *testing.T) {
	m := AuditMetrics{TotalReports: 4, CleanReports: 3}
	if got := m.CleanReportRate(); got != 75 {
		t.Fatalf("CleanReportRate() = %v, want 75", got)
	}

	empty := AuditMetrics{}
	if got := empty.CleanReportRate(); got != 100 {
		t.Fatalf("CleanReportRate() with no reports = %v, want 100", got)
	}
}
