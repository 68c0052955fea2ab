// Package result aggregates per-file findings into the repository-level
// compliance report and computes the compliance score.
package result

import (
	"encoding/json"

	"github.com/complyscan/complyscan/pkg/scanner/types"
)

// Status is the lifecycle state of a scan.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Summary holds the repository-level counters of one scan.
// Invariants: ScannedFiles+SkippedFiles == TotalFiles and the risk counters
// sum to the number of findings in the report.
type Summary struct {
	TotalFiles             int      `json:"total_files"`
	ScannedFiles           int      `json:"scanned_files"`
	SkippedFiles           int      `json:"skipped_files"`
	HighRiskCount          int      `json:"high_risk_count"`
	MediumRiskCount        int      `json:"medium_risk_count"`
	LowRiskCount           int      `json:"low_risk_count"`
	GDPRPrinciplesAffected []string `json:"gdpr_principles_affected"`
	OverallComplianceScore int      `json:"overall_compliance_score"`
}

// ScanResult is the full outcome of one repository scan, serializable for
// downstream consumers (dashboard, report generators).
type ScanResult struct {
	ScanID               string          `json:"scan_id"`
	Status               Status          `json:"status"`
	RepositoryURL        string          `json:"repository_url"`
	Branch               string          `json:"branch"`
	Findings             []types.Finding `json:"findings"`
	Summary              Summary         `json:"summary"`
	ExecutionTimeSeconds float64         `json:"execution_time_seconds"`
	Error                string          `json:"error,omitempty"`
}

// ToJSON serializes the scan result for external consumers.
func (r ScanResult) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
