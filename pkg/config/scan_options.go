// Package config provides shared configuration types and validation helpers.
// This package centralizes the knobs of the scanning pipeline so defaults and
// flag parsing stay consistent.
package config

import (
	"time"

	"github.com/complyscan/complyscan/pkg/scanner/rules"
)

// ScanOptions contains every tunable of one repository scan.
type ScanOptions struct {
	// MaxScanGoRoutines controls the number of concurrent scanning workers
	MaxScanGoRoutines int
	// GlobalTimeout is the time budget for scanning the whole file set
	GlobalTimeout time.Duration
	// FileTimeout is the per-file detection budget
	FileTimeout time.Duration
	// CloneTimeout bounds repository acquisition
	CloneTimeout time.Duration
	// MaxFileSize is the per-file byte ceiling; larger files are skipped unread
	MaxFileSize int64
	// LargeRepoSize is the snapshot byte size above which a repository is flagged large
	LargeRepoSize int64
	// LargeRepoFiles is the candidate count at which sampling kicks in
	LargeRepoFiles int
	// UltraRepoFiles is the candidate count that marks a repository ultra-large
	UltraRepoFiles int
	// MaxSampledFiles caps the sampled set for large repositories
	MaxSampledFiles int
	// UltraMaxSampledFiles caps the sampled set for ultra-large repositories
	UltraMaxSampledFiles int
	// BatchSize is the number of files dispatched between global budget checks
	BatchSize int
	// ConcurrentThreshold is the sampled count above which scanning goes concurrent
	ConcurrentThreshold int
	// PerFileFindingCap bounds findings kept per file during aggregation
	PerFileFindingCap int
	// TruncatedFindingCap bounds findings kept for a file that overran its budget
	TruncatedFindingCap int
	// SkipRatioLimit is the skipped/total ratio above which the report gets a
	// repository-too-large finding
	SkipRatioLimit float64
	// EmptyReportFallback enables heuristic default findings when a scan
	// produced none. Deliberate product policy: a compliance report is never
	// empty. Disable for raw detector output.
	EmptyReportFallback bool
	// ExtensionHeuristics enables the per-file null-result heuristics
	ExtensionHeuristics bool
	// Impacts is the per-risk score deduction table
	Impacts rules.Impacts
	// RulesFile optionally points to a YAML file overriding catalog metadata
	RulesFile string
}

// DefaultScanOptions returns sensible default values for a repository scan.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		MaxScanGoRoutines:    4,
		GlobalTimeout:        120 * time.Second,
		FileTimeout:          10 * time.Second,
		CloneTimeout:         300 * time.Second,
		MaxFileSize:          5 * 1000 * 1000, // 5MB
		LargeRepoSize:        100 * 1000 * 1000,
		LargeRepoFiles:       1000,
		UltraRepoFiles:       5000,
		MaxSampledFiles:      500,
		UltraMaxSampledFiles: 100,
		BatchSize:            20,
		ConcurrentThreshold:  50,
		PerFileFindingCap:    5,
		TruncatedFindingCap:  3,
		SkipRatioLimit:       0.5,
		EmptyReportFallback:  true,
		ExtensionHeuristics:  true,
		Impacts:              rules.DefaultImpacts(),
	}
}
