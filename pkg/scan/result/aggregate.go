package result

import (
	"sort"

	"github.com/complyscan/complyscan/pkg/logging"
	"github.com/complyscan/complyscan/pkg/scan/scheduler"
	"github.com/complyscan/complyscan/pkg/scanner/rules"
	"github.com/complyscan/complyscan/pkg/scanner/types"
	"github.com/rs/zerolog/log"
	"github.com/rxwycdh/rxhash"
)

// AggregateOptions control how per-file findings merge into the report.
type AggregateOptions struct {
	// PerFileCap bounds findings kept per file so one pathological file
	// cannot flood the report
	PerFileCap int
	// SkipRatioLimit is the skipped/total ratio above which a synthetic
	// repository-too-large finding is injected
	SkipRatioLimit float64
	// Impacts is the score deduction table stamped onto synthetic findings
	Impacts rules.Impacts
}

// DefaultAggregateOptions returns the standard aggregation settings.
func DefaultAggregateOptions() AggregateOptions {
	return AggregateOptions{
		PerFileCap:     5,
		SkipRatioLimit: 0.5,
		Impacts:        rules.DefaultImpacts(),
	}
}

// findingKey identifies a finding for deduplication. Line is excluded so the
// same value repeated through a file counts once.
type findingKey struct {
	Type  types.FindingType
	Value string
	File  string
}

// Aggregate merges scheduler output into the report findings and summary.
// totalFiles is the number of files discovered by the file set builder;
// every discovered file that was not successfully scanned counts as skipped.
func Aggregate(run scheduler.Result, totalFiles int, opts AggregateOptions) ([]types.Finding, Summary) {
	findings := []types.Finding{}
	seen := map[string]bool{}
	scanned := 0

	for _, file := range run.Files {
		if file.Skipped {
			continue
		}
		scanned++

		kept := file.Findings
		if opts.PerFileCap > 0 && len(kept) > opts.PerFileCap {
			kept = kept[:opts.PerFileCap]
		}
		for _, finding := range kept {
			hash, err := rxhash.HashStruct(findingKey{Type: finding.Type, Value: finding.Value, File: finding.File})
			if err == nil {
				if seen[hash] {
					continue
				}
				seen[hash] = true
			}
			findings = append(findings, finding)
		}
	}

	findings = append(findings, run.Fallback...)

	summary := Summary{
		TotalFiles:   totalFiles,
		ScannedFiles: scanned,
		SkippedFiles: totalFiles - scanned,
	}

	if summary.TotalFiles > 0 && float64(summary.SkippedFiles)/float64(summary.TotalFiles) > opts.SkipRatioLimit {
		log.Warn().
			Int("skipped", summary.SkippedFiles).
			Int("total", summary.TotalFiles).
			Msg("Majority of files skipped, flagging partial coverage")
		coverage := coverageFinding(opts.Impacts)
		ReportFinding(coverage, ReportOptions{Source: logging.SourceSummary})
		findings = append(findings, coverage)
	}

	principles := map[string]bool{}
	for _, finding := range findings {
		switch finding.Risk.Normalize() {
		case types.RiskHigh:
			summary.HighRiskCount++
		case types.RiskMedium:
			summary.MediumRiskCount++
		case types.RiskLow:
			summary.LowRiskCount++
		}
		if finding.Principle != "" {
			principles[finding.Principle] = true
		}
	}

	summary.GDPRPrinciplesAffected = make([]string, 0, len(principles))
	for principle := range principles {
		summary.GDPRPrinciplesAffected = append(summary.GDPRPrinciplesAffected, principle)
	}
	sort.Strings(summary.GDPRPrinciplesAffected)

	return findings, summary
}

// coverageFinding is the synthetic high-risk finding surfacing that most of
// the repository went unscanned: undetected PII in unscanned files is itself
// a compliance risk.
func coverageFinding(impacts rules.Impacts) types.Finding {
	meta := rules.Lookup(types.FindingRepoTooLarge)
	return types.Finding{
		Type:           types.FindingRepoTooLarge,
		Value:          "partial coverage",
		Risk:           meta.Risk,
		Line:           0,
		Principle:      meta.Principle,
		File:           "",
		Description:    meta.Description,
		Recommendation: meta.Recommendation,
		Impact:         impacts.For(meta.Risk),
	}
}
