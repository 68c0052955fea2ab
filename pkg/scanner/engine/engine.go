// Package engine inspects one file's content and returns PII and secret
// findings. Detection is a pure function of file content and metadata, so
// re-running it over an identical snapshot yields identical findings.
package engine

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/complyscan/complyscan/pkg/format"
	"github.com/complyscan/complyscan/pkg/scanner/rules"
	"github.com/complyscan/complyscan/pkg/scanner/types"
	"github.com/wandb/parallel"
)

// ErrDetectionTimeout is returned when per-file hit detection overruns its
// budget. Findings collected before the deadline are still returned.
var ErrDetectionTimeout = errors.New("hit detection timed out")

// perRuleHitCap bounds hits kept per rule on pathological files.
const perRuleHitCap = 10

// Options control one detection run.
type Options struct {
	// MaxGoRoutines controls the number of concurrent pattern matchers
	MaxGoRoutines int
	// ExtensionHeuristics enables the null-result fallback checks that fire
	// when no direct pattern matched. They avoid false "fully compliant"
	// signals on files the pattern battery cannot judge, at the cost of
	// extra low-confidence findings.
	ExtensionHeuristics bool
	// Impacts is the per-risk score deduction stamped onto findings
	Impacts rules.Impacts
}

// DefaultOptions returns sensible defaults for hit detection.
func DefaultOptions() Options {
	return Options{
		MaxGoRoutines:       4,
		ExtensionHeuristics: true,
		Impacts:             rules.DefaultImpacts(),
	}
}

// DetectHits runs the full battery over content within the given timeout.
// On timeout or context cancellation the findings produced so far are
// returned together with ErrDetectionTimeout so the caller can truncate
// rather than discard.
func DetectHits(ctx context.Context, content []byte, path string, timeout time.Duration, opts Options) ([]types.Finding, error) {
	partial := make(chan types.Finding, 512)
	result := make(chan types.DetectionResult, 1)
	go func() {
		result <- detect(ctx, content, path, opts, partial)
	}()

	drain := func() ([]types.Finding, error) {
		collected := []types.Finding{}
		for {
			select {
			case finding := <-partial:
				collected = append(collected, finding)
			default:
				return collected, ErrDetectionTimeout
			}
		}
	}

	select {
	case res := <-result:
		return res.Findings, res.Error
	case <-ctx.Done():
		return drain()
	case <-time.After(timeout):
		return drain()
	}
}

func detect(ctx context.Context, content []byte, path string, opts Options, partial chan<- types.Finding) types.DetectionResult {
	maxThreads := opts.MaxGoRoutines
	if maxThreads < 1 {
		maxThreads = 1
	}

	group := parallel.Collect[[]types.Finding](parallel.Limited(ctx, maxThreads))
	for _, rule := range patternRules {
		group.Go(func(ctx context.Context) ([]types.Finding, error) {
			findings := []types.Finding{}
			hits := rule.re.FindAllIndex(content, perRuleHitCap)
			for _, hit := range hits {
				value := string(content[hit[0]:hit[1]])
				if rule.validate != nil && !rule.validate(value) {
					continue
				}

				finding := newFinding(rule.typ, value, lineForOffset(content, hit[0]), path, opts.Impacts)
				findings = append(findings, finding)
				offerPartial(partial, finding)
			}
			return findings, nil
		})
	}

	results, err := group.Wait()
	if err != nil {
		return types.DetectionResult{Findings: nil, Error: err}
	}
	findings := slices.Concat(results...)

	for _, finding := range keywordFindings(content, path, opts.Impacts) {
		findings = append(findings, finding)
		offerPartial(partial, finding)
	}

	if len(findings) == 0 && opts.ExtensionHeuristics {
		for _, finding := range heuristicFindings(content, path, opts.Impacts) {
			findings = append(findings, finding)
			offerPartial(partial, finding)
		}
	}

	return types.DetectionResult{Findings: findings, Error: nil}
}

// keywordFindings flags personal-data handling that lacks consent or
// retention references. Part of the fixed battery, not extension-gated.
func keywordFindings(content []byte, path string, impacts rules.Impacts) []types.Finding {
	loc := personalDataRe.FindIndex(content)
	if loc == nil {
		return nil
	}

	findings := []types.Finding{}
	line := lineForOffset(content, loc[0])
	value := string(content[loc[0]:loc[1]])
	text := string(content)

	if !format.ContainsI(text, "consent") && !format.ContainsI(text, "toestemming") {
		findings = append(findings, newFindingAtLine(types.FindingConsent, value, line, path, impacts))
	}
	if !format.ContainsI(text, "retention") && !format.ContainsI(text, "bewaartermijn") {
		findings = append(findings, newFindingAtLine(types.FindingRetention, value, line, path, impacts))
	}

	return findings
}

// heuristicFindings is the null-result fallback applied when no direct
// pattern matched, keyed on the file extension.
func heuristicFindings(content []byte, path string, impacts rules.Impacts) []types.Finding {
	ext := strings.ToLower(filepath.Ext(path))
	text := string(content)

	if configExtensions[ext] {
		for _, keyword := range []string{"password", "secret", "credential"} {
			if idx := indexI(text, keyword); idx >= 0 {
				return []types.Finding{
					newFindingAtLine(types.FindingCredentials, keyword, lineForOffset(content, idx), path, impacts),
				}
			}
		}
		return nil
	}

	if docExtensions[ext] {
		if !format.ContainsI(text, "privacy") && !format.ContainsI(text, "policy") {
			return []types.Finding{
				newFindingAtLine(types.FindingDocumentation, filepath.Ext(path), midpointLine(content), path, impacts),
			}
		}
	}

	return nil
}

func newFinding(typ types.FindingType, value string, line int, path string, impacts rules.Impacts) types.Finding {
	meta := rules.Lookup(typ)
	risk := meta.Risk.Normalize()
	return types.Finding{
		Type:           typ,
		Value:          format.RedactValue(value),
		Risk:           risk,
		Line:           line,
		Principle:      meta.Principle,
		File:           path,
		Description:    meta.Description,
		Recommendation: meta.Recommendation,
		Impact:         impacts.For(risk),
	}
}

// newFindingAtLine skips redaction for findings whose value is a keyword or
// extension rather than sensitive content.
func newFindingAtLine(typ types.FindingType, value string, line int, path string, impacts rules.Impacts) types.Finding {
	finding := newFinding(typ, "", line, path, impacts)
	finding.Value = format.CleanSnippet(value)
	return finding
}

func offerPartial(partial chan<- types.Finding, finding types.Finding) {
	select {
	case partial <- finding:
	default:
	}
}

// lineForOffset returns the 1-based line number of a byte offset.
func lineForOffset(content []byte, offset int) int {
	if offset > len(content) {
		offset = len(content)
	}
	return 1 + bytes.Count(content[:offset], []byte("\n"))
}

// midpointLine returns the middle line of the file, used when a finding has
// no locatable literal.
func midpointLine(content []byte) int {
	total := 1 + bytes.Count(content, []byte("\n"))
	return (total + 1) / 2
}

func indexI(text string, keyword string) int {
	return strings.Index(strings.ToLower(text), keyword)
}
