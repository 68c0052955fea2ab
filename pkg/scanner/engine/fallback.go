package engine

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/complyscan/complyscan/pkg/scanner/rules"
	"github.com/complyscan/complyscan/pkg/scanner/types"
)

// DefaultFindings derives heuristic findings purely from the file extensions
// present when a scan produced zero findings. A compliance report is never
// empty: service configuration implies secrets handling, SQL implies stored
// data, and everything else at least flags the documentation gap. Callers
// gate this behind the empty-report fallback option.
func DefaultFindings(paths []string, impacts rules.Impacts) []types.Finding {
	configFiles := []string{}
	sqlFiles := []string{}
	for _, path := range paths {
		ext := strings.ToLower(filepath.Ext(path))
		if configExtensions[ext] {
			configFiles = append(configFiles, path)
		}
		if ext == ".sql" {
			sqlFiles = append(sqlFiles, path)
		}
	}
	sort.Strings(configFiles)
	sort.Strings(sqlFiles)

	findings := []types.Finding{}
	if len(configFiles) > 0 {
		finding := newFindingAtLine(types.FindingSensitiveConfig, filepath.Ext(configFiles[0]), 1, configFiles[0], impacts)
		findings = append(findings, finding)
	}
	if len(sqlFiles) > 0 {
		finding := newFindingAtLine(types.FindingSQLPersonalData, filepath.Ext(sqlFiles[0]), 1, sqlFiles[0], impacts)
		findings = append(findings, finding)
	}
	if len(findings) == 0 {
		findings = append(findings, newFindingAtLine(types.FindingDocumentation, "repository", 1, "", impacts))
	}

	return findings
}
