// Package scanner is the public face of the detection stack, re-exporting the
// detector, the rule catalog and the shared types.
package scanner

import (
	"github.com/complyscan/complyscan/pkg/scanner/engine"
	"github.com/complyscan/complyscan/pkg/scanner/rules"
	"github.com/complyscan/complyscan/pkg/scanner/types"
)

type Finding = types.Finding
type FindingType = types.FindingType
type RiskLevel = types.RiskLevel
type DetectionResult = types.DetectionResult

type DetectOptions = engine.Options
type RuleMetadata = rules.Metadata
type ScoreImpacts = rules.Impacts

var DetectHits = engine.DetectHits
var DefaultDetectOptions = engine.DefaultOptions
var DefaultFindings = engine.DefaultFindings

var LookupMetadata = rules.Lookup
var FindingTypes = rules.Types
var DefaultImpacts = rules.DefaultImpacts
var LoadRuleOverrides = rules.LoadOverrides
