// Package rules holds the static finding catalog: for every finding type the
// risk level, affected GDPR principle, description, recommendation and score
// impact. Identical finding types always produce identical metadata.
package rules

import (
	"fmt"
	"os"
	"slices"

	"github.com/complyscan/complyscan/pkg/scanner/types"
	"gopkg.in/yaml.v3"
)

// GDPR principles used to tag findings.
const (
	PrincipleLawfulness       = "lawfulness, fairness and transparency"
	PrinciplePurposeLimit     = "purpose limitation"
	PrincipleDataMinimization = "data minimization"
	PrincipleAccuracy         = "accuracy"
	PrincipleStorageLimit     = "storage limitation"
	PrincipleConfidentiality  = "integrity and confidentiality"
	PrincipleAccountability   = "accountability"
)

// Metadata is the catalog entry for one finding type.
type Metadata struct {
	Risk           types.RiskLevel `yaml:"risk"`
	Principle      string          `yaml:"principle"`
	Description    string          `yaml:"description"`
	Recommendation string          `yaml:"recommendation"`
}

// Impacts is the per-risk score deduction applied by the scorer.
type Impacts struct {
	High   int `yaml:"high"`
	Medium int `yaml:"medium"`
	Low    int `yaml:"low"`
}

// DefaultImpacts returns the standard score deductions.
func DefaultImpacts() Impacts {
	return Impacts{High: -15, Medium: -7, Low: -3}
}

// For returns the deduction for a risk level. Undefined levels count as medium.
func (i Impacts) For(risk types.RiskLevel) int {
	switch risk.Normalize() {
	case types.RiskHigh:
		return i.High
	case types.RiskLow:
		return i.Low
	default:
		return i.Medium
	}
}

var catalog = map[types.FindingType]Metadata{
	types.FindingEmail: {
		Risk:           types.RiskMedium,
		Principle:      PrincipleDataMinimization,
		Description:    "Email address embedded in repository content",
		Recommendation: "Remove the address or replace it with a placeholder such as user@example.com",
	},
	types.FindingAPIKey: {
		Risk:           types.RiskHigh,
		Principle:      PrincipleConfidentiality,
		Description:    "String resembling an API key or access token",
		Recommendation: "Rotate the credential and move it to a secret manager or environment variable",
	},
	types.FindingBSN: {
		Risk:           types.RiskHigh,
		Principle:      PrincipleDataMinimization,
		Description:    "Number matching the Dutch citizen service number (BSN) format",
		Recommendation: "Remove the BSN; national identification numbers must never be stored in source code",
	},
	types.FindingCredentials: {
		Risk:           types.RiskHigh,
		Principle:      PrincipleConfidentiality,
		Description:    "Hardcoded password or credential assignment",
		Recommendation: "Rotate the credential and load it from configuration outside the repository",
	},
	types.FindingCookie: {
		Risk:           types.RiskLow,
		Principle:      PrincipleLawfulness,
		Description:    "Cookie-setting statement without an obvious consent gate",
		Recommendation: "Verify cookies are only set after the user consented per the ePrivacy rules",
	},
	types.FindingSQLPersonalData: {
		Risk:           types.RiskMedium,
		Principle:      PrinciplePurposeLimit,
		Description:    "SQL statement touching tables or columns that hold personal data",
		Recommendation: "Document the processing purpose and restrict queried columns to what is needed",
	},
	types.FindingPhone: {
		Risk:           types.RiskMedium,
		Principle:      PrincipleDataMinimization,
		Description:    "Phone number embedded in repository content",
		Recommendation: "Remove the number or replace it with a fictitious test value",
	},
	types.FindingIPAddress: {
		Risk:           types.RiskLow,
		Principle:      PrincipleDataMinimization,
		Description:    "IP address literal; IP addresses are personal data under the GDPR",
		Recommendation: "Use documentation ranges (192.0.2.0/24) or configuration instead of literals",
	},
	types.FindingConsent: {
		Risk:           types.RiskLow,
		Principle:      PrincipleLawfulness,
		Description:    "Personal data handling without a nearby consent reference",
		Recommendation: "Ensure a lawful basis is established and referenced where personal data is processed",
	},
	types.FindingRetention: {
		Risk:           types.RiskLow,
		Principle:      PrincipleStorageLimit,
		Description:    "Personal data handling without a retention period reference",
		Recommendation: "Define and document a retention period for the stored personal data",
	},
	types.FindingDocumentation: {
		Risk:           types.RiskLow,
		Principle:      PrincipleAccountability,
		Description:    "Project documentation lacks a privacy or data protection section",
		Recommendation: "Add a privacy policy reference describing what personal data the project touches",
	},
	types.FindingSensitiveConfig: {
		Risk:           types.RiskMedium,
		Principle:      PrincipleConfidentiality,
		Description:    "Service configuration files present; these commonly carry secrets or personal data",
		Recommendation: "Review configuration files for embedded credentials and personal data",
	},
	types.FindingRepoTooLarge: {
		Risk:           types.RiskHigh,
		Principle:      PrincipleAccountability,
		Description:    "Repository too large to fully analyze; unscanned files may contain personal data",
		Recommendation: "Run a full scan with raised limits or split the repository into smaller units",
	},
}

// Lookup returns the catalog metadata for a finding type. Unknown types get a
// generic medium entry so a forgotten catalog line never panics a scan.
func Lookup(t types.FindingType) Metadata {
	if meta, ok := catalog[t]; ok {
		return meta
	}
	return Metadata{
		Risk:           types.RiskMedium,
		Principle:      PrincipleAccountability,
		Description:    fmt.Sprintf("Uncatalogued finding type %s", t),
		Recommendation: "Review the flagged content manually",
	}
}

// Types returns all catalogued finding types, sorted for stable listings.
func Types() []types.FindingType {
	out := make([]types.FindingType, 0, len(catalog))
	for t := range catalog {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

type overrideFile struct {
	Impacts *Impacts                          `yaml:"impacts"`
	Rules   map[types.FindingType]rawOverride `yaml:"rules"`
}

type rawOverride struct {
	Risk           types.RiskLevel `yaml:"risk"`
	Principle      string          `yaml:"principle"`
	Description    string          `yaml:"description"`
	Recommendation string          `yaml:"recommendation"`
}

// LoadOverrides reads a YAML file that tunes catalog entries and impacts.
// Only the fields present in the file are overridden.
func LoadOverrides(path string, impacts Impacts) (Impacts, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return impacts, fmt.Errorf("failed reading rules override file: %w", err)
	}

	var overrides overrideFile
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return impacts, fmt.Errorf("failed unmarshalling rules override file: %w", err)
	}

	for t, o := range overrides.Rules {
		meta := Lookup(t)
		if o.Risk != "" {
			meta.Risk = o.Risk.Normalize()
		}
		if o.Principle != "" {
			meta.Principle = o.Principle
		}
		if o.Description != "" {
			meta.Description = o.Description
		}
		if o.Recommendation != "" {
			meta.Recommendation = o.Recommendation
		}
		catalog[t] = meta
	}

	if overrides.Impacts != nil {
		return *overrides.Impacts, nil
	}
	return impacts, nil
}
