package types

// RiskLevel classifies how severe a finding is for the compliance score.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// Normalize maps any undefined level to medium so downstream counters and
// the scorer only ever see the three known levels.
func (r RiskLevel) Normalize() RiskLevel {
	switch r {
	case RiskHigh, RiskMedium, RiskLow:
		return r
	default:
		return RiskMedium
	}
}

// FindingType is the closed set of finding kinds the detector can emit.
// Every type has an entry in the rules catalog; adding a type without
// catalog metadata is a programming error caught by the rules tests.
type FindingType string

const (
	FindingEmail           FindingType = "EMAIL"
	FindingAPIKey          FindingType = "API_KEY"
	FindingBSN             FindingType = "BSN"
	FindingCredentials     FindingType = "CREDENTIALS"
	FindingCookie          FindingType = "COOKIE"
	FindingSQLPersonalData FindingType = "SQL_PERSONAL_DATA"
	FindingPhone           FindingType = "PHONE"
	FindingIPAddress       FindingType = "IP_ADDRESS"
	FindingConsent         FindingType = "CONSENT"
	FindingRetention       FindingType = "RETENTION"
	FindingDocumentation   FindingType = "DOCUMENTATION"
	FindingSensitiveConfig FindingType = "SENSITIVE_CONFIG"
	FindingRepoTooLarge    FindingType = "REPOSITORY_TOO_LARGE"
)

// Finding is one detected PII/secret occurrence. Value is always redacted
// before the finding leaves the engine. Line is 1-based and best-effort.
type Finding struct {
	Type           FindingType `json:"type"`
	Value          string      `json:"value"`
	Risk           RiskLevel   `json:"risk_level"`
	Line           int         `json:"line"`
	Principle      string      `json:"gdpr_principle"`
	File           string      `json:"file"`
	Description    string      `json:"description"`
	Recommendation string      `json:"recommendation"`
	Impact         int         `json:"score_impact"`
}

// DetectionResult wraps the outcome of one detector run over one file.
type DetectionResult struct {
	Findings []Finding
	Error    error
}
