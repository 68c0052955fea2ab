package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/complyscan/complyscan/pkg/scanner/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogComplete(t *testing.T) {
	for _, findingType := range Types() {
		meta := Lookup(findingType)
		assert.NotEmpty(t, meta.Principle, "type %s has no principle", findingType)
		assert.NotEmpty(t, meta.Description, "type %s has no description", findingType)
		assert.NotEmpty(t, meta.Recommendation, "type %s has no recommendation", findingType)
		assert.Contains(t, []types.RiskLevel{types.RiskHigh, types.RiskMedium, types.RiskLow}, meta.Risk,
			"type %s has invalid risk %q", findingType, meta.Risk)
	}
}

func TestLookupStable(t *testing.T) {
	first := Lookup(types.FindingEmail)
	second := Lookup(types.FindingEmail)
	assert.Equal(t, first, second)
	assert.Equal(t, types.RiskMedium, first.Risk)
	assert.Equal(t, PrincipleDataMinimization, first.Principle)
}

func TestLookupUnknownType(t *testing.T) {
	meta := Lookup(types.FindingType("SOMETHING_NEW"))
	assert.Equal(t, types.RiskMedium, meta.Risk)
	assert.NotEmpty(t, meta.Description)
	assert.NotEmpty(t, meta.Recommendation)
}

func TestImpactsFor(t *testing.T) {
	impacts := DefaultImpacts()

	tests := []struct {
		name string
		risk types.RiskLevel
		want int
	}{
		{name: "high", risk: types.RiskHigh, want: -15},
		{name: "medium", risk: types.RiskMedium, want: -7},
		{name: "low", risk: types.RiskLow, want: -3},
		{name: "unknown defaults to medium", risk: types.RiskLevel("critical"), want: -7},
		{name: "empty defaults to medium", risk: types.RiskLevel(""), want: -7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, impacts.For(tt.risk))
		})
	}
}

func TestTypesSorted(t *testing.T) {
	typesList := Types()
	require.NotEmpty(t, typesList)
	for i := 1; i < len(typesList); i++ {
		assert.LessOrEqual(t, typesList[i-1], typesList[i])
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yml")
	content := `
impacts:
  high: -20
  medium: -10
  low: -5
rules:
  EMAIL:
    risk: high
    recommendation: strip all addresses
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	original := Lookup(types.FindingEmail)
	defer func() { catalog[types.FindingEmail] = original }()

	impacts, err := LoadOverrides(path, DefaultImpacts())
	require.NoError(t, err)

	assert.Equal(t, Impacts{High: -20, Medium: -10, Low: -5}, impacts)

	meta := Lookup(types.FindingEmail)
	assert.Equal(t, types.RiskHigh, meta.Risk)
	assert.Equal(t, "strip all addresses", meta.Recommendation)
	assert.Equal(t, original.Description, meta.Description)
}

func TestLoadOverridesMissingFile(t *testing.T) {
	impacts, err := LoadOverrides(filepath.Join(t.TempDir(), "missing.yml"), DefaultImpacts())
	assert.Error(t, err)
	assert.Equal(t, DefaultImpacts(), impacts)
}

func TestLoadOverridesInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [not a map"), 0600))

	_, err := LoadOverrides(path, DefaultImpacts())
	assert.Error(t, err)
}
