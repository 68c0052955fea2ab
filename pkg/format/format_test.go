package format

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestParseHumanSize(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    int64
		expectError bool
	}{
		{
			name:     "parse megabytes",
			input:    "5Mb",
			expected: 5000000,
		},
		{
			name:     "parse gigabytes",
			input:    "2Gb",
			expected: 2000000000,
		},
		{
			name:     "parse bytes",
			input:    "1024",
			expected: 1024,
		},
		{
			name:        "invalid input",
			input:       "not-a-size",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, err := ParseHumanSize(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, size)
		})
	}
}

func TestContainsI(t *testing.T) {
	assert.True(t, ContainsI("Privacy Policy", "privacy"))
	assert.True(t, ContainsI("PASSWORD=hunter2", "password"))
	assert.True(t, ContainsI("hello", ""))
	assert.False(t, ContainsI("hello", "goodbye"))
}

func TestCleanSnippet(t *testing.T) {
	assert.Equal(t, "a b", CleanSnippet("a\nb"))
	assert.Equal(t, "red", CleanSnippet("\x1b[31mred\x1b[0m"))
	assert.Equal(t, "trimmed", CleanSnippet("  trimmed \n"))
}

func TestRedactValue(t *testing.T) {
	t.Run("short values fully masked", func(t *testing.T) {
		assert.Equal(t, "******", RedactValue("secret"))
	})

	t.Run("long values keep edges only", func(t *testing.T) {
		redacted := RedactValue("user@example.com")
		assert.Equal(t, len("user@example.com"), len(redacted))
		assert.True(t, strings.HasPrefix(redacted, "use"))
		assert.True(t, strings.HasSuffix(redacted, "com"))
		assert.NotContains(t, redacted, "example")
	})

	t.Run("multibyte values stay valid UTF-8", func(t *testing.T) {
		redacted := RedactValue("josé.garcía@voorbeeld.nl")
		assert.True(t, utf8.ValidString(redacted))
		assert.True(t, strings.HasPrefix(redacted, "jos"))
		assert.True(t, strings.HasSuffix(redacted, ".nl"))
		assert.NotContains(t, redacted, "garcía")
	})

	t.Run("short multibyte values fully masked", func(t *testing.T) {
		assert.Equal(t, "****", RedactValue("データ秘"))
	})
}
