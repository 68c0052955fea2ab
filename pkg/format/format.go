// Package format provides shared string, size and redaction helpers.
package format

import (
	"io/fs"
	"strings"

	"github.com/acarl005/stripansi"
	gounits "github.com/docker/go-units"
)

// Common file permission constants used throughout the application.
const (
	// DirUserGroupRead is for directories that should be readable by owner and group (rwxr-x---)
	DirUserGroupRead fs.FileMode = 0750

	// FileUserReadWrite is for files that should only be readable by owner (rw-------)
	// Used for sensitive files like reports and logs
	FileUserReadWrite fs.FileMode = 0600
)

// ParseHumanSize parses a human-readable size string (e.g., "5Mb", "2Gb") into bytes
func ParseHumanSize(size string) (int64, error) {
	return gounits.FromHumanSize(size)
}

// HumanSize renders a byte count as a human-readable string
func HumanSize(size int64) string {
	return gounits.HumanSize(float64(size))
}

func ContainsI(a string, b string) bool {
	return strings.Contains(
		strings.ToLower(a),
		strings.ToLower(b),
	)
}

// CleanSnippet flattens newlines and strips ANSI escapes from a matched snippet
func CleanSnippet(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(stripansi.Strip(text))
}

// RedactValue masks the middle of a matched value so reports never carry the
// full secret or identifier. Short values are masked entirely. Slicing is
// rune-based so multibyte values stay valid UTF-8.
func RedactValue(value string) string {
	runes := []rune(CleanSnippet(value))
	if len(runes) <= 8 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:3]) + strings.Repeat("*", len(runes)-6) + string(runes[len(runes)-3:])
}
