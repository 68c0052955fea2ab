package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/complyscan/complyscan/pkg/scanner/types"
)

type patternRule struct {
	typ types.FindingType
	re  *regexp.Regexp
	// validate rejects regex matches that fail a semantic check
	validate func(match string) bool
}

// patternRules is the fixed detection battery. Order is fixed so detector
// output within one file is stable.
var patternRules = []patternRule{
	{
		typ: types.FindingEmail,
		re:  regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
	},
	{
		typ: types.FindingAPIKey,
		re:  regexp.MustCompile(`(?i)(api[_-]?key|apikey|access[_-]?token|auth[_-]?token|client[_-]?secret|private[_-]?key)["']?\s*[:=]\s*["']?[A-Za-z0-9_\-]{16,}`),
	},
	{
		typ: types.FindingAPIKey,
		re:  regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
	},
	{
		typ:      types.FindingAPIKey,
		re:       regexp.MustCompile(`\b[0-9a-fA-F]{40,64}\b`),
		validate: looksLikeHexSecret,
	},
	{
		typ: types.FindingCredentials,
		re:  regexp.MustCompile(`(?i)(password|passwd|pwd)["']?\s*[:=]\s*["']?[^\s"']{4,}`),
	},
	{
		typ: types.FindingCredentials,
		re:  regexp.MustCompile(`(?i)(mysql|postgres(?:ql)?|mongodb(?:\+srv)?|redis|amqp)://[^\s"']+:[^\s"'@]+@`),
	},
	{
		typ:      types.FindingBSN,
		re:       regexp.MustCompile(`\b\d{9}\b`),
		validate: validBSN,
	},
	{
		typ: types.FindingCookie,
		re:  regexp.MustCompile(`(?i)(document\.cookie\s*=|setcookie\s*\(|set-cookie:|cookies\.set\()`),
	},
	{
		typ: types.FindingSQLPersonalData,
		re:  regexp.MustCompile(`(?i)(insert\s+into|delete\s+from|select\s+[^;]{1,80}\s+from|update)\s+["` + "`" + `']?(users?|customers?|persons?|accounts?|patients?|employees?|members?)\b`),
	},
	{
		typ: types.FindingPhone,
		re:  regexp.MustCompile(`\b(\+31|0031|0)[1-9][0-9]{8}\b`),
	},
	{
		typ:      types.FindingIPAddress,
		re:       regexp.MustCompile(`\b(\d{1,3}\.){3}\d{1,3}\b`),
		validate: validPublicIP,
	},
}

// personalDataRe marks content that talks about personal data, used by the
// consent/retention keyword checks.
var personalDataRe = regexp.MustCompile(`(?i)(personal[\s_-]?data|persoonsgegevens|user[\s_-]?data|pii\b)`)

var configExtensions = map[string]bool{
	".env":        true,
	".yaml":       true,
	".yml":        true,
	".json":       true,
	".ini":        true,
	".toml":       true,
	".conf":       true,
	".config":     true,
	".properties": true,
	".xml":        true,
}

var docExtensions = map[string]bool{
	".md":   true,
	".rst":  true,
	".txt":  true,
	".adoc": true,
	".html": true,
	".htm":  true,
}

// validBSN applies the Dutch eleven test: the first eight digits weighted
// 9..2 plus the last digit weighted -1 must sum to a multiple of eleven.
func validBSN(match string) bool {
	if len(match) != 9 || match == "000000000" {
		return false
	}
	sum := 0
	for i := 0; i < 8; i++ {
		sum += int(match[i]-'0') * (9 - i)
	}
	sum -= int(match[8] - '0')
	return sum%11 == 0
}

// looksLikeHexSecret rejects hex runs that are overwhelmingly digits, which
// are usually ids or timestamps rather than keys.
func looksLikeHexSecret(match string) bool {
	letters := 0
	for _, c := range match {
		if (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			letters++
		}
	}
	return letters*4 >= len(match)
}

// validPublicIP checks octet ranges and drops loopback, unspecified and
// broadcast addresses that carry no privacy signal.
func validPublicIP(match string) bool {
	octets := strings.Split(match, ".")
	if len(octets) != 4 {
		return false
	}
	for _, o := range octets {
		n, err := strconv.Atoi(o)
		if err != nil || n > 255 {
			return false
		}
	}
	switch match {
	case "0.0.0.0", "127.0.0.1", "255.255.255.255":
		return false
	}
	return true
}
