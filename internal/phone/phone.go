// Package phone normalizes Argentine phone numbers the way the fixture
// consumer does before deduplicating persons.
package phone

import (
	"regexp"
	"strings"
)

var (
	nonDialable = regexp.MustCompile(`[^\d+]`)
	nonDigit    = regexp.MustCompile(`\D`)
	tenDigits   = regexp.MustCompile(`^\d{10}$`)
)

func localPart(s string) string {
	s = strings.TrimPrefix(s, "15")
	s = nonDigit.ReplaceAllString(s, "")
	if len(s) > 8 {
		s = s[:8]
	}
	return s
}

// NormalizeE164 returns the +549 form of raw, or "" when it cannot be parsed.
func NormalizeE164(raw string) string {
	s := nonDialable.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "+")
	s = strings.TrimPrefix(s, "00")
	s = strings.TrimPrefix(s, "54")
	s = strings.TrimPrefix(s, "0")

	// Buenos Aires
	if strings.HasPrefix(s, "11") {
		local := localPart(s[2:])
		if len(local) < 6 {
			return ""
		}
		return "+54911" + local
	}

	for _, n := range []int{4, 3, 2} {
		if len(s) >= n+6 {
			local := localPart(s[n:])
			if len(local) < 6 {
				return ""
			}
			return "+549" + s[:n] + local
		}
	}

	if tenDigits.MatchString(s) {
		return "+54911" + localPart(s)
	}
	return ""
}

// Key is the deduplication key for a phone: its normalized form, or the
// trimmed raw value when normalization fails.
func Key(raw string) string {
	if n := NormalizeE164(raw); n != "" {
		return n
	}
	return strings.TrimSpace(raw)
}
