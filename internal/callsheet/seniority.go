// Package callsheet builds the daily call sheet: it ranks contacts by title
// seniority and buckets them into fixed local-time call blocks.
package callsheet

import (
	"regexp"
	"strings"
)

// DefaultRank is assigned to empty titles and anything below Manager/Lead.
const DefaultRank = 99

// Word-boundary matchers. "Director of Engineering" contains "cto" as a
// substring, so bare Contains is not safe for the short C-level tokens.
var (
	chiefRe   = regexp.MustCompile(`\bCHIEF\b`)
	cLevelRe  = regexp.MustCompile(`\b(CEO|CFO|CTO|CRO|CMO|COO|CIO)\b`)
	founderRe = regexp.MustCompile(`\b(FOUNDER|OWNER|PRESIDENT)\b`)
	vpRe      = regexp.MustCompile(`\bVP\b`)
	leadRe    = regexp.MustCompile(`\bLEAD\b`)
)

// Seniority scores a job title into a discrete tier; lower is more senior.
// Tiers are mutually exclusive, first match wins:
//
//	0  C-level, Founder/Owner/President (unless "Vice" appears)
//	1  SVP / VP / Vice President
//	2  Director / Head Of
//	3  Manager / Lead
//	4  everything else
//
// An empty title sorts last (DefaultRank).
func Seniority(title string) int {
	if strings.TrimSpace(title) == "" {
		return DefaultRank
	}
	t := strings.ToUpper(title)

	if chiefRe.MatchString(t) || cLevelRe.MatchString(t) {
		return 0
	}
	if founderRe.MatchString(t) && !strings.Contains(t, "VICE") {
		return 0
	}
	if strings.Contains(t, "SVP") || strings.Contains(t, "SENIOR VICE") {
		return 1
	}
	if vpRe.MatchString(t) || strings.Contains(t, "VICE PRESIDENT") {
		return 1
	}
	if strings.Contains(t, "DIRECTOR") || strings.Contains(t, "HEAD OF") {
		return 2
	}
	if strings.Contains(t, "MANAGER") || leadRe.MatchString(t) {
		return 3
	}
	return 4
}
