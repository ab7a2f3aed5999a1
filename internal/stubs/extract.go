package stubs

import (
	"regexp"
	"strings"

	"horse.fit/threatwatch/internal/incident"
)

const NotSpecified = "Not Specified"

var nonUSIndicators = compileAll(
	`(?i)\bIndia\b`, `(?i)\bCanada\b`, `(?i)\bUK\b`, `(?i)\bUnited Kingdom\b`, `(?i)\bAustralia\b`,
	`(?i)\bPakistan\b`, `(?i)\bJalandhar\b`, `(?i)\bDera Ballan\b`, `(?i)\bClaresholm\b`,
	`(?i)\bModi\b`, `(?i)\bToronto\b`, `(?i)\bVancouver\b`, `(?i)\bMelbourne\b`,
	`(?i)\bSydney\b`, `(?i)\bLondon\b`, `(?i)\bManchester\b`, `(?i)\bBirmingham\b`,
	`(?i)\bOntario\b`, `(?i)\bAlberta\b`, `(?i)\bQuebec\b`, `(?i)\bBritish Columbia\b`,
)

// Title-case runs only, so a whole sentence is never captured.
var schoolPatterns = compileAll(
	`([A-Z][a-zA-Z0-9]*(?:\s+[A-Z][a-zA-Z0-9]*){0,3}\s+(?:Junior|Senior)?\s*(?:High|Middle|Elementary)\s+Schools?)`,
	`([A-Z][a-zA-Z0-9]*(?:\s+[A-Z][a-zA-Z0-9]*){0,3}\s+Community\s+Schools?)`,
	`([A-Z][a-zA-Z0-9]*(?:\s+[A-Z][a-zA-Z0-9]*){0,3}\s+(?:High|Middle|Elementary)\s+(?:Campus|Academy|campus))`,
	`([A-Z][a-zA-Z0-9]*(?:\s+[A-Z][a-zA-Z0-9]*){0,2}\s+Schools?)`,
	`([A-Z][a-zA-Z0-9]*(?:\s+[A-Z][a-zA-Z0-9]*){0,2}\s+Academy)`,
	`([A-Z][a-zA-Z0-9]*(?:\s+[A-Z][a-zA-Z0-9]*){0,2}\s+University)`,
	`([A-Z][a-zA-Z0-9]*(?:\s+[A-Z][a-zA-Z0-9]*){0,2}\s+College)`,
)

var leadingOrdinal = regexp.MustCompile(`(?i)^(?:First|Second|Third|Fourth|Fifth)\s+`)

var (
	schoolTerms = []string{"school", "campus", "student", "classroom"}
	threatTerms = []string{
		"threat", "lockdown", "bomb", "shooting", "gun", "arrest",
		"charged", "weapon", "evacuate", "evacuation", "swat", "police",
	}
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// ExtractSchool returns the first school-like proper name in a headline.
func ExtractSchool(title string) string {
	for _, pattern := range schoolPatterns {
		m := pattern.FindStringSubmatch(title)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		return leadingOrdinal.ReplaceAllString(name, "")
	}
	return ""
}

// ExtractThreatType classifies a headline by keyword.
func ExtractThreatType(title string) string {
	t := strings.ToLower(title)
	bomb := strings.Contains(t, "bomb")
	gun := strings.Contains(t, "shoot") || strings.Contains(t, "gun")
	switch {
	case bomb && gun:
		return "Bomb and Shooting"
	case bomb:
		return "Bomb"
	case gun:
		return "Shooting"
	case strings.Contains(t, "threat"), strings.Contains(t, "lockdown"):
		return "Threat"
	default:
		return "General Threat"
	}
}

// ExtractSchoolType guesses the school level from a headline. Unknown
// levels are left blank.
func ExtractSchoolType(title string) string {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "elementary"):
		return "Elementary School"
	case strings.Contains(t, "middle"), strings.Contains(t, "junior high"):
		return "Middle School"
	case strings.Contains(t, "high"):
		return "High School"
	case strings.Contains(t, "university"), strings.Contains(t, "college"):
		return "University/College"
	default:
		return ""
	}
}

// LikelyUS reports whether a headline reads as a US school threat story.
func LikelyUS(title string) bool {
	for _, pattern := range nonUSIndicators {
		if pattern.MatchString(title) {
			return false
		}
	}
	t := strings.ToLower(title)
	if !containsAny(t, schoolTerms) {
		return false
	}
	return containsAny(t, threatTerms) || ExtractState(title) != ""
}

// OffenseDate renders a publish timestamp as "D-Mon", e.g. "5-Jan".
func OffenseDate(published string) string {
	t, ok := incident.Article{Published: published}.PublishedTime()
	if !ok {
		return NotSpecified
	}
	return t.Format("2-Jan")
}
