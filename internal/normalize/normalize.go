// Package normalize canonicalises incident fields into comparable forms.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	fillerWordsRe = regexp.MustCompile(`\b(the|of|at)\b`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	dayMonthRe    = regexp.MustCompile(`^(\d{1,2})-([A-Za-z]{3})$`)

	schoolAbbreviations = []struct {
		pattern     *regexp.Regexp
		replacement string
	}{
		{regexp.MustCompile(`\bjr\b\.?`), "junior"},
		{regexp.MustCompile(`\bsr\b\.?`), "senior"},
		{regexp.MustCompile(`\belem\b\.?`), "elementary"},
		{regexp.MustCompile(`\bhs\b`), "high school"},
		{regexp.MustCompile(`\bms\b`), "middle school"},
		{regexp.MustCompile(`\bes\b`), "elementary school"},
	}
)

// SchoolName lower-cases a school name, drops filler words, expands common
// abbreviations and collapses whitespace.
func SchoolName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = fillerWordsRe.ReplaceAllString(s, " ")
	for _, abbr := range schoolAbbreviations {
		s = abbr.pattern.ReplaceAllString(s, abbr.replacement)
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// State trims and lower-cases a state value. Full canonicalisation of
// state names happens during ingestion.
func State(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// DateKey is a day-of-year without a year. The zero value means unknown.
type DateKey struct {
	Day   int
	Month time.Month
}

// Known reports whether the date carries a day and month.
func (d DateKey) Known() bool {
	return d.Month >= time.January && d.Month <= time.December && d.Day > 0
}

// Ordinal is the month*31+day approximation used for date distance.
func (d DateKey) Ordinal() int {
	return int(d.Month)*31 + d.Day
}

func (d DateKey) String() string {
	if !d.Known() {
		return "unknown"
	}
	return fmt.Sprintf("%02d-%s", d.Day, d.Month.String()[:3])
}

var unknownDateLiterals = map[string]struct{}{
	"":              {},
	"not specified": {},
	"n/a":           {},
}

var numericDateLayouts = []string{
	"2006-1-2",
	"1/2/2006",
	"1-2-2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
}

// Date parses a "D-Mon" literal or a numeric date. Empty values, "Not
// Specified", "N/A" and unparseable input all yield the unknown DateKey.
func Date(raw string) DateKey {
	s := strings.TrimSpace(raw)
	if _, unknown := unknownDateLiterals[strings.ToLower(s)]; unknown {
		return DateKey{}
	}

	if m := dayMonthRe.FindStringSubmatch(s); m != nil {
		day, err := strconv.Atoi(m[1])
		if err != nil {
			return DateKey{}
		}
		month, ok := monthFromAbbrev(m[2])
		if !ok || day < 1 || day > 31 {
			return DateKey{}
		}
		return DateKey{Day: day, Month: month}
	}

	for _, layout := range numericDateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return DateKey{Day: ts.Day(), Month: ts.Month()}
		}
	}
	return DateKey{}
}

func monthFromAbbrev(abbrev string) (time.Month, bool) {
	lower := strings.ToLower(abbrev)
	for m := time.January; m <= time.December; m++ {
		if strings.ToLower(m.String()[:3]) == lower {
			return m, true
		}
	}
	return 0, false
}

// Threat categories produced by ThreatType.
const (
	ThreatBomb            = "bomb"
	ThreatShooting        = "shooting"
	ThreatGeneric         = "threat"
	ThreatBombAndShooting = "bomb and shooting"
)

// Ordered so that the more specific groups win over the generic one.
var threatGroups = []struct {
	category string
	keywords []string
}{
	{ThreatBomb, []string{"bomb", "bomb threat", "explosive"}},
	{ThreatShooting, []string{"shooting", "gun", "firearm", "active shooter"}},
	{ThreatGeneric, []string{"threat", "threats", "general threat"}},
}

// ThreatType maps a free-text threat description onto bomb, shooting or
// threat. Text naming both bomb and shooting keywords maps to the compound
// category. Anything else is returned lower-cased.
func ThreatType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	if t == "" {
		return ""
	}

	mentionsBomb := containsAny(t, threatGroups[0].keywords)
	mentionsShooting := containsAny(t, threatGroups[1].keywords)
	if mentionsBomb && mentionsShooting {
		return ThreatBombAndShooting
	}
	for _, group := range threatGroups {
		if containsAny(t, group.keywords) {
			return group.category
		}
	}
	return t
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
