package language

import "strings"

// Locale is a feed locale such as "en-US": a language code plus an
// optional upper-case region.
type Locale struct {
	Code   string
	Region string
}

// ParseLocale normalizes a locale tag. Separators may be "-" or "_", case
// is ignored, and anything past the region subtag is dropped. It reports
// false when the value is blank or the language subtag is not alphabetic.
func ParseLocale(raw string) (Locale, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return Locale{}, false
	}

	trimmed = strings.ReplaceAll(trimmed, "_", "-")
	parts := make([]string, 0, 2)
	for _, part := range strings.Split(trimmed, "-") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !isAlphaLower(part) {
			return Locale{}, false
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return Locale{}, false
	}

	locale := Locale{Code: parts[0]}
	if len(parts) > 1 {
		locale.Region = strings.ToUpper(parts[1])
	}
	return locale, true
}

// Tag renders the locale as "en-US", or just the code without a region.
func (l Locale) Tag() string {
	if l.Region == "" {
		return l.Code
	}
	return l.Code + "-" + l.Region
}

// EditionID renders the "US:en" form Google News uses for its ceid
// parameter.
func (l Locale) EditionID() string {
	if l.Region == "" {
		return l.Code
	}
	return l.Region + ":" + l.Code
}

func isAlphaLower(value string) bool {
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
