package course

import (
	"strings"
	"unicode"
)

const (
	maxCodeLen       = 15
	maxInstructorLen = 35
)

// NormalizeCode uppercases raw input, drops anything but A-Z and 0-9 and
// truncates to 15 characters.
func NormalizeCode(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if b.Len() >= maxCodeLen {
			break
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeInstructor keeps letters, spaces, hyphens, apostrophes and periods,
// truncated to 35 characters.
func NormalizeInstructor(raw string) string {
	out := make([]rune, 0, len(raw))
	for _, r := range raw {
		if len(out) >= maxInstructorLen {
			break
		}
		if unicode.IsLetter(r) || r == ' ' || r == '-' || r == '\'' || r == '.' {
			out = append(out, r)
		}
	}
	return string(out)
}

// NormalizeSectionTypes removes duplicates and orders the set canonically.
func NormalizeSectionTypes(in []SectionType) []SectionType {
	out := make([]SectionType, 0, len(in))
	for _, st := range SectionTypes() {
		for _, v := range in {
			if v == st {
				out = append(out, st)
				break
			}
		}
	}
	return out
}

// NormalizeTimes removes duplicates and orders the set canonically.
func NormalizeTimes(in []TimeOfDay) []TimeOfDay {
	out := make([]TimeOfDay, 0, len(in))
	for _, t := range AllTimesOfDay() {
		for _, v := range in {
			if v == t {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
