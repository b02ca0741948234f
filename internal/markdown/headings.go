package markdown

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// minHeadingLength filters out fragments too short to be headings.
	minHeadingLength = 3

	// upperCaseMinLength is the shortest all-caps run treated as a
	// level-1 heading.
	upperCaseMinLength = 5
)

// chapterPatterns match chapter/section/numbered-heading forms (level 2).
// Kept as data so the rules are independently testable.
var chapterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^chapter\s+\d+`),
	regexp.MustCompile(`(?i)^section\s+\d+`),
	regexp.MustCompile(`^\d+\.\s+[A-Z]`),
	regexp.MustCompile(`^\d+\.\d+\s+[A-Z]`),
}

// numericPrefixPattern matches bare "1. Title" forms (level 3).
var numericPrefixPattern = regexp.MustCompile(`^\d+\.\s+\w+`)

// DetectHeading reports whether a paragraph is a heading and at which
// level. Checks run in priority order, first match wins: all-caps (1),
// chapter/section forms (2), bare numeric prefix (3).
func DetectHeading(paragraph string) (bool, int) {
	stripped := strings.TrimSpace(paragraph)

	if utf8.RuneCountInString(stripped) < minHeadingLength {
		return false, 0
	}

	if isUpper(stripped) && utf8.RuneCountInString(stripped) > upperCaseMinLength {
		return true, 1
	}

	for _, pattern := range chapterPatterns {
		if pattern.MatchString(stripped) {
			return true, 2
		}
	}

	if numericPrefixPattern.MatchString(stripped) {
		return true, 3
	}

	return false, 0
}

// isUpper reports whether every cased rune is upper case and at least one
// cased rune exists.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
