package markdown

import "regexp"

const (
	// tocScanWindow bounds how far past the TOC title the entry scan runs.
	tocScanWindow = 50

	// tocMinConsecutive is the smallest run of dotted-leader entries that
	// confirms a table of contents. Fewer matches mean the title was a
	// false positive and no span is recorded.
	tocMinConsecutive = 3
)

// tocTitlePatterns match paragraphs announcing a table of contents.
var tocTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*table\s+of\s+contents\s*$`),
	regexp.MustCompile(`(?i)^\s*contents\s*$`),
	regexp.MustCompile(`(?i)^\s*toc\s*$`),
}

// tocEntryPattern matches dotted-leader entries like "Chapter title...... 42".
var tocEntryPattern = regexp.MustCompile(`.*\.{2,}.*\d+`)

// Span is an inclusive range of paragraph indices.
type Span struct {
	Start int
	End   int
}

// FindTOCSpan locates a table-of-contents span in the paragraph sequence.
// The span opens at a TOC title paragraph and closes at the last of at
// least tocMinConsecutive consecutive dotted-leader entries followed by a
// non-matching paragraph.
func FindTOCSpan(paragraphs []string) (Span, bool) {
	start := -1
	for i, p := range paragraphs {
		for _, pattern := range tocTitlePatterns {
			if pattern.MatchString(p) {
				start = i
				break
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return Span{}, false
	}

	end := -1
	consecutive := 0
	limit := start + tocScanWindow
	if limit > len(paragraphs) {
		limit = len(paragraphs)
	}
	for i := start + 1; i < limit; i++ {
		switch {
		case tocEntryPattern.MatchString(paragraphs[i]):
			consecutive++
		case consecutive >= tocMinConsecutive:
			end = i - 1
		default:
			consecutive = 0
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return Span{}, false
	}

	return Span{Start: start, End: end}, true
}
