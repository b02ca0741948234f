// Package markdown reconstructs document structure from a flat OCR text
// stream: paragraph formation, table-of-contents elision, heading
// detection, and rendering. Every heuristic branch falls back to a body
// paragraph, so structuring always produces output for any input text.
package markdown

import (
	"regexp"
	"strings"
)

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// SplitParagraphs splits text on blank-line boundaries. Interior line
// breaks are OCR layout artifacts, not sentence structure, so they join
// with a single space and run-on whitespace collapses.
func SplitParagraphs(text string) []string {
	blocks := paragraphBreak.Split(text, -1)

	paragraphs := make([]string, 0, len(blocks))
	for _, block := range blocks {
		p := strings.ReplaceAll(block, "\n", " ")
		p = whitespaceRun.ReplaceAllString(p, " ")
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}
