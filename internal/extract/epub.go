package extract

import (
	"regexp"
	"strings"

	"github.com/simp-lee/epub"
)

// epubInfo opens the container and returns chapter count and title metadata.
func epubInfo(path string) (int, string, error) {
	book, err := epub.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer book.Close()

	title := ""
	if md := book.Metadata(); len(md.Titles) > 0 {
		title = md.Titles[0]
	}
	return len(book.Chapters()), title, nil
}

// epubUnits extracts every spine chapter as a plain-text unit, in container
// order. Unreadable chapters are skipped; indices stay dense.
func epubUnits(src *Source, opts Options) ([]PageUnit, error) {
	logger := opts.logger()

	book, err := epub.Open(src.Path)
	if err != nil {
		return nil, &ExtractionError{Path: src.Path, Err: err}
	}
	defer book.Close()

	var units []PageUnit
	for i, ch := range book.Chapters() {
		text, err := ch.TextContent()
		if err != nil {
			logger.Warn("skipping unreadable epub chapter",
				"path", src.Path, "chapter", i, "error", err)
			continue
		}

		text = normalizeChapterText(text)
		if text == "" {
			logger.Debug("skipping empty epub chapter", "path", src.Path, "chapter", i)
			continue
		}

		units = append(units, PageUnit{Index: len(units), Text: text})
	}

	return units, nil
}

var (
	runSpaces  = regexp.MustCompile(`[ \t]+`)
	runBlanks  = regexp.MustCompile(`\n{3,}`)
	lineBlanks = regexp.MustCompile(`[ \t]+\n`)
)

// normalizeChapterText collapses whitespace while keeping blank-line
// paragraph boundaries intact for the structuring stage.
func normalizeChapterText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = runSpaces.ReplaceAllString(text, " ")
	text = lineBlanks.ReplaceAllString(text, "\n")
	text = runBlanks.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
