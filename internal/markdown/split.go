package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Chapter is one second-level section carved out of a structured
// markdown document.
type Chapter struct {
	Title    string
	Content  string
	Filename string
}

var (
	chapterSplit   = regexp.MustCompile(`(?m)^## `)
	slugStrip      = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators = regexp.MustCompile(`[-\s]+`)
)

// SplitChapters breaks a markdown document into chapters on "## "
// headings. Content before the first chapter heading is dropped.
func SplitChapters(content string) []Chapter {
	parts := chapterSplit.Split(content, -1)
	if len(parts) < 2 {
		return nil
	}

	chapters := make([]Chapter, 0, len(parts)-1)
	for _, part := range parts[1:] {
		lines := strings.Split(strings.TrimSpace(part), "\n")
		title := strings.TrimSpace(lines[0])
		body := strings.TrimSpace(strings.Join(lines[1:], "\n"))
		chapters = append(chapters, Chapter{
			Title:    title,
			Content:  body,
			Filename: slugify(title) + ".md",
		})
	}
	return chapters
}

// slugify turns a chapter title into a safe lowercase filename stem.
func slugify(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(title), "")
	s = slugSeparators.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// WriteChapters splits a markdown file and writes one file per chapter
// into dir, each promoted to a top-level heading. Returns written paths.
func WriteChapters(inputPath, dir string) ([]string, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, &StructuringIOError{Path: inputPath, Err: err}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StructuringIOError{Path: dir, Err: err}
	}

	chapters := SplitChapters(string(data))
	paths := make([]string, 0, len(chapters))
	for _, ch := range chapters {
		path := filepath.Join(dir, ch.Filename)
		content := fmt.Sprintf("# %s\n\n%s", ch.Title, ch.Content)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, &StructuringIOError{Path: path, Err: err}
		}
		paths = append(paths, path)
	}
	return paths, nil
}
