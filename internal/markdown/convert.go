package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// defaultMaxHeadingDepth caps rendered markdown heading depth.
	defaultMaxHeadingDepth = 6

	tocPlaceholderHeading = "## Table of Contents"
	tocElisionNotice      = "*[TOC content omitted in conversion]*"
)

// Options control structuring. The zero value is usable: no metadata,
// default heading depth cap.
type Options struct {
	Title  string
	Author string

	// MaxHeadingDepth caps rendered heading depth. Zero means 6.
	MaxHeadingDepth int
}

// StructuringIOError reports a failure to read the OCR text or write the
// markdown output.
type StructuringIOError struct {
	Path string
	Err  error
}

func (e *StructuringIOError) Error() string {
	return fmt.Sprintf("structuring io failure on %s: %v", e.Path, e.Err)
}

func (e *StructuringIOError) Unwrap() error {
	return e.Err
}

// Convert turns recognized text into structured markdown. Title and
// author are optional metadata prepended once at the top. A detected
// table-of-contents span renders as a single placeholder heading plus an
// elision notice instead of its contents.
func Convert(text string, opts Options) string {
	maxDepth := opts.MaxHeadingDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxHeadingDepth
	}

	paragraphs := SplitParagraphs(text)
	span, hasTOC := FindTOCSpan(paragraphs)

	var blocks []string

	if opts.Title != "" {
		blocks = append(blocks, "# "+opts.Title)
	}
	if opts.Author != "" {
		blocks = append(blocks, "*By "+opts.Author+"*")
	}

	for i, p := range paragraphs {
		if hasTOC && i >= span.Start && i <= span.End {
			if i == span.Start {
				blocks = append(blocks, tocPlaceholderHeading, tocElisionNotice)
			}
			continue
		}

		if isHeading, level := DetectHeading(p); isHeading {
			depth := level + 1
			if depth > maxDepth {
				depth = maxDepth
			}
			blocks = append(blocks, fmt.Sprintf("%s %s", strings.Repeat("#", depth), p))
		} else {
			blocks = append(blocks, p)
		}
	}

	if len(blocks) == 0 {
		return ""
	}

	// Exactly one blank separator line between blocks.
	return strings.Join(blocks, "\n\n") + "\n"
}

// ProcessFile reads a text file, converts it, and writes the markdown.
// An empty outputPath derives the name from the input with a .md extension.
// Returns the output path written.
func ProcessFile(inputPath, outputPath string, opts Options) (string, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return "", &StructuringIOError{Path: inputPath, Err: err}
	}

	md := Convert(string(data), opts)

	if outputPath == "" {
		ext := filepath.Ext(inputPath)
		outputPath = strings.TrimSuffix(inputPath, ext) + ".md"
	}

	if err := os.WriteFile(outputPath, []byte(md), 0o644); err != nil {
		return "", &StructuringIOError{Path: outputPath, Err: err}
	}

	return outputPath, nil
}
