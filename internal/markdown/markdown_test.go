package markdown

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "joins wrapped lines within a paragraph",
			in:   "This line was\nwrapped by OCR\nlayout.",
			want: []string{"This line was wrapped by OCR layout."},
		},
		{
			name: "splits on blank lines",
			in:   "First paragraph.\n\nSecond paragraph.",
			want: []string{"First paragraph.", "Second paragraph."},
		},
		{
			name: "blank line may carry whitespace",
			in:   "First.\n   \nSecond.",
			want: []string{"First.", "Second."},
		},
		{
			name: "collapses run-on whitespace",
			in:   "Spaced   out\t text.",
			want: []string{"Spaced out text."},
		},
		{
			name: "drops empty blocks",
			in:   "\n\nOnly one.\n\n\n\n",
			want: []string{"Only one."},
		},
		{
			name: "empty input",
			in:   "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitParagraphs(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d paragraphs %v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("paragraph %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDetectHeading(t *testing.T) {
	tests := []struct {
		name      string
		paragraph string
		isHeading bool
		level     int
	}{
		{"all caps long", "HELLO WORLD", true, 1},
		{"all caps length six", "1. ABC", true, 1}, // caps wins over numeric prefix
		{"chapter form", "Chapter 3", true, 2},
		{"section form", "Section 12", true, 2},
		{"numbered with capital", "1. Introduction", true, 2},
		{"dotted subsection", "1.2 Overview", true, 2},
		{"numeric prefix lowercase", "1. introduction", true, 3},
		{"plain body", "This is body text.", false, 0},
		{"too short", "AB", false, 0},
		{"short caps not heading", "ABCDE", false, 0},
		{"caps with punctuation", "TABLE OF CONTENTS", true, 1},
		{"mixed case", "Hello World", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isHeading, level := DetectHeading(tt.paragraph)
			if isHeading != tt.isHeading || level != tt.level {
				t.Errorf("DetectHeading(%q) = (%v, %d), want (%v, %d)",
					tt.paragraph, isHeading, level, tt.isHeading, tt.level)
			}
		})
	}
}

func tocDocument(entries int) string {
	parts := []string{"Some introduction paragraph here.", "Contents"}
	titles := []string{"One", "Two", "Three", "Four", "Five", "Six", "Seven"}
	for i := 0; i < entries; i++ {
		parts = append(parts, "Chapter "+titles[i]+" ........ "+strings.Repeat("4", i+1))
	}
	parts = append(parts, "After the contents, normal prose resumes here.")
	return strings.Join(parts, "\n\n")
}

func TestFindTOCSpan(t *testing.T) {
	t.Run("five entries form a span", func(t *testing.T) {
		paragraphs := SplitParagraphs(tocDocument(5))

		span, ok := FindTOCSpan(paragraphs)
		if !ok {
			t.Fatal("expected a TOC span")
		}
		if span.Start != 1 {
			t.Errorf("span starts at %d, want 1 (the Contents title)", span.Start)
		}
		if span.End != 6 {
			t.Errorf("span ends at %d, want 6 (the fifth entry)", span.End)
		}
	})

	t.Run("two entries are not enough", func(t *testing.T) {
		paragraphs := SplitParagraphs(tocDocument(2))

		if _, ok := FindTOCSpan(paragraphs); ok {
			t.Error("two dotted-leader entries must not form a span")
		}
	})

	t.Run("no title means no span", func(t *testing.T) {
		paragraphs := []string{
			"Chapter One ........ 4",
			"Chapter Two ........ 12",
			"Chapter Three ........ 30",
			"Chapter Four ........ 55",
		}
		if _, ok := FindTOCSpan(paragraphs); ok {
			t.Error("dotted entries without a TOC title must not form a span")
		}
	})

	t.Run("entries never closed by a non-match are not recorded", func(t *testing.T) {
		// Document ends while still inside the dotted run.
		paragraphs := []string{
			"Contents",
			"Chapter One ........ 4",
			"Chapter Two ........ 12",
			"Chapter Three ........ 30",
		}
		if _, ok := FindTOCSpan(paragraphs); ok {
			t.Error("a span requires a closing non-matching paragraph")
		}
	})
}

func TestConvert(t *testing.T) {
	t.Run("metadata header", func(t *testing.T) {
		md := Convert("Just one paragraph.", Options{Title: "My Book", Author: "Jane Author"})

		if !strings.HasPrefix(md, "# My Book\n\n*By Jane Author*\n\n") {
			t.Errorf("missing metadata header:\n%s", md)
		}
	})

	t.Run("toc renders as single placeholder", func(t *testing.T) {
		md := Convert(tocDocument(5), Options{})

		if count := strings.Count(md, "## Table of Contents"); count != 1 {
			t.Errorf("expected one TOC placeholder, got %d:\n%s", count, md)
		}
		if !strings.Contains(md, "*[TOC content omitted in conversion]*") {
			t.Errorf("missing elision notice:\n%s", md)
		}
		if strings.Contains(md, "........") {
			t.Errorf("dotted-leader entries leaked into output:\n%s", md)
		}
		if !strings.Contains(md, "After the contents, normal prose resumes here.") {
			t.Errorf("post-TOC paragraph lost:\n%s", md)
		}
	})

	t.Run("heading depth maps level plus one", func(t *testing.T) {
		md := Convert("HELLO WORLD\n\nChapter 3\n\n1. introduction", Options{})

		if !strings.Contains(md, "## HELLO WORLD") {
			t.Errorf("level 1 should render at depth 2:\n%s", md)
		}
		if !strings.Contains(md, "### Chapter 3") {
			t.Errorf("level 2 should render at depth 3:\n%s", md)
		}
		if !strings.Contains(md, "#### 1. introduction") {
			t.Errorf("level 3 should render at depth 4:\n%s", md)
		}
	})

	t.Run("single blank separator between blocks", func(t *testing.T) {
		md := Convert("First paragraph.\n\nSecond paragraph.", Options{Title: "Title"})

		if strings.Contains(md, "\n\n\n") {
			t.Errorf("found doubled blank separator:\n%q", md)
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		if got := Convert("", Options{}); got != "" {
			t.Errorf("Convert(\"\") = %q", got)
		}
	})

	t.Run("configured depth cap clamps deep headings", func(t *testing.T) {
		md := Convert("HELLO WORLD\n\nChapter 3\n\n1. introduction", Options{MaxHeadingDepth: 2})

		if !strings.Contains(md, "## HELLO WORLD") {
			t.Errorf("level 1 should render at depth 2:\n%s", md)
		}
		if !strings.Contains(md, "## Chapter 3") {
			t.Errorf("level 2 should clamp to depth 2:\n%s", md)
		}
		if !strings.Contains(md, "## 1. introduction") {
			t.Errorf("level 3 should clamp to depth 2:\n%s", md)
		}
		if strings.Contains(md, "###") {
			t.Errorf("depth cap 2 should leave no deeper headings:\n%s", md)
		}
	})
}

func TestConvertIdempotent(t *testing.T) {
	first := Convert(tocDocument(5), Options{})
	second := Convert(first, Options{})

	if count := strings.Count(second, "## Table of Contents"); count != 1 {
		t.Errorf("re-structuring introduced TOC spans: %d placeholders\n%s", count, second)
	}
	if strings.Contains(second, "\n\n\n") {
		t.Errorf("re-structuring duplicated blank separators:\n%q", second)
	}
}

func TestConvertAssembledDocument(t *testing.T) {
	// Three recognized pages joined by the blank-line page separator.
	text := "HELLO WORLD\n\nThis is body text.\n\n1. Introduction\nBody."
	md := Convert(text, Options{})

	wantOrder := []string{"## HELLO WORLD", "This is body text.", "1. Introduction Body."}
	last := -1
	for _, want := range wantOrder {
		idx := strings.Index(md, want)
		if idx < 0 {
			t.Fatalf("missing %q in output:\n%s", want, md)
		}
		if idx < last {
			t.Fatalf("%q out of order:\n%s", want, md)
		}
		last = idx
	}
}

func TestProcessFile(t *testing.T) {
	t.Run("derives md output name", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "book.txt")
		if err := os.WriteFile(in, []byte("Some text."), 0o644); err != nil {
			t.Fatal(err)
		}

		out, err := ProcessFile(in, "", Options{})
		if err != nil {
			t.Fatalf("ProcessFile() error = %v", err)
		}
		if out != filepath.Join(dir, "book.md") {
			t.Errorf("output path = %s", out)
		}
		if _, err := os.Stat(out); err != nil {
			t.Errorf("output not written: %v", err)
		}
	})

	t.Run("missing input is a structuring io error", func(t *testing.T) {
		_, err := ProcessFile("/nonexistent/input.txt", "", Options{})
		var ioErr *StructuringIOError
		if !errors.As(err, &ioErr) {
			t.Fatalf("expected StructuringIOError, got %T: %v", err, err)
		}
	})
}

func TestSplitChapters(t *testing.T) {
	content := "# Book Title\n\n## First Chapter\n\nBody one.\n\n## Second: Chapter!\n\nBody two.\n"

	chapters := SplitChapters(content)
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}

	if chapters[0].Title != "First Chapter" {
		t.Errorf("title = %q", chapters[0].Title)
	}
	if chapters[0].Filename != "first_chapter.md" {
		t.Errorf("filename = %q", chapters[0].Filename)
	}
	if chapters[0].Content != "Body one." {
		t.Errorf("content = %q", chapters[0].Content)
	}

	// Punctuation is stripped from slugs.
	if chapters[1].Filename != "second_chapter.md" {
		t.Errorf("filename = %q", chapters[1].Filename)
	}
}

func TestWriteChapters(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "book.md")
	content := "## Alpha\n\nFirst body.\n\n## Beta\n\nSecond body.\n"
	if err := os.WriteFile(in, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "chapters")
	paths, err := WriteChapters(in, outDir)
	if err != nil {
		t.Fatalf("WriteChapters() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 chapter files, got %d", len(paths))
	}

	data, err := os.ReadFile(filepath.Join(outDir, "alpha.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# Alpha\n\nFirst body." {
		t.Errorf("chapter content = %q", data)
	}
}

func TestMergeDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.md": "second",
		"a.md": "first",
		"c.md": "third",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out := filepath.Join(t.TempDir(), "all.md")
	n, err := MergeDir(dir, out, nil)
	if err != nil {
		t.Fatalf("MergeDir() error = %v", err)
	}
	if n != 3 {
		t.Errorf("merged %d files, want 3", n)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first\n\nsecond\n\nthird\n\n" {
		t.Errorf("merged content = %q", data)
	}
}
