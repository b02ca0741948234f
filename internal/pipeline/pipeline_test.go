package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackzampolin/folio/internal/extract"
	"github.com/jackzampolin/folio/internal/langid"
	"github.com/jackzampolin/folio/internal/ocr"
)

type stubEngine struct {
	text  string
	err   error
	calls int
}

func (e *stubEngine) Name() string { return "stub" }

func (e *stubEngine) Recognize(ctx context.Context, in ocr.Input) (string, error) {
	e.calls++
	return e.text, e.err
}

func TestConvertSkipOCR(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "recognized.txt")
	text := "HELLO WORLD\n\nThis is body text.\n\n1. Introduction\n\nBody."
	if err := os.WriteFile(in, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := Convert(context.Background(), Options{
		InputPath: in,
		SkipOCR:   true,
		Title:     "Test Book",
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if report.Output != filepath.Join(dir, "recognized.md") {
		t.Errorf("output = %s", report.Output)
	}

	data, err := os.ReadFile(report.Output)
	if err != nil {
		t.Fatal(err)
	}
	md := string(data)

	for _, want := range []string{
		"# Test Book",
		"## HELLO WORLD",
		"This is body text.",
		"### 1. Introduction",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in output:\n%s", want, md)
		}
	}
}

func TestConvertSkipOCRHonorsHeadingDepthCap(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "recognized.txt")
	text := "HELLO WORLD\n\n1. Introduction\n\nBody."
	if err := os.WriteFile(in, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := Convert(context.Background(), Options{
		InputPath:       in,
		SkipOCR:         true,
		MaxHeadingDepth: 2,
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	data, err := os.ReadFile(report.Output)
	if err != nil {
		t.Fatal(err)
	}
	md := string(data)

	if !strings.Contains(md, "## 1. Introduction") {
		t.Errorf("heading should clamp to depth 2:\n%s", md)
	}
	if strings.Contains(md, "###") {
		t.Errorf("depth cap 2 should leave no deeper headings:\n%s", md)
	}
}

func TestConvertTextRequiresSkipOCR(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(in, []byte("Some notes."), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Convert(context.Background(), Options{InputPath: in})
	if err == nil {
		t.Fatal("expected error for plain text input without recognition skipped")
	}
	if !strings.Contains(err.Error(), "--skip-ocr") {
		t.Errorf("error should point at --skip-ocr: %v", err)
	}
}

func TestConvertSkipOCRRejectsNonText(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "book.pdf")
	if err := os.WriteFile(in, []byte("%PDF-"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Convert(context.Background(), Options{InputPath: in, SkipOCR: true})
	if err == nil {
		t.Fatal("expected error for non-txt input with recognition skipped")
	}
}

func TestConvertMissingInput(t *testing.T) {
	_, err := Convert(context.Background(), Options{InputPath: "/nonexistent/book.pdf"})

	var ee *extract.ExtractionError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExtractionError, got %T: %v", err, err)
	}
}

func TestConvertUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "image.bmp")
	if err := os.WriteFile(in, []byte("BM"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Convert(context.Background(), Options{InputPath: in})

	var ufe *extract.UnsupportedFormatError
	if !errors.As(err, &ufe) {
		t.Fatalf("expected UnsupportedFormatError, got %T: %v", err, err)
	}
}

func TestResolveLanguage(t *testing.T) {
	ctx := context.Background()

	t.Run("uses plain text unit without engine", func(t *testing.T) {
		engine := &stubEngine{}
		units := []extract.PageUnit{{
			Index: 0,
			Text:  "The quick brown fox jumps over the lazy dog near the river bank.",
		}}

		if got := resolveLanguage(ctx, engine, units, ""); got != "eng" {
			t.Errorf("resolveLanguage() = %q, want eng", got)
		}
		if engine.calls != 0 {
			t.Errorf("engine invoked %d times for a text unit", engine.calls)
		}
	})

	t.Run("recognizes first image unit", func(t *testing.T) {
		engine := &stubEngine{text: "这是一本关于欧洲历史的书，内容涵盖中世纪到现代的重要时期。"}
		units := []extract.PageUnit{{Index: 0, Image: []byte("fake-png")}}

		if got := resolveLanguage(ctx, engine, units, ""); got != "chi_sim" {
			t.Errorf("resolveLanguage() = %q, want chi_sim", got)
		}
		if engine.calls != 1 {
			t.Errorf("engine invoked %d times, want 1", engine.calls)
		}
	})

	t.Run("recognition failure falls back", func(t *testing.T) {
		engine := &stubEngine{err: errors.New("engine unavailable")}
		units := []extract.PageUnit{{Index: 0, Image: []byte("fake-png")}}

		if got := resolveLanguage(ctx, engine, units, ""); got != langid.FallbackTag {
			t.Errorf("resolveLanguage() = %q, want fallback", got)
		}
	})

	t.Run("no units falls back", func(t *testing.T) {
		if got := resolveLanguage(ctx, &stubEngine{}, nil, ""); got != langid.FallbackTag {
			t.Errorf("resolveLanguage() = %q, want fallback", got)
		}
	})

	t.Run("configured fallback wins over default", func(t *testing.T) {
		engine := &stubEngine{err: errors.New("engine unavailable")}
		units := []extract.PageUnit{{Index: 0, Image: []byte("fake-png")}}

		if got := resolveLanguage(ctx, engine, units, "deu"); got != "deu" {
			t.Errorf("resolveLanguage() = %q, want deu", got)
		}
	})
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		in   string
		ext  string
		want string
	}{
		{"/books/eur.pdf", ".md", "/books/eur.md"},
		{"/books/eur.pdf", ".txt", "/books/eur.txt"},
		{"novel.epub", ".md", "novel.md"},
	}
	for _, tt := range tests {
		if got := defaultOutputPath(tt.in, tt.ext); got != tt.want {
			t.Errorf("defaultOutputPath(%q, %q) = %q, want %q", tt.in, tt.ext, got, tt.want)
		}
	}
}
