// Package pipeline sequences extraction, recognition, and structuring
// into a single document conversion.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackzampolin/folio/internal/extract"
	"github.com/jackzampolin/folio/internal/home"
	"github.com/jackzampolin/folio/internal/jobs"
	"github.com/jackzampolin/folio/internal/langid"
	"github.com/jackzampolin/folio/internal/markdown"
	"github.com/jackzampolin/folio/internal/ocr"
)

// Options configure one document conversion.
type Options struct {
	InputPath  string
	OutputPath string

	DPI        int
	Language   string
	Pages      *extract.PageRange
	Preprocess bool
	Workers    int

	// FallbackLanguage is used when detection fails. Empty means eng.
	FallbackLanguage string

	Title  string
	Author string

	// MaxHeadingDepth caps rendered heading depth. Zero means 6.
	MaxHeadingDepth int

	// SkipOCR structures an existing .txt file directly.
	SkipOCR bool

	// SkipMarkdown stops after recognition and persists plain text.
	SkipMarkdown bool

	// Engine defaults to the Tesseract engine.
	Engine ocr.Engine

	// Home provides the scratch area for intermediates. When nil a
	// temporary directory is used.
	Home *home.Dir

	Logger     *slog.Logger
	OnProgress func(done, total int)
}

// Report summarizes a finished conversion.
type Report struct {
	Input       string `json:"input" yaml:"input"`
	Format      string `json:"format" yaml:"format"`
	Units       int    `json:"units" yaml:"units"`
	Language    string `json:"language,omitempty" yaml:"language,omitempty"`
	FailedPages []int  `json:"failed_pages,omitempty" yaml:"failed_pages,omitempty"`
	Output      string `json:"output" yaml:"output"`
}

// Convert runs the full pipeline for one document. Document-level
// failures return an error and leave no partial output file; single-page
// recognition failures are reported in the result, not fatal.
func Convert(ctx context.Context, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.SkipOCR {
		return structureExisting(opts)
	}

	src, err := extract.Open(opts.InputPath)
	if err != nil {
		return nil, err
	}
	if src.Format == extract.FormatText {
		return nil, fmt.Errorf("%s is plain text with no pages to recognize; use --skip-ocr to structure it directly", opts.InputPath)
	}
	logger.Info("processing document",
		"path", src.Path, "format", src.Format, "units", src.UnitCount)

	scratch, cleanup, err := scratchDir(opts.Home)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	units, err := src.Units(ctx, extract.Options{
		DPI:        opts.DPI,
		Pages:      opts.Pages,
		ScratchDir: scratch,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	engine := opts.Engine
	if engine == nil {
		engine = ocr.NewTesseract()
	}

	language := opts.Language
	if language == "" {
		language = resolveLanguage(ctx, engine, units, opts.FallbackLanguage)
		logger.Info("detected document language", "language", language)
	}

	pool := jobs.NewPool(jobs.PoolConfig{
		Engine:     engine,
		Logger:     logger,
		Workers:    opts.Workers,
		Preprocess: opts.Preprocess,
		OnProgress: opts.OnProgress,
	})
	results := pool.Run(ctx, units, language)

	var failed []int
	for _, res := range results {
		if res.Err != nil {
			logger.Warn("page failed recognition", "page", res.Index+1, "error", res.Err)
			failed = append(failed, res.Index+1)
		}
	}

	text := jobs.AssembleText(results)

	report := &Report{
		Input:       opts.InputPath,
		Format:      string(src.Format),
		Units:       len(units),
		Language:    language,
		FailedPages: failed,
	}

	if opts.SkipMarkdown {
		out := opts.OutputPath
		if out == "" {
			out = defaultOutputPath(opts.InputPath, ".txt")
		}
		if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
			return nil, &markdown.StructuringIOError{Path: out, Err: err}
		}
		report.Output = out
		return report, nil
	}

	// Recognized text lands in scratch so a structuring failure leaves no
	// stray intermediate behind.
	textFile := filepath.Join(scratch, "recognized.txt")
	if err := os.WriteFile(textFile, []byte(text), 0o644); err != nil {
		return nil, &markdown.StructuringIOError{Path: textFile, Err: err}
	}

	title := opts.Title
	if title == "" {
		title = src.Title
	}

	out := opts.OutputPath
	if out == "" {
		out = defaultOutputPath(opts.InputPath, ".md")
	}
	mdPath, err := markdown.ProcessFile(textFile, out, markdown.Options{
		Title:           title,
		Author:          opts.Author,
		MaxHeadingDepth: opts.MaxHeadingDepth,
	})
	if err != nil {
		return nil, err
	}

	report.Output = mdPath
	return report, nil
}

// structureExisting converts an already-recognized text file to markdown.
func structureExisting(opts Options) (*Report, error) {
	format, err := extract.Detect(opts.InputPath)
	if err != nil {
		return nil, err
	}
	if format != extract.FormatText {
		return nil, fmt.Errorf("input must be a .txt file when skipping recognition: %s", opts.InputPath)
	}

	out, err := markdown.ProcessFile(opts.InputPath, opts.OutputPath, markdown.Options{
		Title:           opts.Title,
		Author:          opts.Author,
		MaxHeadingDepth: opts.MaxHeadingDepth,
	})
	if err != nil {
		return nil, err
	}

	return &Report{
		Input:  opts.InputPath,
		Format: string(format),
		Output: out,
	}, nil
}

// resolveLanguage detects the document language from the first unit's own
// raw, unpreprocessed recognition output. A single document is assumed
// monolingual, so the tag is reused for every remaining unit.
func resolveLanguage(ctx context.Context, engine ocr.Engine, units []extract.PageUnit, fallback string) string {
	if fallback == "" {
		fallback = langid.FallbackTag
	}
	if len(units) == 0 {
		return fallback
	}

	first := units[0]
	sample := first.Text
	if sample == "" {
		text, err := engine.Recognize(ctx, ocr.Input{Image: first.Image})
		if err != nil {
			return fallback
		}
		sample = text
	}
	return langid.DetectWithFallback(sample, fallback)
}

// scratchDir returns a scratch directory for intermediates plus its
// cleanup function.
func scratchDir(h *home.Dir) (string, func(), error) {
	if h != nil {
		if err := h.EnsureExists(); err != nil {
			return "", nil, err
		}
		dir, err := h.NewScratchDir()
		if err != nil {
			return "", nil, err
		}
		return dir, func() { os.RemoveAll(dir) }, nil
	}

	dir, err := os.MkdirTemp("", "folio-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

// defaultOutputPath derives an output file next to the input, keeping the
// base name and swapping the extension.
func defaultOutputPath(inputPath, newExt string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(inputPath), stem+newExt)
}
