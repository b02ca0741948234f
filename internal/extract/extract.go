// Package extract turns a source document (PDF or EPUB) into an ordered
// sequence of recognizable page units.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a supported source document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatEPUB Format = "epub"
	FormatText Format = "txt"
)

// UnsupportedFormatError is returned for file extensions folio cannot convert.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %q", e.Ext)
}

// ExtractionError wraps a failure to open or decode a source document.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// PageUnit is one page (PDF) or chapter (EPUB) awaiting recognition.
// PDF units carry PNG image bytes; EPUB units carry plain text and skip
// recognition entirely.
type PageUnit struct {
	Index int
	Image []byte
	Text  string
}

// PageRange selects an inclusive, 1-indexed page range of a PDF.
type PageRange struct {
	Start int
	End   int
}

// Options control extraction.
type Options struct {
	// DPI for PDF rasterization. Default 300.
	DPI int

	// Pages restricts PDF extraction to an inclusive range. Unit indices
	// are renumbered from 0 relative to the selected range.
	Pages *PageRange

	// ScratchDir receives rasterized page images. When empty a temporary
	// directory is created and removed once the images are loaded; a
	// caller-provided directory is the caller's to clean up.
	ScratchDir string

	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Source identifies one input document. Immutable once opened.
type Source struct {
	Path      string
	Format    Format
	UnitCount int

	// Title holds container metadata when the format provides it (EPUB).
	Title string
}

// Detect returns the document format based on file extension.
func Detect(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".epub":
		return FormatEPUB, nil
	case ".txt", ".text":
		return FormatText, nil
	default:
		return "", &UnsupportedFormatError{Ext: ext}
	}
}

// Open stats and classifies a source document, counting its units.
func Open(path string) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	format, err := Detect(path)
	if err != nil {
		return nil, err
	}

	src := &Source{Path: path, Format: format}
	switch format {
	case FormatPDF:
		count, err := pdfPageCount(path)
		if err != nil {
			return nil, &ExtractionError{Path: path, Err: err}
		}
		src.UnitCount = count
	case FormatEPUB:
		count, title, err := epubInfo(path)
		if err != nil {
			return nil, &ExtractionError{Path: path, Err: err}
		}
		src.UnitCount = count
		src.Title = title
	}
	return src, nil
}

// Units produces the ordered page units for the source.
func (s *Source) Units(ctx context.Context, opts Options) ([]PageUnit, error) {
	switch s.Format {
	case FormatPDF:
		return pdfUnits(ctx, s, opts)
	case FormatEPUB:
		return epubUnits(s, opts)
	default:
		return nil, &UnsupportedFormatError{Ext: string(s.Format)}
	}
}
