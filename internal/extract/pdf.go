package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const defaultDPI = 300

// pdfPageCount validates the PDF and returns its page count.
func pdfPageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return count, nil
}

// pdfUnits rasterizes the selected page range of a PDF via poppler's
// pdftoppm and loads each page image, renumbered from index 0.
func pdfUnits(ctx context.Context, src *Source, opts Options) ([]PageUnit, error) {
	logger := opts.logger()

	dpi := opts.DPI
	if dpi <= 0 {
		dpi = defaultDPI
	}

	start, end := 1, src.UnitCount
	if opts.Pages != nil {
		start, end = opts.Pages.Start, opts.Pages.End
		if start < 1 || end > src.UnitCount || start > end {
			return nil, &ExtractionError{
				Path: src.Path,
				Err:  fmt.Errorf("page range %d-%d out of bounds for %d pages", start, end, src.UnitCount),
			}
		}
	}

	scratch := opts.ScratchDir
	ownScratch := false
	if scratch == "" {
		dir, err := os.MkdirTemp("", "folio-pages-")
		if err != nil {
			return nil, &ExtractionError{Path: src.Path, Err: err}
		}
		scratch = dir
		ownScratch = true
		defer os.RemoveAll(dir)
	}

	prefix := filepath.Join(scratch, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", strconv.Itoa(start),
		"-l", strconv.Itoa(end),
		src.Path, prefix,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, &ExtractionError{
			Path: src.Path,
			Err:  fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(string(out))),
		}
	}

	paths, err := rasterizedPagePaths(scratch)
	if err != nil {
		return nil, &ExtractionError{Path: src.Path, Err: err}
	}
	if want := end - start + 1; len(paths) != want {
		return nil, &ExtractionError{
			Path: src.Path,
			Err:  fmt.Errorf("rasterized %d pages, expected %d", len(paths), want),
		}
	}

	units := make([]PageUnit, 0, len(paths))
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, &ExtractionError{Path: src.Path, Err: err}
		}
		units = append(units, PageUnit{Index: i, Image: data})
	}

	logger.Debug("rasterized pdf pages",
		"path", src.Path, "pages", len(units), "dpi", dpi, "scratch_owned", ownScratch)

	return units, nil
}

// rasterizedPagePaths lists page-*.png files in pdftoppm output order.
// pdftoppm zero-pads page numbers uniformly, so lexical order is page order.
func rasterizedPagePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scratch directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "page-") && strings.HasSuffix(name, ".png") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
