package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/extract"
	"github.com/jackzampolin/folio/internal/pipeline"
)

var (
	convertOut          string
	convertDPI          int
	convertLanguage     string
	convertPages        []int
	convertNoPreprocess bool
	convertWorkers      int
	convertTitle        string
	convertAuthor       string
	convertSkipOCR      bool
	convertSkipMarkdown bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Convert a document to structured Markdown",
	Long: `Convert a scanned document into structured Markdown.

PDF pages are rasterized and recognized with Tesseract; EPUB chapters
skip recognition and go straight to structuring. Failed pages are
replaced with an inline error marker so one bad scan never sinks a run.

Examples:
  folio convert book.pdf                      # book.md next to the input
  folio convert book.pdf --out out/book.md    # explicit output path
  folio convert book.pdf -p 10,25 -l deu      # page range, forced language
  folio convert book.pdf --skip-markdown      # raw recognized text only
  folio convert notes.txt --skip-ocr -t Notes # structure existing text`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cm, h, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := cm.Get()

		dpi := convertDPI
		if dpi == 0 {
			dpi = cfg.OCR.DPI
		}
		language := convertLanguage
		if language == "" {
			language = cfg.OCR.Language
		}
		workers := convertWorkers
		if workers == 0 {
			workers = cfg.OCR.Workers
		}
		preprocess := cfg.OCR.Preprocess && !convertNoPreprocess

		var pages *extract.PageRange
		if len(convertPages) > 0 {
			if len(convertPages) != 2 {
				return fmt.Errorf("--pages takes exactly two values: first,last")
			}
			pages = &extract.PageRange{Start: convertPages[0], End: convertPages[1]}
		}

		report, err := pipeline.Convert(cmd.Context(), pipeline.Options{
			InputPath:        args[0],
			OutputPath:       convertOut,
			DPI:              dpi,
			Language:         language,
			Pages:            pages,
			Preprocess:       preprocess,
			Workers:          workers,
			FallbackLanguage: cfg.OCR.FallbackLanguage,
			Title:            convertTitle,
			Author:           convertAuthor,
			MaxHeadingDepth:  cfg.Markdown.MaxHeadingDepth,
			SkipOCR:          convertSkipOCR,
			SkipMarkdown:     convertSkipMarkdown,
			Home:             h,
			Logger:           logger,
			OnProgress: func(done, total int) {
				logger.Info("recognition progress", "done", done, "total", total)
			},
		})
		if err != nil {
			logger.Error("conversion failed", "input", args[0], "error", err)
			return err
		}

		return api.Output(report)
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertOut, "out", "", "output path (default: input name with .md)")
	convertCmd.Flags().IntVarP(&convertDPI, "dpi", "d", 0, "rasterization DPI (default from config)")
	convertCmd.Flags().StringVarP(&convertLanguage, "language", "l", "", "Tesseract language tag (default: auto-detect)")
	convertCmd.Flags().IntSliceVarP(&convertPages, "pages", "p", nil, "inclusive 1-indexed page range: first,last")
	convertCmd.Flags().BoolVar(&convertNoPreprocess, "no-preprocess", false, "disable image cleanup before recognition")
	convertCmd.Flags().IntVarP(&convertWorkers, "workers", "w", 0, "recognition workers (default: NumCPU-1)")
	convertCmd.Flags().StringVarP(&convertTitle, "title", "t", "", "document title for the Markdown header")
	convertCmd.Flags().StringVarP(&convertAuthor, "author", "a", "", "document author for the Markdown header")
	convertCmd.Flags().BoolVar(&convertSkipOCR, "skip-ocr", false, "structure an existing .txt file, no recognition")
	convertCmd.Flags().BoolVar(&convertSkipMarkdown, "skip-markdown", false, "stop after recognition, write plain text")
}
