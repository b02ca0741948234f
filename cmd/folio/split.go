package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/markdown"
)

var splitDir string

var splitCmd = &cobra.Command{
	Use:   "split <input.md>",
	Short: "Split a Markdown document into chapter files",
	Long: `Split a structured Markdown document on its level-2 headings,
writing one numbered file per chapter.

Examples:
  folio split book.md                 # writes into book_chapters/
  folio split book.md --dir chapters  # explicit output directory`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		dir := splitDir
		if dir == "" {
			base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			dir = filepath.Join(filepath.Dir(args[0]), base+"_chapters")
		}

		files, err := markdown.WriteChapters(args[0], dir)
		if err != nil {
			logger.Error("split failed", "input", args[0], "error", err)
			return err
		}
		logger.Info("split document", "chapters", len(files), "dir", dir)

		return api.Output(map[string]any{
			"input":    args[0],
			"dir":      dir,
			"chapters": files,
		})
	},
}

func init() {
	splitCmd.Flags().StringVar(&splitDir, "dir", "", "output directory (default: <input>_chapters)")
}
