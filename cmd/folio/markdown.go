package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/markdown"
)

var (
	markdownOut    string
	markdownTitle  string
	markdownAuthor string
)

var markdownCmd = &cobra.Command{
	Use:   "markdown <input.txt>",
	Short: "Structure a plain text file into Markdown",
	Long: `Structure an already-recognized text file into Markdown.

Paragraphs are classified with heading heuristics and table-of-contents
runs are collapsed into a placeholder section.

Examples:
  folio markdown book.txt
  folio markdown book.txt --out book.md -t "My Book" -a "Jane Author"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cm, _, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := cm.Get()

		out, err := markdown.ProcessFile(args[0], markdownOut, markdown.Options{
			Title:           markdownTitle,
			Author:          markdownAuthor,
			MaxHeadingDepth: cfg.Markdown.MaxHeadingDepth,
		})
		if err != nil {
			logger.Error("structuring failed", "input", args[0], "error", err)
			return err
		}
		logger.Info("wrote structured markdown", "output", out)

		return api.Output(map[string]string{"input": args[0], "output": out})
	},
}

func init() {
	markdownCmd.Flags().StringVar(&markdownOut, "out", "", "output path (default: input name with .md)")
	markdownCmd.Flags().StringVarP(&markdownTitle, "title", "t", "", "document title for the Markdown header")
	markdownCmd.Flags().StringVarP(&markdownAuthor, "author", "a", "", "document author for the Markdown header")
}
