package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/markdown"
)

var mergeOut string

var mergeCmd = &cobra.Command{
	Use:   "merge <dir>",
	Short: "Merge a directory of Markdown files into one document",
	Long: `Concatenate every file in a directory, in name order, into a
single Markdown document. Unreadable entries are logged and skipped.

Examples:
  folio merge book_chapters/ --out book.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		out := mergeOut
		if out == "" {
			out = "merged.md"
		}

		count, err := markdown.MergeDir(args[0], out, logger)
		if err != nil {
			logger.Error("merge failed", "dir", args[0], "error", err)
			return err
		}
		logger.Info("merged documents", "files", count, "output", out)

		return api.Output(map[string]any{
			"dir":    args[0],
			"files":  count,
			"output": out,
		})
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergeOut, "out", "", "output path (default: merged.md)")
}
