package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/config"
	"github.com/jackzampolin/folio/internal/summarize"
)

var (
	summarizeModel       string
	summarizeConcurrency int
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <path>",
	Short: "Generate LLM summaries for Markdown files",
	Long: `Summarize a Markdown file, or every Markdown file under a
directory, with an OpenAI model. Summaries are written alongside their
inputs as sum_<model>_<name>; existing summaries are never re-summarized.

Requires an API key in config (summarize.api_key) or OPENAI_API_KEY.

Examples:
  folio summarize book_chapters/
  folio summarize book.md --model gpt-4o`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cm, _, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := cm.Get()

		apiKey := cfg.ResolveAPIKey()
		if apiKey == "" {
			return fmt.Errorf("no API key: set summarize.api_key or OPENAI_API_KEY")
		}

		model := summarizeModel
		if model == "" {
			model = cfg.Summarize.Model
		}
		concurrency := summarizeConcurrency
		if concurrency == 0 {
			concurrency = cfg.Summarize.Concurrency
		}

		s := summarize.New(summarize.Config{
			APIKey:      apiKey,
			Model:       model,
			Concurrency: concurrency,
			Logger:      logger,
		})

		// Pick up config edits mid-batch; long runs can have their
		// request concurrency adjusted without a restart.
		cm.OnChange(func(cfg *config.Config) {
			s.SetConcurrency(cfg.Summarize.Concurrency)
		})
		cm.WatchConfig()

		results, err := s.Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		type entry struct {
			Input  string `json:"input" yaml:"input"`
			Output string `json:"output,omitempty" yaml:"output,omitempty"`
			Error  string `json:"error,omitempty" yaml:"error,omitempty"`
		}
		var failed int
		entries := make([]entry, 0, len(results))
		for _, res := range results {
			e := entry{Input: res.Input, Output: res.Output}
			if res.Err != nil {
				e.Error = res.Err.Error()
				failed++
			}
			entries = append(entries, e)
		}
		logger.Info("summaries complete", "files", len(results), "failed", failed)

		return api.Output(entries)
	},
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeModel, "model", "", "model name (default from config)")
	summarizeCmd.Flags().IntVar(&summarizeConcurrency, "concurrency", 0, "max in-flight requests (default from config)")
}
