// Package summarize generates per-section summaries of structured
// markdown using an OpenAI model, one request per file with bounded
// concurrency.
package summarize

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultModel       = "o3-mini"
	defaultConcurrency = 20

	// outputPrefix marks generated summary files; prefixed files are
	// excluded from directory scans so reruns don't summarize summaries.
	outputPrefix = "sum_"
)

// Config holds configuration for the summarizer.
type Config struct {
	APIKey      string
	Model       string
	Concurrency int
	Timeout     time.Duration
	BaseURL     string       // Optional (tests)
	HTTPClient  *http.Client // Optional (tests)
	Logger      *slog.Logger
}

// Summarizer runs summary generation over markdown files.
type Summarizer struct {
	client  openai.Client
	model   string
	limiter *limiter
	logger  *slog.Logger
}

// Result is the outcome for one input file.
type Result struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
	Err    error  `json:"-" yaml:"-"`
}

// New creates a Summarizer.
func New(cfg Config) *Summarizer {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 300 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Summarizer{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		limiter: newLimiter(cfg.Concurrency),
		logger:  logger,
	}
}

// SetConcurrency adjusts the in-flight request bound, taking effect for
// requests not yet dispatched. Safe to call while a run is in progress.
func (s *Summarizer) SetConcurrency(n int) {
	if n <= 0 {
		return
	}
	s.limiter.setLimit(n)
	s.logger.Info("adjusted summary concurrency", "concurrency", n)
}

// Run summarizes a single markdown file or every markdown file under a
// directory. Per-file failures are isolated into their result entries.
func (s *Summarizer) Run(ctx context.Context, path string) ([]Result, error) {
	files, err := CollectFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no markdown files found at %s", path)
	}

	results := make([]Result, len(files))
	var wg sync.WaitGroup

	for i, file := range files {
		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()
			s.limiter.acquire()
			defer s.limiter.release()

			results[i] = s.processFile(ctx, file)
		}(i, file)
	}
	wg.Wait()

	return results, nil
}

func (s *Summarizer) processFile(ctx context.Context, path string) Result {
	res := Result{Input: path}

	content, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return res
	}

	summary, err := s.summarize(ctx, string(content))
	if err != nil {
		s.logger.Error("summary generation failed", "path", path, "error", err)
		res.Err = err
		return res
	}

	out := OutputPath(path, s.model)
	if err := os.WriteFile(out, []byte(summary), 0o644); err != nil {
		res.Err = fmt.Errorf("failed to write %s: %w", out, err)
		return res
	}

	res.Output = out
	return res
}

func (s *Summarizer) summarize(ctx context.Context, content string) (string, error) {
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(content),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// CollectFiles resolves the input path to a list of markdown files.
// Directories are walked recursively; generated summaries are excluded.
func CollectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.HasSuffix(name, ".md") || strings.HasPrefix(name, outputPrefix) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", path, err)
	}

	return files, nil
}

// OutputPath names the summary file for an input, alongside it.
func OutputPath(inputPath, model string) string {
	dir := filepath.Dir(inputPath)
	name := filepath.Base(inputPath)
	return filepath.Join(dir, fmt.Sprintf("%s%s_%s", outputPrefix, model, name))
}
