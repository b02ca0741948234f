package config

// Config is the root configuration for folio.
type Config struct {
	OCR       OCRConfig       `mapstructure:"ocr"`
	Markdown  MarkdownConfig  `mapstructure:"markdown"`
	Summarize SummarizeConfig `mapstructure:"summarize"`
}

// OCRConfig controls document extraction and recognition.
type OCRConfig struct {
	// DPI used when rasterizing PDF pages. Default 300.
	DPI int `mapstructure:"dpi"`

	// Language forces a recognition language model. Empty means detect
	// from the first page.
	Language string `mapstructure:"language"`

	// FallbackLanguage is used when detection fails or the sample is too
	// short to be reliable.
	FallbackLanguage string `mapstructure:"fallback_language"`

	// Preprocess enables image cleanup before recognition.
	Preprocess bool `mapstructure:"preprocess"`

	// Workers bounds the recognition pool. Zero means NumCPU-1.
	Workers int `mapstructure:"workers"`
}

// MarkdownConfig controls structure reconstruction.
type MarkdownConfig struct {
	// MaxHeadingDepth caps rendered heading depth. Default 6.
	MaxHeadingDepth int `mapstructure:"max_heading_depth"`
}

// SummarizeConfig controls the OpenAI-backed section summarizer.
type SummarizeConfig struct {
	Model string `mapstructure:"model"`

	// APIKey may reference an environment variable as ${OPENAI_API_KEY}.
	APIKey string `mapstructure:"api_key"`

	// Concurrency bounds in-flight summary requests. Default 20.
	Concurrency int `mapstructure:"concurrency"`
}

// DefaultConfig returns the built-in configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			DPI:              300,
			Language:         "",
			FallbackLanguage: "eng",
			Preprocess:       true,
			Workers:          0,
		},
		Markdown: MarkdownConfig{
			MaxHeadingDepth: 6,
		},
		Summarize: SummarizeConfig{
			Model:       "o3-mini",
			APIKey:      "${OPENAI_API_KEY}",
			Concurrency: 20,
		},
	}
}

// ResolveAPIKey expands the summarize API key through the environment.
func (c *Config) ResolveAPIKey() string {
	return ResolveEnvVars(c.Summarize.APIKey)
}
