// Package ocr wraps the external recognition engine behind a small
// interface so the page scheduler and tests stay independent of Tesseract.
package ocr

import "context"

// Input is one recognition request: a raster page image plus the language
// model tag to recognize it with.
type Input struct {
	Image    []byte
	Language string
}

// Engine performs optical character recognition on a single image.
// Implementations must be safe for concurrent use by independent workers.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (string, error)
}
