// Package jobs fans page recognition out across a bounded worker pool,
// reassembling results in source order regardless of completion order.
package jobs

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/jackzampolin/folio/internal/extract"
	"github.com/jackzampolin/folio/internal/ocr"
	"github.com/jackzampolin/folio/internal/preprocess"
)

// PageResult is one page's recognition outcome: text or an error, never both.
type PageResult struct {
	Index int
	Text  string
	Err   error
}

// ErrorMarkerFormat fills a failed page's slot in the assembled text.
// The page number is 1-based.
const ErrorMarkerFormat = "[ERROR ON PAGE %d]"

// PoolConfig configures a recognition pool.
type PoolConfig struct {
	Engine ocr.Engine
	Logger *slog.Logger

	// Workers bounds concurrent recognition calls. Zero means one fewer
	// than the available cores, reserving a core for the coordinator;
	// minimum 1.
	Workers int

	// Preprocess runs image cleanup before recognition.
	Preprocess bool

	// OnProgress observes completions: called with a monotonically
	// increasing done count after every finished page.
	OnProgress func(done, total int)
}

// Pool schedules page recognition tasks over a fixed set of workers.
// All workers pull from a single shared queue; results land in a
// pre-sized, index-addressable buffer so completion order never affects
// document order.
type Pool struct {
	engine     ocr.Engine
	logger     *slog.Logger
	workers    int
	preprocess bool
	onProgress func(done, total int)

	completed atomic.Int64
}

// NewPool creates a recognition pool.
func NewPool(cfg PoolConfig) *Pool {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
	}
	if workers < 1 {
		workers = 1
	}

	return &Pool{
		engine:     cfg.Engine,
		logger:     logger.With("pool", "recognition", "workers", workers),
		workers:    workers,
		preprocess: cfg.Preprocess,
		onProgress: cfg.OnProgress,
	}
}

// Workers returns the pool's worker count.
func (p *Pool) Workers() int {
	return p.workers
}

// Completed returns the number of pages finished so far.
func (p *Pool) Completed() int {
	return int(p.completed.Load())
}

// Run recognizes every unit and returns exactly len(units) results where
// result[i] corresponds to units[i]. A failure in one page fills only that
// page's error slot; the rest of the document proceeds.
func (p *Pool) Run(ctx context.Context, units []extract.PageUnit, language string) []PageResult {
	total := len(units)
	results := make([]PageResult, total)
	if total == 0 {
		return results
	}

	p.completed.Store(0)

	queue := make(chan extract.PageUnit)
	var wg sync.WaitGroup

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for unit := range queue {
				taskID := uuid.New().String()
				p.logger.Debug("recognizing page",
					"worker", workerID, "task_id", taskID, "page", unit.Index)

				res := p.process(ctx, unit, language)
				results[res.Index] = res

				done := int(p.completed.Add(1))
				p.logger.Debug("page complete",
					"worker", workerID, "task_id", taskID,
					"page", unit.Index, "done", done, "total", total,
					"failed", res.Err != nil)
				if p.onProgress != nil {
					p.onProgress(done, total)
				}
			}
		}(i)
	}

	for _, unit := range units {
		select {
		case queue <- unit:
		case <-ctx.Done():
			// Undispatched pages fail with the context error; dispatched
			// tasks run to completion.
			results[unit.Index] = PageResult{Index: unit.Index, Err: ctx.Err()}
			done := int(p.completed.Add(1))
			if p.onProgress != nil {
				p.onProgress(done, total)
			}
		}
	}
	close(queue)
	wg.Wait()

	return results
}

// process recognizes a single unit. A panic inside recognition is isolated
// to this page's error slot.
func (p *Pool) process(ctx context.Context, unit extract.PageUnit, language string) (res PageResult) {
	res.Index = unit.Index

	defer func() {
		if r := recover(); r != nil {
			res.Text = ""
			res.Err = fmt.Errorf("recognition panicked on page %d: %v", unit.Index+1, r)
		}
	}()

	// Plain-text units (EPUB chapters) skip recognition entirely.
	if unit.Text != "" {
		res.Text = unit.Text
		return res
	}

	img := unit.Image
	if p.preprocess {
		img = p.cleanImage(img, unit.Index)
	}

	text, err := p.engine.Recognize(ctx, ocr.Input{Image: img, Language: language})
	if err != nil {
		res.Err = fmt.Errorf("page %d: %w", unit.Index+1, err)
		return res
	}

	res.Text = text
	return res
}

// cleanImage decodes, preprocesses, and re-encodes a page image. Any
// failure degrades to the raw image.
func (p *Pool) cleanImage(data []byte, index int) []byte {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		p.logger.Warn("failed to decode page image, recognizing raw bytes",
			"page", index, "error", err)
		return data
	}

	cleaned := preprocess.Run(img, true, p.logger)

	var buf bytes.Buffer
	if err := png.Encode(&buf, cleaned); err != nil {
		p.logger.Warn("failed to encode preprocessed image, recognizing raw bytes",
			"page", index, "error", err)
		return data
	}
	return buf.Bytes()
}

// AssembleText joins page results into document text in source order,
// separated by blank lines. Failed pages contribute a page-tagged error
// marker instead of sinking the document.
func AssembleText(results []PageResult) string {
	parts := make([]string, len(results))
	for i, res := range results {
		if res.Err != nil {
			parts[i] = fmt.Sprintf(ErrorMarkerFormat, i+1)
			continue
		}
		parts[i] = res.Text
	}
	return strings.Join(parts, "\n\n")
}
