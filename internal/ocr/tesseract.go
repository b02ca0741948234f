package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/otiai10/gosseract/v2"
)

// Fixed engine configuration, matching the recognition flags folio has
// always run Tesseract with: LSTM engine, fully automatic page
// segmentation, no forced polarity inversion.
const (
	engineModeLSTM = "1"
	invertOff      = "0"
)

// Tesseract implements Engine using the gosseract client. Every call gets
// a fresh client, so concurrent workers share no engine state.
type Tesseract struct {
	clientFactory func() *gosseract.Client
	attempts      uint
	retryDelay    time.Duration
}

// NewTesseract constructs a Tesseract-backed OCR engine.
func NewTesseract() *Tesseract {
	return &Tesseract{
		clientFactory: gosseract.NewClient,
		attempts:      2,
		retryDelay:    500 * time.Millisecond,
	}
}

func (e *Tesseract) Name() string { return "tesseract" }

// Recognize performs OCR on a single page image. Transient engine errors
// are retried once before the failure is reported.
func (e *Tesseract) Recognize(ctx context.Context, in Input) (string, error) {
	var text string
	err := retry.Do(
		func() error {
			t, err := e.recognizeOnce(in)
			if err != nil {
				return err
			}
			text = t
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(e.attempts),
		retry.Delay(e.retryDelay),
		retry.LastErrorOnly(true),
	)
	return text, err
}

func (e *Tesseract) recognizeOnce(in Input) (string, error) {
	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if in.Language != "" {
		if err := c.SetLanguage(in.Language); err != nil {
			return "", fmt.Errorf("set language %s: %w", in.Language, err)
		}
	}
	if err := c.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := c.SetVariable(gosseract.SettableVariable("tessedit_ocr_engine_mode"), engineModeLSTM); err != nil {
		return "", fmt.Errorf("set engine mode: %w", err)
	}
	if err := c.SetVariable(gosseract.SettableVariable("tessedit_do_invert"), invertOff); err != nil {
		return "", fmt.Errorf("set invert mode: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

var _ Engine = (*Tesseract)(nil)
