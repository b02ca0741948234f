// Package langid maps a recognized-text sample to a Tesseract language
// model tag. Detection is best-effort: short samples, unknown languages,
// and detector failures all degrade to the fallback tag. Detect never
// returns an error.
package langid

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
)

const (
	// FallbackTag is returned when detection cannot be trusted.
	FallbackTag = "eng"

	// minSampleLength is the smallest trimmed sample worth detecting.
	// Shorter samples are statistically unreliable.
	minSampleLength = 20
)

// candidateLanguages bounds the detector's search space to the languages
// folio ships recognition models for.
var candidateLanguages = []lingua.Language{
	lingua.English,
	lingua.Chinese,
	lingua.Japanese,
	lingua.Korean,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Russian,
	lingua.Arabic,
}

// tesseractTags remaps detector results onto Tesseract model identifiers
// where the generic ISO code is not the model name. The generic Chinese
// tag selects the simplified-Chinese recognition pack.
var tesseractTags = map[lingua.Language]string{
	lingua.Chinese:    "chi_sim",
	lingua.Japanese:   "jpn",
	lingua.Korean:     "kor",
	lingua.Russian:    "rus",
	lingua.Arabic:     "ara",
	lingua.English:    "eng",
	lingua.French:     "fra",
	lingua.German:     "deu",
	lingua.Spanish:    "spa",
	lingua.Portuguese: "por",
	lingua.Italian:    "ita",
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// languageDetector builds the lingua detector once; model loading is
// expensive enough that per-call construction is off the table.
func languageDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(candidateLanguages...).
			Build()
	})
	return detector
}

// Detect returns the Tesseract language tag for a text sample, degrading
// to FallbackTag.
func Detect(sample string) string {
	return DetectWithFallback(sample, FallbackTag)
}

// DetectWithFallback is Detect with a caller-chosen degradation tag.
func DetectWithFallback(sample, fallback string) (tag string) {
	if fallback == "" {
		fallback = FallbackTag
	}
	tag = fallback

	trimmed := strings.TrimSpace(sample)
	if utf8.RuneCountInString(trimmed) < minSampleLength {
		return tag
	}

	// A detector failure must never abort the document.
	defer func() {
		if r := recover(); r != nil {
			tag = fallback
		}
	}()

	lang, ok := languageDetector().DetectLanguageOf(trimmed)
	if !ok {
		return fallback
	}

	if mapped, ok := tesseractTags[lang]; ok {
		return mapped
	}

	// Unmapped languages pass their ISO 639-3 code through unchanged;
	// Tesseract accepts the same code space for its stock models.
	return strings.ToLower(lang.IsoCode639_3().String())
}
