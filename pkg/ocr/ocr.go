// Package ocr recognizes printed text in a cropped camera region.
//
// Engines are remote recognizers (Gemini vision, Google Cloud Vision) behind
// a common Engine interface. A Chain tries several engines in order, and a
// Loader hides slow engine construction from the capture path.
package ocr

import (
	"context"
	"image"
	"strings"
)

// Engine recognizes text in an image.
type Engine interface {
	// Name identifies the engine in logs and metrics.
	Name() string

	// Recognize returns the text found in img, joined into a single line.
	// An empty string means no text was found.
	Recognize(ctx context.Context, img image.Image) (string, error)

	// Close releases resources.
	Close() error
}

// Normalize collapses all whitespace runs (including line breaks between
// paragraphs) into single spaces and trims the result.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
