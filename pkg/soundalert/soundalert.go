// Package soundalert classifies short microphone chunks with an audio event
// model and reports the sounds worth interrupting the reader for.
package soundalert

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SampleRate is the rate the classifier expects.
const SampleRate = 16000

// Status texts shown in place of an alert.
const (
	StatusModelNotLoaded = "MODEL NOT LOADED"
	StatusAudioError     = "AUDIO ERROR"
)

var (
	// ErrModelNotLoaded is returned when no classifier is available.
	ErrModelNotLoaded = errors.New("soundalert: model not loaded")

	// ErrClassIndex is returned when the model output does not match the class map.
	ErrClassIndex = errors.New("soundalert: class index out of range")
)

// Classifier scores a mono 16kHz waveform in [-1, 1).
type Classifier interface {
	// Classify returns one score per class, averaged over the model's
	// analysis frames.
	Classify(ctx context.Context, waveform []float32) ([]float32, error)

	// Close releases the model.
	Close() error
}

// Alert is a detected sound from the vocabulary.
type Alert struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
	Score float32   `json:"score"`
	At    time.Time `json:"at"`
}

// Display returns the label as shown to the user.
func (a Alert) Display() string {
	return strings.ToUpper(a.Label)
}
