// Package targeting decides, frame by frame, whether the viewfinder region is
// worth handing to text recognition.
//
// Two gates are applied to the grayscale region: a clarity gate (variance of
// the Laplacian) and a stability gate (mean absolute difference against the
// region seen on the previous call). The only state carried between calls is
// that previous grayscale region.
package targeting

import (
	"fmt"
	"image"
	"sync"
)

// Scores are the raw gate measurements of the most recent evaluation.
type Scores struct {
	Clarity     float64 `json:"clarity"`
	Motion      float64 `json:"motion"`
	HasBaseline bool    `json:"has_baseline"`
}

// Estimator holds the targeting state for one camera session.
// Create one per camera; instances share nothing.
type Estimator struct {
	mu     sync.Mutex
	config Config

	// prev is the grayscale region from the immediately preceding call.
	// nil until the first valid call.
	prev *image.Gray

	last Scores
}

// New creates an Estimator with the given thresholds.
func New(cfg Config) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("targeting: %w", err)
	}
	return &Estimator{config: cfg}, nil
}

// Evaluate classifies roi and replaces the retained snapshot with its
// grayscale version, whatever the outcome.
//
// On the first call there is nothing to compare against, so a sharp region is
// immediately StatusReadyToRead. A nil or empty roi returns ErrInvalidInput
// and does not touch the snapshot.
func (e *Estimator) Evaluate(roi image.Image) (Status, error) {
	if roi == nil || roi.Bounds().Empty() {
		return StatusSearching, ErrInvalidInput
	}

	gray := toGray(roi)

	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.prev
	e.prev = gray

	clarity := LaplacianVariance(gray)
	e.last = Scores{Clarity: clarity, HasBaseline: prev != nil}

	if clarity < e.config.ClarityThreshold {
		return StatusSearching, nil
	}

	if prev != nil {
		motion := MeanAbsDiff(gray, prev)
		e.last.Motion = motion
		if motion > e.config.StabilityThreshold {
			return StatusHoldSteady, nil
		}
	}

	return StatusReadyToRead, nil
}

// Config returns the active thresholds.
func (e *Estimator) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// SetConfig swaps the thresholds. The retained snapshot is kept.
func (e *Estimator) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("targeting: %w", err)
	}
	e.mu.Lock()
	e.config = cfg
	e.mu.Unlock()
	return nil
}

// LastScores returns the measurements taken by the most recent Evaluate.
func (e *Estimator) LastScores() Scores {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// HasBaseline reports whether a previous snapshot is retained.
func (e *Estimator) HasBaseline() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prev != nil
}

// Reset drops the retained snapshot, e.g. after switching camera sources.
func (e *Estimator) Reset() {
	e.mu.Lock()
	e.prev = nil
	e.last = Scores{}
	e.mu.Unlock()
}
