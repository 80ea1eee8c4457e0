package soundalert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-presenter/pkg/audioio"
)

// Detector turns audio chunks into alerts.
type Detector struct {
	classifier Classifier
	classes    ClassMap
	vocabulary Vocabulary
	minScore   float32
	logger     *slog.Logger
	now        func() time.Time
}

// NewDetector builds a detector. A nil classifier is allowed; Process then
// reports ErrModelNotLoaded on every call.
func NewDetector(classifier Classifier, classes ClassMap, vocabulary Vocabulary, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	if vocabulary == nil {
		vocabulary = DefaultVocabulary()
	}
	return &Detector{
		classifier: classifier,
		classes:    classes,
		vocabulary: vocabulary,
		logger:     logger.With("component", "soundalert.detector"),
		now:        time.Now,
	}
}

// NewDetectorFromConfig loads the model and class map named by cfg. Load
// failures are logged and yield a detector without a classifier.
func NewDetectorFromConfig(cfg Config, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}

	classes, err := LoadClassMapFile(cfg.ClassMapPath)
	if err != nil {
		logger.Error("sound model not loaded", "error", err)
		return NewDetector(nil, nil, cfg.VocabularySet(), logger)
	}
	model, err := NewYAMNet(cfg.ModelPath, cfg.OutputName)
	if err != nil {
		logger.Error("sound model not loaded", "error", err)
		return NewDetector(nil, classes, cfg.VocabularySet(), logger)
	}

	d := NewDetector(model, classes, cfg.VocabularySet(), logger)
	d.minScore = cfg.MinScore
	return d
}

// Loaded reports whether a classifier is available.
func (d *Detector) Loaded() bool {
	return d.classifier != nil && len(d.classes) > 0
}

// Process classifies one chunk. It returns the alert and true when the top
// class is in the vocabulary, and false otherwise.
func (d *Detector) Process(ctx context.Context, chunk audioio.Chunk) (Alert, bool, error) {
	if !d.Loaded() {
		return Alert{}, false, ErrModelNotLoaded
	}
	if len(chunk.Samples) == 0 {
		return Alert{}, false, nil
	}

	samples := audioio.Downmix(chunk.Samples, chunk.Channels)
	if chunk.SampleRate != SampleRate {
		samples = audioio.Resample(samples, chunk.SampleRate, SampleRate)
	}
	if len(samples) == 0 {
		return Alert{}, false, nil
	}

	scores, err := d.classifier.Classify(ctx, audioio.ToFloat32(samples))
	if err != nil {
		return Alert{}, false, fmt.Errorf("soundalert: classify: %w", err)
	}

	best, score := argmax(scores)
	label, err := d.classes.Name(best)
	if err != nil {
		return Alert{}, false, err
	}

	if !d.vocabulary.Contains(label) || score < d.minScore {
		return Alert{}, false, nil
	}

	d.logger.Debug("sound detected", "label", label, "score", score)
	return Alert{
		ID:    uuid.New(),
		Label: label,
		Score: score,
		At:    d.now(),
	}, true, nil
}

// Close releases the classifier.
func (d *Detector) Close() error {
	if d.classifier == nil {
		return nil
	}
	return d.classifier.Close()
}

// argmax returns the first index of the highest score.
func argmax(scores []float32) (int, float32) {
	if len(scores) == 0 {
		return -1, 0
	}
	best, top := 0, scores[0]
	for i, s := range scores[1:] {
		if s > top {
			best, top = i+1, s
		}
	}
	return best, top
}
