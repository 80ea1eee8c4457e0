package soundalert

import (
	"context"
	"sync"
)

// MockClassifier implements Classifier for testing.
type MockClassifier struct {
	// ClassifyFunc is called when Classify is invoked.
	ClassifyFunc func(ctx context.Context, waveform []float32) ([]float32, error)

	mu        sync.Mutex
	calls     int
	lastInput []float32
	closed    bool
}

// NewMockClassifier returns a classifier whose top class is always index top.
func NewMockClassifier(classes, top int) *MockClassifier {
	return &MockClassifier{
		ClassifyFunc: func(ctx context.Context, waveform []float32) ([]float32, error) {
			scores := make([]float32, classes)
			if top >= 0 && top < classes {
				scores[top] = 0.9
			}
			return scores, nil
		},
	}
}

// Classify calls ClassifyFunc and records the input.
func (m *MockClassifier) Classify(ctx context.Context, waveform []float32) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.lastInput = append([]float32(nil), waveform...)
	fn := m.ClassifyFunc
	m.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	return fn(ctx, waveform)
}

// Close implements Classifier.
func (m *MockClassifier) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Calls returns the number of Classify calls.
func (m *MockClassifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastInput returns a copy of the last waveform passed to Classify.
func (m *MockClassifier) LastInput() []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float32(nil), m.lastInput...)
}

// Closed reports whether Close was called.
func (m *MockClassifier) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify MockClassifier implements Classifier at compile time.
var _ Classifier = (*MockClassifier)(nil)
