package ocr

import (
	"context"
	"image"
	"sync"
)

// Mock implements Engine for tests and hardware-free runs.
type Mock struct {
	// RecognizeFunc produces the transcription. Nil yields "".
	RecognizeFunc func(ctx context.Context, img image.Image) (string, error)
	CloseFunc     func() error

	mu         sync.Mutex
	recognized int
	closed     int
	lastBounds image.Rectangle
}

// NewMock returns a mock that always reads text.
func NewMock(text string) *Mock {
	return &Mock{
		RecognizeFunc: func(context.Context, image.Image) (string, error) {
			return text, nil
		},
	}
}

// WithError returns a mock whose Recognize always fails with err.
func WithError(err error) *Mock {
	return &Mock{
		RecognizeFunc: func(context.Context, image.Image) (string, error) {
			return "", err
		},
	}
}

// Name implements Engine.
func (m *Mock) Name() string { return EngineMock }

// Recognize implements Engine.
func (m *Mock) Recognize(ctx context.Context, img image.Image) (string, error) {
	m.mu.Lock()
	m.recognized++
	if img != nil {
		m.lastBounds = img.Bounds()
	}
	fn := m.RecognizeFunc
	m.mu.Unlock()

	if fn == nil {
		return "", nil
	}
	return fn(ctx, img)
}

// Close implements Engine.
func (m *Mock) Close() error {
	m.mu.Lock()
	m.closed++
	fn := m.CloseFunc
	m.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn()
}

// CallCount returns how often method ("Recognize" or "Close") was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch method {
	case "Recognize":
		return m.recognized
	case "Close":
		return m.closed
	}
	return 0
}

// LastBounds returns the bounds of the most recent image passed to Recognize.
func (m *Mock) LastBounds() image.Rectangle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastBounds
}

// Verify Mock implements Engine at compile time.
var _ Engine = (*Mock)(nil)
