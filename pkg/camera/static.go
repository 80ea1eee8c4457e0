package camera

import (
	"context"
	"image"
	"image/draw"
	"sync"
	"time"
)

// StaticSource serves fixed images. Set replaces the current frame, so tests
// can script a sequence of captures.
type StaticSource struct {
	mu    sync.Mutex
	frame Frame
	ok    bool
}

// NewStaticSource returns a source that serves img. img may be nil.
func NewStaticSource(img image.Image) *StaticSource {
	s := &StaticSource{}
	if img != nil {
		s.Set(img)
	}
	return s
}

// Set publishes img as the latest frame.
func (s *StaticSource) Set(img image.Image) {
	rgba, ok := img.(*image.RGBA)
	if !ok {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	s.mu.Lock()
	s.frame = Frame{Image: rgba, Seq: s.frame.Seq + 1, CapturedAt: time.Now()}
	s.ok = true
	s.mu.Unlock()
}

// Start blocks until ctx is done.
func (s *StaticSource) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Latest implements Source.
func (s *StaticSource) Latest() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, s.ok
}

// Close implements Source.
func (s *StaticSource) Close() error { return nil }
