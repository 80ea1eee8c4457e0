// Package overlay draws the viewfinder onto camera frames and encodes them
// for the dashboard stream.
package overlay

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-presenter/pkg/targeting"
	"github.com/teslashibe/go-presenter/pkg/viewfinder"
)

// Config controls rendering.
type Config struct {
	Thickness   int  `yaml:"thickness" json:"thickness"`
	JPEGQuality int  `yaml:"jpeg_quality" json:"jpeg_quality"`
	DrawGuide   bool `yaml:"draw_guide" json:"draw_guide"`
}

// DefaultConfig returns a 2px outline with the guide text drawn.
func DefaultConfig() Config {
	return Config{
		Thickness:   2,
		JPEGQuality: 80,
		DrawGuide:   true,
	}
}

// Renderer annotates frames. It is safe for concurrent use.
type Renderer struct {
	config Config
	mu     sync.Mutex
}

// NewRenderer creates a renderer.
func NewRenderer(cfg Config) *Renderer {
	if cfg.Thickness <= 0 {
		cfg.Thickness = 2
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 80
	}
	return &Renderer{config: cfg}
}

// Render draws the viewfinder rectangle (and guide text) for status on a
// copy of frame and returns it JPEG-encoded. frame is not modified.
func (r *Renderer) Render(frame image.Image, rect image.Rectangle, status targeting.Status) ([]byte, error) {
	if frame == nil || frame.Bounds().Empty() {
		return nil, fmt.Errorf("overlay: empty frame")
	}

	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil, fmt.Errorf("overlay: convert frame: %w", err)
	}
	defer mat.Close()

	// Mat coordinates start at the frame's origin.
	rect = rect.Sub(frame.Bounds().Min)
	c := viewfinder.Color(status)

	r.mu.Lock()
	defer r.mu.Unlock()

	gocv.Rectangle(&mat, rect, c, r.config.Thickness)

	if r.config.DrawGuide {
		guide := viewfinder.Guide(status)
		size := gocv.GetTextSize(guide, gocv.FontHersheySimplex, 0.8, 2)
		pos := image.Pt(rect.Min.X+(rect.Dx()-size.X)/2, rect.Min.Y-10)
		if pos.Y < size.Y {
			pos.Y = rect.Min.Y + size.Y + 10
		}
		gocv.PutText(&mat, guide, pos, gocv.FontHersheySimplex, 0.8, c, 2)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, r.config.JPEGQuality})
	if err != nil {
		return nil, fmt.Errorf("overlay: encode: %w", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}
