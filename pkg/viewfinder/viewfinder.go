// Package viewfinder computes the centered target region the user aims at
// text, and the guide text and color shown around it.
package viewfinder

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/teslashibe/go-presenter/pkg/targeting"
)

// Default fractions of the frame covered by the viewfinder.
const (
	DefaultWidthFraction  = 0.8
	DefaultHeightFraction = 0.5
)

// ErrOutsideFrame is returned by Crop when the region misses the frame.
var ErrOutsideFrame = errors.New("viewfinder: region outside frame")

// Guide texts.
const (
	GuideSearching = "Find Text"
	GuideHold      = "Hold Steady..."
	GuideReading   = "Reading..."
)

var (
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
)

// Config sets the viewfinder size relative to the frame.
type Config struct {
	WidthFraction  float64 `yaml:"width_fraction" json:"width_fraction"`
	HeightFraction float64 `yaml:"height_fraction" json:"height_fraction"`
}

// DefaultConfig returns an 80% x 50% viewfinder.
func DefaultConfig() Config {
	return Config{
		WidthFraction:  DefaultWidthFraction,
		HeightFraction: DefaultHeightFraction,
	}
}

// Validate checks both fractions are in (0, 1].
func (c Config) Validate() error {
	var errs []error
	if !(c.WidthFraction > 0 && c.WidthFraction <= 1) {
		errs = append(errs, fmt.Errorf("width_fraction %.2f is out of range (0, 1]", c.WidthFraction))
	}
	if !(c.HeightFraction > 0 && c.HeightFraction <= 1) {
		errs = append(errs, fmt.Errorf("height_fraction %.2f is out of range (0, 1]", c.HeightFraction))
	}
	return errors.Join(errs...)
}

// Rect returns the viewfinder rectangle centered in frame. Sizes and offsets
// are truncated to whole pixels.
func (c Config) Rect(frame image.Rectangle) image.Rectangle {
	fw, fh := frame.Dx(), frame.Dy()
	w := int(float64(fw) * c.WidthFraction)
	h := int(float64(fh) * c.HeightFraction)
	x := frame.Min.X + (fw-w)/2
	y := frame.Min.Y + (fh-h)/2
	return image.Rect(x, y, x+w, y+h)
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Crop returns the part of img inside r. The result shares pixels with img
// when img supports SubImage, otherwise it is a copy.
func Crop(img image.Image, r image.Rectangle) (image.Image, error) {
	if img == nil {
		return nil, ErrOutsideFrame
	}
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, ErrOutsideFrame
	}
	if s, ok := img.(subImager); ok {
		return s.SubImage(r), nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst, nil
}

// Guide returns the instruction shown above the viewfinder.
func Guide(s targeting.Status) string {
	switch s {
	case targeting.StatusHoldSteady:
		return GuideHold
	case targeting.StatusReadyToRead:
		return GuideReading
	default:
		return GuideSearching
	}
}

// Color returns the viewfinder outline color: green once text can be read.
func Color(s targeting.Status) color.RGBA {
	if s == targeting.StatusReadyToRead {
		return Green
	}
	return White
}
