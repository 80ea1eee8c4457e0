package camera

import (
	"context"
	"errors"
	"image"
	"time"
)

// Errors returned by frame sources.
var (
	ErrOpen         = errors.New("camera: open failed")
	ErrBadChannels  = errors.New("camera: frame is not 3-channel BGR")
	ErrSourceClosed = errors.New("camera: source closed")
)

// Frame is one captured image.
type Frame struct {
	Image      *image.RGBA
	Seq        uint64
	CapturedAt time.Time
}

// Source produces frames. Only the most recent frame is kept; consumers may
// see the same frame more than once.
type Source interface {
	// Start runs the capture loop until ctx is done or Close is called.
	Start(ctx context.Context) error

	// Latest returns the newest frame, false before the first one arrives.
	Latest() (Frame, bool)

	// Close releases the device.
	Close() error
}
