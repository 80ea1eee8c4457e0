package camera

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// CaptureSource reads frames from a gocv VideoCapture on its own goroutine.
type CaptureSource struct {
	config Config
	logger *slog.Logger
	vc     *gocv.VideoCapture

	mu    sync.Mutex
	frame Frame
	ok    bool

	// life guards started/closed so the device is released exactly once.
	life    sync.Mutex
	started bool
	closed  bool
	stop    chan struct{}
	done    chan struct{}
}

// NewCaptureSource opens the configured device. An open failure is returned
// immediately; the caller is expected to treat it as fatal.
func NewCaptureSource(cfg Config, logger *slog.Logger) (*CaptureSource, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("camera: invalid config: %v", errs)
	}
	if logger == nil {
		logger = slog.Default()
	}

	var device interface{} = cfg.Source
	if id, ok := cfg.DeviceID(); ok {
		device = id
	}
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, cfg.String(), err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: %s", ErrOpen, cfg.String())
	}

	if cfg.Width > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	}
	if cfg.Height > 0 {
		vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}
	if cfg.FPS > 0 {
		vc.Set(gocv.VideoCaptureFPS, float64(cfg.FPS))
	}

	return &CaptureSource{
		config: cfg,
		logger: logger.With("component", "camera.capture", "source", cfg.String()),
		vc:     vc,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// Start reads frames until ctx is done or Close is called. Failed reads are
// retried after RetryInterval. The device is released when Start returns.
func (c *CaptureSource) Start(ctx context.Context) error {
	c.life.Lock()
	if c.closed || c.started {
		c.life.Unlock()
		return ErrSourceClosed
	}
	c.started = true
	c.life.Unlock()

	defer close(c.done)
	defer c.vc.Close()

	mat := gocv.NewMat()
	defer mat.Close()

	c.logger.Info("capture started")
	var seq uint64
	failures := 0

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.stop:
			return nil
		default:
		}

		if ok := c.vc.Read(&mat); !ok || mat.Empty() {
			failures++
			if failures == 1 || failures%50 == 0 {
				c.logger.Warn("frame read failed", "failures", failures)
			}
			if !c.sleep(ctx) {
				return nil
			}
			continue
		}

		img, err := MatToRGBA(mat)
		if err != nil {
			c.logger.Warn("frame rejected", "error", err, "channels", mat.Channels())
			if !c.sleep(ctx) {
				return nil
			}
			continue
		}
		failures = 0
		seq++

		c.mu.Lock()
		c.frame = Frame{Image: img, Seq: seq, CapturedAt: time.Now()}
		c.ok = true
		c.mu.Unlock()
	}
}

func (c *CaptureSource) sleep(ctx context.Context) bool {
	t := time.NewTimer(c.config.RetryInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-c.stop:
		return false
	case <-t.C:
		return true
	}
}

// Latest implements Source.
func (c *CaptureSource) Latest() (Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame, c.ok
}

// Close stops the capture loop and waits for the device to be released.
func (c *CaptureSource) Close() error {
	c.life.Lock()
	if c.closed {
		c.life.Unlock()
		return nil
	}
	c.closed = true
	started := c.started
	c.life.Unlock()

	close(c.stop)
	if !started {
		return c.vc.Close()
	}
	<-c.done
	return nil
}

// MatToRGBA converts a 3-channel BGR Mat into an RGBA image.
func MatToRGBA(mat gocv.Mat) (*image.RGBA, error) {
	if mat.Empty() || mat.Channels() != 3 {
		return nil, ErrBadChannels
	}
	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("camera: convert frame: %w", err)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}
