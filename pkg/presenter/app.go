// Package presenter runs the presenter mode pipeline: capture frames, decide
// when the viewfinder holds readable text, recognize it, listen for alert
// sounds and publish everything to the dashboard.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-presenter/internal/observe"
	"github.com/teslashibe/go-presenter/pkg/audioio"
	"github.com/teslashibe/go-presenter/pkg/camera"
	"github.com/teslashibe/go-presenter/pkg/history"
	"github.com/teslashibe/go-presenter/pkg/ocr"
	"github.com/teslashibe/go-presenter/pkg/soundalert"
	"github.com/teslashibe/go-presenter/pkg/targeting"
	"github.com/teslashibe/go-presenter/pkg/viewfinder"
	"github.com/teslashibe/go-presenter/pkg/web"
)

// Default loop cadences.
const (
	DefaultVisionInterval = 100 * time.Millisecond
	DefaultRenderInterval = 30 * time.Millisecond
)

// Renderer annotates a frame for display. *overlay.Renderer satisfies it.
type Renderer interface {
	Render(frame image.Image, rect image.Rectangle, status targeting.Status) ([]byte, error)
}

// Publisher receives dashboard state and annotated frames.
// *web.Server satisfies it.
type Publisher interface {
	UpdateState(update func(*web.State))
	SendCameraFrame(jpegData []byte)
}

// Recorder persists recognitions and alerts. *history.Store satisfies it.
type Recorder interface {
	RecordText(ctx context.Context, e history.Entry) (history.Entry, error)
	RecordAlert(ctx context.Context, e history.Entry) (history.Entry, error)
}

// Verify collaborators implement the interfaces at compile time.
var (
	_ Publisher = (*web.Server)(nil)
	_ Recorder  = (*history.Store)(nil)
)

// Options wires the App. Camera, Estimator and OCR are required.
type Options struct {
	Camera     camera.Source
	Estimator  *targeting.Estimator
	Viewfinder viewfinder.Config

	// OCR builds the recognition engine. It runs once, off the vision path.
	OCR ocr.Factory

	// Audio and Detector drive sound alerts. A nil Audio disables them.
	Audio    audioio.Source
	Detector *soundalert.Detector

	Renderer  Renderer
	Publisher Publisher
	History   Recorder
	Metrics   *observe.Metrics
	Logger    *slog.Logger

	VisionInterval time.Duration
	RenderInterval time.Duration
}

// Snapshot is the shared pipeline state.
type Snapshot struct {
	Status   targeting.Status
	Scores   targeting.Scores
	Text     string
	Alert    string
	OCRReady bool
}

// App is one presenter session.
type App struct {
	opts    Options
	logger  *slog.Logger
	metrics *observe.Metrics
	loader  *ocr.Loader

	mu    sync.RWMutex
	state Snapshot

	// render loop bookkeeping, owned by renderLoop
	lastSeq    uint64
	lastStatus targeting.Status
}

// New validates opts and fills in defaults.
func New(opts Options) (*App, error) {
	var errs []error
	if opts.Camera == nil {
		errs = append(errs, errors.New("camera source is required"))
	}
	if opts.Estimator == nil {
		errs = append(errs, errors.New("targeting estimator is required"))
	}
	if opts.OCR == nil {
		errs = append(errs, errors.New("OCR factory is required"))
	}
	if err := opts.Viewfinder.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("presenter: %w", err)
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = observe.Discard()
	}
	if opts.VisionInterval <= 0 {
		opts.VisionInterval = DefaultVisionInterval
	}
	if opts.RenderInterval <= 0 {
		opts.RenderInterval = DefaultRenderInterval
	}
	if opts.Audio != nil && opts.Detector == nil {
		opts.Detector = soundalert.NewDetector(nil, nil, nil, opts.Logger)
	}

	return &App{
		opts:    opts,
		logger:  opts.Logger.With("component", "presenter.App"),
		metrics: opts.Metrics,
		loader:  ocr.NewLoader(opts.Logger),
		state:   Snapshot{Status: targeting.StatusSearching},
	}, nil
}

// Run starts every loop and blocks until ctx is cancelled or a loop fails.
// A failed OCR load is fatal.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.opts.Camera.Start(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("presenter: camera: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := a.loader.Load(ctx, a.opts.OCR); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("presenter: load OCR engine: %w", err)
		}
		a.update(func(s *Snapshot) { s.OCRReady = true })
		return nil
	})

	g.Go(func() error { return a.visionLoop(ctx) })

	if a.opts.Audio != nil {
		g.Go(func() error { return a.audioLoop(ctx) })
	}

	if a.opts.Publisher != nil {
		g.Go(func() error { return a.renderLoop(ctx) })
	}

	err := g.Wait()

	if cerr := a.loader.Close(); cerr != nil {
		a.logger.Warn("close OCR engine", "error", cerr)
	}
	return err
}

// Snapshot returns a copy of the shared state.
func (a *App) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *App) update(fn func(*Snapshot)) {
	a.mu.Lock()
	fn(&a.state)
	a.mu.Unlock()
}

// waitForOCR blocks until the engine is usable. It reports false when ctx
// ends first or the load failed.
func (a *App) waitForOCR(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-a.loader.Ready():
		return a.loader.IsReady()
	}
}

func ticker(ctx context.Context, every time.Duration, fn func(context.Context)) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			fn(ctx)
		}
	}
}
