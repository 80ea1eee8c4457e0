package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"
)

// Factory builds an engine. It may be slow (model download, auth).
type Factory func(ctx context.Context) (Engine, error)

// Loader builds an engine in the background and serves Recognize once it is
// available. Until then Recognize returns ErrNotReady.
type Loader struct {
	logger *slog.Logger

	mu     sync.RWMutex
	engine Engine
	err    error

	startOnce sync.Once
	ready     chan struct{}
}

// NewLoader creates an idle loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger.With("component", "ocr.loader"),
		ready:  make(chan struct{}),
	}
}

// Start runs factory on a new goroutine. Only the first call has an effect.
// Ready is closed when the factory returns, whether it succeeded or not.
func (l *Loader) Start(ctx context.Context, factory Factory) {
	l.startOnce.Do(func() {
		go l.load(ctx, factory)
	})
}

// Load runs factory on the calling goroutine and returns its error.
func (l *Loader) Load(ctx context.Context, factory Factory) error {
	started := false
	l.startOnce.Do(func() {
		started = true
		l.load(ctx, factory)
	})
	if !started {
		<-l.ready
	}
	return l.Err()
}

func (l *Loader) load(ctx context.Context, factory Factory) {
	defer close(l.ready)

	start := time.Now()
	l.logger.Info("loading OCR engine")

	engine, err := factory(ctx)
	if err == nil && engine == nil {
		err = ErrNoEngine
	}

	l.mu.Lock()
	l.engine, l.err = engine, err
	l.mu.Unlock()

	if err != nil {
		l.logger.Error("OCR engine failed to load", "error", err)
		return
	}
	l.logger.Info("OCR engine ready",
		"engine", engine.Name(),
		"load_ms", time.Since(start).Milliseconds(),
	)
}

// Ready is closed once loading has finished.
func (l *Loader) Ready() <-chan struct{} {
	return l.ready
}

// IsReady reports whether a working engine is available.
func (l *Loader) IsReady() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.engine != nil
}

// Err returns the load error, if any.
func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Wait blocks until loading finishes or ctx is done.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.ready:
		return l.Err()
	}
}

// Name implements Engine.
func (l *Loader) Name() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.engine == nil {
		return "loader"
	}
	return l.engine.Name()
}

// Recognize implements Engine.
func (l *Loader) Recognize(ctx context.Context, img image.Image) (string, error) {
	l.mu.RLock()
	engine, err := l.engine, l.err
	l.mu.RUnlock()

	if engine == nil {
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNotReady, err)
		}
		return "", ErrNotReady
	}
	return engine.Recognize(ctx, img)
}

// Close closes the loaded engine, if any.
func (l *Loader) Close() error {
	l.mu.Lock()
	engine := l.engine
	l.engine = nil
	l.mu.Unlock()
	if engine == nil {
		return nil
	}
	return engine.Close()
}

// Verify Loader implements Engine at compile time.
var _ Engine = (*Loader)(nil)
