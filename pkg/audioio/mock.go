package audioio

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// MockSource replays recorded chunks and then synthesises audio at the
// configured buffer rate. It needs no hardware.
type MockSource struct {
	cfg    Config
	logger *slog.Logger
	pump   pump

	// Touched only by the capture goroutine once started.
	script    []Chunk
	failure   error
	tone      float64 // Hz, 0 = silence
	amplitude float64
	phase     float64
}

// MockSourceOption configures a MockSource.
type MockSourceOption func(*MockSource)

// WithTone synthesises a sine of the given frequency and amplitude (0-1)
// instead of silence.
func WithTone(frequency, amplitude float64) MockSourceOption {
	return func(m *MockSource) {
		m.tone = frequency
		m.amplitude = amplitude
	}
}

// WithChunks queues recorded chunks to be delivered before synthetic audio.
func WithChunks(chunks ...Chunk) MockSourceOption {
	return func(m *MockSource) {
		m.script = append(m.script, chunks...)
	}
}

// WithFailure makes capture fail with err once the recorded chunks run out,
// the way a device that is unplugged mid-stream does.
func WithFailure(err error) MockSourceOption {
	return func(m *MockSource) {
		m.failure = err
	}
}

// NewMockSource creates a mock source. cfg.Backend is not consulted.
func NewMockSource(cfg Config, logger *slog.Logger, opts ...MockSourceOption) *MockSource {
	if logger == nil {
		logger = slog.Default()
	}
	m := &MockSource{
		cfg:       cfg,
		logger:    logger.With("component", "audioio.mock"),
		amplitude: 0.5,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start implements Source.
func (m *MockSource) Start(ctx context.Context) error {
	started, err := m.pump.start(ctx, m.capture)
	if started {
		m.logger.Info("mock capture started", "sample_rate", m.cfg.SampleRate, "tone_hz", m.tone)
	}
	return err
}

func (m *MockSource) capture(ctx context.Context) (Chunk, error) {
	t := time.NewTimer(m.cfg.BufferDuration())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return Chunk{}, ctx.Err()
	case <-t.C:
	}

	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		return next, nil
	}
	if m.failure != nil {
		return Chunk{}, m.failure
	}
	return m.synthesise(), nil
}

func (m *MockSource) synthesise() Chunk {
	frames, channels := m.cfg.FramesPerBuffer, m.cfg.Channels
	samples := make([]int16, frames*channels)
	if m.tone > 0 {
		step := 2 * math.Pi * m.tone / float64(m.cfg.SampleRate)
		for i := 0; i < frames; i++ {
			v := int16(m.amplitude * math.Sin(m.phase) * math.MaxInt16)
			for ch := 0; ch < channels; ch++ {
				samples[i*channels+ch] = v
			}
			m.phase = math.Mod(m.phase+step, 2*math.Pi)
		}
	}
	return Chunk{Samples: samples, SampleRate: m.cfg.SampleRate, Channels: channels}
}

// Read implements Source.
func (m *MockSource) Read(ctx context.Context) (Chunk, error) {
	return m.pump.read(ctx)
}

// Stop implements Source.
func (m *MockSource) Stop() error {
	if m.pump.stop() {
		m.logger.Info("mock capture stopped")
	}
	return nil
}

// Running reports whether capture is in progress.
func (m *MockSource) Running() bool { return m.pump.running() }

// Config implements Source.
func (m *MockSource) Config() Config { return m.cfg }

// Name implements Source.
func (m *MockSource) Name() string { return string(BackendMock) }

// Close implements Source.
func (m *MockSource) Close() error {
	m.pump.close()
	return nil
}

// Verify MockSource implements Source at compile time.
var _ Source = (*MockSource)(nil)
