package audioio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Chunk is one buffer of interleaved PCM16 audio.
type Chunk struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames (samples per channel).
func (c Chunk) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Duration returns the playback length of the chunk.
func (c Chunk) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// Source captures audio from an input device.
//
// Read blocks until a chunk is available. It returns io.EOF once the source
// has been stopped, and the capture error if the device failed.
type Source interface {
	Start(ctx context.Context) error
	Read(ctx context.Context) (Chunk, error)
	// Stop is idempotent; a stopped source may be started again.
	Stop() error
	Config() Config
	Name() string
	// Close stops capture for good. Start afterwards returns io.ErrClosedPipe.
	io.Closer
}

// NewSource opens the backend named by cfg. BackendAuto selects PortAudio.
func NewSource(cfg Config, logger *slog.Logger) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("audioio: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case BackendMock:
		return NewMockSource(cfg, logger), nil
	case BackendAuto, BackendPortAudio:
		return newPortAudioSource(cfg, logger)
	}
	return nil, fmt.Errorf("audioio: unsupported backend %q", cfg.Backend)
}
