package audioio

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastConfig delivers 10ms chunks at 16kHz.
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.Backend = BackendMock
	cfg.FramesPerBuffer = 160
	return cfg
}

func readCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestMockSource_StartStopIdempotent(t *testing.T) {
	src := NewMockSource(fastConfig(), nil)
	defer src.Close()

	require.NoError(t, src.Start(context.Background()))
	require.NoError(t, src.Start(context.Background()))
	assert.True(t, src.Running())

	require.NoError(t, src.Stop())
	require.NoError(t, src.Stop())
	assert.False(t, src.Running())

	require.NoError(t, src.Start(context.Background()), "a stopped source restarts")
	assert.True(t, src.Running())
}

func TestMockSource_ReadsConfiguredBuffer(t *testing.T) {
	cfg := fastConfig()
	cfg.Channels = 2
	src := NewMockSource(cfg, nil)
	defer src.Close()

	ctx := readCtx(t)
	require.NoError(t, src.Start(ctx))

	chunk, err := src.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, chunk.Samples, cfg.BufferSize())
	assert.Equal(t, cfg.SampleRate, chunk.SampleRate)
	assert.Equal(t, 2, chunk.Channels)
	assert.Equal(t, 160, chunk.Frames())
	assert.Equal(t, 10*time.Millisecond, chunk.Duration())
}

func TestMockSource_ReadBeforeStartIsEOF(t *testing.T) {
	src := NewMockSource(fastConfig(), nil)
	defer src.Close()

	_, err := src.Read(readCtx(t))
	assert.ErrorIs(t, err, io.EOF)
}

func TestMockSource_ReadAfterStopIsEOF(t *testing.T) {
	src := NewMockSource(fastConfig(), nil)
	defer src.Close()

	ctx := readCtx(t)
	require.NoError(t, src.Start(ctx))
	require.NoError(t, src.Stop())

	for {
		_, err := src.Read(ctx)
		if err != nil {
			assert.ErrorIs(t, err, io.EOF)
			return
		}
	}
}

func TestMockSource_ReadHonoursContext(t *testing.T) {
	cfg := fastConfig()
	cfg.FramesPerBuffer = 16000 // one chunk per second
	src := NewMockSource(cfg, nil)
	defer src.Close()
	require.NoError(t, src.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := src.Read(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMockSource_Tone(t *testing.T) {
	src := NewMockSource(fastConfig(), nil, WithTone(440, 0.5))
	defer src.Close()

	ctx := readCtx(t)
	require.NoError(t, src.Start(ctx))
	chunk, err := src.Read(ctx)
	require.NoError(t, err)

	var peak int16
	for _, s := range chunk.Samples {
		if s > peak {
			peak = s
		}
	}
	assert.InDelta(t, 16383, int(peak), 200, "amplitude 0.5 peaks near half scale")
}

func TestMockSource_SilenceByDefault(t *testing.T) {
	src := NewMockSource(fastConfig(), nil)
	defer src.Close()

	ctx := readCtx(t)
	require.NoError(t, src.Start(ctx))
	chunk, err := src.Read(ctx)
	require.NoError(t, err)
	for _, s := range chunk.Samples {
		require.Zero(t, s)
	}
}

func TestMockSource_ScriptedChunksFirst(t *testing.T) {
	recorded := Chunk{Samples: []int16{7, 7, 7}, SampleRate: 44100, Channels: 1}
	src := NewMockSource(fastConfig(), nil, WithChunks(recorded))
	defer src.Close()

	ctx := readCtx(t)
	require.NoError(t, src.Start(ctx))

	first, err := src.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, recorded, first)

	second, err := src.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, 16000, second.SampleRate, "synthetic audio follows the script")
}

func TestMockSource_FailureAfterScript(t *testing.T) {
	unplugged := errors.New("device unplugged")
	src := NewMockSource(fastConfig(), nil,
		WithChunks(Chunk{Samples: []int16{1}, SampleRate: 16000, Channels: 1}),
		WithFailure(unplugged),
	)
	defer src.Close()

	ctx := readCtx(t)
	require.NoError(t, src.Start(ctx))

	_, err := src.Read(ctx)
	require.NoError(t, err)

	_, err = src.Read(ctx)
	assert.ErrorIs(t, err, unplugged)
	assert.Eventually(t, func() bool { return !src.Running() }, time.Second, 5*time.Millisecond)
}

func TestMockSource_Close(t *testing.T) {
	src := NewMockSource(fastConfig(), nil)
	require.NoError(t, src.Start(context.Background()))

	require.NoError(t, src.Close())
	require.NoError(t, src.Close())
	assert.ErrorIs(t, src.Start(context.Background()), io.ErrClosedPipe)
}

func TestNewSource_Mock(t *testing.T) {
	src, err := NewSource(fastConfig(), nil)
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, "mock", src.Name())
}

func TestNewSource_InvalidConfig(t *testing.T) {
	cfg := fastConfig()
	cfg.SampleRate = 0
	_, err := NewSource(cfg, nil)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"stereo", func(c *Config) { c.Channels = 2 }, true},
		{"device index", func(c *Config) { c.Device = 3 }, true},
		{"unknown backend", func(c *Config) { c.Backend = "alsa" }, false},
		{"three channels", func(c *Config) { c.Channels = 3 }, false},
		{"zero frames", func(c *Config) { c.FramesPerBuffer = 0 }, false},
		{"negative device", func(c *Config) { c.Device = -2 }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if tc.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestConfig_BufferDuration(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 64*time.Millisecond, cfg.BufferDuration())
	assert.Equal(t, 1024, cfg.BufferSize())
}
