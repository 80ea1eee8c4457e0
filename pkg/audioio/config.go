// Package audioio captures microphone audio for sound alert detection.
//
// PortAudio backs real devices; the mock backend replays recorded chunks or
// synthesises tones for tests and hardware-free runs.
package audioio

import (
	"fmt"
	"time"
)

// Backend represents the audio backend type.
type Backend string

const (
	BackendAuto      Backend = "auto" // PortAudio
	BackendPortAudio Backend = "portaudio"
	BackendMock      Backend = "mock"
)

// DefaultDevice selects the host's default input device.
const DefaultDevice = -1

// Config holds audio configuration.
type Config struct {
	// Backend specifies which audio backend to use.
	// Default: "auto"
	Backend Backend `yaml:"backend" json:"backend"`

	// SampleRate is the audio sample rate in Hz.
	// Default: 16000 (the sound classifier's native rate)
	SampleRate int `yaml:"sample_rate" json:"sample_rate"`

	// Channels is the number of audio channels.
	// Default: 1 (mono)
	Channels int `yaml:"channels" json:"channels"`

	// FramesPerBuffer is the number of frames delivered per chunk.
	// Default: 1024 (64ms at 16kHz)
	FramesPerBuffer int `yaml:"frames_per_buffer" json:"frames_per_buffer"`

	// Device is the PortAudio input device index from ListDevices.
	// Default: -1 (host default input)
	Device int `yaml:"device" json:"device"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:         BackendAuto,
		SampleRate:      16000,
		Channels:        1,
		FramesPerBuffer: 1024,
		Device:          DefaultDevice,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendPortAudio, BackendMock:
	default:
		return fmt.Errorf("backend must be auto, portaudio or mock, got %q", c.Backend)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 || c.Channels > 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", c.Channels)
	}
	if c.FramesPerBuffer <= 0 {
		return fmt.Errorf("frames_per_buffer must be positive, got %d", c.FramesPerBuffer)
	}
	if c.Device < DefaultDevice {
		return fmt.Errorf("device must be -1 (default) or a device index, got %d", c.Device)
	}
	return nil
}

// BufferSize returns the number of samples per buffer across all channels.
func (c *Config) BufferSize() int {
	return c.FramesPerBuffer * c.Channels
}

// BufferDuration returns the wall-clock length of one buffer.
func (c *Config) BufferDuration() time.Duration {
	return time.Duration(float64(c.FramesPerBuffer) / float64(c.SampleRate) * float64(time.Second))
}
