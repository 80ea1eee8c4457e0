package audioio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// DeviceInfo describes an input-capable PortAudio device.
type DeviceInfo struct {
	Index             int     `json:"index"`
	Name              string  `json:"name"`
	HostAPI           string  `json:"host_api"`
	MaxInputChannels  int     `json:"max_input_channels"`
	DefaultSampleRate float64 `json:"default_sample_rate"`
	Default           bool    `json:"default"`
}

// ListDevices returns the PortAudio devices that can capture audio.
func ListDevices() ([]DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("portaudio devices: %w", err)
	}
	def, _ := portaudio.DefaultInputDevice()

	var out []DeviceInfo
	for _, d := range devices {
		if d.MaxInputChannels < 1 {
			continue
		}
		info := DeviceInfo{
			Index:             d.Index,
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
			Default:           def != nil && def.Index == d.Index,
		}
		if d.HostApi != nil {
			info.HostAPI = d.HostApi.Name
		}
		out = append(out, info)
	}
	return out, nil
}

// portAudioSource captures PCM16 from a blocking PortAudio input stream.
type portAudioSource struct {
	cfg    Config
	logger *slog.Logger
	pump   pump

	stream *portaudio.Stream
	buf    []int16

	overflows atomic.Int64
}

func newPortAudioSource(cfg Config, logger *slog.Logger) (*portAudioSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audioio: portaudio init: %w", err)
	}

	device, err := inputDevice(cfg.Device)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	buf := make([]int16, cfg.BufferSize())
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: cfg.Channels,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: cfg.FramesPerBuffer,
	}, buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("audioio: open %q: %w", device.Name, err)
	}

	logger = logger.With("component", "audioio.portaudio")
	logger.Info("input device opened", "device", device.Name, "index", device.Index)
	return &portAudioSource{cfg: cfg, logger: logger, stream: stream, buf: buf}, nil
}

func inputDevice(index int) (*portaudio.DeviceInfo, error) {
	if index == DefaultDevice {
		d, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("audioio: default input device: %w", err)
		}
		return d, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("audioio: list devices: %w", err)
	}
	for _, d := range devices {
		if d.Index != index {
			continue
		}
		if d.MaxInputChannels < 1 {
			return nil, fmt.Errorf("audioio: device %d (%s) has no input channels", index, d.Name)
		}
		return d, nil
	}
	return nil, fmt.Errorf("audioio: device %d not found", index)
}

// Start implements Source.
func (p *portAudioSource) Start(ctx context.Context) error {
	if p.pump.running() {
		return nil
	}
	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("audioio: start stream: %w", err)
	}
	if _, err := p.pump.start(ctx, p.capture); err != nil {
		_ = p.stream.Stop()
		return err
	}
	p.logger.Info("audio capture started")
	return nil
}

// capture blocks for one buffer. An input overflow means frames were lost
// upstream but buf still holds a full chunk.
func (p *portAudioSource) capture(context.Context) (Chunk, error) {
	if err := p.stream.Read(); err != nil {
		if !errors.Is(err, portaudio.InputOverflowed) {
			p.logger.Error("audio read failed", "error", err)
			return Chunk{}, fmt.Errorf("audioio: read: %w", err)
		}
		if n := p.overflows.Add(1); n%100 == 1 {
			p.logger.Warn("input overflowed", "total", n)
		}
	}
	samples := make([]int16, len(p.buf))
	copy(samples, p.buf)
	return Chunk{Samples: samples, SampleRate: p.cfg.SampleRate, Channels: p.cfg.Channels}, nil
}

// Read implements Source.
func (p *portAudioSource) Read(ctx context.Context) (Chunk, error) {
	return p.pump.read(ctx)
}

// Stop implements Source.
func (p *portAudioSource) Stop() error {
	if !p.pump.stop() {
		return nil
	}
	if err := p.stream.Stop(); err != nil {
		return fmt.Errorf("audioio: stop stream: %w", err)
	}
	p.logger.Info("audio capture stopped", "overflows", p.overflows.Load())
	return nil
}

// Config implements Source.
func (p *portAudioSource) Config() Config { return p.cfg }

// Name implements Source.
func (p *portAudioSource) Name() string { return string(BackendPortAudio) }

// Close implements Source.
func (p *portAudioSource) Close() error {
	stopErr := p.Stop()
	if !p.pump.close() {
		return stopErr
	}
	closeErr := p.stream.Close()
	portaudio.Terminate()
	return errors.Join(stopErr, closeErr)
}

// Verify portAudioSource implements Source at compile time.
var _ Source = (*portAudioSource)(nil)
