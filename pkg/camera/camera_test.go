package camera

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"url source", func(c *Config) { c.Source = "http://10.0.0.2:8080/video" }, false},
		{"empty source", func(c *Config) { c.Source = "" }, true},
		{"negative width", func(c *Config) { c.Width = -1 }, true},
		{"zero retry", func(c *Config) { c.RetryInterval = 0 }, true},
		{"fps too high", func(c *Config) { c.FPS = 500 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			errs := cfg.Validate()
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}

func TestConfigDeviceID(t *testing.T) {
	tests := []struct {
		source string
		id     int
		ok     bool
		str    string
	}{
		{"0", 0, true, "device 0"},
		{"2", 2, true, "device 2"},
		{"-1", 0, false, "-1"},
		{"http://phone/video", 0, false, "http://phone/video"},
	}
	for _, tt := range tests {
		c := Config{Source: tt.source}
		id, ok := c.DeviceID()
		if id != tt.id || ok != tt.ok {
			t.Errorf("DeviceID(%q) = %d, %v; want %d, %v", tt.source, id, ok, tt.id, tt.ok)
		}
		if got := c.String(); got != tt.str {
			t.Errorf("String(%q) = %q, want %q", tt.source, got, tt.str)
		}
	}
}

func TestStaticSource(t *testing.T) {
	s := NewStaticSource(nil)
	if _, ok := s.Latest(); ok {
		t.Fatal("expected no frame before Set")
	}

	gray := image.NewGray(image.Rect(5, 5, 15, 25))
	gray.SetGray(5, 5, color.Gray{Y: 200})
	s.Set(gray)

	f, ok := s.Latest()
	if !ok {
		t.Fatal("expected a frame")
	}
	if f.Seq != 1 {
		t.Errorf("Seq = %d, want 1", f.Seq)
	}
	if got := f.Image.Bounds(); got != image.Rect(0, 0, 10, 20) {
		t.Errorf("bounds = %v, want rebased 10x20", got)
	}
	if got := f.Image.RGBAAt(0, 0).R; got != 200 {
		t.Errorf("pixel = %d, want 200", got)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, 4, 4))
	s.Set(rgba)
	f, _ = s.Latest()
	if f.Image != rgba || f.Seq != 2 {
		t.Errorf("expected RGBA frame passed through with Seq 2, got seq %d", f.Seq)
	}
}

func TestStaticSource_StartStopsOnCancel(t *testing.T) {
	s := NewStaticSource(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
