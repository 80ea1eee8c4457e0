// Package camera provides frame sources for the presenter: a gocv capture
// device (webcam index or stream URL) and a static source for tests.
package camera

import (
	"fmt"
	"strconv"
	"time"
)

// Config holds frame source settings.
type Config struct {
	// Source is a device index ("0") or a stream URL
	// (e.g. "http://192.168.1.20:8080/video" for a phone camera).
	Source string `yaml:"source" json:"source"`

	// Requested capture size. 0 keeps the device default.
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
	FPS    int `yaml:"fps" json:"fps"`

	// RetryInterval is the pause after a failed read.
	RetryInterval time.Duration `yaml:"retry_interval" json:"retry_interval"`
}

// DefaultConfig returns the default webcam configuration.
func DefaultConfig() Config {
	return Config{
		Source:        "0",
		RetryInterval: 100 * time.Millisecond,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Source == "" {
		errors = append(errors, "source is required")
	}
	if c.Width < 0 || c.Width > 7680 {
		errors = append(errors, "width must be 0 (device default) or up to 7680")
	}
	if c.Height < 0 || c.Height > 4320 {
		errors = append(errors, "height must be 0 (device default) or up to 4320")
	}
	if c.FPS < 0 || c.FPS > 240 {
		errors = append(errors, "fps must be 0 (device default) or up to 240")
	}
	if c.RetryInterval <= 0 {
		errors = append(errors, "retry_interval must be positive")
	}

	return errors
}

// DeviceID returns the device index when Source is numeric.
func (c *Config) DeviceID() (int, bool) {
	id, err := strconv.Atoi(c.Source)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

func (c *Config) String() string {
	if id, ok := c.DeviceID(); ok {
		return fmt.Sprintf("device %d", id)
	}
	return c.Source
}
