package targeting

import (
	"errors"
	"fmt"
	"math"
)

// Reference thresholds. Calibration depends on lighting and optics, so both
// are overridable through Config.
const (
	DefaultClarityThreshold   = 50.0
	DefaultStabilityThreshold = 5.0
)

// Config holds the two gate thresholds.
type Config struct {
	// ClarityThreshold is the minimum Laplacian variance for a region to be
	// considered sharp. Higher means only very crisp text passes.
	ClarityThreshold float64 `yaml:"clarity_threshold" json:"clarity_threshold"`

	// StabilityThreshold is the maximum mean absolute difference (0-255 scale)
	// against the previous region. Lower means the camera must be very still.
	StabilityThreshold float64 `yaml:"stability_threshold" json:"stability_threshold"`
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{
		ClarityThreshold:   DefaultClarityThreshold,
		StabilityThreshold: DefaultStabilityThreshold,
	}
}

// Validate checks that both thresholds are finite and non-negative.
func (c Config) Validate() error {
	var errs []error
	if math.IsNaN(c.ClarityThreshold) || math.IsInf(c.ClarityThreshold, 0) || c.ClarityThreshold < 0 {
		errs = append(errs, fmt.Errorf("clarity_threshold must be a non-negative number, got %v", c.ClarityThreshold))
	}
	if math.IsNaN(c.StabilityThreshold) || math.IsInf(c.StabilityThreshold, 0) || c.StabilityThreshold < 0 {
		errs = append(errs, fmt.Errorf("stability_threshold must be a non-negative number, got %v", c.StabilityThreshold))
	}
	return errors.Join(errs...)
}
