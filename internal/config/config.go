// Package config loads go-presenter settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-presenter/pkg/audioio"
	"github.com/teslashibe/go-presenter/pkg/camera"
	"github.com/teslashibe/go-presenter/pkg/ocr"
	"github.com/teslashibe/go-presenter/pkg/overlay"
	"github.com/teslashibe/go-presenter/pkg/soundalert"
	"github.com/teslashibe/go-presenter/pkg/targeting"
	"github.com/teslashibe/go-presenter/pkg/viewfinder"
)

// Environment variables read by LoadEnvConfig.
const (
	EnvCamera             = "PRESENTER_CAMERA"
	EnvClarityThreshold   = "PRESENTER_CLARITY_THRESHOLD"
	EnvStabilityThreshold = "PRESENTER_STABILITY_THRESHOLD"
	EnvWebPort            = "PRESENTER_WEB_PORT"
	EnvGeminiAPIKey       = "GEMINI_API_KEY"
	EnvGoogleAPIKey       = "GOOGLE_API_KEY"
	EnvCredentials        = "GOOGLE_APPLICATION_CREDENTIALS"
)

// Config is the complete application configuration.
type Config struct {
	Log        LogConfig         `yaml:"log"`
	Camera     camera.Config     `yaml:"camera"`
	Viewfinder viewfinder.Config `yaml:"viewfinder"`
	Targeting  targeting.Config  `yaml:"targeting"`
	OCR        OCRConfig         `yaml:"ocr"`
	Audio      audioio.Config    `yaml:"audio"`
	Alerts     soundalert.Config `yaml:"alerts"`
	Overlay    overlay.Config    `yaml:"overlay"`
	Web        WebConfig         `yaml:"web"`
	History    HistoryConfig     `yaml:"history"`
	Pipeline   PipelineConfig    `yaml:"pipeline"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `yaml:"level"`
	// Format is "text" or "json"; empty picks JSON when GO_ENV=production.
	Format string `yaml:"format"`
}

// OCRConfig selects and configures the recognition engines.
type OCRConfig struct {
	// Engines are tried in order; the first configured one that succeeds wins.
	Engines []string `yaml:"engines"`

	Model       string        `yaml:"model"`
	Prompt      string        `yaml:"prompt"`
	BaseURL     string        `yaml:"base_url"`
	JPEGQuality int           `yaml:"jpeg_quality"`
	Timeout     time.Duration `yaml:"timeout"`

	// Credentials. Normally supplied through the environment.
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	GoogleAPIKey    string `yaml:"google_api_key"`
	CredentialsFile string `yaml:"credentials_file"`
}

// WebConfig controls the dashboard.
type WebConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// HistoryConfig controls the recognition log.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// PipelineConfig holds the loop cadences.
type PipelineConfig struct {
	VisionInterval time.Duration `yaml:"vision_interval"`
	RenderInterval time.Duration `yaml:"render_interval"`
}

var validLogLevels = []string{"debug", "info", "warn", "warning", "error"}

var validEngines = []string{ocr.EngineGemini, ocr.EngineCloudVision, ocr.EngineMock}

// Default returns the reference configuration.
func Default() *Config {
	ocrDefaults := ocr.DefaultConfig()
	return &Config{
		Log:        LogConfig{Level: "info"},
		Camera:     camera.DefaultConfig(),
		Viewfinder: viewfinder.DefaultConfig(),
		Targeting:  targeting.DefaultConfig(),
		OCR: OCRConfig{
			Engines:     []string{ocr.EngineGemini, ocr.EngineCloudVision},
			Model:       ocrDefaults.Model,
			Prompt:      ocrDefaults.Prompt,
			JPEGQuality: ocrDefaults.JPEGQuality,
			Timeout:     ocrDefaults.Timeout,
		},
		Audio:   audioio.DefaultConfig(),
		Alerts:  soundalert.DefaultConfig(),
		Overlay: overlay.DefaultConfig(),
		Web:     WebConfig{Enabled: true, Addr: ":8080"},
		History: HistoryConfig{Enabled: true, Path: "presenter.db"},
		Pipeline: PipelineConfig{
			VisionInterval: 100 * time.Millisecond,
			RenderInterval: 30 * time.Millisecond,
		},
	}
}

// Load reads the YAML file at path on top of Default and validates it.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r on top of Default. Unknown keys are
// rejected. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvConfig applies environment overrides. Call it after loading the
// file and before applying flags.
func (c *Config) LoadEnvConfig() error {
	var errs []error

	if v := os.Getenv(EnvCamera); v != "" {
		c.Camera.Source = v
	}
	if v := os.Getenv(EnvClarityThreshold); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvClarityThreshold, err))
		} else {
			c.Targeting.ClarityThreshold = f
		}
	}
	if v := os.Getenv(EnvStabilityThreshold); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvStabilityThreshold, err))
		} else {
			c.Targeting.StabilityThreshold = f
		}
	}
	if v := os.Getenv(EnvWebPort); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvWebPort, err))
		} else {
			c.Web.Addr = ":" + v
		}
	}
	if v := os.Getenv(EnvGeminiAPIKey); v != "" {
		c.OCR.GeminiAPIKey = v
	}
	if v := os.Getenv(EnvGoogleAPIKey); v != "" {
		c.OCR.GoogleAPIKey = v
	}
	if v := os.Getenv(EnvCredentials); v != "" {
		c.OCR.CredentialsFile = v
	}

	return errors.Join(errs...)
}

// Validate checks every section and returns all failures joined.
func (c *Config) Validate() error {
	var errs []error

	if c.Log.Level != "" && !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is invalid; valid values: text, json", c.Log.Format))
	}

	for _, msg := range c.Camera.Validate() {
		errs = append(errs, fmt.Errorf("camera.%s", msg))
	}
	if err := c.Viewfinder.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("viewfinder: %w", err))
	}
	if err := c.Targeting.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("targeting: %w", err))
	}

	if len(c.OCR.Engines) == 0 {
		errs = append(errs, errors.New("ocr.engines must name at least one engine"))
	}
	for _, name := range c.OCR.Engines {
		if !slices.Contains(validEngines, name) {
			errs = append(errs, fmt.Errorf("ocr.engines: unknown engine %q; valid values: %s", name, strings.Join(validEngines, ", ")))
		}
	}
	if c.OCR.JPEGQuality < 1 || c.OCR.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("ocr.jpeg_quality %d is out of range [1, 100]", c.OCR.JPEGQuality))
	}
	if c.OCR.Timeout <= 0 {
		errs = append(errs, errors.New("ocr.timeout must be positive"))
	}

	if c.Alerts.Enabled {
		if err := c.Audio.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("audio: %w", err))
		}
	}
	if err := c.Alerts.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("alerts: %w", err))
	}

	if c.Overlay.Thickness < 1 {
		errs = append(errs, errors.New("overlay.thickness must be at least 1"))
	}
	if c.Overlay.JPEGQuality < 1 || c.Overlay.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("overlay.jpeg_quality %d is out of range [1, 100]", c.Overlay.JPEGQuality))
	}

	if c.Web.Enabled && c.Web.Addr == "" {
		errs = append(errs, errors.New("web.addr is required when the dashboard is enabled"))
	}
	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, errors.New("history.path is required when history is enabled"))
	}

	if c.Pipeline.VisionInterval <= 0 {
		errs = append(errs, errors.New("pipeline.vision_interval must be positive"))
	}
	if c.Pipeline.RenderInterval <= 0 {
		errs = append(errs, errors.New("pipeline.render_interval must be positive"))
	}

	return errors.Join(errs...)
}
