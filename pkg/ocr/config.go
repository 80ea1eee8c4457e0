package ocr

import (
	"log/slog"
	"time"
)

// Engine names.
const (
	EngineGemini      = "gemini"
	EngineCloudVision = "cloudvision"
	EngineMock        = "mock"
)

// DefaultPrompt asks the vision model for a verbatim transcription.
const DefaultPrompt = "Transcribe all printed text in this image exactly as written. " +
	"Output only the text itself, with paragraphs separated by a blank line. " +
	"If there is no readable text, output nothing."

// Config holds engine configuration.
type Config struct {
	// Connection
	BaseURL string // API base URL (empty = engine default)
	APIKey  string

	// CredentialsFile is a service account JSON file for Cloud Vision.
	// Empty with no APIKey means Application Default Credentials.
	CredentialsFile string

	Model  string // Gemini model
	Prompt string

	// JPEGQuality for uploaded regions, 1-100.
	JPEGQuality int

	Timeout time.Duration

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring engines.
type Option func(*Config)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithCredentialsFile sets a service account credentials file.
func WithCredentialsFile(path string) Option {
	return func(c *Config) { c.CredentialsFile = path }
}

// WithModel sets the vision model.
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithPrompt replaces the transcription prompt.
func WithPrompt(prompt string) Option {
	return func(c *Config) { c.Prompt = prompt }
}

// WithJPEGQuality sets the upload JPEG quality.
func WithJPEGQuality(q int) Option {
	return func(c *Config) { c.JPEGQuality = q }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns engine defaults.
func DefaultConfig() *Config {
	return &Config{
		Model:       "gemini-2.0-flash",
		Prompt:      DefaultPrompt,
		JPEGQuality: 90,
		Timeout:     15 * time.Second,
		Logger:      slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		c.JPEGQuality = 90
	}
}
