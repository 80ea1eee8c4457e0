package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-presenter/pkg/ocr"
	"github.com/teslashibe/go-presenter/pkg/targeting"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, targeting.DefaultClarityThreshold, cfg.Targeting.ClarityThreshold)
	assert.Equal(t, targeting.DefaultStabilityThreshold, cfg.Targeting.StabilityThreshold)
	assert.Equal(t, 0.8, cfg.Viewfinder.WidthFraction)
	assert.Equal(t, 0.5, cfg.Viewfinder.HeightFraction)
	assert.Equal(t, 16000, cfg.Audio.SampleRate)
	assert.Equal(t, 1024, cfg.Audio.FramesPerBuffer)
	assert.Equal(t, 100*time.Millisecond, cfg.Pipeline.VisionInterval)
	assert.Equal(t, 30*time.Millisecond, cfg.Pipeline.RenderInterval)
	assert.Equal(t, []string{ocr.EngineGemini, ocr.EngineCloudVision}, cfg.OCR.Engines)
}

func TestLoadFromReader_OverlaysDefaults(t *testing.T) {
	const doc = `
log:
  level: debug
camera:
  source: "http://192.168.1.20:8080/video"
targeting:
  clarity_threshold: 80
ocr:
  engines: [mock]
  timeout: 5s
pipeline:
  vision_interval: 200ms
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "http://192.168.1.20:8080/video", cfg.Camera.Source)
	assert.Equal(t, 80.0, cfg.Targeting.ClarityThreshold)
	assert.Equal(t, targeting.DefaultStabilityThreshold, cfg.Targeting.StabilityThreshold, "unset key keeps its default")
	assert.Equal(t, []string{ocr.EngineMock}, cfg.OCR.Engines)
	assert.Equal(t, 5*time.Second, cfg.OCR.Timeout)
	assert.Equal(t, 200*time.Millisecond, cfg.Pipeline.VisionInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.Camera.RetryInterval)
}

func TestLoadFromReader_Empty(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("targeting:\n  sharpness: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sharpness")
}

func TestLoadFromReader_CollectsAllErrors(t *testing.T) {
	const doc = `
log:
  level: loud
  format: xml
viewfinder:
  width_fraction: 1.5
targeting:
  stability_threshold: -2
ocr:
  engines: [tesseract]
`
	_, err := LoadFromReader(strings.NewReader(doc))
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{"log.level", "log.format", "viewfinder", "stability_threshold", "tesseract"} {
		assert.Contains(t, msg, want)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presenter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("web:\n  enabled: false\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Web.Enabled)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv(EnvCamera, "1")
	t.Setenv(EnvClarityThreshold, "65.5")
	t.Setenv(EnvStabilityThreshold, "3")
	t.Setenv(EnvWebPort, "9090")
	t.Setenv(EnvGeminiAPIKey, "gem-key")
	t.Setenv(EnvGoogleAPIKey, "goog-key")
	t.Setenv(EnvCredentials, "/etc/sa.json")

	cfg := Default()
	require.NoError(t, cfg.LoadEnvConfig())

	assert.Equal(t, "1", cfg.Camera.Source)
	assert.Equal(t, 65.5, cfg.Targeting.ClarityThreshold)
	assert.Equal(t, 3.0, cfg.Targeting.StabilityThreshold)
	assert.Equal(t, ":9090", cfg.Web.Addr)
	assert.Equal(t, "gem-key", cfg.OCR.GeminiAPIKey)
	assert.Equal(t, "goog-key", cfg.OCR.GoogleAPIKey)
	assert.Equal(t, "/etc/sa.json", cfg.OCR.CredentialsFile)
}

func TestLoadEnvConfig_BadNumbers(t *testing.T) {
	t.Setenv(EnvClarityThreshold, "sharp")
	t.Setenv(EnvWebPort, "http")

	cfg := Default()
	err := cfg.LoadEnvConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvClarityThreshold)
	assert.Contains(t, err.Error(), EnvWebPort)
	assert.Equal(t, targeting.DefaultClarityThreshold, cfg.Targeting.ClarityThreshold)
}

func TestValidate_AudioSkippedWhenAlertsDisabled(t *testing.T) {
	cfg := Default()
	cfg.Alerts.Enabled = false
	cfg.Audio.Channels = 0
	assert.NoError(t, cfg.Validate())

	cfg.Alerts.Enabled = true
	assert.Error(t, cfg.Validate())
}
