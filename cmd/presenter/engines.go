package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/teslashibe/go-presenter/internal/config"
	"github.com/teslashibe/go-presenter/pkg/audioio"
	"github.com/teslashibe/go-presenter/pkg/ocr"
)

// ocrFactory builds the configured engines in order and chains the ones that
// could be created.
func ocrFactory(cfg config.OCRConfig, logger *slog.Logger) ocr.Factory {
	return func(ctx context.Context) (ocr.Engine, error) {
		common := []ocr.Option{
			ocr.WithModel(cfg.Model),
			ocr.WithPrompt(cfg.Prompt),
			ocr.WithJPEGQuality(cfg.JPEGQuality),
			ocr.WithTimeout(cfg.Timeout),
			ocr.WithLogger(logger),
		}
		if cfg.BaseURL != "" {
			common = append(common, ocr.WithBaseURL(cfg.BaseURL))
		}

		var (
			engines []ocr.Engine
			errs    []error
		)
		for _, name := range cfg.Engines {
			engine, err := newEngine(ctx, name, cfg, common)
			if err != nil {
				logger.Warn("OCR engine unavailable", "engine", name, "error", err)
				errs = append(errs, err)
				continue
			}
			engines = append(engines, engine)
		}

		if len(engines) == 0 {
			return nil, fmt.Errorf("no OCR engine could be created: %w", errors.Join(errs...))
		}
		return ocr.NewChainWithLogger(logger, engines...)
	}
}

func newEngine(ctx context.Context, name string, cfg config.OCRConfig, common []ocr.Option) (ocr.Engine, error) {
	switch name {
	case ocr.EngineGemini:
		key := cfg.GeminiAPIKey
		if key == "" {
			key = cfg.GoogleAPIKey
		}
		return ocr.NewGemini(append(common, ocr.WithAPIKey(key))...)
	case ocr.EngineCloudVision:
		return ocr.NewCloudVision(ctx, append(common,
			ocr.WithAPIKey(cfg.GoogleAPIKey),
			ocr.WithCredentialsFile(cfg.CredentialsFile),
		)...)
	case ocr.EngineMock:
		return ocr.NewMock(""), nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", name)
	}
}

// unavailableAudio stands in for a microphone that could not be opened, so
// the failure reaches the dashboard instead of stopping the app.
type unavailableAudio struct {
	cfg audioio.Config
	err error
}

func (u unavailableAudio) Start(context.Context) error { return u.err }
func (u unavailableAudio) Stop() error                 { return nil }
func (u unavailableAudio) Read(context.Context) (audioio.Chunk, error) {
	return audioio.Chunk{}, io.EOF
}
func (u unavailableAudio) Config() audioio.Config { return u.cfg }
func (u unavailableAudio) Name() string           { return "unavailable" }
func (u unavailableAudio) Close() error           { return nil }

// Verify unavailableAudio implements audioio.Source at compile time.
var _ audioio.Source = unavailableAudio{}
