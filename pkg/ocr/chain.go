package ocr

import (
	"context"
	"image"
	"log/slog"
)

// Chain tries multiple engines in order until one succeeds.
type Chain struct {
	engines []Engine
	logger  *slog.Logger
}

// NewChain creates an engine chain.
// At least one engine is required.
func NewChain(engines ...Engine) (*Chain, error) {
	if len(engines) == 0 {
		return nil, ErrNoEngine
	}
	return &Chain{
		engines: engines,
		logger:  slog.Default().With("component", "ocr.chain"),
	}, nil
}

// NewChainWithLogger creates an engine chain with a custom logger.
func NewChainWithLogger(logger *slog.Logger, engines ...Engine) (*Chain, error) {
	chain, err := NewChain(engines...)
	if err != nil {
		return nil, err
	}
	chain.logger = logger.With("component", "ocr.chain")
	return chain, nil
}

// Name implements Engine.
func (c *Chain) Name() string {
	if len(c.engines) == 1 {
		return c.engines[0].Name()
	}
	return "chain"
}

// Recognize tries each engine until one succeeds. An empty result from a
// successful engine is final; it is not retried on the next engine.
func (c *Chain) Recognize(ctx context.Context, img image.Image) (string, error) {
	var errors []error

	for i, e := range c.engines {
		text, err := e.Recognize(ctx, img)
		if err == nil {
			if i > 0 {
				c.logger.Info("fallback engine succeeded",
					"engine", e.Name(),
					"engine_index", i,
				)
			}
			return text, nil
		}

		errors = append(errors, err)
		c.logger.Warn("engine failed, trying next",
			"engine", e.Name(),
			"engine_index", i,
			"error", err,
		)

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", &ChainError{Errors: errors}
}

// Close closes all engines.
func (c *Chain) Close() error {
	var lastErr error
	for _, e := range c.engines {
		if err := e.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Engines returns the engines in the chain.
func (c *Chain) Engines() []Engine {
	return c.engines
}

// Verify Chain implements Engine at compile time.
var _ Engine = (*Chain)(nil)
