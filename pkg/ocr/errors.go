package ocr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoAPIKey = errors.New("ocr: API key required")
	// ErrNotReady is returned by the loader until an engine has loaded.
	ErrNotReady   = errors.New("ocr: engine not ready")
	ErrNoEngine   = errors.New("ocr: no engine available")
	ErrEmptyImage = errors.New("ocr: empty image")
)

// APIError is a non-2xx answer from a recognition service.
type APIError struct {
	StatusCode int
	Message    string
	Engine     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ocr [%s]: API error %d: %s", e.Engine, e.StatusCode, e.Message)
}

// IsRateLimited reports HTTP 429 (quota or rate limit).
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsUnauthorized reports a rejected or missing credential.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= http.StatusInternalServerError && e.StatusCode < 600
}

// IsRetryable reports whether the next frame is worth sending to the same engine.
func (e *APIError) IsRetryable() bool {
	return e.IsRateLimited() || e.IsServerError()
}

// EngineError attributes err to an engine.
type EngineError struct {
	Engine string
	Err    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("ocr [%s]: %v", e.Engine, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// WrapError attributes err to engine. A nil err stays nil.
func WrapError(engine string, err error) error {
	if err == nil {
		return nil
	}
	return &EngineError{Engine: engine, Err: err}
}

// ChainError collects one error per engine tried.
type ChainError struct {
	Errors []error
}

func (e *ChainError) Error() string {
	if len(e.Errors) == 0 {
		return "ocr chain: no errors recorded"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("ocr chain: %v", e.Errors[0])
	}
	return fmt.Sprintf("ocr chain: all %d engines failed, last error: %v",
		len(e.Errors), e.Errors[len(e.Errors)-1])
}

// Unwrap returns the last engine's error.
func (e *ChainError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}
