package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/go-presenter/internal/httpc"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini transcribes text with the Gemini generateContent API.
type Gemini struct {
	config *Config
	http   *http.Client
	logger *slog.Logger
}

// NewGemini creates a Gemini engine. WithAPIKey is required.
func NewGemini(opts ...Option) (*Gemini, error) {
	cfg := DefaultConfig()
	cfg.BaseURL = geminiBaseURL
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, WrapError(EngineGemini, ErrNoAPIKey)
	}

	return &Gemini{
		config: cfg,
		http:   httpc.NewClient(cfg.Timeout),
		logger: cfg.Logger.With("component", "ocr.gemini"),
	}, nil
}

// Name implements Engine.
func (g *Gemini) Name() string { return EngineGemini }

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiRequest struct {
	Contents []struct {
		Parts []geminiPart `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *geminiError `json:"error"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Recognize implements Engine. A response without candidates means no text
// was found and yields "".
func (g *Gemini) Recognize(ctx context.Context, img image.Image) (string, error) {
	start := time.Now()

	b64, err := EncodeJPEGBase64(img, g.config.JPEGQuality)
	if err != nil {
		return "", WrapError(EngineGemini, fmt.Errorf("encode image: %w", err))
	}

	var req geminiRequest
	req.Contents = make([]struct {
		Parts []geminiPart `json:"parts"`
	}, 1)
	req.Contents[0].Parts = []geminiPart{
		{Text: g.config.Prompt},
		{InlineData: &geminiInlineData{MimeType: "image/jpeg", Data: b64}},
	}
	req.GenerationConfig.MaxOutputTokens = 1024

	body, err := json.Marshal(req)
	if err != nil {
		return "", WrapError(EngineGemini, err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimSuffix(g.config.BaseURL, "/"), g.config.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", WrapError(EngineGemini, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.config.APIKey)

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return "", WrapError(EngineGemini, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", WrapError(EngineGemini, fmt.Errorf("read response: %w", err))
	}

	var result geminiResponse
	decodeErr := json.Unmarshal(raw, &result)

	if resp.StatusCode != http.StatusOK || result.Error != nil {
		msg := strings.TrimSpace(string(raw))
		if result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg, Engine: EngineGemini}
	}
	if decodeErr != nil {
		return "", WrapError(EngineGemini, fmt.Errorf("decode response: %w", decodeErr))
	}

	if reason := result.PromptFeedback.BlockReason; reason != "" {
		g.logger.Warn("request blocked", "reason", reason)
		return "", nil
	}

	var parts []string
	if len(result.Candidates) > 0 {
		for _, p := range result.Candidates[0].Content.Parts {
			parts = append(parts, p.Text)
		}
	}
	text := Normalize(strings.Join(parts, " "))

	g.logger.Debug("recognized", "chars", len(text), "latency", time.Since(start))
	return text, nil
}

// Close implements Engine.
func (g *Gemini) Close() error {
	httpc.CloseIdle(g.http)
	return nil
}

// Verify Gemini implements Engine at compile time.
var _ Engine = (*Gemini)(nil)
