package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// documentTextDetection is the dense-text feature of the Vision API.
const documentTextDetection = "DOCUMENT_TEXT_DETECTION"

// CloudVision recognizes text with Google Cloud Vision.
type CloudVision struct {
	config  *Config
	service *vision.Service
	logger  *slog.Logger
}

// NewCloudVision creates a Cloud Vision engine. Credentials are resolved in
// order: API key, credentials file, Application Default Credentials.
func NewCloudVision(ctx context.Context, opts ...Option) (*CloudVision, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	var clientOpts []option.ClientOption
	switch {
	case cfg.APIKey != "":
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	case cfg.CredentialsFile != "":
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		ts, err := google.DefaultTokenSource(ctx, vision.CloudVisionScope)
		if err != nil {
			return nil, WrapError(EngineCloudVision, fmt.Errorf("%w: %v", ErrNoAPIKey, err))
		}
		client := oauth2.NewClient(ctx, ts)
		client.Timeout = cfg.Timeout
		clientOpts = append(clientOpts, option.WithHTTPClient(client))
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.BaseURL))
	}

	service, err := vision.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, WrapError(EngineCloudVision, fmt.Errorf("create service: %w", err))
	}

	return &CloudVision{
		config:  cfg,
		service: service,
		logger:  cfg.Logger.With("component", "ocr.cloudvision"),
	}, nil
}

// Name implements Engine.
func (c *CloudVision) Name() string { return EngineCloudVision }

// Recognize implements Engine.
func (c *CloudVision) Recognize(ctx context.Context, img image.Image) (string, error) {
	start := time.Now()

	b64, err := EncodeJPEGBase64(img, c.config.JPEGQuality)
	if err != nil {
		return "", WrapError(EngineCloudVision, fmt.Errorf("encode image: %w", err))
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: b64},
			Features: []*vision.Feature{{Type: documentTextDetection}},
		}},
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	resp, err := c.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return "", &APIError{StatusCode: gerr.Code, Message: gerr.Message, Engine: EngineCloudVision}
		}
		return "", WrapError(EngineCloudVision, err)
	}

	if len(resp.Responses) == 0 {
		return "", nil
	}
	r := resp.Responses[0]
	if r.Error != nil && r.Error.Message != "" {
		return "", &APIError{
			StatusCode: http.StatusBadRequest,
			Message:    r.Error.Message,
			Engine:     EngineCloudVision,
		}
	}

	var text string
	switch {
	case r.FullTextAnnotation != nil:
		text = paragraphText(r.FullTextAnnotation)
		if text == "" {
			text = r.FullTextAnnotation.Text
		}
	case len(r.TextAnnotations) > 0:
		text = r.TextAnnotations[0].Description
	}
	text = Normalize(text)

	c.logger.Debug("recognized",
		"chars", len(text),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// paragraphText rebuilds the text paragraph by paragraph, joining paragraphs
// with a single space.
func paragraphText(a *vision.TextAnnotation) string {
	var paragraphs []string
	for _, page := range a.Pages {
		for _, block := range page.Blocks {
			for _, para := range block.Paragraphs {
				var words []string
				for _, word := range para.Words {
					var sb strings.Builder
					for _, sym := range word.Symbols {
						sb.WriteString(sym.Text)
					}
					if sb.Len() > 0 {
						words = append(words, sb.String())
					}
				}
				if len(words) > 0 {
					paragraphs = append(paragraphs, strings.Join(words, " "))
				}
			}
		}
	}
	return strings.Join(paragraphs, " ")
}

// Close implements Engine.
func (c *CloudVision) Close() error { return nil }

// Verify CloudVision implements Engine at compile time.
var _ Engine = (*CloudVision)(nil)
