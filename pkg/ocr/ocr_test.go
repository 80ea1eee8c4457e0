package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 32, 16))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"Hello", "Hello"},
		{"  Hello   world ", "Hello world"},
		{"First paragraph.\n\nSecond\tparagraph.", "First paragraph. Second paragraph."},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodeJPEGBase64_Empty(t *testing.T) {
	if _, err := EncodeJPEGBase64(nil, 90); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("nil image: got %v, want ErrEmptyImage", err)
	}
	if _, err := EncodeJPEGBase64(image.NewRGBA(image.Rectangle{}), 90); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("empty image: got %v, want ErrEmptyImage", err)
	}
}

func TestGemini_RequiresAPIKey(t *testing.T) {
	_, err := NewGemini()
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestGemini_Recognize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/test-model:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.URL.Query().Has("key") {
			t.Errorf("api key must not be sent in the query string")
		}

		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Contents []struct {
				Parts []map[string]json.RawMessage `json:"parts"`
			} `json:"contents"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(payload.Contents) != 1 || len(payload.Contents[0].Parts) != 2 {
			t.Fatalf("expected prompt and image parts, got %s", body)
		}
		if _, ok := payload.Contents[0].Parts[1]["inline_data"]; !ok {
			t.Errorf("second part should carry inline_data")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"EXIT\n\nDoor  stays"},{"text":"closed"}]}}]}`))
	}))
	defer server.Close()

	g, err := NewGemini(WithAPIKey("test-key"), WithBaseURL(server.URL), WithModel("test-model"))
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}
	defer g.Close()

	text, err := g.Recognize(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "EXIT Door stays closed" {
		t.Errorf("text = %q", text)
	}
}

func TestGemini_NoCandidatesIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	g, _ := NewGemini(WithAPIKey("k"), WithBaseURL(server.URL))
	text, err := g.Recognize(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}

func TestGemini_BlockedPromptIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer server.Close()

	g, _ := NewGemini(WithAPIKey("k"), WithBaseURL(server.URL))
	text, err := g.Recognize(context.Background(), testImage())
	if err != nil || text != "" {
		t.Errorf("blocked request: text %q, err %v", text, err)
	}
}

func TestGemini_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded","code":429}}`))
	}))
	defer server.Close()

	g, _ := NewGemini(WithAPIKey("k"), WithBaseURL(server.URL))
	_, err := g.Recognize(context.Background(), testImage())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if !apiErr.IsRateLimited() || !apiErr.IsRetryable() {
		t.Errorf("expected retryable rate limit, got %+v", apiErr)
	}
	if apiErr.Message != "quota exceeded" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestCloudVision_Recognize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "images:annotate") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), documentTextDetection) {
			t.Errorf("request should ask for %s: %s", documentTextDetection, body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responses":[{"fullTextAnnotation":{"text":"Hi\nthere\nFriend","pages":[{"blocks":[
			{"paragraphs":[{"words":[{"symbols":[{"text":"H"},{"text":"i"}]},{"symbols":[{"text":"there"}]}]}]},
			{"paragraphs":[{"words":[{"symbols":[{"text":"Friend"}]}]}]}
		]}]}}]}`))
	}))
	defer server.Close()

	ctx := context.Background()
	cv, err := NewCloudVision(ctx, WithAPIKey("k"), WithBaseURL(server.URL+"/"))
	if err != nil {
		t.Fatalf("NewCloudVision: %v", err)
	}
	defer cv.Close()

	text, err := cv.Recognize(ctx, testImage())
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "Hi there Friend" {
		t.Errorf("text = %q", text)
	}
}

func TestCloudVision_ResponseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responses":[{"error":{"code":3,"message":"bad image"}}]}`))
	}))
	defer server.Close()

	ctx := context.Background()
	cv, err := NewCloudVision(ctx, WithAPIKey("k"), WithBaseURL(server.URL+"/"))
	if err != nil {
		t.Fatalf("NewCloudVision: %v", err)
	}

	_, err = cv.Recognize(ctx, testImage())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "bad image" {
		t.Fatalf("expected APIError with message, got %v", err)
	}
}

func TestChain_Fallback(t *testing.T) {
	failing := WithError(errors.New("engine 1 failed"))
	working := NewMock("From working engine")

	chain, err := NewChain(failing, working)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	defer chain.Close()

	text, err := chain.Recognize(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "From working engine" {
		t.Errorf("text = %q", text)
	}
	if failing.CallCount("Recognize") != 1 || working.CallCount("Recognize") != 1 {
		t.Errorf("each engine should be called once")
	}
}

func TestChain_EmptyResultIsFinal(t *testing.T) {
	first := NewMock("")
	second := NewMock("should not run")

	chain, _ := NewChain(first, second)
	text, err := chain.Recognize(context.Background(), testImage())
	if err != nil || text != "" {
		t.Fatalf("got %q, %v", text, err)
	}
	if second.CallCount("Recognize") != 0 {
		t.Error("second engine should not be called after a successful empty result")
	}
}

func TestChain_AllFail(t *testing.T) {
	chain, _ := NewChain(WithError(errors.New("a")), WithError(errors.New("b")))
	_, err := chain.Recognize(context.Background(), testImage())

	var chainErr *ChainError
	if !errors.As(err, &chainErr) {
		t.Fatalf("expected ChainError, got %T", err)
	}
	if len(chainErr.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d", len(chainErr.Errors))
	}
}

func TestChain_Empty(t *testing.T) {
	if _, err := NewChain(); !errors.Is(err, ErrNoEngine) {
		t.Errorf("expected ErrNoEngine, got %v", err)
	}
}

func TestLoader_NotReadyUntilLoaded(t *testing.T) {
	l := NewLoader(nil)
	if _, err := l.Recognize(context.Background(), testImage()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}

	release := make(chan struct{})
	l.Start(context.Background(), func(ctx context.Context) (Engine, error) {
		<-release
		return NewMock("ready text"), nil
	})

	if l.IsReady() {
		t.Fatal("loader should not be ready before the factory returns")
	}
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !l.IsReady() {
		t.Fatal("expected ready")
	}

	text, err := l.Recognize(context.Background(), testImage())
	if err != nil || text != "ready text" {
		t.Errorf("Recognize = %q, %v", text, err)
	}
	if l.Name() != EngineMock {
		t.Errorf("Name = %q", l.Name())
	}
}

func TestLoader_FactoryError(t *testing.T) {
	l := NewLoader(nil)
	boom := errors.New("no credentials")
	err := l.Load(context.Background(), func(ctx context.Context) (Engine, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Load = %v", err)
	}

	select {
	case <-l.Ready():
	default:
		t.Fatal("Ready should be closed after a failed load")
	}
	if l.IsReady() {
		t.Error("failed load must not report ready")
	}
	if _, err := l.Recognize(context.Background(), testImage()); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
}

func TestLoader_StartOnce(t *testing.T) {
	l := NewLoader(nil)
	calls := 0
	factory := func(ctx context.Context) (Engine, error) {
		calls++
		return NewMock("x"), nil
	}
	if err := l.Load(context.Background(), factory); err != nil {
		t.Fatal(err)
	}
	l.Start(context.Background(), factory)
	if err := l.Load(context.Background(), factory); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}
}

func TestErrorTypes(t *testing.T) {
	wrapped := WrapError(EngineGemini, ErrNoAPIKey)
	if !errors.Is(wrapped, ErrNoAPIKey) {
		t.Error("WrapError should unwrap to the cause")
	}
	if WrapError(EngineGemini, nil) != nil {
		t.Error("WrapError(nil) should be nil")
	}
	if !strings.Contains(wrapped.Error(), "[gemini]") {
		t.Errorf("Error() = %q", wrapped.Error())
	}

	unauthorized := &APIError{StatusCode: 403}
	if !unauthorized.IsUnauthorized() || unauthorized.IsRetryable() {
		t.Errorf("403 should be unauthorized and not retryable")
	}
	if !(&APIError{StatusCode: 503}).IsRetryable() {
		t.Error("503 should be retryable")
	}
}
