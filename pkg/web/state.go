package web

import (
	"time"

	"github.com/teslashibe/go-presenter/pkg/targeting"
)

// Indicator is the text pane activity light.
type Indicator string

const (
	IndicatorLoading Indicator = "loading"
	IndicatorActive  Indicator = "active"
	IndicatorIdle    Indicator = "idle"
)

// LoadingText is shown in the text pane until the recognizer is ready.
const LoadingText = "Loading OCR model..."

// State is what the dashboard renders. Display, Indicator and Banner are
// derived from the other fields by UpdateState.
type State struct {
	Status     targeting.Status `json:"status"`
	Guide      string           `json:"guide"`
	Text       string           `json:"text"`
	Alert      string           `json:"alert"`
	OCRReady   bool             `json:"ocr_ready"`
	Clarity    float64          `json:"clarity"`
	Motion     float64          `json:"motion"`
	Thresholds targeting.Config `json:"thresholds"`

	Display   string    `json:"display"`
	Indicator Indicator `json:"indicator"`
	Banner    string    `json:"banner"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TextPane returns what the text pane shows and its indicator.
func TextPane(ocrReady bool, text string) (string, Indicator) {
	if !ocrReady {
		return LoadingText, IndicatorLoading
	}
	if text == "" {
		return "", IndicatorIdle
	}
	return text, IndicatorActive
}

// AlertBanner formats an alert for display. Empty alerts stay empty.
func AlertBanner(alert string) string {
	if alert == "" {
		return ""
	}
	return "🚨 " + alert + " 🚨"
}

func (s *State) derive() {
	s.Display, s.Indicator = TextPane(s.OCRReady, s.Text)
	s.Banner = AlertBanner(s.Alert)
}
