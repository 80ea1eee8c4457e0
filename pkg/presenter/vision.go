package presenter

import (
	"context"
	"image"
	"time"

	"github.com/teslashibe/go-presenter/pkg/history"
	"github.com/teslashibe/go-presenter/pkg/targeting"
	"github.com/teslashibe/go-presenter/pkg/viewfinder"
)

func (a *App) visionLoop(ctx context.Context) error {
	a.logger.Info("vision loop waiting for OCR engine")
	if !a.waitForOCR(ctx) {
		return nil
	}
	a.logger.Info("vision loop started", "interval", a.opts.VisionInterval)

	return ticker(ctx, a.opts.VisionInterval, a.visionStep)
}

// visionStep evaluates the latest frame once and acts on the decision.
func (a *App) visionStep(ctx context.Context) {
	frame, ok := a.opts.Camera.Latest()
	if !ok {
		return
	}

	rect := a.opts.Viewfinder.Rect(frame.Image.Bounds())
	roi, err := viewfinder.Crop(frame.Image, rect)
	if err != nil {
		a.logger.Debug("viewfinder crop failed", "error", err)
		return
	}

	status, err := a.opts.Estimator.Evaluate(roi)
	if err != nil {
		a.logger.Warn("targeting evaluation failed", "error", err)
		return
	}
	scores := a.opts.Estimator.LastScores()
	a.metrics.RecordEvaluation(ctx, status.String(), scores.Clarity, scores.Motion,
		status != targeting.StatusSearching && scores.HasBaseline)

	a.update(func(s *Snapshot) {
		s.Status = status
		s.Scores = scores
	})

	switch status {
	case targeting.StatusReadyToRead:
		a.read(ctx, roi)
	case targeting.StatusSearching:
		a.update(func(s *Snapshot) { s.Text = "" })
	}
}

// read recognizes roi and keeps the result when it is non-empty.
func (a *App) read(ctx context.Context, roi image.Image) {
	start := time.Now()
	text, err := a.loader.Recognize(ctx, roi)
	a.metrics.RecordOCR(ctx, a.loader.Name(), time.Since(start), err)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.Warn("text recognition failed", "error", err)
		}
		return
	}
	if text == "" {
		return
	}

	var changed bool
	a.update(func(s *Snapshot) {
		changed = s.Text != text
		s.Text = text
	})
	if !changed {
		return
	}

	a.logger.Info("text recognized", "chars", len(text))
	if a.opts.History != nil {
		if _, err := a.opts.History.RecordText(ctx, history.Entry{Content: text, Engine: a.loader.Name()}); err != nil {
			a.logger.Warn("record text", "error", err)
		}
	}
}
