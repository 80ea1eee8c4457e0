package presenter

import (
	"context"
	"errors"
	"time"

	"github.com/teslashibe/go-presenter/pkg/history"
	"github.com/teslashibe/go-presenter/pkg/soundalert"
)

// audioLoop classifies microphone chunks and keeps the alert current. Capture
// and classification failures end the loop with the alert set to
// StatusAudioError; the rest of the pipeline keeps running.
func (a *App) audioLoop(ctx context.Context) error {
	a.logger.Info("audio loop waiting for OCR engine")
	if !a.waitForOCR(ctx) {
		return nil
	}

	src := a.opts.Audio
	if err := src.Start(ctx); err != nil {
		a.logger.Error("audio capture failed to start", "source", src.Name(), "error", err)
		a.setAlert(soundalert.StatusAudioError)
		return nil
	}
	defer func() {
		if err := src.Stop(); err != nil {
			a.logger.Debug("stop audio source", "error", err)
		}
	}()
	a.logger.Info("audio loop started", "source", src.Name())

	for {
		chunk, err := src.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			a.logger.Error("audio read failed", "error", err)
			a.setAlert(soundalert.StatusAudioError)
			return nil
		}

		start := time.Now()
		alert, ok, err := a.opts.Detector.Process(ctx, chunk)
		a.metrics.ClassifyDuration.Record(ctx, time.Since(start).Seconds())

		switch {
		case errors.Is(err, soundalert.ErrModelNotLoaded):
			a.setAlert(soundalert.StatusModelNotLoaded)
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			a.logger.Error("sound classification failed", "error", err)
			a.setAlert(soundalert.StatusAudioError)
			return nil
		case ok:
			a.raise(ctx, alert)
		default:
			a.setAlert("")
		}
	}
}

// setAlert replaces the alert and reports whether it changed.
func (a *App) setAlert(alert string) bool {
	var changed bool
	a.update(func(s *Snapshot) {
		changed = s.Alert != alert
		s.Alert = alert
	})
	return changed
}

func (a *App) raise(ctx context.Context, alert soundalert.Alert) {
	if !a.setAlert(alert.Display()) {
		return
	}

	a.metrics.RecordAlert(ctx, alert.Label)
	a.logger.Info("sound alert", "label", alert.Label, "score", alert.Score)

	if a.opts.History != nil {
		entry := history.Entry{
			ID:         alert.ID,
			Content:    alert.Label,
			Score:      float64(alert.Score),
			RecordedAt: alert.At,
		}
		if _, err := a.opts.History.RecordAlert(ctx, entry); err != nil {
			a.logger.Warn("record alert", "error", err)
		}
	}
}
