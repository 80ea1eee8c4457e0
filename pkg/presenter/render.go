package presenter

import (
	"context"

	"github.com/teslashibe/go-presenter/pkg/viewfinder"
	"github.com/teslashibe/go-presenter/pkg/web"
)

func (a *App) renderLoop(ctx context.Context) error {
	a.renderStep(ctx)
	return ticker(ctx, a.opts.RenderInterval, a.renderStep)
}

// renderStep publishes the current state and, when the frame or status
// changed since the last call, a freshly annotated frame.
func (a *App) renderStep(ctx context.Context) {
	snap := a.Snapshot()
	thresholds := a.opts.Estimator.Config()

	a.opts.Publisher.UpdateState(func(s *web.State) {
		s.Status = snap.Status
		s.Guide = viewfinder.Guide(snap.Status)
		s.Text = snap.Text
		s.Alert = snap.Alert
		s.OCRReady = snap.OCRReady
		s.Clarity = snap.Scores.Clarity
		s.Motion = snap.Scores.Motion
		s.Thresholds = thresholds
	})

	if a.opts.Renderer == nil {
		return
	}
	frame, ok := a.opts.Camera.Latest()
	if !ok {
		return
	}
	if frame.Seq == a.lastSeq && snap.Status == a.lastStatus {
		return
	}

	rect := a.opts.Viewfinder.Rect(frame.Image.Bounds())
	jpeg, err := a.opts.Renderer.Render(frame.Image, rect, snap.Status)
	if err != nil {
		a.logger.Warn("render frame", "error", err)
		return
	}
	a.lastSeq, a.lastStatus = frame.Seq, snap.Status
	a.opts.Publisher.SendCameraFrame(jpeg)
}
