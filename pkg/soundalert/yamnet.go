package soundalert

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// NumClasses is the number of YAMNet output classes.
const NumClasses = 521

// minSamples is one YAMNet analysis patch (0.975s at 16kHz). Shorter
// waveforms are zero-padded so the network emits at least one frame.
const minSamples = 15600

// YAMNet runs the YAMNet audio event classifier through OpenCV's dnn module.
type YAMNet struct {
	net        gocv.Net
	outputName string
	mu         sync.Mutex
}

// NewYAMNet loads an ONNX export of YAMNet.
func NewYAMNet(modelPath, outputName string) (*YAMNet, error) {
	// Check if model file exists
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: model file not found: %s", ErrModelNotLoaded, modelPath)
	}

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("%w: failed to load YAMNet from %s", ErrModelNotLoaded, modelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &YAMNet{net: net, outputName: outputName}, nil
}

// Classify implements Classifier.
func (y *YAMNet) Classify(ctx context.Context, waveform []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := len(waveform)
	if n < minSamples {
		n = minSamples
	}

	input := gocv.NewMatWithSize(1, n, gocv.MatTypeCV32F)
	defer input.Close()
	for i, v := range waveform {
		input.SetFloatAt(0, i, v)
	}

	y.mu.Lock()
	defer y.mu.Unlock()

	y.net.SetInput(input, "")
	output := y.net.Forward(y.outputName)
	defer output.Close()

	// Output shape: [frames, 521]
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("soundalert: read scores: %w", err)
	}
	return meanScores(data, NumClasses)
}

// Close releases the network.
func (y *YAMNet) Close() error {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.net.Close()
}

// meanScores averages a row-major [frames, classes] score matrix over frames.
func meanScores(data []float32, classes int) ([]float32, error) {
	if classes <= 0 || len(data) == 0 || len(data)%classes != 0 {
		return nil, fmt.Errorf("soundalert: unexpected score tensor of %d values for %d classes", len(data), classes)
	}
	frames := len(data) / classes
	mean := make([]float32, classes)
	for f := 0; f < frames; f++ {
		row := data[f*classes : (f+1)*classes]
		for c, v := range row {
			mean[c] += v
		}
	}
	for c := range mean {
		mean[c] /= float32(frames)
	}
	return mean, nil
}

// Verify YAMNet implements Classifier at compile time.
var _ Classifier = (*YAMNet)(nil)
