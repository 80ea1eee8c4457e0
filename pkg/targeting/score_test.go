package targeting

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func grayFill(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func TestReflect101(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{-1, 5, 1},
		{-2, 5, 2},
		{5, 5, 3},
		{6, 5, 2},
		{0, 1, 0},
		{-1, 1, 0},
		{2, 2, 0},
	}
	for _, tc := range tests {
		if got := reflect101(tc.i, tc.n); got != tc.want {
			t.Errorf("reflect101(%d, %d) = %d, want %d", tc.i, tc.n, got, tc.want)
		}
	}
}

func TestLaplacianVariance_Flat(t *testing.T) {
	if v := LaplacianVariance(grayFill(20, 20, 90)); v != 0 {
		t.Errorf("flat image variance = %v, want 0", v)
	}
}

func TestLaplacianVariance_SingleDot(t *testing.T) {
	// A lone bright pixel in a 3x3 black field. With mirrored borders each
	// edge-centre pixel sees the dot twice.
	g := grayFill(3, 3, 0)
	g.SetGray(1, 1, color.Gray{Y: 255})

	resp := []float64{0, 510, 0, 510, -1020, 510, 0, 510, 0}
	var mean float64
	for _, r := range resp {
		mean += r
	}
	mean /= float64(len(resp))
	var want float64
	for _, r := range resp {
		want += (r - mean) * (r - mean)
	}
	want /= float64(len(resp))

	if got := LaplacianVariance(g); math.Abs(got-want) > 1e-6 {
		t.Errorf("LaplacianVariance = %v, want %v", got, want)
	}
}

func TestLaplacianVariance_SubImage(t *testing.T) {
	g := grayFill(10, 10, 0)
	for y := 0; y < 10; y++ {
		for x := 5; x < 10; x++ {
			g.Pix[y*g.Stride+x] = 255
		}
	}
	// Inside the right half there are no edges at all.
	sub := g.SubImage(image.Rect(6, 0, 10, 10)).(*image.Gray)
	if v := LaplacianVariance(sub); v != 0 {
		t.Errorf("uniform sub-image variance = %v, want 0", v)
	}
	if v := LaplacianVariance(g); v <= 0 {
		t.Errorf("edge image variance = %v, want > 0", v)
	}
}

func TestMeanAbsDiff(t *testing.T) {
	tests := []struct {
		name string
		cur  *image.Gray
		prev *image.Gray
		want float64
	}{
		{"identical", grayFill(4, 4, 100), grayFill(4, 4, 100), 0},
		{"uniform offset", grayFill(4, 4, 100), grayFill(4, 4, 90), 10},
		{"negative offset", grayFill(4, 4, 90), grayFill(4, 4, 100), 10},
		{"smaller previous", grayFill(8, 6, 100), grayFill(4, 3, 50), 50},
		{"larger previous", grayFill(4, 3, 0), grayFill(16, 12, 255), 255},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MeanAbsDiff(tc.cur, tc.prev); got != tc.want {
				t.Errorf("MeanAbsDiff = %v, want %v", got, tc.want)
			}
		})
	}
}
