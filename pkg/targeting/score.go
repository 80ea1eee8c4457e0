package targeting

import (
	"image"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/stat"
)

// toGray converts img to an 8-bit luma image anchored at the origin.
// The conversion uses the BT.601 weights of color.GrayModel.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// reflect101 maps an out-of-range index back into [0, n) by mirroring
// around the edge pixel (OpenCV's BORDER_REFLECT_101).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*n - 2 - i
		}
	}
	return i
}

// LaplacianVariance returns the population variance of the 3x3 discrete
// Laplacian of g. Blurry or blank regions score low; edges and text score high.
func LaplacianVariance(g *image.Gray) float64 {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	if w*h < 2 {
		return 0
	}
	at := func(x, y int) float64 {
		x, y = reflect101(x, w), reflect101(y, h)
		return float64(g.Pix[g.PixOffset(g.Rect.Min.X+x, g.Rect.Min.Y+y)])
	}

	resp := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lap := at(x, y-1) + at(x-1, y) + at(x+1, y) + at(x, y+1) - 4*at(x, y)
			resp = append(resp, lap)
		}
	}
	return stat.PopVariance(resp, nil)
}

// MeanAbsDiff returns the mean absolute per-pixel difference between cur and
// prev. prev is bilinearly resized to cur's dimensions first when they differ;
// cur is never resized.
func MeanAbsDiff(cur, prev *image.Gray) float64 {
	w, h := cur.Rect.Dx(), cur.Rect.Dy()
	if w == 0 || h == 0 {
		return 0
	}
	ref := prev
	if prev.Rect.Dx() != w || prev.Rect.Dy() != h {
		ref = image.NewGray(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(ref, ref.Bounds(), prev, prev.Bounds(), draw.Src, nil)
	}

	diffs := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		co := cur.PixOffset(cur.Rect.Min.X, cur.Rect.Min.Y+y)
		ro := ref.PixOffset(ref.Rect.Min.X, ref.Rect.Min.Y+y)
		cr, rr := cur.Pix[co:co+w], ref.Pix[ro:ro+w]
		for x := range cr {
			d := int(cr[x]) - int(rr[x])
			if d < 0 {
				d = -d
			}
			diffs = append(diffs, float64(d))
		}
	}
	return stat.Mean(diffs, nil)
}
