package viewfinder

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-presenter/pkg/targeting"
)

func TestRect(t *testing.T) {
	tests := []struct {
		name  string
		frame image.Rectangle
		want  image.Rectangle
	}{
		{"640x480", image.Rect(0, 0, 640, 480), image.Rect(64, 120, 576, 360)},
		{"1920x1080", image.Rect(0, 0, 1920, 1080), image.Rect(192, 270, 1728, 810)},
		{"odd sizes truncate", image.Rect(0, 0, 101, 51), image.Rect(10, 13, 90, 38)},
		{"offset frame", image.Rect(10, 20, 110, 120), image.Rect(20, 45, 100, 95)},
	}
	cfg := DefaultConfig()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cfg.Rect(tc.frame))
		})
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, Config{WidthFraction: 1, HeightFraction: 1}.Validate())
	assert.Error(t, Config{WidthFraction: 0, HeightFraction: 0.5}.Validate())
	assert.Error(t, Config{WidthFraction: 0.5, HeightFraction: 1.5}.Validate())
}

func TestCrop_SharesPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	r := image.Rect(10, 10, 20, 30)

	roi, err := Crop(img, r)
	require.NoError(t, err)
	assert.Equal(t, r, roi.Bounds())

	img.Set(15, 15, color.RGBA{R: 9, A: 255})
	got := roi.(*image.RGBA).RGBAAt(15, 15)
	assert.Equal(t, uint8(9), got.R)
}

func TestCrop_ClipsToFrame(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 50, 50))
	roi, err := Crop(img, image.Rect(40, 40, 80, 80))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(40, 40, 50, 50), roi.Bounds())
}

func TestCrop_OutsideFrame(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 50, 50))
	_, err := Crop(img, image.Rect(60, 60, 80, 80))
	assert.ErrorIs(t, err, ErrOutsideFrame)

	_, err = Crop(nil, image.Rect(0, 0, 1, 1))
	assert.ErrorIs(t, err, ErrOutsideFrame)
}

func TestCrop_CopiesWithoutSubImage(t *testing.T) {
	src := image.NewUniform(color.Gray{Y: 7})
	bounded := &boundedUniform{Uniform: src, r: image.Rect(0, 0, 10, 10)}

	roi, err := Crop(bounded, image.Rect(2, 2, 6, 6))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), roi.Bounds())
	r, _, _, _ := roi.At(1, 1).RGBA()
	assert.Equal(t, uint32(7)*0x101, r)
}

type boundedUniform struct {
	*image.Uniform
	r image.Rectangle
}

func (b *boundedUniform) Bounds() image.Rectangle { return b.r }

func TestGuideAndColor(t *testing.T) {
	tests := []struct {
		status targeting.Status
		guide  string
		color  color.RGBA
	}{
		{targeting.StatusSearching, "Find Text", White},
		{targeting.StatusHoldSteady, "Hold Steady...", White},
		{targeting.StatusReadyToRead, "Reading...", Green},
	}
	for _, tc := range tests {
		t.Run(tc.status.String(), func(t *testing.T) {
			assert.Equal(t, tc.guide, Guide(tc.status))
			assert.Equal(t, tc.color, Color(tc.status))
		})
	}
}
