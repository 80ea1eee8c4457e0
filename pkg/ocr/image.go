package ocr

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
)

// EncodeJPEGBase64 encodes an image to base64 JPEG.
func EncodeJPEGBase64(img image.Image, quality int) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", ErrEmptyImage
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
