package screen

import (
	"bytes"
	"image"
	"image/draw"
	"image/jpeg"

	"github.com/nfnt/resize"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

// DefaultQuality is the JPEG quality used for video frames.
const DefaultQuality = 85

// NormalizeFrame converts img to an RGBA frame of exactly width x height and
// encodes it as JPEG for the MJPEG writer.
func NormalizeFrame(img image.Image, width, height, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		img = resize.Resize(uint(width), uint(height), img, resize.Bilinear)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, toRGBA(img), &jpeg.Options{Quality: quality}); err != nil {
		return nil, apperrors.Wrap(err, apperrors.VideoEncodeFailed, "failed to encode frame")
	}
	return buf.Bytes(), nil
}

// toRGBA returns img as *image.RGBA anchored at the origin.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
