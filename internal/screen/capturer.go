// Package screen grabs full-screen images and prepares them for video encoding.
package screen

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"

	"github.com/GriffinCanCode/aiba/internal/config"
	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

// Capturer grabs images of the primary display.
type Capturer interface {
	Name() string
	// Bounds returns the primary display size.
	Bounds(ctx context.Context) (image.Rectangle, error)
	Capture(ctx context.Context) (image.Image, error)
	Close() error
}

// New creates the capturer selected by backend.
func New(backend string) (Capturer, error) {
	switch backend {
	case config.ScreenNative, "":
		return NewNative(), nil
	case config.ScreenCommand:
		return NewCommand()
	default:
		return nil, apperrors.Newf(apperrors.ConfigInvalid, "unknown screen backend: %s (supported: native, command)", backend)
	}
}

// backend implements platform-specific raw capture to an encoded image file.
type backend interface {
	captureRaw(ctx context.Context) ([]byte, error)
	cleanup()
}

// baseCapturer decodes raw captures and remembers the display size.
type baseCapturer struct {
	backend
	name    string
	tempDir string
	bounds  image.Rectangle
}

func newBase(name string, b backend, tempDir string) *baseCapturer {
	return &baseCapturer{backend: b, name: name, tempDir: tempDir}
}

func (c *baseCapturer) Name() string { return c.name }

// Bounds takes one probe capture the first time it is called.
func (c *baseCapturer) Bounds(ctx context.Context) (image.Rectangle, error) {
	if !c.bounds.Empty() {
		return c.bounds, nil
	}
	if _, err := c.Capture(ctx); err != nil {
		return image.Rectangle{}, err
	}
	return c.bounds, nil
}

func (c *baseCapturer) Capture(ctx context.Context) (image.Image, error) {
	data, err := c.captureRaw(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ScreenCaptureFailed, "screen capture failed").WithMetadata("backend", c.name)
	}
	img, err := DecodeFrame(data)
	if err != nil {
		return nil, err
	}
	c.bounds = img.Bounds()
	return img, nil
}

func (c *baseCapturer) Close() error {
	c.cleanup()
	if c.tempDir != "" {
		return os.RemoveAll(c.tempDir)
	}
	return nil
}

// DecodeFrame decodes a PNG or JPEG screenshot.
func DecodeFrame(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, apperrors.New(apperrors.ScreenCaptureFailed, "empty screenshot")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ScreenCaptureFailed, "failed to decode screenshot")
	}
	if img.Bounds().Empty() {
		return nil, apperrors.New(apperrors.ScreenCaptureFailed, fmt.Sprintf("empty %s screenshot", format))
	}
	return img, nil
}
