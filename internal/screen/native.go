package screen

import (
	"context"
	"image"

	"github.com/kbinani/screenshot"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

// Native captures the primary display through the OS graphics API.
type Native struct{}

// NewNative creates a native capturer.
func NewNative() *Native { return &Native{} }

// Name returns the backend name.
func (n *Native) Name() string { return "native" }

// Bounds returns the primary display bounds.
func (n *Native) Bounds(context.Context) (image.Rectangle, error) {
	if screenshot.NumActiveDisplays() < 1 {
		return image.Rectangle{}, apperrors.New(apperrors.ScreenCaptureFailed, "no active display")
	}
	return screenshot.GetDisplayBounds(0), nil
}

// Capture grabs the primary display.
func (n *Native) Capture(ctx context.Context) (image.Image, error) {
	bounds, err := n.Bounds(ctx)
	if err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ScreenCaptureFailed, "screen capture failed").WithMetadata("backend", "native")
	}
	return img, nil
}

// Close is a no-op.
func (n *Native) Close() error { return nil }
