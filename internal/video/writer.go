// Package video writes JPEG frames into an MJPEG AVI file.
package video

import (
	"sync"

	"github.com/icza/mjpeg"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

// Writer accepts encoded frames and must be closed to finalize the file.
type Writer interface {
	AddFrame(jpeg []byte) error
	Close() error
}

// AVI is an MJPEG AVI writer. Close is idempotent.
type AVI struct {
	path      string
	w         mjpeg.AviWriter
	frames    int
	closeOnce sync.Once
	closeErr  error
}

// Create opens path for writing at the given dimensions and frame rate.
func Create(path string, width, height, fps int) (*AVI, error) {
	if width <= 0 || height <= 0 || fps <= 0 {
		return nil, apperrors.Newf(apperrors.InvalidArgument, "invalid video format %dx%d@%d", width, height, fps)
	}
	w, err := mjpeg.New(path, int32(width), int32(height), int32(fps))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.VideoEncodeFailed, "failed to create video file").WithMetadata("path", path)
	}
	return &AVI{path: path, w: w}, nil
}

// Path returns the output file path.
func (a *AVI) Path() string { return a.path }

// Frames returns the number of frames written.
func (a *AVI) Frames() int { return a.frames }

// AddFrame appends one JPEG-encoded frame.
func (a *AVI) AddFrame(jpeg []byte) error {
	if err := a.w.AddFrame(jpeg); err != nil {
		return apperrors.Wrap(err, apperrors.VideoEncodeFailed, "failed to write frame").WithMetadata("path", a.path)
	}
	a.frames++
	return nil
}

// Close writes the AVI index and closes the file.
func (a *AVI) Close() error {
	a.closeOnce.Do(func() {
		if err := a.w.Close(); err != nil {
			a.closeErr = apperrors.Wrap(err, apperrors.VideoEncodeFailed, "failed to finalize video").WithMetadata("path", a.path)
		}
	})
	return a.closeErr
}
