package vision

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
	"github.com/GriffinCanCode/aiba/internal/video"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.t = c.t.Add(d)
	return nil
}

type fakeCapturer struct {
	w, h     int
	calls    int
	failAt   int
	boundErr error
	// script, when set, is replayed in a loop instead of flat shades.
	script []image.Image
}

func (f *fakeCapturer) Name() string { return "fake" }

func (f *fakeCapturer) Bounds(context.Context) (image.Rectangle, error) {
	return image.Rect(0, 0, f.w, f.h), f.boundErr
}

func (f *fakeCapturer) Capture(context.Context) (image.Image, error) {
	f.calls++
	if f.failAt > 0 && f.calls >= f.failAt {
		return nil, apperrors.New(apperrors.ScreenCaptureFailed, "display went away")
	}
	if len(f.script) > 0 {
		return f.script[(f.calls-1)%len(f.script)], nil
	}
	img := image.NewRGBA(image.Rect(0, 0, f.w, f.h))
	shade := uint8(f.calls * 40)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = shade, shade, shade, 255
	}
	return img, nil
}

func (f *fakeCapturer) Close() error { return nil }

type fakeWriter struct {
	frames   int
	closed   int
	addErr   error
	closeErr error
}

func (w *fakeWriter) AddFrame([]byte) error {
	if w.addErr != nil {
		return w.addErr
	}
	w.frames++
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed++
	return w.closeErr
}

func newTestRecorder(c *fakeCapturer, w *fakeWriter, progress io.Writer) (*Recorder, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	r := NewRecorder(c, Config{FPS: 20, Progress: progress})
	r.now = clock.now
	r.sleep = clock.sleep
	r.create = func(path string, width, height, fps int) (video.Writer, error) {
		return w, nil
	}
	return r, clock
}

func TestRecordFrameCount(t *testing.T) {
	tests := []struct {
		seconds int
		frames  int
		dots    int
	}{
		{0, 0, 0},
		{1, 20, 2},
		{3, 60, 6},
		{5, 100, 10},
	}

	for _, tt := range tests {
		c := &fakeCapturer{w: 16, h: 8}
		w := &fakeWriter{}
		var progress bytes.Buffer
		r, _ := newTestRecorder(c, w, &progress)

		rep, err := r.Record(context.Background(), time.Duration(tt.seconds)*time.Second, "out.avi")
		require.NoError(t, err)

		assert.Equal(t, tt.frames, rep.Frames, "%ds", tt.seconds)
		assert.Equal(t, tt.frames, w.frames)
		assert.Equal(t, 1, w.closed)
		assert.Equal(t, tt.dots, strings.Count(progress.String(), "."))
		assert.Equal(t, "16x8", rep.Resolution())
		assert.Equal(t, "out.avi", rep.OutputPath)
		assert.Equal(t, time.Duration(tt.seconds)*time.Second, rep.Elapsed)
	}
}

// noise returns a deterministic random grayscale image.
func noise(seed uint64) *image.Gray {
	r := rand.New(rand.NewPCG(seed, seed*31+7))
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = uint8(r.IntN(256))
	}
	return img
}

func TestRecordNegativeDurationRecordsNoFrames(t *testing.T) {
	w := &fakeWriter{}
	r, _ := newTestRecorder(&fakeCapturer{w: 16, h: 8}, w, &bytes.Buffer{})

	rep, err := r.Record(context.Background(), -time.Second, "out.avi")
	require.NoError(t, err)

	assert.Zero(t, rep.Frames)
	assert.Zero(t, w.frames)
	assert.Equal(t, 1, w.closed)
	assert.Zero(t, rep.Elapsed)
}

func TestRecordCountsChangedFrames(t *testing.T) {
	a, b := noise(1), noise(2)
	tests := []struct {
		name    string
		script  []image.Image
		changed int
	}{
		{"static screen", []image.Image{a}, 0},
		// Frames 0..19 play A A B B ...; every second frame from 2 switches.
		{"switch every two frames", []image.Image{a, a, b, b}, 9},
		{"switch every frame", []image.Image{a, b}, 19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCapturer{w: 64, h: 64, script: tt.script}
			r, _ := newTestRecorder(c, &fakeWriter{}, nil)

			rep, err := r.Record(context.Background(), time.Second, "out.avi")
			require.NoError(t, err)

			assert.Equal(t, 20, rep.Frames)
			assert.Equal(t, tt.changed, rep.ChangedFrames)
		})
	}
}

func TestRecordClosesWriterOnCaptureFailure(t *testing.T) {
	c := &fakeCapturer{w: 16, h: 8, failAt: 5}
	w := &fakeWriter{}
	r, _ := newTestRecorder(c, w, &bytes.Buffer{})

	rep, err := r.Record(context.Background(), 5*time.Second, "out.avi")

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ScreenCaptureFailed))
	assert.Equal(t, 4, rep.Frames)
	assert.Equal(t, 1, w.closed)
}

func TestRecordClosesWriterOnEncodeFailure(t *testing.T) {
	boom := errors.New("disk full")
	w := &fakeWriter{addErr: boom}
	r, _ := newTestRecorder(&fakeCapturer{w: 16, h: 8}, w, &bytes.Buffer{})

	_, err := r.Record(context.Background(), time.Second, "out.avi")

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, w.closed)
}

func TestRecordReportsCloseError(t *testing.T) {
	boom := errors.New("index write failed")
	w := &fakeWriter{closeErr: boom}
	r, _ := newTestRecorder(&fakeCapturer{w: 16, h: 8}, w, &bytes.Buffer{})

	_, err := r.Record(context.Background(), time.Second, "out.avi")
	assert.ErrorIs(t, err, boom)
}

func TestRecordBoundsError(t *testing.T) {
	w := &fakeWriter{}
	c := &fakeCapturer{boundErr: apperrors.New(apperrors.ScreenCaptureFailed, "no display")}
	r, _ := newTestRecorder(c, w, &bytes.Buffer{})

	_, err := r.Record(context.Background(), time.Second, "out.avi")

	assert.True(t, apperrors.IsCode(err, apperrors.ScreenCaptureFailed))
	assert.Zero(t, w.closed, "writer never opened")
}

func TestRecordCancelled(t *testing.T) {
	w := &fakeWriter{}
	r := NewRecorder(&fakeCapturer{w: 16, h: 8}, Config{FPS: 20})
	r.create = func(string, int, int, int) (video.Writer, error) { return w, nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Record(ctx, time.Minute, "out.avi")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, w.closed)
}
