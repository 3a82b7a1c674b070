// Package vision records the screen into a video file for a fixed duration.
package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/GriffinCanCode/aiba/internal/screen"
	"github.com/GriffinCanCode/aiba/internal/video"
)

// ProgressEvery is how many frames pass between progress marks.
const ProgressEvery = 10

// Report summarizes one recording.
type Report struct {
	Frames        int           `json:"frames"`
	Duration      time.Duration `json:"duration"`
	Elapsed       time.Duration `json:"elapsed"`
	Width         int           `json:"width"`
	Height        int           `json:"height"`
	FPS           int           `json:"fps"`
	OutputPath    string        `json:"output_path"`
	ChangedFrames int           `json:"changed_frames"`
}

// Resolution returns the frame size as WxH.
func (r Report) Resolution() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// CreateFunc opens a video writer.
type CreateFunc func(path string, width, height, fps int) (video.Writer, error)

// Config holds recorder settings.
type Config struct {
	FPS             int
	Quality         int
	ChangeThreshold int
	// Progress receives one "." every ProgressEvery frames. May be nil.
	Progress io.Writer
}

// Recorder captures frames from a Capturer into a video Writer.
type Recorder struct {
	capturer screen.Capturer
	create   CreateFunc
	cfg      Config
	now      func() time.Time
	sleep    func(context.Context, time.Duration) error
}

// NewRecorder creates a recorder writing MJPEG AVI files.
func NewRecorder(c screen.Capturer, cfg Config) *Recorder {
	if cfg.FPS <= 0 {
		cfg.FPS = 20
	}
	return &Recorder{
		capturer: c,
		create: func(path string, w, h, fps int) (video.Writer, error) {
			return video.Create(path, w, h, fps)
		},
		cfg:   cfg,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// Record captures the primary display until duration has elapsed, pacing the
// loop at the configured frame rate. The writer is closed on every path.
func (r *Recorder) Record(ctx context.Context, duration time.Duration, path string) (rep Report, err error) {
	bounds, err := r.capturer.Bounds(ctx)
	if err != nil {
		return Report{}, err
	}
	rep = Report{
		Duration:   duration,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		FPS:        r.cfg.FPS,
		OutputPath: path,
	}

	w, err := r.create(path, rep.Width, rep.Height, r.cfg.FPS)
	if err != nil {
		return rep, err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	tracker := screen.NewChangeTracker(r.cfg.ChangeThreshold)
	interval := time.Second / time.Duration(r.cfg.FPS)
	start := r.now()
	next := start

	defer func() {
		rep.Elapsed = r.now().Sub(start)
		rep.ChangedFrames = tracker.Changed()
		if rep.Frames >= ProgressEvery && r.cfg.Progress != nil {
			fmt.Fprintln(r.cfg.Progress)
		}
	}()

	for r.now().Sub(start) < duration {
		img, err := r.capturer.Capture(ctx)
		if err != nil {
			return rep, err
		}
		frame, err := screen.NormalizeFrame(img, rep.Width, rep.Height, r.cfg.Quality)
		if err != nil {
			return rep, err
		}
		if err := w.AddFrame(frame); err != nil {
			return rep, err
		}
		tracker.Observe(img)
		rep.Frames++

		if rep.Frames%ProgressEvery == 0 && r.cfg.Progress != nil {
			fmt.Fprint(r.cfg.Progress, ".")
		}

		next = next.Add(interval)
		if wait := next.Sub(r.now()); wait > 0 {
			if err := r.sleep(ctx, wait); err != nil {
				return rep, err
			}
		} else if wait < -interval {
			slog.Debug("capture falling behind frame rate", "lag", -wait)
		}
	}
	return rep, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
