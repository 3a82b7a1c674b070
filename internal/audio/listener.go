// Package audio captures spoken phrases from a microphone.
//
// A Listener calibrates an energy threshold against ambient noise, waits for
// speech to start and records until a pause or the phrase limit. All timing is
// counted in samples read from the Source, not wall-clock time.
package audio

import (
	"context"
	"fmt"
	"math"
	"time"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

// ListenerConfig holds the phrase detection settings.
type ListenerConfig struct {
	EnergyThreshold float64
	DynamicEnergy   bool
	DynamicDamping  float64
	DynamicRatio    float64
	PauseThreshold  time.Duration
	PhraseThreshold time.Duration
	NonSpeaking     time.Duration
}

// DefaultListenerConfig returns the standard phrase detection settings.
func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		EnergyThreshold: 300,
		DynamicEnergy:   true,
		DynamicDamping:  0.15,
		DynamicRatio:    1.5,
		PauseThreshold:  800 * time.Millisecond,
		PhraseThreshold: 300 * time.Millisecond,
		NonSpeaking:     500 * time.Millisecond,
	}
}

// ErrWaitTimeout is returned when no phrase starts before the wait timeout.
var ErrWaitTimeout = apperrors.New(apperrors.AudioWaitTimeout, "listening timed out while waiting for phrase to start")

// Clip is one captured phrase.
type Clip struct {
	Samples    []int16
	SampleRate int
}

// Duration returns the clip length.
func (c Clip) Duration() time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	return time.Duration(len(c.Samples)) * time.Second / time.Duration(c.SampleRate)
}

// Listener detects phrases by signal energy.
type Listener struct {
	cfg       ListenerConfig
	threshold float64
}

// NewListener creates a listener starting at cfg.EnergyThreshold.
func NewListener(cfg ListenerConfig) *Listener {
	return &Listener{cfg: cfg, threshold: cfg.EnergyThreshold}
}

// Threshold returns the current energy threshold.
func (l *Listener) Threshold() float64 { return l.threshold }

// Calibrate reads ambient noise for d and moves the threshold towards it.
func (l *Listener) Calibrate(ctx context.Context, src Source, d time.Duration) error {
	var elapsed time.Duration
	for elapsed < d {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk, err := src.ReadChunk()
		if err != nil {
			return fmt.Errorf("failed to read ambient noise: %w", err)
		}
		if len(chunk) == 0 {
			return nil
		}
		elapsed += chunkDuration(chunk, src.SampleRate())
		l.adjust(energy(chunk), chunkDuration(chunk, src.SampleRate()))
	}
	return nil
}

// adjust blends the threshold towards energy*ratio with time-scaled damping.
func (l *Listener) adjust(e float64, spb time.Duration) {
	damping := math.Pow(l.cfg.DynamicDamping, spb.Seconds())
	target := e * l.cfg.DynamicRatio
	l.threshold = l.threshold*damping + target*(1-damping)
}

// Listen waits up to waitTimeout for a phrase to start and records it until a
// pause or phraseLimit. A zero waitTimeout or phraseLimit means no limit.
func (l *Listener) Listen(ctx context.Context, src Source, waitTimeout, phraseLimit time.Duration) (Clip, error) {
	rate := src.SampleRate()
	var (
		elapsed time.Duration
		frames  [][]int16
	)

	for {
		// Keep a short tail of quiet audio so the phrase onset is not clipped.
		var spb time.Duration
		for {
			if err := ctx.Err(); err != nil {
				return Clip{}, err
			}
			if waitTimeout > 0 && elapsed > waitTimeout {
				return Clip{}, ErrWaitTimeout
			}
			chunk, err := src.ReadChunk()
			if err != nil {
				return Clip{}, fmt.Errorf("failed to read audio: %w", err)
			}
			// An empty chunk is end of stream; no phrase can start.
			if len(chunk) == 0 {
				return Clip{}, ErrWaitTimeout
			}
			spb = chunkDuration(chunk, rate)
			elapsed += spb

			frames = append(frames, chunk)
			if keep := buffersFor(l.cfg.NonSpeaking, spb) + 1; len(frames) > keep {
				frames = frames[len(frames)-keep:]
			}

			e := energy(chunk)
			if e > l.threshold {
				break
			}
			if l.cfg.DynamicEnergy {
				l.adjust(e, spb)
			}
		}

		var (
			phraseStart = elapsed
			pauseCount  int
			phraseCount int
			ended       bool
		)
		pauseBuffers := buffersFor(l.cfg.PauseThreshold, spb)
		for {
			if err := ctx.Err(); err != nil {
				return Clip{}, err
			}
			elapsed += spb
			if phraseLimit > 0 && elapsed-phraseStart > phraseLimit {
				break
			}
			chunk, err := src.ReadChunk()
			if err != nil {
				return Clip{}, fmt.Errorf("failed to read audio: %w", err)
			}
			if len(chunk) == 0 {
				ended = true
				break
			}
			frames = append(frames, chunk)
			phraseCount++

			if energy(chunk) > l.threshold {
				pauseCount = 0
			} else {
				pauseCount++
			}
			if pauseCount > pauseBuffers {
				break
			}
		}

		phraseCount -= pauseCount
		if phraseCount >= buffersFor(l.cfg.PhraseThreshold, spb) || ended {
			// Drop the trailing pause beyond the quiet tail.
			if drop := pauseCount - buffersFor(l.cfg.NonSpeaking, spb); drop > 0 && drop < len(frames) {
				frames = frames[:len(frames)-drop]
			}
			return Clip{Samples: flatten(frames), SampleRate: rate}, nil
		}
	}
}

// buffersFor returns how many chunks of length spb cover d.
func buffersFor(d, spb time.Duration) int {
	if spb <= 0 {
		return 0
	}
	return int(math.Ceil(float64(d) / float64(spb)))
}

func chunkDuration(chunk []int16, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(len(chunk)) * time.Second / time.Duration(rate)
}

// energy is the RMS amplitude of chunk.
func energy(chunk []int16) float64 {
	if len(chunk) == 0 {
		return 0
	}
	var sum float64
	for _, s := range chunk {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(chunk)))
}

func flatten(frames [][]int16) []int16 {
	n := 0
	for _, f := range frames {
		n += len(f)
	}
	out := make([]int16, 0, n)
	for _, f := range frames {
		out = append(out, f...)
	}
	return out
}
