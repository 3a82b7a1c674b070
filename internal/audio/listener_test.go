package audio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

const testRate = 16000

type segment struct {
	amplitude int16
	chunks    int
}

// scriptedSource plays segments of constant amplitude, then silence forever
// or, with eof set, empty chunks.
type scriptedSource struct {
	segments []segment
	eof      bool
	reads    int
}

func (s *scriptedSource) SampleRate() int { return testRate }

func (s *scriptedSource) ReadChunk() ([]int16, error) {
	s.reads++
	var amp int16
	played := false
	for i := range s.segments {
		if s.segments[i].chunks > 0 {
			s.segments[i].chunks--
			amp = s.segments[i].amplitude
			played = true
			break
		}
	}
	if !played && s.eof {
		return nil, nil
	}
	chunk := make([]int16, FramesPerBuffer)
	for i := range chunk {
		chunk[i] = amp
	}
	return chunk, nil
}

func staticConfig() ListenerConfig {
	cfg := DefaultListenerConfig()
	cfg.DynamicEnergy = false
	return cfg
}

func loudSamples(c Clip) int {
	n := 0
	for _, s := range c.Samples {
		if s != 0 {
			n++
		}
	}
	return n
}

func TestCalibrateRaisesThresholdAboveAmbient(t *testing.T) {
	src := &scriptedSource{segments: []segment{{amplitude: 1000, chunks: 100}}}
	l := NewListener(DefaultListenerConfig())
	require.Equal(t, 300.0, l.Threshold())

	require.NoError(t, l.Calibrate(context.Background(), src, time.Second))

	assert.Greater(t, l.Threshold(), 1000.0)
	assert.Less(t, l.Threshold(), 1500.0)
	assert.Equal(t, 16, src.reads)
}

func TestListenWaitTimeout(t *testing.T) {
	src := &scriptedSource{segments: []segment{{amplitude: 10, chunks: 1000}}}
	l := NewListener(DefaultListenerConfig())

	_, err := l.Listen(context.Background(), src, 5*time.Second, 15*time.Second)

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.AudioWaitTimeout))
	// 5s at 64ms per chunk.
	assert.InDelta(t, 79, src.reads, 1)
}

func TestListenCapturesPhrase(t *testing.T) {
	src := &scriptedSource{segments: []segment{
		{amplitude: 0, chunks: 8},
		{amplitude: 2000, chunks: 16},
		{amplitude: 0, chunks: 100},
	}}
	l := NewListener(staticConfig())

	clip, err := l.Listen(context.Background(), src, 5*time.Second, 15*time.Second)
	require.NoError(t, err)

	assert.Equal(t, testRate, clip.SampleRate)
	assert.Equal(t, 16*FramesPerBuffer, loudSamples(clip))
	// 8 quiet chunks before the onset and 8 after the phrase are kept.
	assert.Len(t, clip.Samples, 32*FramesPerBuffer)
}

func TestListenCutsAtPhraseLimit(t *testing.T) {
	src := &scriptedSource{segments: []segment{{amplitude: 3000, chunks: 10000}}}
	l := NewListener(staticConfig())

	limit := 2 * time.Second
	clip, err := l.Listen(context.Background(), src, 5*time.Second, limit)
	require.NoError(t, err)

	spb := chunkDuration(make([]int16, FramesPerBuffer), testRate)
	assert.GreaterOrEqual(t, clip.Duration(), limit-spb)
	assert.LessOrEqual(t, clip.Duration(), limit+2*spb)
}

func TestListenIgnoresShortBlip(t *testing.T) {
	src := &scriptedSource{segments: []segment{
		{amplitude: 0, chunks: 4},
		{amplitude: 5000, chunks: 1},
		{amplitude: 0, chunks: 20},
		{amplitude: 2000, chunks: 16},
		{amplitude: 0, chunks: 100},
	}}
	l := NewListener(staticConfig())

	clip, err := l.Listen(context.Background(), src, 10*time.Second, 15*time.Second)
	require.NoError(t, err)

	assert.Equal(t, 16*FramesPerBuffer, loudSamples(clip))
}

func TestListenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewListener(DefaultListenerConfig())
	_, err := l.Listen(ctx, &scriptedSource{}, 5*time.Second, 15*time.Second)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestListenReturnsPhraseAtEndOfStream(t *testing.T) {
	src := &scriptedSource{eof: true, segments: []segment{
		{amplitude: 0, chunks: 2},
		{amplitude: 2000, chunks: 3},
	}}
	l := NewListener(staticConfig())

	clip, err := l.Listen(context.Background(), src, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 3*FramesPerBuffer, loudSamples(clip))
	assert.Len(t, clip.Samples, 5*FramesPerBuffer)
	assert.Equal(t, 6, src.reads)
}

func TestListenEmptyStreamDoesNotSpin(t *testing.T) {
	src := &scriptedSource{eof: true}
	l := NewListener(staticConfig())

	_, err := l.Listen(context.Background(), src, 0, 0)

	assert.ErrorIs(t, err, ErrWaitTimeout)
	assert.Equal(t, 1, src.reads)
}

func TestCalibrateStopsAtEndOfStream(t *testing.T) {
	src := &scriptedSource{eof: true}
	l := NewListener(DefaultListenerConfig())

	require.NoError(t, l.Calibrate(context.Background(), src, time.Second))
	assert.Equal(t, 300.0, l.Threshold())
	assert.Equal(t, 1, src.reads)
}

func TestEnergy(t *testing.T) {
	assert.Zero(t, energy(nil))
	assert.InDelta(t, 100, energy([]int16{100, -100, 100, -100}), 1e-9)
	assert.InDelta(t, 3.5355, energy([]int16{3, 4, -3, -4}), 1e-3)
}

func TestClipDuration(t *testing.T) {
	assert.Equal(t, time.Second, Clip{Samples: make([]int16, 16000), SampleRate: 16000}.Duration())
	assert.Zero(t, Clip{}.Duration())
}
