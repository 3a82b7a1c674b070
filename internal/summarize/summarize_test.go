package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

type fakeSummarizer struct {
	calls  int
	text   string
	bounds Bounds
	out    string
	err    error
}

func (f *fakeSummarizer) Name() string { return "fake" }

func (f *fakeSummarizer) Summarize(_ context.Context, text string, b Bounds) (string, error) {
	f.calls++
	f.text = text
	f.bounds = b
	return f.out, f.err
}

func TestAnalyzeShortInputEchoes(t *testing.T) {
	inputs := []string{
		"",
		"hi",
		"The quick brown fox jumps over the lazy dog.",
		strings.Repeat("a", 49),
		strings.Repeat("é", 49),
		strings.Repeat("日本", 24),
	}

	for _, in := range inputs {
		backend := &fakeSummarizer{out: "should not be used"}
		d := NewDelegate(backend, DefaultBounds, DefaultShortThreshold)

		res, err := d.Analyze(context.Background(), in, SourceArgument)
		require.NoError(t, err)
		assert.True(t, res.Short, "input %q", in)
		assert.Equal(t, in, res.Summary)
		assert.Zero(t, backend.calls)
	}
}

func TestAnalyzeShortWithoutBackend(t *testing.T) {
	d := NewDelegate(nil, DefaultBounds, DefaultShortThreshold)

	res, err := d.Analyze(context.Background(), "short note", SourceMemory)
	require.NoError(t, err)
	assert.True(t, res.Short)
	assert.Equal(t, SourceMemory, res.Source)
	assert.Empty(t, d.Backend())
}

func TestAnalyzeLongInputCallsBackend(t *testing.T) {
	backend := &fakeSummarizer{out: "a concise summary"}
	d := NewDelegate(backend, DefaultBounds, DefaultShortThreshold)
	text := strings.Repeat("x", 50)

	res, err := d.Analyze(context.Background(), text, SourceSpeech)
	require.NoError(t, err)

	assert.False(t, res.Short)
	assert.Equal(t, "a concise summary", res.Summary)
	assert.Equal(t, SourceSpeech, res.Source)
	assert.Equal(t, "fake", res.Backend)
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, text, backend.text)
	assert.Equal(t, Bounds{MaxLength: 130, MinLength: 30}, backend.bounds)
}

func TestAnalyzeLongInputWithoutBackend(t *testing.T) {
	d := NewDelegate(nil, DefaultBounds, DefaultShortThreshold)

	_, err := d.Analyze(context.Background(), strings.Repeat("word ", 20), SourceArgument)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.SummarizerNotConfigured))
}

func TestAnalyzePropagatesBackendError(t *testing.T) {
	boom := errors.New("pipeline exploded")
	d := NewDelegate(&fakeSummarizer{err: boom}, DefaultBounds, DefaultShortThreshold)

	_, err := d.Analyze(context.Background(), strings.Repeat("word ", 20), SourceArgument)
	assert.ErrorIs(t, err, boom)
}
