// Package summarize turns long text into a short behavioural summary.
//
// A Delegate decides whether text is long enough to summarize and forwards it
// to one Summarizer backend: the hosted inference endpoint serving
// facebook/bart-large-cnn, a langchaingo chat model (Ollama, OpenAI) or the
// Anthropic Messages API.
package summarize

import (
	"context"
	"unicode/utf8"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
	"github.com/GriffinCanCode/aiba/internal/trace"
)

// Bounds limits the summary length. Seq2seq backends read them as tokens,
// chat backends as words.
type Bounds struct {
	MaxLength int
	MinLength int
}

// DefaultBounds are the limits used by the text analysis handler.
var DefaultBounds = Bounds{MaxLength: 130, MinLength: 30}

// DefaultShortThreshold is the rune count below which text is echoed verbatim.
const DefaultShortThreshold = 50

// Summarizer is one summarization backend.
type Summarizer interface {
	Name() string
	Summarize(ctx context.Context, text string, b Bounds) (string, error)
}

// Source tells where analyzed text came from.
type Source string

const (
	SourceArgument Source = "argument"
	SourceMemory   Source = "memory"
	SourceSpeech   Source = "speech"
)

// Result is the outcome of one analysis.
type Result struct {
	Input   string `json:"input"`
	Summary string `json:"summary"`
	Short   bool   `json:"short"`
	Source  Source `json:"source"`
	Backend string `json:"backend,omitempty"`
}

// Delegate applies the short-input threshold before calling the backend.
type Delegate struct {
	backend   Summarizer
	bounds    Bounds
	threshold int
}

// NewDelegate creates a delegate. backend may be nil when no summarizer is
// configured; short inputs still work without one.
func NewDelegate(backend Summarizer, bounds Bounds, threshold int) *Delegate {
	return &Delegate{backend: backend, bounds: bounds, threshold: threshold}
}

// Backend returns the configured backend name, or "" when there is none.
func (d *Delegate) Backend() string {
	if d.backend == nil {
		return ""
	}
	return d.backend.Name()
}

// Analyze summarizes text, or echoes it when it is shorter than the threshold.
func (d *Delegate) Analyze(ctx context.Context, text string, src Source) (Result, error) {
	res := Result{Input: text, Source: src}

	if utf8.RuneCountInString(text) < d.threshold {
		res.Summary = text
		res.Short = true
		return res, nil
	}
	if d.backend == nil {
		return res, apperrors.New(apperrors.SummarizerNotConfigured, "no summarization backend configured")
	}

	ctx, span := trace.StartSpan(ctx, "summarize")
	span.SetAttr("backend", d.backend.Name())
	span.SetAttr("runes", utf8.RuneCountInString(text))
	defer span.End()

	summary, err := d.backend.Summarize(ctx, text, d.bounds)
	if err != nil {
		return res, err
	}
	res.Summary = summary
	res.Backend = d.backend.Name()
	return res, nil
}
