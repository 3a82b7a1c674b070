// Package speech transcribes captured phrases.
//
// Backends receive a 16-bit PCM WAV file and return the recognized text.
// An empty transcript is reported as AUDIO_UNRECOGNIZED.
package speech

import (
	"context"
	"encoding/binary"
	"net/http"
	"strings"

	"google.golang.org/api/option"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
	"github.com/GriffinCanCode/aiba/internal/resilience"
)

// Transcriber converts a WAV phrase to text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// ErrUnrecognized is returned when the backend heard nothing it could transcribe.
var ErrUnrecognized = apperrors.New(apperrors.AudioUnrecognized, "speech was not recognized")

// recognized trims text and maps an empty transcript to ErrUnrecognized.
func recognized(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrUnrecognized
	}
	return text, nil
}

// wavSampleRate reads the sample rate from a canonical RIFF/WAVE header.
func wavSampleRate(wav []byte) int {
	if len(wav) < 44 || string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return 0
	}
	return int(binary.LittleEndian.Uint32(wav[24:28]))
}

// baseLanguage turns a BCP-47 tag like en-US into its ISO 639-1 part.
func baseLanguage(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		return strings.ToLower(tag[:i])
	}
	return strings.ToLower(tag)
}

// Option configures a remote backend.
type Option func(*options)

type options struct {
	httpClient *http.Client
	clientOpts []option.ClientOption
	retry      resilience.RetryConfig
	breaker    *resilience.Config
}

// WithHTTPClient sets the HTTP client used for backend calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithClientOptions appends options for gRPC backends built on Google
// client libraries.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// WithRetry overrides the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(o *options) { o.retry = cfg }
}

// WithBreaker overrides the circuit breaker settings.
func WithBreaker(cfg resilience.Config) Option {
	return func(o *options) { o.breaker = &cfg }
}

type remote struct {
	client     *http.Client
	clientOpts []option.ClientOption
	retry      resilience.RetryConfig
	breaker    *resilience.Breaker
}

func newRemote(name string, opts []Option) remote {
	o := options{httpClient: http.DefaultClient, retry: resilience.DefaultRetryConfig()}
	for _, fn := range opts {
		fn(&o)
	}
	bc := resilience.RemoteConfig(name)
	if o.breaker != nil {
		bc = *o.breaker
	}
	return remote{
		client:     o.httpClient,
		clientOpts: o.clientOpts,
		retry:      o.retry,
		breaker:    resilience.New(bc),
	}
}

func (r remote) call(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	return resilience.Call(ctx, r.breaker, r.retry, fn)
}
