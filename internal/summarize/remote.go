package summarize

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
	"github.com/GriffinCanCode/aiba/internal/resilience"
)

// Option configures a remote backend.
type Option func(*options)

type options struct {
	httpClient *http.Client
	retry      *resilience.RetryConfig
	breaker    *resilience.Config
}

// WithHTTPClient sets the HTTP client used for backend calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRetry overrides the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(o *options) { o.retry = &cfg }
}

// WithBreaker overrides the circuit breaker settings.
func WithBreaker(cfg resilience.Config) Option {
	return func(o *options) { o.breaker = &cfg }
}

func buildOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	if o.httpClient == nil {
		o.httpClient = http.DefaultClient
	}
	return o
}

// guard runs remote calls through retry inside a circuit breaker.
type guard struct {
	breaker *resilience.Breaker
	retry   resilience.RetryConfig
}

func newGuard(name string, o options, retry resilience.RetryConfig) guard {
	bc := resilience.RemoteConfig(name)
	if o.breaker != nil {
		bc = *o.breaker
	}
	if o.retry != nil {
		retry = *o.retry
	}
	return guard{breaker: resilience.New(bc), retry: retry}
}

func (g guard) do(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	return resilience.Call(ctx, g.breaker, g.retry, fn)
}

// classify maps a client library error to an AppError.
func classify(err error, backend string) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.Timeout, "summarization timed out").WithMetadata("backend", backend)
	default:
		return apperrors.Wrap(err, apperrors.SummarizerAPIError, "summarization failed").WithMetadata("backend", backend)
	}
}
