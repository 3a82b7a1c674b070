package summarize

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
	"github.com/GriffinCanCode/aiba/internal/resilience"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.2"
	DefaultOpenAIModel = "gpt-4o-mini"
)

const summaryPrompt = `Summarize the following text in %d to %d words.
Describe what it says about the writer's behaviour and intent. Reply with the summary only.

%s`

// Chat summarizes with a langchaingo chat model.
type Chat struct {
	name  string
	model llms.Model
	guard guard
}

// NewChat wraps an existing langchaingo model.
func NewChat(name string, model llms.Model, opts ...Option) *Chat {
	o := buildOptions(opts)
	return &Chat{
		name:  name,
		model: model,
		guard: newGuard(name, o, resilience.DefaultRetryConfig()),
	}
}

// NewOllama creates a backend for a local Ollama server.
func NewOllama(baseURL, model string, opts ...Option) (*Chat, error) {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	o := buildOptions(opts)

	llm, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(model),
		ollama.WithHTTPClient(o.httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	return NewChat("ollama:"+model, llm, opts...), nil
}

// NewOpenAI creates a backend for the OpenAI chat completions API.
func NewOpenAI(baseURL, model, token string, opts ...Option) (*Chat, error) {
	if model == "" {
		model = DefaultOpenAIModel
	}
	o := buildOptions(opts)

	llmOpts := []openai.Option{
		openai.WithModel(model),
		openai.WithToken(token),
		openai.WithHTTPClient(o.httpClient),
	}
	if baseURL != "" {
		llmOpts = append(llmOpts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(llmOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return NewChat("openai:"+model, llm, opts...), nil
}

// Name returns the backend name.
func (c *Chat) Name() string { return c.name }

// Summarize prompts the model with temperature 0.
func (c *Chat) Summarize(ctx context.Context, text string, b Bounds) (string, error) {
	prompt := fmt.Sprintf(summaryPrompt, b.MinLength, b.MaxLength, text)

	out, err := c.guard.do(ctx, func(ctx context.Context) (string, error) {
		out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
			llms.WithTemperature(0),
			llms.WithMaxTokens(maxTokens(b)),
		)
		if err != nil {
			return "", chatError(err, c.name)
		}
		return out, nil
	})
	if err != nil {
		return "", classify(err, c.name)
	}
	return strings.TrimSpace(out), nil
}

// maxTokens leaves headroom over the word bound.
func maxTokens(b Bounds) int {
	return b.MaxLength * 2
}

// statusPattern finds the HTTP status langchaingo clients embed in error
// text, e.g. "503 Service Unavailable" or "unexpected status code: 429".
var statusPattern = regexp.MustCompile(`(?:^|status code:?\s*)([1-5]\d\d)\b`)

// chatError gives langchaingo errors a code. The clients report upstream
// failures as plain errors, so the status is recovered from the chain and
// the message.
func chatError(err error, backend string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) || errors.Is(err, context.Canceled) {
		return err
	}
	msg := strings.ToLower(err.Error())
	status := 0
	if m := statusPattern.FindStringSubmatch(msg); m != nil {
		status, _ = strconv.Atoi(m[1])
	}

	var netErr net.Error
	code := apperrors.SummarizerAPIError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		code = apperrors.Timeout
	case status == 429, strings.Contains(msg, "rate limit"), strings.Contains(msg, "too many requests"):
		code = apperrors.RateLimited
	case errors.Is(err, syscall.ECONNREFUSED), strings.Contains(msg, "connection refused"):
		code = apperrors.Unavailable
	case status >= 500, strings.Contains(msg, "server busy"), strings.Contains(msg, "overloaded"):
		code = apperrors.Unavailable
	case status >= 400:
		return apperrors.FromHTTPStatus(status, apperrors.SummarizerAPIError, err.Error()).
			WithMetadata("backend", backend)
	}
	return apperrors.Wrap(err, code, "summarization failed").WithMetadata("backend", backend)
}
