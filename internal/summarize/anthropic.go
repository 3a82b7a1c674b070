package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
	"github.com/GriffinCanCode/aiba/internal/resilience"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = anthropic.ModelClaude3_5HaikuLatest

// Anthropic summarizes with the Anthropic Messages API.
type Anthropic struct {
	client anthropic.Client
	model  anthropic.Model
	guard  guard
}

// NewAnthropic creates the backend. The SDK's own retries are disabled;
// calls go through the shared retry policy instead.
func NewAnthropic(baseURL, model, apiKey string, opts ...Option) *Anthropic {
	o := buildOptions(opts)

	reqOpts := []option.RequestOption{
		option.WithHTTPClient(o.httpClient),
		option.WithMaxRetries(0),
	}
	if apiKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}

	m := anthropic.Model(model)
	if model == "" {
		m = DefaultAnthropicModel
	}
	return &Anthropic{
		client: anthropic.NewClient(reqOpts...),
		model:  m,
		guard:  newGuard("anthropic", o, resilience.DefaultRetryConfig()),
	}
}

// Name returns the backend name.
func (a *Anthropic) Name() string { return "anthropic:" + string(a.model) }

// Summarize sends one user message and joins the text blocks of the reply.
func (a *Anthropic) Summarize(ctx context.Context, text string, b Bounds) (string, error) {
	prompt := fmt.Sprintf(summaryPrompt, b.MinLength, b.MaxLength, text)

	out, err := a.guard.do(ctx, func(ctx context.Context) (string, error) {
		msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:       a.model,
			MaxTokens:   int64(maxTokens(b)),
			Temperature: anthropic.Float(0),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			return "", anthropicError(err)
		}

		var sb strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		if sb.Len() == 0 {
			return "", apperrors.New(apperrors.SummarizerAPIError, "empty summarization response")
		}
		return sb.String(), nil
	})
	if err != nil {
		return "", classify(err, "anthropic")
	}
	return strings.TrimSpace(out), nil
}

// anthropicError maps SDK status errors onto retryable codes.
func anthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apperrors.FromHTTPStatus(apiErr.StatusCode, apperrors.SummarizerAPIError, apiErr.Error())
	}
	return err
}
