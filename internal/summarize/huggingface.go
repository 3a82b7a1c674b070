package summarize

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	huggingface "github.com/hupe1980/go-huggingface"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
	"github.com/GriffinCanCode/aiba/internal/resilience"
)

const (
	DefaultHuggingFaceURL   = "https://api-inference.huggingface.co"
	DefaultHuggingFaceModel = "facebook/bart-large-cnn"
)

// HuggingFace calls a hosted summarization pipeline.
type HuggingFace struct {
	model  string
	client *huggingface.InferenceClient
	guard  guard
}

// NewHuggingFace creates the hosted pipeline backend. Empty baseURL and model
// fall back to the public endpoint and facebook/bart-large-cnn.
func NewHuggingFace(baseURL, model, token string, opts ...Option) (*HuggingFace, error) {
	if baseURL == "" {
		baseURL = DefaultHuggingFaceURL
	}
	if model == "" {
		model = DefaultHuggingFaceModel
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, apperrors.Newf(apperrors.ConfigInvalid, "invalid summarizer URL: %q", baseURL)
	}

	o := buildOptions(opts)
	doer := endpointDoer{base: base, client: o.httpClient}
	client := huggingface.NewInferenceClient(token, func(hfo *huggingface.InferenceClientOptions) {
		hfo.HTTPClient = doer
	})
	return &HuggingFace{
		model:  model,
		client: client,
		guard:  newGuard("huggingface", o, resilience.ModelLoadRetryConfig()),
	}, nil
}

// Name returns the backend name.
func (h *HuggingFace) Name() string { return "huggingface:" + h.model }

// Summarize requests a summary within b, waiting for cold models to load.
func (h *HuggingFace) Summarize(ctx context.Context, text string, b Bounds) (string, error) {
	minLen, maxLen, wait := b.MinLength, b.MaxLength, true
	req := &huggingface.SummarizationRequest{
		Inputs: []string{text},
		Parameters: huggingface.SummarizationParameters{
			MinLength: &minLen,
			MaxLength: &maxLen,
		},
		Options: huggingface.Options{WaitForModel: &wait},
		Model:   h.model,
	}

	out, err := h.guard.do(ctx, func(ctx context.Context) (string, error) {
		resp, err := h.client.Summarization(ctx, req)
		if err != nil {
			return "", err
		}
		if len(resp) == 0 {
			return "", apperrors.New(apperrors.SummarizerAPIError, "empty summarization response")
		}
		return strings.TrimSpace(resp[0].SummaryText), nil
	})
	if err != nil {
		return "", classify(err, "huggingface")
	}
	return out, nil
}

// endpointDoer points the inference client at base and turns non-200
// replies into coded errors before the client flattens them to text.
type endpointDoer struct {
	base   *url.URL
	client *http.Client
}

func (d endpointDoer) Do(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = d.base.Scheme
	req.URL.Host = d.base.Host
	req.URL.Path = d.base.Path + req.URL.Path
	req.URL.RawPath = ""
	req.Host = ""

	resp, err := d.client.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.Wrap(err, apperrors.Unavailable, "summarization endpoint unreachable")
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return nil, apperrors.FromHTTPStatus(resp.StatusCode, apperrors.SummarizerAPIError, strings.TrimSpace(string(body)))
}
