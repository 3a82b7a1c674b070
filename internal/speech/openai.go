package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

// DefaultOpenAIURL is the OpenAI API root.
const DefaultOpenAIURL = "https://api.openai.com/v1"

// OpenAI implements Transcriber using the OpenAI audio transcription API.
type OpenAI struct {
	baseURL  string
	apiKey   string
	model    string
	language string
	remote   remote
}

type openaiResponse struct {
	Text string `json:"text"`
}

// NewOpenAI creates an OpenAI transcriber.
func NewOpenAI(baseURL, apiKey, model, language string, opts ...Option) *OpenAI {
	if baseURL == "" {
		baseURL = DefaultOpenAIURL
	}
	return &OpenAI{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		model:    model,
		language: baseLanguage(language),
		remote:   newRemote("openai-speech", opts),
	}
}

// Name returns the backend name.
func (o *OpenAI) Name() string { return "openai:" + o.model }

// Transcribe uploads the phrase as phrase.wav.
func (o *OpenAI) Transcribe(ctx context.Context, wav []byte) (string, error) {
	body, contentType, err := o.form(wav)
	if err != nil {
		return "", err
	}

	text, err := o.remote.call(ctx, func(ctx context.Context) (string, error) {
		return o.post(ctx, body, contentType)
	})
	if err != nil {
		return "", err
	}
	return recognized(text)
}

func (o *OpenAI) form(wav []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "phrase.wav")
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return nil, "", fmt.Errorf("failed to copy audio data: %w", err)
	}
	if err := writer.WriteField("model", o.model); err != nil {
		return nil, "", fmt.Errorf("failed to write model field: %w", err)
	}
	if o.language != "" {
		if err := writer.WriteField("language", o.language); err != nil {
			return nil, "", fmt.Errorf("failed to write language field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

func (o *OpenAI) post(ctx context.Context, body []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/audio/transcriptions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := o.remote.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperrors.Wrap(err, apperrors.Unavailable, "transcription endpoint unreachable")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.FromHTTPStatus(resp.StatusCode, apperrors.SpeechAPIError, strings.TrimSpace(string(data)))
	}

	var result openaiResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return "", apperrors.Wrap(err, apperrors.SpeechAPIError, "failed to parse transcription response")
	}
	return result.Text, nil
}
