package summarize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/aiba/internal/config"
	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.SummarizerConfig
		wantName string
		wantCode apperrors.Code
	}{
		{"huggingface default", config.SummarizerConfig{Backend: config.SummarizerHuggingFace}, "huggingface:facebook/bart-large-cnn", ""},
		{"ollama", config.SummarizerConfig{Backend: config.SummarizerOllama, Model: "mistral"}, "ollama:mistral", ""},
		{"openai", config.SummarizerConfig{Backend: config.SummarizerOpenAI, APIKey: "sk"}, "openai:gpt-4o-mini", ""},
		{"anthropic", config.SummarizerConfig{Backend: config.SummarizerAnthropic, APIKey: "sk", Model: "claude-x"}, "anthropic:claude-x", ""},
		{"openai without key", config.SummarizerConfig{Backend: config.SummarizerOpenAI}, "", apperrors.SummarizerNotConfigured},
		{"anthropic without key", config.SummarizerConfig{Backend: config.SummarizerAnthropic}, "", apperrors.SummarizerNotConfigured},
		{"unknown", config.SummarizerConfig{Backend: "t5"}, "", apperrors.ConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, s.Name())
		})
	}
}

func TestNewNone(t *testing.T) {
	s, err := New(config.SummarizerConfig{Backend: config.None})
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestBoundsFrom(t *testing.T) {
	b := BoundsFrom(config.Default().Summarizer)
	assert.Equal(t, DefaultBounds, b)
}
