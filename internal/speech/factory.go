package speech

import (
	"context"

	"github.com/GriffinCanCode/aiba/internal/config"
	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

// New creates the transcriber selected by cfg. It returns nil, nil when the
// backend is "none".
func New(cfg config.SpeechConfig, opts ...Option) (Transcriber, error) {
	switch cfg.Backend {
	case config.SpeechGoogle:
		if cfg.Google.APIKey == "" {
			return nil, apperrors.New(apperrors.SpeechNotConfigured, "GOOGLE_SPEECH_API_KEY is not set")
		}
		g, err := NewGoogle(context.Background(), cfg.Google.Endpoint, cfg.Google.APIKey, cfg.Language, opts...)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.SpeechOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, apperrors.New(apperrors.SpeechNotConfigured, "OPENAI_API_KEY is not set")
		}
		if cfg.OpenAI.Model == "" {
			return nil, apperrors.New(apperrors.SpeechNotConfigured, "OpenAI transcription model not configured")
		}
		return NewOpenAI(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.Language, opts...), nil
	case config.SpeechLocal:
		w, err := NewWhisperLocal(cfg.Local.BinaryPath, cfg.Local.ModelPath, cfg.Local.Threads, cfg.Language)
		if err != nil {
			return nil, err
		}
		return w, nil
	case config.None, "":
		return nil, nil
	default:
		return nil, apperrors.Newf(apperrors.ConfigInvalid, "unknown speech backend: %s (supported: google, openai, local)", cfg.Backend)
	}
}
