package summarize

import (
	"github.com/GriffinCanCode/aiba/internal/config"
	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

// New creates the summarizer selected by cfg. It returns nil, nil when the
// backend is "none".
func New(cfg config.SummarizerConfig, opts ...Option) (Summarizer, error) {
	switch cfg.Backend {
	case config.SummarizerHuggingFace:
		h, err := NewHuggingFace(cfg.BaseURL, cfg.Model, cfg.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return h, nil
	case config.SummarizerOllama:
		c, err := NewOllama(cfg.BaseURL, cfg.Model, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.SummarizerOpenAI:
		if cfg.APIKey == "" {
			return nil, apperrors.New(apperrors.SummarizerNotConfigured, "OPENAI_API_KEY is not set")
		}
		c, err := NewOpenAI(cfg.BaseURL, cfg.Model, cfg.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.SummarizerAnthropic:
		if cfg.APIKey == "" {
			return nil, apperrors.New(apperrors.SummarizerNotConfigured, "ANTHROPIC_API_KEY is not set")
		}
		return NewAnthropic(cfg.BaseURL, cfg.Model, cfg.APIKey, opts...), nil
	case config.None, "":
		return nil, nil
	default:
		return nil, apperrors.Newf(apperrors.ConfigInvalid, "unknown summarizer backend: %s", cfg.Backend)
	}
}

// BoundsFrom returns the summary bounds configured in cfg.
func BoundsFrom(cfg config.SummarizerConfig) Bounds {
	return Bounds{MaxLength: cfg.MaxLength, MinLength: cfg.MinLength}
}
