// Package config handles AIBA configuration.
// Values are resolved as defaults, then the YAML file, then the environment.
// Command-line flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

// Backend names.
const (
	SummarizerHuggingFace = "huggingface"
	SummarizerOllama      = "ollama"
	SummarizerOpenAI      = "openai"
	SummarizerAnthropic   = "anthropic"

	SpeechGoogle = "google"
	SpeechOpenAI = "openai"
	SpeechLocal  = "local"

	ScreenNative  = "native"
	ScreenCommand = "command"

	// None disables a capability.
	None = "none"
)

var (
	summarizerBackends = []string{SummarizerHuggingFace, SummarizerOllama, SummarizerOpenAI, SummarizerAnthropic, None}
	speechBackends     = []string{SpeechGoogle, SpeechOpenAI, SpeechLocal, None}
	screenBackends     = []string{ScreenNative, ScreenCommand}
	logLevels          = []string{"debug", "info", "warn", "error"}
)

// Config holds all application configuration.
type Config struct {
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Speech     SpeechConfig     `yaml:"speech"`
	Audio      AudioConfig      `yaml:"audio"`
	Screen     ScreenConfig     `yaml:"screen"`
	Server     ServerConfig     `yaml:"server"`
	LogLevel   string           `yaml:"log_level"`
}

// SummarizerConfig selects the summarization backend and its bounds.
type SummarizerConfig struct {
	Backend        string        `yaml:"backend"`
	Model          string        `yaml:"model"`
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	MaxLength      int           `yaml:"max_length"`
	MinLength      int           `yaml:"min_length"`
	ShortThreshold int           `yaml:"short_threshold"`
	Timeout        time.Duration `yaml:"timeout"`
}

// SpeechConfig selects the transcription backend.
type SpeechConfig struct {
	Backend  string             `yaml:"backend"`
	Language string             `yaml:"language"`
	Timeout  time.Duration      `yaml:"timeout"`
	Google   GoogleSpeechConfig `yaml:"google"`
	OpenAI   OpenAISpeechConfig `yaml:"openai"`
	Local    LocalWhisperConfig `yaml:"local"`
}

// GoogleSpeechConfig contains settings for Cloud Speech-to-Text.
type GoogleSpeechConfig struct {
	APIKey string `yaml:"api_key"`
	// Endpoint overrides the gRPC host:port, e.g. for a regional endpoint.
	Endpoint string `yaml:"endpoint"`
}

// OpenAISpeechConfig contains settings for the OpenAI transcription API.
type OpenAISpeechConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// LocalWhisperConfig contains settings for local whisper.cpp transcription.
type LocalWhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Threads    int    `yaml:"threads"`
}

// AudioConfig contains microphone and phrase detection settings.
type AudioConfig struct {
	Device          string        `yaml:"device"`
	ExcludedDevices []string      `yaml:"excluded_devices"`
	SampleRate      int           `yaml:"sample_rate"`
	Calibration     time.Duration `yaml:"calibration"`
	WaitTimeout     time.Duration `yaml:"wait_timeout"`
	PhraseLimit     time.Duration `yaml:"phrase_limit"`
	PauseThreshold  time.Duration `yaml:"pause_threshold"`
	EnergyThreshold float64       `yaml:"energy_threshold"`
	DynamicEnergy   bool          `yaml:"dynamic_energy"`
}

// ScreenConfig contains screen recording settings.
type ScreenConfig struct {
	Backend         string `yaml:"backend"`
	Output          string `yaml:"output"`
	FPS             int    `yaml:"fps"`
	DefaultDuration int    `yaml:"default_duration"`
	Quality         int    `yaml:"quality"`
	ChangeThreshold int    `yaml:"change_threshold"`
}

// ServerConfig contains the optional event feed settings.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Summarizer: SummarizerConfig{
			Backend:        SummarizerHuggingFace,
			MaxLength:      130,
			MinLength:      30,
			ShortThreshold: 50,
			Timeout:        60 * time.Second,
		},
		Speech: SpeechConfig{
			Backend:  SpeechGoogle,
			Language: "en-US",
			Timeout:  30 * time.Second,
			OpenAI:   OpenAISpeechConfig{Model: "whisper-1"},
			Local:    LocalWhisperConfig{BinaryPath: "whisper-cli", Threads: 4},
		},
		Audio: AudioConfig{
			ExcludedDevices: []string{"iphone", "teams"},
			SampleRate:      16000,
			Calibration:     time.Second,
			WaitTimeout:     5 * time.Second,
			PhraseLimit:     15 * time.Second,
			PauseThreshold:  800 * time.Millisecond,
			EnergyThreshold: 300,
			DynamicEnergy:   true,
		},
		Screen: ScreenConfig{
			Backend:         ScreenNative,
			Output:          "screen_analysis.avi",
			FPS:             20,
			DefaultDuration: 5,
			Quality:         85,
			ChangeThreshold: 5,
		},
		LogLevel: "warn",
	}
}

// DefaultPath returns ~/.config/aiba/config.yaml.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "aiba", "config.yaml")
}

// Load reads configuration from path, or from DefaultPath when path is empty,
// then applies environment overrides. A missing default file is not an error;
// a missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.Wrapf(err, apperrors.ConfigInvalid, "failed to parse config YAML %s", path)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	cfg.ExpandPaths()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Summarizer.Backend = getEnv("AIBA_SUMMARIZER", c.Summarizer.Backend)
	c.Summarizer.Model = getEnv("AIBA_SUMMARIZER_MODEL", c.Summarizer.Model)
	c.Summarizer.BaseURL = getEnv("AIBA_SUMMARIZER_URL", c.Summarizer.BaseURL)
	c.Summarizer.MaxLength = getEnvInt("AIBA_SUMMARY_MAX_LENGTH", c.Summarizer.MaxLength)
	c.Summarizer.MinLength = getEnvInt("AIBA_SUMMARY_MIN_LENGTH", c.Summarizer.MinLength)
	c.Summarizer.Timeout = getEnvDuration("AIBA_SUMMARIZER_TIMEOUT", c.Summarizer.Timeout)
	if c.Summarizer.APIKey == "" {
		c.Summarizer.APIKey = summarizerKey(c.Summarizer.Backend)
	}

	c.Speech.Backend = getEnv("AIBA_SPEECH", c.Speech.Backend)
	c.Speech.Language = getEnv("AIBA_SPEECH_LANGUAGE", c.Speech.Language)
	c.Speech.Google.APIKey = getEnv("GOOGLE_SPEECH_API_KEY", c.Speech.Google.APIKey)
	c.Speech.OpenAI.APIKey = getEnv("OPENAI_API_KEY", c.Speech.OpenAI.APIKey)
	c.Speech.Local.BinaryPath = getEnv("AIBA_WHISPER_BINARY", c.Speech.Local.BinaryPath)
	c.Speech.Local.ModelPath = getEnv("AIBA_WHISPER_MODEL", c.Speech.Local.ModelPath)

	c.Audio.Device = getEnv("AIBA_AUDIO_DEVICE", c.Audio.Device)
	c.Audio.ExcludedDevices = getEnvList("AIBA_EXCLUDED_AUDIO_DEVICES", c.Audio.ExcludedDevices)
	c.Audio.SampleRate = getEnvInt("AIBA_SAMPLE_RATE", c.Audio.SampleRate)
	c.Audio.EnergyThreshold = getEnvFloat("AIBA_ENERGY_THRESHOLD", c.Audio.EnergyThreshold)
	c.Audio.DynamicEnergy = getEnvBool("AIBA_DYNAMIC_ENERGY", c.Audio.DynamicEnergy)

	c.Screen.Backend = getEnv("AIBA_SCREEN_BACKEND", c.Screen.Backend)
	c.Screen.Output = getEnv("AIBA_OUTPUT", c.Screen.Output)
	c.Screen.FPS = getEnvInt("AIBA_FPS", c.Screen.FPS)

	c.Server.Listen = getEnv("AIBA_LISTEN", c.Server.Listen)
	c.LogLevel = getEnv("AIBA_LOG_LEVEL", c.LogLevel)
}

// summarizerKey returns the provider key from the environment for backend.
func summarizerKey(backend string) string {
	switch backend {
	case SummarizerHuggingFace:
		return os.Getenv("HF_API_TOKEN")
	case SummarizerOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case SummarizerAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return ""
	}
}

// ResolveKeys fills a missing summarizer key for the current backend.
// Used after flags changed the backend.
func (c *Config) ResolveKeys() {
	if c.Summarizer.APIKey == "" {
		c.Summarizer.APIKey = summarizerKey(c.Summarizer.Backend)
	}
}

// ExpandPaths replaces ~ with $HOME in all path fields.
func (c *Config) ExpandPaths() {
	home := os.Getenv("HOME")

	c.Speech.Local.BinaryPath = expandPath(c.Speech.Local.BinaryPath, home)
	c.Speech.Local.ModelPath = expandPath(c.Speech.Local.ModelPath, home)
	c.Screen.Output = expandPath(c.Screen.Output, home)
}

func expandPath(path, home string) string {
	if path == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate rejects unknown backends and non-positive rates and bounds.
func (c *Config) Validate() error {
	checks := []struct {
		ok  bool
		msg string
	}{
		{slices.Contains(summarizerBackends, c.Summarizer.Backend), fmt.Sprintf("unknown summarizer backend %q", c.Summarizer.Backend)},
		{slices.Contains(speechBackends, c.Speech.Backend), fmt.Sprintf("unknown speech backend %q", c.Speech.Backend)},
		{slices.Contains(screenBackends, c.Screen.Backend), fmt.Sprintf("unknown screen backend %q", c.Screen.Backend)},
		{slices.Contains(logLevels, strings.ToLower(c.LogLevel)), fmt.Sprintf("unknown log level %q", c.LogLevel)},
		{c.Summarizer.MinLength > 0 && c.Summarizer.MaxLength >= c.Summarizer.MinLength, "summary bounds must satisfy 0 < min_length <= max_length"},
		{c.Summarizer.ShortThreshold >= 0, "short_threshold must not be negative"},
		{c.Audio.SampleRate > 0, "sample_rate must be positive"},
		{c.Audio.WaitTimeout > 0 && c.Audio.PhraseLimit > 0, "wait_timeout and phrase_limit must be positive"},
		{c.Screen.FPS > 0, "fps must be positive"},
		{c.Screen.Quality > 0 && c.Screen.Quality <= 100, "quality must be in 1..100"},
		{c.Screen.DefaultDuration >= 0, "default_duration must not be negative"},
		{c.Screen.Output != "", "output path must be set"},
	}
	for _, chk := range checks {
		if !chk.ok {
			return apperrors.New(apperrors.ConfigInvalid, chk.msg)
		}
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		return result
	}
	return def
}
