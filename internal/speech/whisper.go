package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

// WhisperLocal implements Transcriber using a local whisper.cpp binary.
type WhisperLocal struct {
	binaryPath string
	modelPath  string
	threads    int
	language   string
}

// NewWhisperLocal creates a local transcriber.
func NewWhisperLocal(binaryPath, modelPath string, threads int, language string) (*WhisperLocal, error) {
	if binaryPath == "" {
		return nil, apperrors.New(apperrors.SpeechNotConfigured, "whisper binary path not configured")
	}
	if modelPath == "" {
		return nil, apperrors.New(apperrors.SpeechNotConfigured, "whisper model path not configured")
	}
	if threads <= 0 {
		threads = 4
	}
	return &WhisperLocal{
		binaryPath: binaryPath,
		modelPath:  modelPath,
		threads:    threads,
		language:   baseLanguage(language),
	}, nil
}

// Name returns the backend name.
func (w *WhisperLocal) Name() string { return "whisper.cpp" }

// Transcribe writes the phrase to a temp dir and runs whisper.cpp on it.
func (w *WhisperLocal) Transcribe(ctx context.Context, wav []byte) (string, error) {
	if _, err := os.Stat(w.modelPath); os.IsNotExist(err) {
		return "", apperrors.Newf(apperrors.SpeechNotConfigured, "whisper model not found at %s", w.modelPath)
	}

	dir, err := os.MkdirTemp("", "aiba-whisper-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	audioPath := filepath.Join(dir, "phrase.wav")
	if err := os.WriteFile(audioPath, wav, 0o600); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	outputBase := filepath.Join(dir, "transcription")
	args := []string{
		"-m", w.modelPath,
		"-f", audioPath,
		"-l", w.language,
		"-t", strconv.Itoa(w.threads),
		"-otxt",
		"-of", outputBase,
	}

	cmd := exec.CommandContext(ctx, w.binaryPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", apperrors.Wrapf(err, apperrors.SpeechAPIError, "whisper transcription failed: %s", output)
	}

	content, err := os.ReadFile(outputBase + ".txt")
	if err != nil {
		return "", fmt.Errorf("failed to read transcription file: %w", err)
	}
	return recognized(string(content))
}
