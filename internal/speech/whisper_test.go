package speech

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

// fakeWhisper writes a script that mimics whisper-cli's -otxt output.
func fakeWhisper(t *testing.T, transcript string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	script := `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    -of) out="$2"; shift ;;
  esac
  shift
done
printf '%s' "` + transcript + `" > "$out.txt"
`
	path := filepath.Join(t.TempDir(), "whisper-cli")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func fakeModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ggml-base.bin")
	require.NoError(t, os.WriteFile(path, []byte("model"), 0o644))
	return path
}

func TestWhisperLocalTranscribe(t *testing.T) {
	w, err := NewWhisperLocal(fakeWhisper(t, " open the window \n"), fakeModel(t), 2, "en-GB")
	require.NoError(t, err)
	assert.Equal(t, "en", w.language)

	text, err := w.Transcribe(context.Background(), testWAV(16000, 16))
	require.NoError(t, err)
	assert.Equal(t, "open the window", text)
}

func TestWhisperLocalSilence(t *testing.T) {
	w, err := NewWhisperLocal(fakeWhisper(t, ""), fakeModel(t), 2, "en")
	require.NoError(t, err)

	_, err = w.Transcribe(context.Background(), testWAV(16000, 16))
	assert.True(t, apperrors.IsCode(err, apperrors.AudioUnrecognized))
}

func TestWhisperLocalMissingModel(t *testing.T) {
	w, err := NewWhisperLocal("/bin/true", "/nonexistent/model.bin", 0, "en")
	require.NoError(t, err)
	assert.Equal(t, 4, w.threads)

	_, err = w.Transcribe(context.Background(), nil)
	assert.True(t, apperrors.IsCode(err, apperrors.SpeechNotConfigured))
}

func TestWhisperLocalBinaryFails(t *testing.T) {
	w, err := NewWhisperLocal(filepath.Join(t.TempDir(), "missing-binary"), fakeModel(t), 1, "en")
	require.NoError(t, err)

	_, err = w.Transcribe(context.Background(), testWAV(16000, 4))
	assert.True(t, apperrors.IsCode(err, apperrors.SpeechAPIError))
}
