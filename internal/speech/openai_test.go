package speech

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

func TestOpenAITranscribe(t *testing.T) {
	wav := testWAV(16000, 32)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "en", r.FormValue("language"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "phrase.wav", hdr.Filename)
		got, _ := io.ReadAll(f)
		assert.Equal(t, wav, got)

		_, _ = w.Write([]byte(`{"text":"turn the lights off"}`))
	}))
	defer srv.Close()

	o := NewOpenAI(srv.URL, "sk-test", "whisper-1", "en-US", WithRetry(fastRetry))
	text, err := o.Transcribe(context.Background(), wav)

	require.NoError(t, err)
	assert.Equal(t, "turn the lights off", text)
}

func TestOpenAIEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"   "}`))
	}))
	defer srv.Close()

	o := NewOpenAI(srv.URL, "sk-test", "whisper-1", "", WithRetry(fastRetry))
	_, err := o.Transcribe(context.Background(), testWAV(16000, 4))

	assert.True(t, apperrors.IsCode(err, apperrors.AudioUnrecognized))
}

func TestOpenAIBadRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid file format."}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	o := NewOpenAI(srv.URL, "sk-test", "whisper-1", "en", WithRetry(fastRetry))
	_, err := o.Transcribe(context.Background(), []byte("junk"))

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.InvalidArgument))
}
