package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestAppErrorString(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(cause, SpeechAPIError, "transcription failed").WithMetadata("backend", "google")

	assert.Contains(t, err.Error(), "[SPEECH_API_ERROR] transcription failed")
	assert.Contains(t, err.Error(), "backend:google")
	assert.Contains(t, err.Error(), "caused by: boom")
	assert.ErrorIs(t, err, cause)
}

func TestIsCodeThroughWrapping(t *testing.T) {
	inner := New(AudioWaitTimeout, "no speech")
	wrapped := fmt.Errorf("listen: %w", inner)

	assert.True(t, IsCode(wrapped, AudioWaitTimeout))
	assert.False(t, IsCode(wrapped, AudioUnrecognized))
	assert.Equal(t, AudioWaitTimeout, CodeOf(wrapped))
	assert.Equal(t, Unknown, CodeOf(stderrors.New("plain")))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{Unavailable, true},
		{Timeout, true},
		{RateLimited, true},
		{InvalidArgument, false},
		{ConfigInvalid, false},
		{SummarizerAPIError, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(New(tt.code, "x")))
		})
	}
	assert.False(t, IsRetryable(stderrors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestFromHTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Code
	}{
		{http.StatusTooManyRequests, RateLimited},
		{http.StatusServiceUnavailable, Unavailable},
		{http.StatusUnauthorized, ConfigInvalid},
		{http.StatusBadRequest, InvalidArgument},
		{http.StatusTeapot, SummarizerAPIError},
		{599, Unavailable},
	}

	for _, tt := range tests {
		err := FromHTTPStatus(tt.status, SummarizerAPIError, "body")
		require.NotNil(t, err)
		assert.Equal(t, tt.want, err.Code, "status %d", tt.status)
		assert.Equal(t, fmt.Sprint(tt.status), err.Metadata["status"])
	}
}

func TestFromGRPCStatus(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		want      Code
		retryable bool
	}{
		{"unavailable", status.Error(codes.Unavailable, "backend down"), Unavailable, true},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), Timeout, true},
		{"quota", status.Error(codes.ResourceExhausted, "quota exceeded"), RateLimited, true},
		{"bad key", status.Error(codes.PermissionDenied, "API key not valid"), ConfigInvalid, false},
		{"bad audio", status.Error(codes.InvalidArgument, "sample rate mismatch"), InvalidArgument, false},
		{"unmapped", status.Error(codes.FailedPrecondition, "nope"), SpeechAPIError, false},
		{"plain", stderrors.New("socket closed"), SpeechAPIError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromGRPCStatus(tt.err, SpeechAPIError)
			assert.Equal(t, tt.want, err.Code)
			assert.Equal(t, tt.retryable, IsRetryable(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestFromGRPCStatusKeepsAppError(t *testing.T) {
	orig := New(AudioUnrecognized, "silence")
	assert.Same(t, orig, FromGRPCStatus(orig, SpeechAPIError))
}
