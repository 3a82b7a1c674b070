package speech

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
	"github.com/GriffinCanCode/aiba/internal/resilience"
)

var fastRetry = resilience.RetryConfig{
	MaxRetries: 2,
	BaseDelay:  time.Millisecond,
	MaxDelay:   time.Millisecond,
}

// fakeSpeech serves Recognize from a script of failures followed by resp.
type fakeSpeech struct {
	speechpb.UnimplementedSpeechServer

	mu       sync.Mutex
	failures []error
	resp     *speechpb.RecognizeResponse
	requests []*speechpb.RecognizeRequest
}

func (f *fakeSpeech) Recognize(_ context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}
	if f.resp == nil {
		return &speechpb.RecognizeResponse{}, nil
	}
	return f.resp, nil
}

func (f *fakeSpeech) calls() int {
	return len(f.recorded())
}

func (f *fakeSpeech) recorded() []*speechpb.RecognizeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*speechpb.RecognizeRequest(nil), f.requests...)
}

// newGoogleFake starts fake on an in-memory listener and returns a Google
// transcriber connected to it.
func newGoogleFake(t *testing.T, fake *fakeSpeech) *Google {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	speechpb.RegisterSpeechServer(srv, fake)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	g, err := NewGoogle(context.Background(), "", "gkey", "en-US",
		WithRetry(fastRetry),
		WithClientOptions(option.WithGRPCConn(conn)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func result(text string) *speechpb.SpeechRecognitionResult {
	return &speechpb.SpeechRecognitionResult{
		Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: text, Confidence: 0.9}},
	}
}

func TestGoogleTranscribe(t *testing.T) {
	wav := testWAV(16000, 160)
	fake := &fakeSpeech{resp: &speechpb.RecognizeResponse{
		Results: []*speechpb.SpeechRecognitionResult{result("I keep forgetting"), result(" where I parked ")},
	}}
	g := newGoogleFake(t, fake)

	text, err := g.Transcribe(context.Background(), wav)

	require.NoError(t, err)
	assert.Equal(t, "I keep forgetting where I parked", text)

	reqs := fake.recorded()
	require.Len(t, reqs, 1)
	cfg := reqs[0].GetConfig()
	assert.Equal(t, speechpb.RecognitionConfig_LINEAR16, cfg.GetEncoding())
	assert.Equal(t, int32(16000), cfg.GetSampleRateHertz())
	assert.Equal(t, "en-US", cfg.GetLanguageCode())
	assert.Equal(t, wav, reqs[0].GetAudio().GetContent())
}

func TestGoogleNoResults(t *testing.T) {
	g := newGoogleFake(t, &fakeSpeech{})

	_, err := g.Transcribe(context.Background(), testWAV(16000, 10))

	assert.ErrorIs(t, err, ErrUnrecognized)
}

func TestGoogleRetriesTransientStatus(t *testing.T) {
	tests := []struct {
		name string
		code codes.Code
	}{
		{"unavailable", codes.Unavailable},
		{"deadline exceeded", codes.DeadlineExceeded},
		{"resource exhausted", codes.ResourceExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSpeech{
				failures: []error{status.Error(tt.code, "try later"), status.Error(tt.code, "try later")},
				resp:     &speechpb.RecognizeResponse{Results: []*speechpb.SpeechRecognitionResult{result("third time")}},
			}
			g := newGoogleFake(t, fake)

			text, err := g.Transcribe(context.Background(), testWAV(16000, 10))

			require.NoError(t, err)
			assert.Equal(t, "third time", text)
			assert.Equal(t, 3, fake.calls())
		})
	}
}

func TestGoogleRejectedKeyNotRetried(t *testing.T) {
	fake := &fakeSpeech{failures: []error{status.Error(codes.PermissionDenied, "API key not valid")}}
	g := newGoogleFake(t, fake)

	_, err := g.Transcribe(context.Background(), testWAV(16000, 10))

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ConfigInvalid))
	assert.Equal(t, 1, fake.calls())
}
