package speech

import (
	"context"
	"strings"

	gspeech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

// Google implements Transcriber using the Cloud Speech-to-Text v1 gRPC API.
type Google struct {
	client   *gspeech.Client
	language string
	remote   remote
}

// NewGoogle dials Cloud Speech-to-Text. An empty endpoint uses the client
// library default.
func NewGoogle(ctx context.Context, endpoint, apiKey, language string, opts ...Option) (*Google, error) {
	r := newRemote("google", opts)
	clientOpts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(endpoint))
	}
	clientOpts = append(clientOpts, r.clientOpts...)

	client, err := gspeech.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.SpeechNotConfigured, "create google speech client")
	}
	return &Google{client: client, language: language, remote: r}, nil
}

// Name implements Transcriber.
func (g *Google) Name() string { return "google" }

// Close releases the underlying connection.
func (g *Google) Close() error { return g.client.Close() }

// Transcribe implements Transcriber.
func (g *Google) Transcribe(ctx context.Context, wav []byte) (string, error) {
	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(wavSampleRate(wav)),
			LanguageCode:    g.language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: wav},
		},
	}
	return g.remote.call(ctx, func(ctx context.Context) (string, error) {
		resp, err := g.client.Recognize(ctx, req, noLibraryRetry)
		if err != nil {
			return "", apperrors.FromGRPCStatus(err, apperrors.SpeechAPIError).
				WithMetadata("backend", "google")
		}
		return recognized(joinAlternatives(resp))
	})
}

// noLibraryRetry leaves retries to the breaker-guarded policy in remote.
var noLibraryRetry = gax.WithRetry(func() gax.Retryer { return nil })

// joinAlternatives concatenates the top alternative of every result.
func joinAlternatives(resp *speechpb.RecognizeResponse) string {
	parts := make([]string, 0, len(resp.GetResults()))
	for _, res := range resp.GetResults() {
		alts := res.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if t := strings.TrimSpace(alts[0].GetTranscript()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
