package stt

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listenClient "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
	"github.com/rs/zerolog"

	"github.com/lexiqai/meeting-analyzer/internal/config"
)

// DeepgramClient implements Transcriber using Deepgram's prerecorded API.
// It holds no per-request state and is shared by all requests.
type DeepgramClient struct {
	model    string
	language string
	dg       *api.Client
}

// NewDeepgramClient creates a Deepgram client, or returns nil when no API key is configured
func NewDeepgramClient(cfg *config.Config) *DeepgramClient {
	if !cfg.STTEnabled() {
		return nil
	}

	rest := listenClient.NewREST(cfg.DeepgramAPIKey, &interfaces.ClientOptions{})

	return &DeepgramClient{
		model:    cfg.DeepgramModel,
		language: cfg.DeepgramLanguage,
		dg:       api.New(rest),
	}
}

// Transcribe sends the whole recording to Deepgram and joins the best
// alternative of every channel
func (d *DeepgramClient) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	options := &interfaces.PreRecordedTranscriptionOptions{
		Model:       d.model,
		Language:    d.language,
		Punctuate:   true,
		SmartFormat: true,
	}

	zerolog.Ctx(ctx).Debug().
		Int("bytes", len(audio)).
		Str("mime_type", mimeType).
		Str("model", d.model).
		Msg("Sending recording to Deepgram")

	if header := contentTypeHeader(mimeType); header != nil {
		ctx = interfaces.WithCustomHeaders(ctx, header)
	}

	res, err := d.dg.FromStream(ctx, bytes.NewReader(audio), options)
	if err != nil {
		return "", fmt.Errorf("deepgram transcription failed: %w", err)
	}
	if res == nil || res.Results == nil {
		return "", fmt.Errorf("deepgram returned no results")
	}

	var parts []string
	for _, channel := range res.Results.Channels {
		if len(channel.Alternatives) == 0 {
			continue
		}
		if text := strings.TrimSpace(channel.Alternatives[0].Transcript); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n"), nil
}

// contentTypeHeader tells Deepgram the container of the upload. Unrecognized
// uploads send no header and are left to Deepgram's own detection.
func contentTypeHeader(mimeType string) http.Header {
	if mimeType == "" || mimeType == "application/octet-stream" {
		return nil
	}
	return http.Header{"Content-Type": {mimeType}}
}
