package stt

import "context"

// Transcriber turns a complete recording into plain text
type Transcriber interface {
	// Transcribe returns the transcript of audio. mimeType describes the
	// container when known and may be "application/octet-stream".
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// TranscriberFunc adapts a function to the Transcriber interface
type TranscriberFunc func(ctx context.Context, audio []byte, mimeType string) (string, error)

// Transcribe calls f
func (f TranscriberFunc) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return f(ctx, audio, mimeType)
}
