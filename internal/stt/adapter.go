package stt

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexiqai/meeting-analyzer/internal/audio"
	"github.com/lexiqai/meeting-analyzer/internal/meeting"
	"github.com/lexiqai/meeting-analyzer/internal/observability"
	"github.com/lexiqai/meeting-analyzer/internal/resilience"
)

const (
	msgTranscribed      = "The recording was transcribed successfully."
	msgEmptyTranscript  = "No text could be extracted from the recording, or it contained no speech."
	msgTranscribeFailed = "Transcription failed."
)

// Adapter runs the STT collaborator for one upload and reports the outcome
// as a StageResult. The transcriber is injected and may be nil when STT is
// not configured.
type Adapter struct {
	transcriber Transcriber
	breaker     *resilience.CircuitBreaker
}

// NewAdapter wraps transcriber. breaker may be nil.
func NewAdapter(transcriber Transcriber, breaker *resilience.CircuitBreaker) *Adapter {
	return &Adapter{
		transcriber: transcriber,
		breaker:     breaker,
	}
}

// Available reports whether a transcription request would be attempted
func (a *Adapter) Available() bool {
	if a == nil || a.transcriber == nil {
		return false
	}
	return a.breaker == nil || a.breaker.Available()
}

// HealthCheck reports STT readiness for the /ready endpoint
func (a *Adapter) HealthCheck(ctx context.Context) (bool, error) {
	if a == nil || a.transcriber == nil {
		return false, fmt.Errorf("no STT provider configured")
	}
	if !a.Available() {
		return false, resilience.ErrCircuitOpen
	}
	return true, nil
}

// Transcribe converts upload to a Transcript.
//
// A missing upload is ErrNoAudioSource and an unusable collaborator is
// ErrServiceUnavailable. A failed STT call is not an error: it comes back as a
// failed StageResult so the caller can still answer with a report.
func (a *Adapter) Transcribe(ctx context.Context, upload *audio.Upload) (meeting.StageResult[meeting.Transcript], error) {
	var empty meeting.StageResult[meeting.Transcript]

	if upload.Size() == 0 {
		return empty, fmt.Errorf("%w: no recording was uploaded", meeting.ErrNoAudioSource)
	}
	if a == nil || a.transcriber == nil {
		return empty, fmt.Errorf("%w: speech-to-text is not configured", meeting.ErrServiceUnavailable)
	}

	logger := observability.Logger(ctx)
	timer := observability.StartStage("stt")
	observability.RecordAudioBytes(upload.Size())

	var text string
	call := func() error {
		var err error
		text, err = a.transcriber.Transcribe(ctx, upload.Data, upload.MimeType)
		return err
	}

	var err error
	if a.breaker != nil {
		err = a.breaker.Execute(call)
		observability.UpdateCircuitBreakerState(a.breaker.Name(), int(a.breaker.GetState()))
	} else {
		err = call()
	}

	if errors.Is(err, resilience.ErrCircuitOpen) {
		timer.Done("unavailable")
		return empty, fmt.Errorf("%w: speech-to-text is temporarily disabled after repeated failures",
			meeting.ErrServiceUnavailable)
	}
	if err != nil {
		if a.breaker != nil {
			observability.IncrementCircuitBreakerFailures(a.breaker.Name())
		}
		timer.Done(string(meeting.StageFailure))
		logger.Error().Err(err).Str("filename", upload.Filename).Msg("Transcription failed")
		return meeting.Failed(meeting.NewTranscript(""), err.Error(), msgTranscribeFailed), nil
	}

	transcript := meeting.NewTranscript(text)
	timer.Done(string(meeting.StageSuccess))

	if transcript.IsEmpty {
		logger.Warn().Str("filename", upload.Filename).Msg("Transcription produced no text")
		return meeting.Succeeded(meeting.Transcript{Text: "", IsEmpty: true}, msgEmptyTranscript), nil
	}

	logger.Info().
		Str("filename", upload.Filename).
		Int("chars", len(transcript.Text)).
		Msg("Transcription complete")
	return meeting.Succeeded(transcript, msgTranscribed), nil
}
