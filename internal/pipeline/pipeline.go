package pipeline

import (
	"context"

	"github.com/lexiqai/meeting-analyzer/internal/analysis"
	"github.com/lexiqai/meeting-analyzer/internal/audio"
	"github.com/lexiqai/meeting-analyzer/internal/meeting"
	"github.com/lexiqai/meeting-analyzer/internal/observability"
	"github.com/lexiqai/meeting-analyzer/internal/stt"
)

// Pipeline sequences one analysis request: metadata, transcription, the
// three analysis stages, then aggregation.
type Pipeline struct {
	transcriber *stt.Adapter
	runner      *analysis.Runner
}

// New creates a Pipeline
func New(transcriber *stt.Adapter, runner *analysis.Runner) *Pipeline {
	return &Pipeline{
		transcriber: transcriber,
		runner:      runner,
	}
}

// Analyze runs the whole pipeline.
//
// It returns an error only when no report can be formed: malformed metadata
// (ErrMalformedInput, ErrSchemaViolation), a missing recording
// (ErrNoAudioSource) or an unusable STT provider (ErrServiceUnavailable).
// Every other failure is reported inside the Report.
func (p *Pipeline) Analyze(ctx context.Context, rawMetadata string, upload *audio.Upload) (meeting.Report, error) {
	logger := observability.Logger(ctx)

	meta, err := meeting.ParseMetadata(rawMetadata)
	if err != nil {
		return meeting.Report{}, err
	}
	logger.Info().
		Str("subject", meta.Subject).
		Int("attendees", len(meta.Attendees)).
		Int("audio_bytes", upload.Size()).
		Msg("Analysis request accepted")

	transcript, err := p.transcriber.Transcribe(ctx, upload)
	if err != nil {
		return meeting.Report{}, err
	}

	var results analysis.Results
	if !transcript.OK() || transcript.Payload.IsEmpty {
		logger.Info().Str("stt_status", string(transcript.Status)).Msg("No transcript to analyze, skipping analysis stages")
		results = analysis.Skipped()
	} else {
		results = p.runner.RunAll(ctx, transcript.Payload.Text, meta)
	}

	report := meeting.Aggregate(meta, transcript, results.Summary, results.ActionItems, results.Relevance)

	if failed := report.Failures(); len(failed) > 0 {
		logger.Warn().Strs("failed_stages", failed).Msg("Analysis finished with failed stages")
	} else {
		logger.Info().Msg("Analysis finished")
	}
	return report, nil
}
