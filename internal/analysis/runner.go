package analysis

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lexiqai/meeting-analyzer/internal/llm"
	"github.com/lexiqai/meeting-analyzer/internal/meeting"
	"github.com/lexiqai/meeting-analyzer/internal/observability"
)

// Stage names used in logs and metrics
const (
	StageSummary     = "summary"
	StageActionItems = "action_items"
	StageRelevance   = "relevance"
)

const (
	msgSummarized     = "The meeting was summarized successfully."
	msgSummaryEmpty   = "The model reply contained no usable summary points."
	msgSummaryFailed  = "Summary generation failed."
	msgAssigned       = "Action items were extracted and assigned successfully."
	msgNoActionItems  = "No action items were found."
	msgAssignFailed   = "Action item extraction failed."
	msgScored         = "Sentence relevance was scored successfully."
	msgScoreFailed    = "Relevance scoring failed."
	msgNoSummaryInput = "No transcript is available, so no summary was generated."
	msgNoTasksInput   = "No transcript is available, so no action items were extracted."
	msgNoScoreInput   = "No transcript is available, so relevance was not scored."
)

// Results holds the outcome of the three analysis stages
type Results struct {
	Summary     meeting.StageResult[[]string]
	ActionItems meeting.StageResult[[]meeting.ActionItemByAssignee]
	Relevance   meeting.StageResult[meeting.Relevance]
}

// Runner runs the LLM-backed analysis stages against a transcript
type Runner struct {
	client  llm.Client
	model   string
	timeout time.Duration
}

// NewRunner creates a Runner. A zero timeout leaves stages bounded only by ctx.
func NewRunner(client llm.Client, model string, timeout time.Duration) *Runner {
	return &Runner{
		client:  client,
		model:   model,
		timeout: timeout,
	}
}

// Skipped synthesizes successful empty results for every stage, used when
// there is no transcript to analyze. The LLM is not called.
func Skipped() Results {
	observability.RecordStageSkipped(StageSummary)
	observability.RecordStageSkipped(StageActionItems)
	observability.RecordStageSkipped(StageRelevance)

	return Results{
		Summary:     meeting.Succeeded([]string{}, msgNoSummaryInput),
		ActionItems: meeting.Succeeded([]meeting.ActionItemByAssignee{}, msgNoTasksInput),
		Relevance:   meeting.Succeeded(meeting.EmptyRelevance(), msgNoScoreInput),
	}
}

// RunAll runs the three stages concurrently and waits for all of them.
// A failing stage never affects the other two.
func (r *Runner) RunAll(ctx context.Context, transcript string, meta meeting.Metadata) Results {
	var res Results
	var g errgroup.Group

	g.Go(func() error {
		guard(ctx, StageSummary, &res.Summary, []string{}, msgSummaryFailed, func() meeting.StageResult[[]string] {
			return r.Summarize(ctx, transcript, meta.Subject)
		})
		return nil
	})
	g.Go(func() error {
		guard(ctx, StageActionItems, &res.ActionItems, []meeting.ActionItemByAssignee{}, msgAssignFailed,
			func() meeting.StageResult[[]meeting.ActionItemByAssignee] {
				return r.AssignActionItems(ctx, transcript, meta.Subject, meta.Attendees)
			})
		return nil
	})
	g.Go(func() error {
		guard(ctx, StageRelevance, &res.Relevance, meeting.EmptyRelevance(), msgScoreFailed,
			func() meeting.StageResult[meeting.Relevance] {
				return r.ScoreRelevance(ctx, transcript, meta.Subject, meta.Attendees)
			})
		return nil
	})

	_ = g.Wait()
	return res
}

// guard stores the result of fn in out, or a failure if fn panics
func guard[T any](ctx context.Context, stage string, out *meeting.StageResult[T], empty T, message string, fn func() meeting.StageResult[T]) {
	defer func() {
		if p := recover(); p != nil {
			reason := fmt.Sprintf("%s stage panicked: %v", stage, p)
			observability.Logger(ctx).Error().Str("stage", stage).Msg(reason)
			*out = meeting.Failed(empty, reason, message)
		}
	}()
	*out = fn()
}

// Summarize produces at most MaxSummaryPoints summary sentences
func (r *Runner) Summarize(ctx context.Context, transcript, subject string) meeting.StageResult[[]string] {
	reply, err := r.complete(ctx, StageSummary, llm.Request{
		Model:       r.model,
		System:      summarySystem,
		Prompt:      buildSummaryPrompt(transcript, subject),
		Temperature: 0.3,
	})
	if err != nil {
		return meeting.Failed([]string{}, err.Error(), msgSummaryFailed)
	}

	points := ParseSummary(reply)
	if len(points) == 0 {
		observability.Logger(ctx).Warn().Str("stage", StageSummary).Msg("Model reply had no summary points")
		return meeting.Succeeded(points, msgSummaryEmpty)
	}
	return meeting.Succeeded(points, msgSummarized)
}

// AssignActionItems extracts action items and assigns them to attendees
func (r *Runner) AssignActionItems(ctx context.Context, transcript, subject string, attendees []meeting.Attendee) meeting.StageResult[[]meeting.ActionItemByAssignee] {
	empty := []meeting.ActionItemByAssignee{}

	reply, err := r.complete(ctx, StageActionItems, llm.Request{
		Model:       r.model,
		System:      actionItemsSystem,
		Prompt:      buildActionItemsPrompt(transcript, subject, attendees),
		Temperature: 0.2,
		JSON:        true,
	})
	if err != nil {
		return meeting.Failed(empty, err.Error(), msgAssignFailed)
	}

	tasks, err := ParseActionItems(reply, attendees)
	if err != nil {
		observability.Logger(ctx).Error().Err(err).Str("stage", StageActionItems).Msg("Could not parse model reply")
		return meeting.Failed(empty, err.Error(), msgAssignFailed)
	}
	if len(tasks) == 0 {
		return meeting.Succeeded(tasks, msgNoActionItems)
	}
	return meeting.Succeeded(tasks, msgAssigned)
}

// ScoreRelevance scores how much of the discussion was on topic
func (r *Runner) ScoreRelevance(ctx context.Context, transcript, subject string, attendees []meeting.Attendee) meeting.StageResult[meeting.Relevance] {
	reply, err := r.complete(ctx, StageRelevance, llm.Request{
		Model:       r.model,
		System:      relevanceSystem,
		Prompt:      buildRelevancePrompt(transcript, subject, attendees),
		Temperature: 0.2,
		JSON:        true,
	})
	if err != nil {
		return meeting.Failed(meeting.EmptyRelevance(), err.Error(), msgScoreFailed)
	}

	rel, err := ParseRelevance(reply)
	if err != nil {
		observability.Logger(ctx).Error().Err(err).Str("stage", StageRelevance).Msg("Could not parse model reply")
		return meeting.Failed(meeting.EmptyRelevance(), err.Error(), msgScoreFailed)
	}
	return meeting.Succeeded(rel, msgScored)
}

// complete calls the LLM for one stage, converting a panic into an error and
// recording stage metrics
func (r *Runner) complete(ctx context.Context, stage string, req llm.Request) (reply string, err error) {
	logger := observability.Logger(ctx)
	timer := observability.StartStage(stage)

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s stage panicked: %v", stage, p)
		}
		if err != nil {
			timer.Done(string(meeting.StageFailure))
			logger.Error().Err(err).Str("stage", stage).Msg("Analysis stage failed")
			return
		}
		timer.Done(string(meeting.StageSuccess))
		logger.Debug().Str("stage", stage).Int("reply_chars", len(reply)).Msg("Analysis stage completed")
	}()

	if r.client == nil {
		return "", fmt.Errorf("no language model configured")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	return r.client.Complete(ctx, req)
}
