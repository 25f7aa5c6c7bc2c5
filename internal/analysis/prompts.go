package analysis

import (
	"fmt"
	"strings"

	"github.com/lexiqai/meeting-analyzer/internal/meeting"
)

// MaxSummaryPoints caps the number of summary bullets
const MaxSummaryPoints = 5

const summarySystem = `You analyze meeting transcripts and summarize the key points as bullet points. Every bullet is one clear, concise, complete sentence.`

const summaryPrompt = `Summarize the core content of the meeting transcript below in at most %d bullet points.
Write each bullet as a complete, clear and concise sentence, one bullet per line.
%s

[Transcript]
%s

[Summary (bullet list)]`

const actionItemsSystem = `You extract action items from meeting transcripts and assign each one to the attendee responsible for it. You reply with JSON only.`

const actionItemsPrompt = `Extract the action items agreed in the meeting transcript below and assign each one to exactly one attendee.
%s
Attendees: %s

Only use attendee names from the list. Skip items nobody owns.
Reply with JSON in exactly this shape:
{"assignments": [{"name": "<attendee name>", "tasks": ["<task description>", ...]}]}

[Transcript]
%s`

const relevanceSystem = `You evaluate how focused a meeting was on its subject. You reply with JSON only.`

const relevancePrompt = `Classify each sentence of the meeting transcript below as necessary (relevant to the meeting subject) or unnecessary (off-topic).
%s
Attendees: %s

Reply with JSON in exactly this shape:
{"necessary_ratio": <0..1>, "unnecessary_ratio": <0..1>, "representative_unnecessary": [{"sentence": "<verbatim sentence>", "reason": "<why it is off-topic>"}]}
List at most 5 representative unnecessary sentences, most off-topic first.

[Transcript]
%s`

func topicLine(subject string) string {
	if strings.TrimSpace(subject) == "" {
		return "No meeting subject was provided."
	}
	return fmt.Sprintf("The meeting subject is %q.", subject)
}

func rosterLine(attendees []meeting.Attendee) string {
	if len(attendees) == 0 {
		return "(none provided)"
	}
	names := make([]string, 0, len(attendees))
	for _, a := range attendees {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func buildSummaryPrompt(transcript, subject string) string {
	return fmt.Sprintf(summaryPrompt, MaxSummaryPoints, topicLine(subject), transcript)
}

func buildActionItemsPrompt(transcript, subject string, attendees []meeting.Attendee) string {
	return fmt.Sprintf(actionItemsPrompt, topicLine(subject), rosterLine(attendees), transcript)
}

func buildRelevancePrompt(transcript, subject string, attendees []meeting.Attendee) string {
	return fmt.Sprintf(relevancePrompt, topicLine(subject), rosterLine(attendees), transcript)
}
