package meeting

// Report is the aggregate result of analyzing one meeting. It is built once
// by Aggregate and only read afterwards.
type Report struct {
	MeetingInfo Metadata                            `json:"meeting_info"`
	STT         StageResult[Transcript]             `json:"stt_result"`
	Summary     StageResult[[]string]               `json:"summary_result"`
	ActionItems StageResult[[]ActionItemByAssignee] `json:"action_items_result"`
	Feedback    StageResult[Relevance]              `json:"feedback_result"`
}

// Aggregate merges stage outcomes into a Report. It cannot fail.
func Aggregate(
	meta Metadata,
	transcript StageResult[Transcript],
	summary StageResult[[]string],
	tasks StageResult[[]ActionItemByAssignee],
	relevance StageResult[Relevance],
) Report {
	if summary.Payload == nil {
		summary.Payload = []string{}
	}
	if tasks.Payload == nil {
		tasks.Payload = []ActionItemByAssignee{}
	}
	if relevance.Payload.RepresentativeUnnecessary == nil {
		relevance.Payload.RepresentativeUnnecessary = []UnnecessarySentence{}
	}
	if meta.Attendees == nil {
		meta.Attendees = []Attendee{}
	}

	return Report{
		MeetingInfo: meta,
		STT:         transcript,
		Summary:     summary,
		ActionItems: tasks,
		Feedback:    relevance,
	}
}

// Failures lists the names of stages that did not succeed
func (r Report) Failures() []string {
	var failed []string
	if !r.STT.OK() {
		failed = append(failed, "stt")
	}
	if !r.Summary.OK() {
		failed = append(failed, "summary")
	}
	if !r.ActionItems.OK() {
		failed = append(failed, "action_items")
	}
	if !r.Feedback.OK() {
		failed = append(failed, "relevance")
	}
	return failed
}
