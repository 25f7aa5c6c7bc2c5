package meeting

import "strings"

// Attendee is one meeting participant. Name is required for task assignment.
type Attendee struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Metadata describes the meeting a recording belongs to
type Metadata struct {
	Subject   string     `json:"subj"`
	Date      string     `json:"dt,omitempty"`
	Location  string     `json:"loc,omitempty"`
	Attendees []Attendee `json:"info_n"`
}

// AttendeeNames returns attendee names in roster order
func (m Metadata) AttendeeNames() []string {
	names := make([]string, 0, len(m.Attendees))
	for _, a := range m.Attendees {
		names = append(names, a.Name)
	}
	return names
}

// Transcript is the plain text recovered from the uploaded audio
type Transcript struct {
	Text    string `json:"rc_txt"`
	IsEmpty bool   `json:"is_empty"`
}

// NewTranscript builds a Transcript, flagging whitespace-only text as empty
func NewTranscript(text string) Transcript {
	return Transcript{
		Text:    text,
		IsEmpty: strings.TrimSpace(text) == "",
	}
}

// ActionItemByAssignee groups the tasks handed to one attendee
type ActionItemByAssignee struct {
	Name  string   `json:"name"`
	Tasks []string `json:"tasks"`
}

// UnnecessarySentence is a transcript sentence judged off-topic
type UnnecessarySentence struct {
	Sentence string `json:"sentence"`
	Reason   string `json:"reason,omitempty"`
}

// Relevance is the sentence-level relevance scoring of a meeting
type Relevance struct {
	NecessaryRatio            float64               `json:"necessary_ratio"`
	UnnecessaryRatio          float64               `json:"unnecessary_ratio"`
	RepresentativeUnnecessary []UnnecessarySentence `json:"representative_unnecessary"`
}

// EmptyRelevance is the zero scoring used when there is nothing to score
func EmptyRelevance() Relevance {
	return Relevance{RepresentativeUnnecessary: []UnnecessarySentence{}}
}
