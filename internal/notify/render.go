package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/lexiqai/meeting-analyzer/internal/meeting"
)

//go:embed templates/analysis_report.html
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("analysis_report.html").
		Funcs(template.FuncMap{
			"join":    strings.Join,
			"percent": formatPercent,
		}).
		ParseFS(templateFS, "templates/analysis_report.html"),
)

// reportView is the flattened report handed to the email template
type reportView struct {
	Subject  string
	Date     string
	Location string

	Attendees []string

	Summary        []string
	SummaryMessage string

	ActionItems        []meeting.ActionItemByAssignee
	ActionItemsMessage string

	RelevanceOK      bool
	NecessaryRatio   float64
	UnnecessaryRatio float64
	Unnecessary      []meeting.UnnecessarySentence
	RelevanceMessage string

	Transcript string
}

func newReportView(report meeting.Report) reportView {
	info := report.MeetingInfo
	subject := info.Subject
	if strings.TrimSpace(subject) == "" {
		subject = "Untitled meeting"
	}

	view := reportView{
		Subject:            subject,
		Date:               info.Date,
		Location:           info.Location,
		Attendees:          info.AttendeeNames(),
		Summary:            report.Summary.Payload,
		SummaryMessage:     report.Summary.Message,
		ActionItems:        report.ActionItems.Payload,
		ActionItemsMessage: report.ActionItems.Message,
		RelevanceOK:        report.Feedback.OK(),
		NecessaryRatio:     report.Feedback.Payload.NecessaryRatio,
		UnnecessaryRatio:   report.Feedback.Payload.UnnecessaryRatio,
		Unnecessary:        report.Feedback.Payload.RepresentativeUnnecessary,
		RelevanceMessage:   report.Feedback.Message,
	}
	if report.STT.OK() && !report.STT.Payload.IsEmpty {
		view.Transcript = report.STT.Payload.Text
	}
	return view
}

// RenderHTML renders the HTML body of a report email
func RenderHTML(report meeting.Report) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, newReportView(report)); err != nil {
		return "", fmt.Errorf("render report template: %w", err)
	}
	return buf.String(), nil
}

// RenderText renders the plain-text alternative of a report email
func RenderText(report meeting.Report) string {
	view := newReportView(report)
	var b strings.Builder

	fmt.Fprintf(&b, "Meeting analysis: %s\n", view.Subject)
	if view.Date != "" {
		fmt.Fprintf(&b, "Date: %s\n", view.Date)
	}
	if view.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", view.Location)
	}
	if len(view.Attendees) > 0 {
		fmt.Fprintf(&b, "Attendees: %s\n", strings.Join(view.Attendees, ", "))
	}

	b.WriteString("\nSummary\n")
	if len(view.Summary) == 0 {
		fmt.Fprintf(&b, "  %s\n", view.SummaryMessage)
	}
	for _, point := range view.Summary {
		fmt.Fprintf(&b, "  - %s\n", point)
	}

	b.WriteString("\nAction items\n")
	if len(view.ActionItems) == 0 {
		fmt.Fprintf(&b, "  %s\n", view.ActionItemsMessage)
	}
	for _, item := range view.ActionItems {
		fmt.Fprintf(&b, "  %s\n", item.Name)
		for _, task := range item.Tasks {
			fmt.Fprintf(&b, "    - %s\n", task)
		}
	}

	b.WriteString("\nDiscussion relevance\n")
	if !view.RelevanceOK {
		fmt.Fprintf(&b, "  %s\n", view.RelevanceMessage)
	} else {
		fmt.Fprintf(&b, "  On topic: %s, off topic: %s\n",
			formatPercent(view.NecessaryRatio), formatPercent(view.UnnecessaryRatio))
		for _, s := range view.Unnecessary {
			if s.Reason != "" {
				fmt.Fprintf(&b, "  - %q (%s)\n", s.Sentence, s.Reason)
			} else {
				fmt.Fprintf(&b, "  - %q\n", s.Sentence)
			}
		}
	}

	return b.String()
}

func formatPercent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*100)
}
