package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lexiqai/meeting-analyzer/internal/meeting"
)

// ErrUnparseableReply means an LLM reply did not have the expected shape
var ErrUnparseableReply = errors.New("unparseable model reply")

// UnassignedName collects tasks the model returned without an owner
const UnassignedName = "Unassigned"

// listMarker matches one leading bullet glyph run or ordinal prefix,
// followed by whitespace or the end of the line
var listMarker = regexp.MustCompile(`^(?:[-*•·–—+]+|\d{1,3}[.)])(?:\s+|$)`)

// ParseSummary turns a free-text bullet list into at most MaxSummaryPoints
// sentences. It has no failure mode: a reply with no usable lines yields an
// empty list.
func ParseSummary(reply string) []string {
	points := make([]string, 0, MaxSummaryPoints)
	for _, line := range strings.Split(reply, "\n") {
		cleaned := strings.TrimSpace(line)
		cleaned = strings.TrimSpace(listMarker.ReplaceAllString(cleaned, ""))
		if cleaned == "" {
			continue
		}
		points = append(points, cleaned)
		if len(points) == MaxSummaryPoints {
			break
		}
	}
	return points
}

type rawAssignment struct {
	Name     string            `json:"name"`
	Assignee string            `json:"assignee"`
	Tasks    []json.RawMessage `json:"tasks"`
	Task     string            `json:"task"`
}

type rawAssignments struct {
	Assignments []rawAssignment `json:"assignments"`
	ActionItems []rawAssignment `json:"action_items"`
	Tasks       []rawAssignment `json:"tasks"`
}

// ParseActionItems reads the model's JSON assignment list. Names are matched
// to the roster case-insensitively; roster members come first in roster order,
// other names follow in reply order. Assignees without tasks are dropped.
func ParseActionItems(reply string, roster []meeting.Attendee) ([]meeting.ActionItemByAssignee, error) {
	candidates, err := jsonValues(reply, "{[")
	if err != nil {
		return nil, err
	}

	var entries []rawAssignment
	for _, payload := range candidates {
		if entries, err = decodeAssignments(payload); err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	canonical := make(map[string]string, len(roster))
	for _, a := range roster {
		canonical[strings.ToLower(a.Name)] = a.Name
	}

	// keyed by lowercased name; the first spelling seen is kept for owners
	// outside the roster
	byKey := make(map[string][]string)
	display := make(map[string]string)
	var extraOrder []string
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			name = strings.TrimSpace(e.Assignee)
		}
		if name == "" {
			name = UnassignedName
		}
		key := strings.ToLower(name)
		if rosterName, ok := canonical[key]; ok {
			display[key] = rosterName
		} else if _, seen := display[key]; !seen {
			display[key] = name
			extraOrder = append(extraOrder, key)
		}

		tasks := decodeTasks(e.Tasks)
		if t := strings.TrimSpace(e.Task); t != "" {
			tasks = append(tasks, t)
		}
		byKey[key] = append(byKey[key], tasks...)
	}

	result := make([]meeting.ActionItemByAssignee, 0, len(byKey))
	appendIfAny := func(key string) {
		if tasks := byKey[key]; len(tasks) > 0 {
			result = append(result, meeting.ActionItemByAssignee{Name: display[key], Tasks: tasks})
		}
	}
	for _, a := range roster {
		appendIfAny(strings.ToLower(a.Name))
	}
	for _, key := range extraOrder {
		appendIfAny(key)
	}
	return result, nil
}

func decodeAssignments(payload []byte) ([]rawAssignment, error) {
	if payload[0] == '[' {
		var entries []rawAssignment
		if err := json.Unmarshal(payload, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnparseableReply, err)
		}
		return entries, nil
	}

	var wrapped rawAssignments
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableReply, err)
	}
	switch {
	case wrapped.Assignments != nil:
		return wrapped.Assignments, nil
	case wrapped.ActionItems != nil:
		return wrapped.ActionItems, nil
	case wrapped.Tasks != nil:
		return wrapped.Tasks, nil
	}
	return nil, fmt.Errorf("%w: no assignments list in reply", ErrUnparseableReply)
}

// decodeTasks accepts tasks as plain strings or as objects with a description
func decodeTasks(raw []json.RawMessage) []string {
	tasks := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			var obj struct {
				Description string `json:"description"`
				Task        string `json:"task"`
				Title       string `json:"title"`
			}
			if err := json.Unmarshal(r, &obj); err != nil {
				continue
			}
			s = firstNonBlank(obj.Description, obj.Task, obj.Title)
		}
		if s = strings.TrimSpace(s); s != "" {
			tasks = append(tasks, s)
		}
	}
	return tasks
}

type rawRelevance struct {
	NecessaryRatio            *flexFloat        `json:"necessary_ratio"`
	UnnecessaryRatio          *flexFloat        `json:"unnecessary_ratio"`
	RepresentativeUnnecessary []json.RawMessage `json:"representative_unnecessary"`
}

// ParseRelevance reads the model's JSON relevance scoring. Missing ratios
// default to 0; percentages are scaled down and ratios are clamped to [0,1].
func ParseRelevance(reply string) (meeting.Relevance, error) {
	candidates, err := jsonValues(reply, "{")
	if err != nil {
		return meeting.EmptyRelevance(), err
	}
	payload := candidates[0]

	var raw rawRelevance
	if err := json.Unmarshal(payload, &raw); err != nil {
		return meeting.EmptyRelevance(), fmt.Errorf("%w: %v", ErrUnparseableReply, err)
	}

	rel := meeting.Relevance{
		NecessaryRatio:            normalizeRatio(raw.NecessaryRatio),
		UnnecessaryRatio:          normalizeRatio(raw.UnnecessaryRatio),
		RepresentativeUnnecessary: make([]meeting.UnnecessarySentence, 0, len(raw.RepresentativeUnnecessary)),
	}

	for _, item := range raw.RepresentativeUnnecessary {
		var sentence meeting.UnnecessarySentence
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			sentence.Sentence = s
		} else if err := json.Unmarshal(item, &sentence); err != nil {
			continue
		}
		sentence.Sentence = strings.TrimSpace(sentence.Sentence)
		sentence.Reason = strings.TrimSpace(sentence.Reason)
		if sentence.Sentence != "" {
			rel.RepresentativeUnnecessary = append(rel.RepresentativeUnnecessary, sentence)
		}
	}

	return rel, nil
}

// flexFloat accepts a JSON number or a numeric string such as "0.7" or "70%"
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("ratio must be a number, got %s", data)
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")), 64)
	if err != nil {
		return fmt.Errorf("ratio must be a number, got %q", s)
	}
	*f = flexFloat(n)
	return nil
}

func normalizeRatio(v *flexFloat) float64 {
	if v == nil {
		return 0
	}
	r := float64(*v)
	if r > 1 && r <= 100 {
		r /= 100
	}
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// jsonValues returns every complete JSON value in reply that starts with
// one of openers, in reply order. Surrounding prose and code fences are skipped.
func jsonValues(reply, openers string) ([][]byte, error) {
	s := strings.TrimSpace(reply)
	if s == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrUnparseableReply)
	}

	var values [][]byte
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(openers, s[i]) < 0 {
			continue
		}
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(s[i:])).Decode(&raw); err != nil {
			continue
		}
		values = append(values, bytes.TrimSpace(raw))
		// skip past the value so nested objects are not returned separately
		i += len(raw) - 1
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no JSON value in reply", ErrUnparseableReply)
	}
	return values, nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
