package analysis

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lexiqai/meeting-analyzer/internal/meeting"
)

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{
			name:  "mixed markers capped at five",
			reply: "1. Alpha\n\n- Beta\n* Gamma\n4. Delta\n5. Epsilon\n6. Zeta",
			want:  []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"},
		},
		{
			name:  "unicode bullets and parens",
			reply: "• One\n· Two\n– Three\n2) Four",
			want:  []string{"One", "Two", "Three", "Four"},
		},
		{
			name:  "crlf and indentation",
			reply: "  - First point\r\n\t- Second point\r\n",
			want:  []string{"First point", "Second point"},
		},
		{
			name:  "plain lines",
			reply: "Budget approved.\nLaunch moved to May.",
			want:  []string{"Budget approved.", "Launch moved to May."},
		},
		{
			name:  "leading number without punctuation is kept",
			reply: "5 people joined late.",
			want:  []string{"5 people joined late."},
		},
		{
			name:  "decimals and bold text are not markers",
			reply: "1.5 million users onboarded\n**Budget:** approved\n- **Risks:** none",
			want:  []string{"1.5 million users onboarded", "**Budget:** approved", "**Risks:** none"},
		},
		{
			name:  "markers only",
			reply: "-\n*\n1.\n   \n",
			want:  []string{},
		},
		{
			name:  "empty reply",
			reply: "",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSummary(tt.reply)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSummary(%q) = %q, want %q", tt.reply, got, tt.want)
			}
		})
	}
}

func TestParseActionItems(t *testing.T) {
	roster := []meeting.Attendee{{Name: "Alice"}, {Name: "Bob"}, {Name: "Carol"}}

	tests := []struct {
		name  string
		reply string
		want  []meeting.ActionItemByAssignee
	}{
		{
			name:  "wrapped object in roster order",
			reply: `{"assignments":[{"name":"Bob","tasks":["Book venue"]},{"name":"Alice","tasks":["Draft agenda","Send invites"]}]}`,
			want: []meeting.ActionItemByAssignee{
				{Name: "Alice", Tasks: []string{"Draft agenda", "Send invites"}},
				{Name: "Bob", Tasks: []string{"Book venue"}},
			},
		},
		{
			name:  "top-level array in code fence",
			reply: "Here you go:\n```json\n[{\"assignee\":\"carol\",\"task\":\"Update roadmap\"}]\n```",
			want: []meeting.ActionItemByAssignee{
				{Name: "Carol", Tasks: []string{"Update roadmap"}},
			},
		},
		{
			name:  "duplicates merged and blanks dropped",
			reply: `{"tasks":[{"name":"Bob","tasks":["A"," "]},{"name":"BOB","tasks":["B"]},{"name":"Carol","tasks":[]}]}`,
			want: []meeting.ActionItemByAssignee{
				{Name: "Bob", Tasks: []string{"A", "B"}},
			},
		},
		{
			name:  "object tasks and unknown assignees",
			reply: `{"action_items":[{"name":"Dave","tasks":[{"description":"Fix CI"}]},{"tasks":["Order pizza"]}]}`,
			want: []meeting.ActionItemByAssignee{
				{Name: "Dave", Tasks: []string{"Fix CI"}},
				{Name: UnassignedName, Tasks: []string{"Order pizza"}},
			},
		},
		{
			name:  "owners outside the roster merged regardless of case",
			reply: `{"assignments":[{"name":"zoe","tasks":["Book room"]},{"name":"Zoe","tasks":["Order food"]},{"name":"alice","tasks":["Agenda"]}]}`,
			want: []meeting.ActionItemByAssignee{
				{Name: "Alice", Tasks: []string{"Agenda"}},
				{Name: "zoe", Tasks: []string{"Book room", "Order food"}},
			},
		},
		{
			name:  "bracketed prose before the JSON",
			reply: `Assignments [see below]: {"assignments":[{"name":"Bob","tasks":["Ship it"]}]}`,
			want: []meeting.ActionItemByAssignee{
				{Name: "Bob", Tasks: []string{"Ship it"}},
			},
		},
		{
			name:  "empty list",
			reply: `{"assignments":[]}`,
			want:  []meeting.ActionItemByAssignee{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseActionItems(tt.reply, roster)
			if err != nil {
				t.Fatalf("ParseActionItems failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParseActionItems_Errors(t *testing.T) {
	for _, reply := range []string{
		"",
		"Alice should draft the agenda.",
		`{"assignments": [`,
		`{"summary": "no list here"}`,
		`{"assignments": "Alice"}`,
		`[1, 2, 3]`,
	} {
		if _, err := ParseActionItems(reply, nil); !errors.Is(err, ErrUnparseableReply) {
			t.Errorf("ParseActionItems(%q): expected ErrUnparseableReply, got %v", reply, err)
		}
	}
}

func TestParseRelevance(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  meeting.Relevance
	}{
		{
			name:  "full reply",
			reply: `{"necessary_ratio":0.75,"unnecessary_ratio":0.25,"representative_unnecessary":[{"sentence":"Did anyone watch the game?","reason":"sports chatter"}]}`,
			want: meeting.Relevance{
				NecessaryRatio:   0.75,
				UnnecessaryRatio: 0.25,
				RepresentativeUnnecessary: []meeting.UnnecessarySentence{
					{Sentence: "Did anyone watch the game?", Reason: "sports chatter"},
				},
			},
		},
		{
			name:  "missing ratios default to zero",
			reply: `{"representative_unnecessary":["Lunch plans?", "  "]}`,
			want: meeting.Relevance{
				RepresentativeUnnecessary: []meeting.UnnecessarySentence{{Sentence: "Lunch plans?"}},
			},
		},
		{
			name:  "percentages and out of range values",
			reply: "```json\n{\"necessary_ratio\": 80, \"unnecessary_ratio\": -0.2}\n```",
			want: meeting.Relevance{
				NecessaryRatio:            0.8,
				UnnecessaryRatio:          0,
				RepresentativeUnnecessary: []meeting.UnnecessarySentence{},
			},
		},
		{
			name:  "bracketed prose and string ratios",
			reply: `Scores [see below]: {"necessary_ratio": "0.7", "unnecessary_ratio": "30%"}`,
			want: meeting.Relevance{
				NecessaryRatio:            0.7,
				UnnecessaryRatio:          0.3,
				RepresentativeUnnecessary: []meeting.UnnecessarySentence{},
			},
		},
		{
			name:  "ratio above percent range clamps",
			reply: `{"necessary_ratio": 250}`,
			want: meeting.Relevance{
				NecessaryRatio:            1,
				RepresentativeUnnecessary: []meeting.UnnecessarySentence{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelevance(tt.reply)
			if err != nil {
				t.Fatalf("ParseRelevance failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParseRelevance_Errors(t *testing.T) {
	for _, reply := range []string{
		"",
		"Mostly on topic.",
		`["a", "b"]`,
		`{"necessary_ratio": "high"}`,
		`{"necessary_ratio": 0.5`,
	} {
		got, err := ParseRelevance(reply)
		if !errors.Is(err, ErrUnparseableReply) {
			t.Errorf("ParseRelevance(%q): expected ErrUnparseableReply, got %v", reply, err)
		}
		if got.RepresentativeUnnecessary == nil {
			t.Errorf("ParseRelevance(%q): expected empty non-nil sentence list", reply)
		}
	}
}
