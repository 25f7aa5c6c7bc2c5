package notify

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/lexiqai/meeting-analyzer/internal/meeting"
)

// recordingSender captures every message instead of delivering it
type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (s *recordingSender) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func (s *recordingSender) messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

func testReport(attendees ...meeting.Attendee) meeting.Report {
	return meeting.Aggregate(
		meeting.Metadata{Subject: "Q3 planning", Date: "2024-07-01", Attendees: attendees},
		meeting.Succeeded(meeting.NewTranscript("We agreed on the roadmap."), "transcribed"),
		meeting.Succeeded([]string{"Roadmap agreed"}, "summarized"),
		meeting.Succeeded([]meeting.ActionItemByAssignee{{Name: "Ana", Tasks: []string{"Publish roadmap"}}}, "assigned"),
		meeting.Succeeded(meeting.Relevance{NecessaryRatio: 0.9, UnnecessaryRatio: 0.1,
			RepresentativeUnnecessary: []meeting.UnnecessarySentence{{Sentence: "Nice weather", Reason: "small talk"}}}, "scored"),
	)
}

func TestRecipients(t *testing.T) {
	attendees := []meeting.Attendee{
		{Name: "Ana", Email: "ana@example.com"},
		{Name: "Ben"},
		{Name: "Cy", Email: "not-an-email"},
		{Name: "Dee", Email: "  "},
		{Name: "Ana again", Email: "ANA@example.com"},
		{Name: "Eve", Email: "eve@example.com"},
	}

	want := []string{"ana@example.com", "eve@example.com"}
	if got := Recipients(attendees); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestSubject(t *testing.T) {
	if got := Subject("Weekly sync"); got != "[Flowy] 'Weekly sync' meeting analysis report" {
		t.Errorf("Unexpected subject %q", got)
	}
}

func TestDispatch_NoValidRecipients(t *testing.T) {
	pool := NewWorkerPool(1, 4)
	sender := &recordingSender{}
	d := NewDispatcher(pool, sender, completeMailConfig())

	_, err := d.Dispatch(context.Background(), testReport(
		meeting.Attendee{Name: "Ana"},
		meeting.Attendee{Name: "Ben", Email: "bad address"},
	))
	if !errors.Is(err, meeting.ErrNoValidRecipients) {
		t.Fatalf("Expected ErrNoValidRecipients, got %v", err)
	}

	pool.Stop()
	if n := len(sender.messages()); n != 0 {
		t.Errorf("Expected nothing scheduled, got %d sends", n)
	}
}

func TestDispatch_SendsOnce(t *testing.T) {
	pool := NewWorkerPool(1, 4)
	sender := &recordingSender{}
	d := NewDispatcher(pool, sender, completeMailConfig())

	ack, err := d.Dispatch(context.Background(), testReport(
		meeting.Attendee{Name: "Ana", Email: "ana@example.com"},
		meeting.Attendee{Name: "Ben", Email: "ben@example.com"},
	))
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if ack.Message == "" {
		t.Error("Expected acknowledgment message")
	}

	pool.Stop()
	sent := sender.messages()
	if len(sent) != 1 {
		t.Fatalf("Expected exactly one send, got %d", len(sent))
	}
	msg := sent[0]
	if !reflect.DeepEqual(msg.To, []string{"ana@example.com", "ben@example.com"}) {
		t.Errorf("Unexpected recipients %v", msg.To)
	}
	if msg.Subject != "[Flowy] 'Q3 planning' meeting analysis report" {
		t.Errorf("Unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Publish roadmap") || !strings.Contains(msg.Text, "Publish roadmap") {
		t.Error("Expected action items in both bodies")
	}
}

func TestDispatch_IncompleteTransportStillAcks(t *testing.T) {
	pool := NewWorkerPool(1, 4)
	sender := &recordingSender{}
	d := NewDispatcher(pool, sender, MailConfig{Server: "smtp.example.com"})

	if _, err := d.Dispatch(context.Background(), testReport(meeting.Attendee{Name: "Ana", Email: "ana@example.com"})); err != nil {
		t.Fatalf("Expected acknowledgment despite incomplete transport, got %v", err)
	}

	pool.Stop()
	if n := len(sender.messages()); n != 0 {
		t.Errorf("Expected job to abort before sending, got %d sends", n)
	}
}

func TestDispatch_SendErrorIsNotRetried(t *testing.T) {
	pool := NewWorkerPool(1, 4)
	sender := &recordingSender{err: errors.New("535 authentication failed")}
	d := NewDispatcher(pool, sender, completeMailConfig())

	if _, err := d.Dispatch(context.Background(), testReport(meeting.Attendee{Name: "Ana", Email: "ana@example.com"})); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	pool.Stop()
	if n := len(sender.messages()); n != 1 {
		t.Errorf("Expected a single attempt, got %d", n)
	}
}

func TestDispatch_QueueFull(t *testing.T) {
	pool := NewWorkerPool(1, 1)
	block := make(chan struct{})
	started := make(chan struct{})
	pool.TrySubmit(func() {
		close(started)
		<-block
	})
	<-started
	if !pool.TrySubmit(func() {}) {
		t.Fatal("Expected filler job to be queued")
	}

	d := NewDispatcher(pool, &recordingSender{}, completeMailConfig())
	_, err := d.Dispatch(context.Background(), testReport(meeting.Attendee{Name: "Ana", Email: "ana@example.com"}))
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}

	close(block)
	pool.Stop()
}
