package stt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lexiqai/meeting-analyzer/internal/audio"
	"github.com/lexiqai/meeting-analyzer/internal/meeting"
	"github.com/lexiqai/meeting-analyzer/internal/resilience"
)

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	f.calls++
	return f.text, f.err
}

func testUpload() *audio.Upload {
	return &audio.Upload{Filename: "meeting.wav", MimeType: "audio/wav", Data: []byte("RIFF....WAVE")}
}

func TestAdapter_Transcribe(t *testing.T) {
	fake := &fakeTranscriber{text: "Let's ship on Friday."}
	adapter := NewAdapter(fake, nil)

	result, err := adapter.Transcribe(context.Background(), testUpload())
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if !result.OK() {
		t.Fatalf("Expected success, got %+v", result)
	}
	if result.Payload.Text != "Let's ship on Friday." || result.Payload.IsEmpty {
		t.Errorf("Unexpected transcript: %+v", result.Payload)
	}
	if fake.calls != 1 {
		t.Errorf("Expected 1 STT call, got %d", fake.calls)
	}
}

func TestAdapter_NoAudio(t *testing.T) {
	fake := &fakeTranscriber{text: "unused"}
	adapter := NewAdapter(fake, nil)

	for name, upload := range map[string]*audio.Upload{
		"nil":   nil,
		"empty": {Filename: "empty.wav"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := adapter.Transcribe(context.Background(), upload)
			if !errors.Is(err, meeting.ErrNoAudioSource) {
				t.Errorf("Expected ErrNoAudioSource, got %v", err)
			}
		})
	}
	if fake.calls != 0 {
		t.Errorf("Expected no STT calls, got %d", fake.calls)
	}
}

func TestAdapter_NoAudioBeforeUnavailable(t *testing.T) {
	adapter := NewAdapter(nil, nil)

	_, err := adapter.Transcribe(context.Background(), nil)
	if !errors.Is(err, meeting.ErrNoAudioSource) {
		t.Errorf("Expected ErrNoAudioSource, got %v", err)
	}
}

func TestAdapter_Unavailable(t *testing.T) {
	adapter := NewAdapter(nil, nil)

	if adapter.Available() {
		t.Error("Expected adapter without transcriber to be unavailable")
	}
	_, err := adapter.Transcribe(context.Background(), testUpload())
	if !errors.Is(err, meeting.ErrServiceUnavailable) {
		t.Errorf("Expected ErrServiceUnavailable, got %v", err)
	}
}

func TestAdapter_EmptyTranscript(t *testing.T) {
	adapter := NewAdapter(&fakeTranscriber{text: "  \n "}, nil)

	result, err := adapter.Transcribe(context.Background(), testUpload())
	if err != nil {
		t.Fatalf("Expected empty transcript to be a success, got %v", err)
	}
	if !result.OK() || !result.Payload.IsEmpty || result.Payload.Text != "" {
		t.Errorf("Expected successful empty transcript, got %+v", result)
	}
	if result.Message != msgEmptyTranscript {
		t.Errorf("Expected explanatory message, got %q", result.Message)
	}
}

func TestAdapter_CallFailureIsInBand(t *testing.T) {
	adapter := NewAdapter(&fakeTranscriber{err: errors.New("decode error")}, nil)

	result, err := adapter.Transcribe(context.Background(), testUpload())
	if err != nil {
		t.Fatalf("Expected no request-level error, got %v", err)
	}
	if result.OK() {
		t.Fatal("Expected failed stage result")
	}
	if result.Reason == "" || !result.Payload.IsEmpty {
		t.Errorf("Expected failure reason and empty payload, got %+v", result)
	}
}

func TestAdapter_OpenCircuit(t *testing.T) {
	fake := &fakeTranscriber{err: errors.New("502 bad gateway")}
	breaker := resilience.NewCircuitBreaker("stt-test", 1, time.Hour)
	adapter := NewAdapter(fake, breaker)

	if _, err := adapter.Transcribe(context.Background(), testUpload()); err != nil {
		t.Fatalf("First failure should be in-band, got %v", err)
	}
	if adapter.Available() {
		t.Error("Expected adapter to be unavailable once the circuit opens")
	}

	_, err := adapter.Transcribe(context.Background(), testUpload())
	if !errors.Is(err, meeting.ErrServiceUnavailable) {
		t.Errorf("Expected ErrServiceUnavailable, got %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("Expected open circuit to skip the STT call, got %d calls", fake.calls)
	}

	if ok, err := adapter.HealthCheck(context.Background()); ok || err == nil {
		t.Error("Expected health check to fail while circuit is open")
	}
}
