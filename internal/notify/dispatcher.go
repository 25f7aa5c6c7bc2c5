package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lexiqai/meeting-analyzer/internal/meeting"
	"github.com/lexiqai/meeting-analyzer/internal/observability"
)

// ErrQueueFull means the notification queue has no room for another job
var ErrQueueFull = errors.New("notification queue is full")

const (
	subjectFormat  = "[Flowy] '%s' meeting analysis report"
	defaultTimeout = 30 * time.Second
	ackMessage     = "The analysis report email is being sent in the background."
)

// Ack acknowledges that a report email was scheduled. It says nothing about delivery.
type Ack struct {
	Message    string   `json:"message"`
	Recipients []string `json:"-"`
}

// Dispatcher turns reports into detached email jobs
type Dispatcher struct {
	pool    *WorkerPool
	sender  Sender
	cfg     MailConfig
	timeout time.Duration
}

// NewDispatcher creates a Dispatcher that runs jobs on pool and delivers
// through sender. cfg is only checked for completeness inside each job.
func NewDispatcher(pool *WorkerPool, sender Sender, cfg MailConfig) *Dispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		pool:    pool,
		sender:  sender,
		cfg:     cfg,
		timeout: timeout,
	}
}

// Recipients returns the usable attendee emails in attendee order, deduplicated
// case-insensitively
func Recipients(attendees []meeting.Attendee) []string {
	seen := make(map[string]struct{}, len(attendees))
	recipients := make([]string, 0, len(attendees))
	for _, a := range attendees {
		email := strings.TrimSpace(a.Email)
		if email == "" || !meeting.ValidEmail(email) {
			continue
		}
		key := strings.ToLower(email)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		recipients = append(recipients, email)
	}
	return recipients
}

// Subject builds the report email subject line
func Subject(meetingSubject string) string {
	return fmt.Sprintf(subjectFormat, meetingSubject)
}

// Dispatch validates recipients and schedules the email job. It returns
// ErrNoValidRecipients or ErrQueueFull without scheduling anything; otherwise
// it returns as soon as the job is queued.
func (d *Dispatcher) Dispatch(ctx context.Context, report meeting.Report) (Ack, error) {
	logger := observability.Logger(ctx)

	recipients := Recipients(report.MeetingInfo.Attendees)
	if len(recipients) == 0 {
		observability.RecordNotification(observability.NotificationRejected)
		return Ack{}, fmt.Errorf("%w: no attendee has a usable email address", meeting.ErrNoValidRecipients)
	}

	subject := Subject(report.MeetingInfo.Subject)
	correlationID := observability.CorrelationID(ctx)

	job := func() {
		d.deliver(correlationID, recipients, subject, report)
	}
	if !d.pool.TrySubmit(job) {
		observability.RecordNotification(observability.NotificationRejected)
		logger.Warn().Int("recipients", len(recipients)).Msg("Notification queue full, report email rejected")
		return Ack{}, ErrQueueFull
	}

	observability.RecordNotification(observability.NotificationScheduled)
	logger.Info().
		Int("recipients", len(recipients)).
		Str("subject", subject).
		Msg("Report email scheduled")

	return Ack{Message: ackMessage, Recipients: recipients}, nil
}

// deliver runs on a pool worker after the request has completed. Every
// failure is logged and counted, never returned.
func (d *Dispatcher) deliver(correlationID string, recipients []string, subject string, report meeting.Report) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	ctx = observability.ContextWithCorrelation(ctx, correlationID)
	logger := observability.Logger(ctx)

	if missing := d.cfg.Missing(); len(missing) > 0 {
		observability.RecordNotification(observability.NotificationMisconfig)
		logger.Error().Strs("missing", missing).Msg("Mail transport not configured, report email dropped")
		return
	}
	if d.sender == nil {
		observability.RecordNotification(observability.NotificationMisconfig)
		logger.Error().Msg("No mail sender configured, report email dropped")
		return
	}

	html, err := RenderHTML(report)
	if err != nil {
		observability.RecordNotification(observability.NotificationFailed)
		logger.Error().Err(err).Msg("Failed to render report email")
		return
	}

	msg := Message{
		To:      recipients,
		Subject: subject,
		Text:    RenderText(report),
		HTML:    html,
	}

	start := time.Now()
	if err := d.sender.Send(ctx, msg); err != nil {
		observability.RecordNotification(observability.NotificationFailed)
		logger.Error().Err(err).Int("recipients", len(recipients)).Msg("Failed to send report email")
		return
	}

	observability.RecordNotification(observability.NotificationSent)
	logger.Info().
		Int("recipients", len(recipients)).
		Dur("duration", time.Since(start)).
		Msg("Report email sent")
}
