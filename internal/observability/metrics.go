package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meeting_analyzer_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"route", "code"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meeting_analyzer_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: []float64{0.05, 0.25, 1, 5, 15, 30, 60, 120, 300},
	}, []string{"route"})

	// Stage metrics. Stage failures are reported in-band with a 200, so this
	// counter is the place to alert on them.
	stageOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meeting_analyzer_stage_outcomes_total",
		Help: "Pipeline stage outcomes by stage and status",
	}, []string{"stage", "status"})

	stageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meeting_analyzer_stage_latency_seconds",
		Help:    "Pipeline stage latency in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"stage"})

	stageSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meeting_analyzer_stage_skipped_total",
		Help: "Analysis stages bypassed because the transcript was empty",
	}, []string{"stage"})

	// Audio metrics
	audioBytesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meeting_analyzer_audio_bytes_total",
		Help: "Total uploaded audio bytes accepted for transcription",
	})

	// Notification metrics
	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meeting_analyzer_notifications_total",
		Help: "Report email outcomes",
	}, []string{"status"})

	notifyQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meeting_analyzer_notify_queue_depth",
		Help: "Report emails waiting for a worker",
	})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "meeting_analyzer_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meeting_analyzer_circuit_breaker_failures_total",
		Help: "Total failures recorded by circuit breakers",
	}, []string{"service"})
)

// Notification statuses
const (
	NotificationScheduled = "scheduled"
	NotificationRejected  = "rejected"
	NotificationSent      = "sent"
	NotificationFailed    = "failed"
	NotificationMisconfig = "misconfigured"
)

// StageTimer measures one run of a pipeline stage
type StageTimer struct {
	stage string
	start time.Time
}

// StartStage starts timing a stage
func StartStage(stage string) *StageTimer {
	return &StageTimer{stage: stage, start: time.Now()}
}

// Done records the stage latency and outcome
func (t *StageTimer) Done(status string) {
	stageLatency.WithLabelValues(t.stage).Observe(time.Since(t.start).Seconds())
	stageOutcomes.WithLabelValues(t.stage, status).Inc()
}

// RecordStageSkipped records a stage bypassed by the empty-transcript short-circuit
func RecordStageSkipped(stage string) {
	stageSkipped.WithLabelValues(stage).Inc()
}

// RecordHTTPRequest records a handled HTTP request
func RecordHTTPRequest(route string, code int, duration time.Duration) {
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	httpLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordAudioBytes records accepted audio bytes
func RecordAudioBytes(bytes int) {
	audioBytesProcessed.Add(float64(bytes))
}

// RecordNotification records a report email outcome
func RecordNotification(status string) {
	notifications.WithLabelValues(status).Inc()
}

// SetNotifyQueueDepth records the number of queued report emails
func SetNotifyQueueDepth(depth int) {
	notifyQueueDepth.Set(float64(depth))
}

// UpdateCircuitBreakerState updates circuit breaker state metric
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments circuit breaker failure counter
func IncrementCircuitBreakerFailures(service string) {
	circuitBreakerFailures.WithLabelValues(service).Inc()
}
