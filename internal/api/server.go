package api

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lexiqai/meeting-analyzer/internal/audio"
	"github.com/lexiqai/meeting-analyzer/internal/meeting"
	"github.com/lexiqai/meeting-analyzer/internal/notify"
	"github.com/lexiqai/meeting-analyzer/internal/observability"
)

// Analyzer produces a Report from raw metadata and an optional upload
type Analyzer interface {
	Analyze(ctx context.Context, rawMetadata string, upload *audio.Upload) (meeting.Report, error)
}

// Notifier schedules a report email
type Notifier interface {
	Dispatch(ctx context.Context, report meeting.Report) (notify.Ack, error)
}

// Options configures the HTTP surface
type Options struct {
	MaxUploadBytes int64
	MetricsEnabled bool
	Readiness      []observability.DependencyCheck
}

// Server holds the collaborators behind the HTTP routes
type Server struct {
	analyzer Analyzer
	notifier Notifier
	opts     Options
}

// NewServer creates a Server
func NewServer(analyzer Analyzer, notifier Notifier, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	return &Server{
		analyzer: analyzer,
		notifier: notifier,
		opts:     opts,
	}
}

// Handler returns the routed handler wrapped in request middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/v1/send-analysis-email", s.handleSendEmail)

	mux.HandleFunc("GET /{$}", handleRoot)
	mux.HandleFunc("GET /health", observability.HealthCheckHandler())
	mux.HandleFunc("GET /ready", observability.ReadinessHandler(s.opts.Readiness...))

	if s.opts.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	return withRequestContext(mux)
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the Flowy meeting analysis API.",
		"service": observability.ServiceName,
		"version": observability.ServiceVersion,
	})
}
