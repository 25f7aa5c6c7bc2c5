package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexiqai/meeting-analyzer/internal/analysis"
	"github.com/lexiqai/meeting-analyzer/internal/api"
	"github.com/lexiqai/meeting-analyzer/internal/config"
	"github.com/lexiqai/meeting-analyzer/internal/llm"
	"github.com/lexiqai/meeting-analyzer/internal/notify"
	"github.com/lexiqai/meeting-analyzer/internal/observability"
	"github.com/lexiqai/meeting-analyzer/internal/pipeline"
	"github.com/lexiqai/meeting-analyzer/internal/resilience"
	"github.com/lexiqai/meeting-analyzer/internal/stt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("llm_model", cfg.LLMModel).
		Bool("stt_enabled", cfg.STTEnabled()).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Meeting Analyzer Service starting")

	// Speech-to-text, guarded by a circuit breaker
	breaker := resilience.NewCircuitBreaker("deepgram",
		cfg.CircuitBreakerMaxFailures,
		time.Duration(cfg.CircuitBreakerResetTimeout)*time.Second)
	breaker.OnStateChange(func(name string, state resilience.CircuitState) {
		observability.UpdateCircuitBreakerState(name, int(state))
		logger.Warn().Str("service", name).Str("state", state.String()).Msg("Circuit breaker state changed")
	})

	var transcriber stt.Transcriber
	if client := stt.NewDeepgramClient(cfg); client != nil {
		transcriber = client
	} else {
		logger.Warn().Msg("DEEPGRAM_API_KEY not set, transcription requests will be rejected")
	}
	sttAdapter := stt.NewAdapter(transcriber, breaker)

	// Language model
	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	gemini, err := llm.NewGeminiClient(initCtx, cfg.GeminiAPIKey)
	cancelInit()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	runner := analysis.NewRunner(gemini, cfg.LLMModel, cfg.StageTimeout)

	// Report email delivery
	pool := notify.NewWorkerPool(cfg.NotifyWorkers, cfg.NotifyQueueSize)
	mailCfg := notify.MailConfigFromConfig(cfg)
	if missing := mailCfg.Missing(); len(missing) > 0 {
		logger.Warn().Strs("missing", missing).Msg("Mail transport incomplete, report emails will be dropped")
	}
	dispatcher := notify.NewDispatcher(pool, notify.NewMailer(mailCfg), mailCfg)

	srv := api.NewServer(pipeline.New(sttAdapter, runner), dispatcher, api.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		MetricsEnabled: cfg.MetricsEnabled,
		Readiness: []observability.DependencyCheck{
			{Name: "stt", Check: sttAdapter.HealthCheck},
			{Name: "llm", Check: gemini.HealthCheck},
		},
	})
	if cfg.MetricsEnabled {
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	// Create HTTP server with timeouts. Writes cover STT plus the analysis stages.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      3*cfg.StageTimeout + 2*time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("endpoint", fmt.Sprintf("http://localhost:%s/api/v1/analyze", cfg.Port)).
			Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let queued report emails go out before exiting
	logger.Info().Int("pending", pool.Pending()).Msg("Draining notification queue")
	pool.Stop()

	logger.Info().Msg("Server exited gracefully")
}
