package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the meeting analyzer service
type Config struct {
	// Server configuration
	Port           string `envconfig:"PORT" default:"8080"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"104857600"` // 100 MiB

	// Deepgram STT API configuration.
	// An empty key leaves the service running with transcription unavailable (503).
	DeepgramAPIKey   string `envconfig:"DEEPGRAM_API_KEY" default:""`
	DeepgramModel    string `envconfig:"DEEPGRAM_MODEL" default:"nova-2"`
	DeepgramLanguage string `envconfig:"DEEPGRAM_LANGUAGE" default:"en"`

	// Gemini LLM configuration
	GeminiAPIKey string        `envconfig:"GEMINI_API_KEY" required:"true"`
	LLMModel     string        `envconfig:"LLM_MODEL" default:"gemini-2.0-flash"`
	StageTimeout time.Duration `envconfig:"STAGE_TIMEOUT" default:"60s"` // Per analysis stage

	// SMTP transport configuration. Completeness is checked when a report is sent, not at startup.
	MailUsername string        `envconfig:"MAIL_USERNAME" default:""`
	MailPassword string        `envconfig:"MAIL_PASSWORD" default:""`
	MailFrom     string        `envconfig:"MAIL_FROM" default:""`
	MailFromName string        `envconfig:"MAIL_FROM_NAME" default:"Flowy Meeting Reports"`
	MailServer   string        `envconfig:"MAIL_SERVER" default:""`
	MailPort     int           `envconfig:"MAIL_PORT" default:"587"`
	MailStartTLS bool          `envconfig:"MAIL_STARTTLS" default:"true"`
	MailSSLTLS   bool          `envconfig:"MAIL_SSL_TLS" default:"false"`
	MailTimeout  time.Duration `envconfig:"MAIL_TIMEOUT" default:"30s"`
	// With USE_CREDENTIALS off no SMTP AUTH is attempted
	MailUseCredentials bool `envconfig:"USE_CREDENTIALS" default:"true"`
	MailValidateCerts  bool `envconfig:"VALIDATE_CERTS" default:"true"`

	// Notification worker pool
	NotifyWorkers   int `envconfig:"NOTIFY_WORKERS" default:"2"`
	NotifyQueueSize int `envconfig:"NOTIFY_QUEUE_SIZE" default:"32"`

	// Resilience configuration
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`   // Failures before opening circuit
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"` // Seconds before attempting recovery

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.NotifyWorkers <= 0 {
		return fmt.Errorf("NOTIFY_WORKERS must be positive, got %d", c.NotifyWorkers)
	}
	if c.NotifyQueueSize < 0 {
		return fmt.Errorf("NOTIFY_QUEUE_SIZE must not be negative, got %d", c.NotifyQueueSize)
	}
	return nil
}

// STTEnabled reports whether a Deepgram key was supplied
func (c *Config) STTEnabled() bool {
	return c.DeepgramAPIKey != ""
}
