package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
	t.Setenv("DEEPGRAM_API_KEY", "test-deepgram-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.GeminiAPIKey != "test-gemini-key" {
		t.Errorf("Expected GeminiAPIKey 'test-gemini-key', got '%s'", cfg.GeminiAPIKey)
	}

	if cfg.DeepgramAPIKey != "test-deepgram-key" {
		t.Errorf("Expected DeepgramAPIKey 'test-deepgram-key', got '%s'", cfg.DeepgramAPIKey)
	}

	if !cfg.STTEnabled() {
		t.Error("Expected STT to be enabled when DEEPGRAM_API_KEY is set")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("GEMINI_API_KEY")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when GEMINI_API_KEY is missing")
	}
}

func TestLoad_STTOptional(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
	t.Setenv("DEEPGRAM_API_KEY", "")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.STTEnabled() {
		t.Error("Expected STT to be disabled without DEEPGRAM_API_KEY")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default Port '8080', got '%s'", cfg.Port)
	}

	if cfg.DeepgramModel != "nova-2" {
		t.Errorf("Expected default DeepgramModel 'nova-2', got '%s'", cfg.DeepgramModel)
	}

	if cfg.LLMModel != "gemini-2.0-flash" {
		t.Errorf("Expected default LLMModel 'gemini-2.0-flash', got '%s'", cfg.LLMModel)
	}

	if cfg.StageTimeout != 60*time.Second {
		t.Errorf("Expected default StageTimeout 60s, got %s", cfg.StageTimeout)
	}

	if cfg.MaxUploadBytes != 100<<20 {
		t.Errorf("Expected default MaxUploadBytes %d, got %d", 100<<20, cfg.MaxUploadBytes)
	}

	if cfg.MailPort != 587 {
		t.Errorf("Expected default MailPort 587, got %d", cfg.MailPort)
	}

	if !cfg.MailStartTLS || cfg.MailSSLTLS {
		t.Errorf("Expected STARTTLS on and implicit TLS off, got %v/%v", cfg.MailStartTLS, cfg.MailSSLTLS)
	}

	if !cfg.MailUseCredentials || !cfg.MailValidateCerts {
		t.Errorf("Expected credentials and certificate checks on, got %v/%v", cfg.MailUseCredentials, cfg.MailValidateCerts)
	}

	if cfg.NotifyWorkers != 2 || cfg.NotifyQueueSize != 32 {
		t.Errorf("Expected notify pool 2/32, got %d/%d", cfg.NotifyWorkers, cfg.NotifyQueueSize)
	}
}

func TestLoad_InvalidPool(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
	t.Setenv("NOTIFY_WORKERS", "0")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for NOTIFY_WORKERS=0")
	}
}

func TestLoad_MailOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
	t.Setenv("USE_CREDENTIALS", "false")
	t.Setenv("VALIDATE_CERTS", "false")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}
	if cfg.MailUseCredentials || cfg.MailValidateCerts {
		t.Errorf("Expected both mail flags off, got %v/%v", cfg.MailUseCredentials, cfg.MailValidateCerts)
	}
}

func TestConfig_ObservabilityDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default LogLevel 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.LogPretty {
		t.Error("Expected default LogPretty false, got true")
	}

	if !cfg.MetricsEnabled {
		t.Error("Expected default MetricsEnabled true, got false")
	}

	if cfg.CircuitBreakerMaxFailures != 5 || cfg.CircuitBreakerResetTimeout != 30 {
		t.Errorf("Expected circuit breaker defaults 5/30, got %d/%d",
			cfg.CircuitBreakerMaxFailures, cfg.CircuitBreakerResetTimeout)
	}
}
