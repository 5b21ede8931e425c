package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Coordination timing.
	SpecialistDeadline time.Duration // overall fan-out budget per specialist
	AdapterTimeout     time.Duration // per-source call budget, nested inside the deadline
	RequestTimeout     time.Duration // global bound after which a request is force-finalized
	CompletedTTL       time.Duration // retention of completed reports before eviction
	SweepInterval      time.Duration

	// Option label contract returned to callers.
	MinOptionLabels int
	MaxOptionLabels int

	// External data source credentials and cache sizing.
	OpenWeatherKey  string
	FIRMSKey        string
	WAQIToken       string
	SourceCacheSize int

	// Synthesis provider: "openai", "anthropic", or "" for the built-in
	// rule-based synthesizer.
	SynthProvider string
	SynthModel    string
	SynthTimeout  time.Duration

	// Kafka report publishing (optional downstream feed).
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaReportTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	specialistDeadline, err := envDuration("SPECIALIST_DEADLINE", 20*time.Second)
	if err != nil {
		return nil, err
	}
	adapterTimeout, err := envDuration("ADAPTER_TIMEOUT", 7*time.Second)
	if err != nil {
		return nil, err
	}
	requestTimeout, err := envDuration("REQUEST_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	completedTTL, err := envDuration("COMPLETED_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	sweepInterval, err := envDuration("SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}
	synthTimeout, err := envDuration("SYNTH_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SpecialistDeadline: specialistDeadline,
		AdapterTimeout:     adapterTimeout,
		RequestTimeout:     requestTimeout,
		CompletedTTL:       completedTTL,
		SweepInterval:      sweepInterval,

		MinOptionLabels: envInt("MIN_OPTION_LABELS", 3),
		MaxOptionLabels: envInt("MAX_OPTION_LABELS", 6),

		OpenWeatherKey:  os.Getenv("OPENWEATHER_API_KEY"),
		FIRMSKey:        os.Getenv("FIRMS_API_KEY"),
		WAQIToken:       envOrDefault("WAQI_TOKEN", "demo"),
		SourceCacheSize: envInt("SOURCE_CACHE_SIZE", 1000),

		SynthProvider: os.Getenv("SYNTH_PROVIDER"),
		SynthModel:    os.Getenv("SYNTH_MODEL"),
		SynthTimeout:  synthTimeout,

		KafkaEnabled:     kafkaEnabled,
		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaReportTopic: envOrDefault("KAFKA_REPORT_TOPIC", "simulation-reports"),
	}

	if cfg.AdapterTimeout >= cfg.SpecialistDeadline {
		return nil, errors.New("ADAPTER_TIMEOUT must be shorter than SPECIALIST_DEADLINE")
	}
	if cfg.SpecialistDeadline >= cfg.RequestTimeout {
		return nil, errors.New("SPECIALIST_DEADLINE must be shorter than REQUEST_TIMEOUT")
	}
	if cfg.MinOptionLabels > cfg.MaxOptionLabels {
		return nil, errors.New("MIN_OPTION_LABELS must not exceed MAX_OPTION_LABELS")
	}
	switch cfg.SynthProvider {
	case "", "openai", "anthropic":
	default:
		return nil, fmt.Errorf("unknown SYNTH_PROVIDER %q", cfg.SynthProvider)
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaReportTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_REPORT_TOPIC is empty")
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func envInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
