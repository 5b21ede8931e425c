package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/landscape-sim-service/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 20*time.Second, cfg.SpecialistDeadline)
	assert.Equal(t, 7*time.Second, cfg.AdapterTimeout)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Minute, cfg.CompletedTTL)
	assert.Equal(t, 3, cfg.MinOptionLabels)
	assert.Equal(t, 6, cfg.MaxOptionLabels)
	assert.Equal(t, "demo", cfg.WAQIToken)
	assert.Equal(t, 1000, cfg.SourceCacheSize)
	assert.Empty(t, cfg.SynthProvider)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "simulation-reports", cfg.KafkaReportTopic)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("SPECIALIST_DEADLINE", "10s")
	t.Setenv("ADAPTER_TIMEOUT", "3s")
	t.Setenv("SYNTH_PROVIDER", "anthropic")
	t.Setenv("SYNTH_MODEL", "claude-3-5-sonnet-20241022")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "b1:9092, b2:9092")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.SpecialistDeadline)
	assert.Equal(t, 3*time.Second, cfg.AdapterTimeout)
	assert.Equal(t, "anthropic", cfg.SynthProvider)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.SynthModel)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.KafkaBrokers)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvertedTimeouts(t *testing.T) {
	t.Setenv("ADAPTER_TIMEOUT", "30s")
	t.Setenv("SPECIALIST_DEADLINE", "20s")
	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADAPTER_TIMEOUT")
}

func TestLoadRejectsDeadlineBeyondRequestTimeout(t *testing.T) {
	t.Setenv("SPECIALIST_DEADLINE", "2m")
	t.Setenv("REQUEST_TIMEOUT", "1m")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownSynthProvider(t *testing.T) {
	t.Setenv("SYNTH_PROVIDER", "bard")
	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SYNTH_PROVIDER")
}

func TestLoadRejectsLabelBoundsInversion(t *testing.T) {
	t.Setenv("MIN_OPTION_LABELS", "8")
	t.Setenv("MAX_OPTION_LABELS", "4")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadRejectsKafkaWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", " , ")
	_, err := config.Load()
	assert.Error(t, err)
}
