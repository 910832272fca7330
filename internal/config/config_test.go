package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, "localhost", cfg.PostgresHost)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 60, cfg.CacheTTLSeconds)
	assert.Equal(t, "https://auth.homigo.local", cfg.AuthIssuer)
	assert.Equal(t, "homigo-api", cfg.AuthAudience)
	assert.Equal(t, 15, cfg.AuthKeyTTL)
	assert.False(t, cfg.OTELEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("CATALOG_CACHE_TTL_SECONDS", "300")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://homigo.example.com,https://admin.homigo.example.com")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 300, cfg.CacheTTLSeconds)
	assert.Equal(t, []string{"https://homigo.example.com", "https://admin.homigo.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "70000")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_SampleRateOutOfRange(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATE", "1.5")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE")
}
