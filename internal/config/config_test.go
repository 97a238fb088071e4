package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:8081/region_summary.json", cfg.DatasetURL)
	assert.Empty(t, cfg.DatasetPath)
	assert.Equal(t, 10*time.Second, cfg.DatasetTimeout)
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "region-summary-updates", cfg.KafkaTriggerTopic)
	assert.Equal(t, "super-region-totals", cfg.KafkaSinkTopic)
	assert.Equal(t, "avalanche-stats", cfg.KafkaGroupID)
	assert.Equal(t, 5000, cfg.SessionCacheSize)
	assert.Equal(t, 1000, cfg.SessionMax)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATASET_URL", "https://example.org/region_summary.json")
	t.Setenv("DATASET_PATH", "/data/region_summary.json")
	t.Setenv("DATASET_TIMEOUT", "3s")
	t.Setenv("REFRESH_INTERVAL", "1h")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TRIGGER_TOPIC", "custom-trigger")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("SESSION_CACHE_SIZE", "200")
	t.Setenv("SESSION_MAX", "20")
	t.Setenv("SESSION_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://example.org/region_summary.json", cfg.DatasetURL)
	assert.Equal(t, "/data/region_summary.json", cfg.DatasetPath)
	assert.Equal(t, 3*time.Second, cfg.DatasetTimeout)
	assert.Equal(t, time.Hour, cfg.RefreshInterval)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-trigger", cfg.KafkaTriggerTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, 200, cfg.SessionCacheSize)
	assert.Equal(t, 20, cfg.SessionMax)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidDurations(t *testing.T) {
	for _, key := range []string{"DATASET_TIMEOUT", "REFRESH_INTERVAL", "SESSION_TTL"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "bad")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
		t.Run(key+" negative", func(t *testing.T) {
			t.Setenv(key, "-1s")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidSessionSizesFallBack(t *testing.T) {
	t.Setenv("SESSION_CACHE_SIZE", "0")
	t.Setenv("SESSION_MAX", "lots")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.SessionCacheSize)
	assert.Equal(t, 1000, cfg.SessionMax)
}

func TestLoad_KafkaDisabledIgnoresTopics(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
