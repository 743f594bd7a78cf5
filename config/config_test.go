package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"SESSION_STORE", "SESSION_TTL", "KAFKA_BROKERS", "GEMINI_API_KEY", "ADVISOR_TIMEOUT_SECONDS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Session.Store)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Empty(t, cfg.Advisor.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Advisor.Timeout())
	assert.Equal(t, "gemini-3-flash-preview", cfg.Advisor.Model)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("ADVISOR_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreRedis, cfg.Session.Store)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 5*time.Second, cfg.Advisor.Timeout())
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"SESSION_STORE":           "postgres",
		"SESSION_TTL":             "soon",
		"REDIS_DB":                "zero",
		"ADVISOR_TIMEOUT_SECONDS": "-1",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
