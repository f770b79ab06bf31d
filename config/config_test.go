package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setDBEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_PORT", ":8080")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "shop")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "shop")
	t.Setenv("DB_SSLMODE", "disable")
}

func TestLoad_Defaults(t *testing.T) {
	setDBEnv(t)

	cfg := Load(zap.NewNop())
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "shop", cfg.DB.Name)
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, NotifyModeInline, cfg.Notify.Mode)
	assert.Equal(t, 10*time.Second, cfg.Notify.Timeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.StrictStock)
	assert.Empty(t, cfg.SMTP.Host)
}

func TestLoad_Overrides(t *testing.T) {
	setDBEnv(t)
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("NOTIFY_MODE", "kafka")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("STRICT_STOCK", "true")
	t.Setenv("REDIS_DB", "3")

	cfg := Load(zap.NewNop())
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, NotifyModeKafka, cfg.Notify.Mode)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.StrictStock)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestGetEnv_PanicsOnMissing(t *testing.T) {
	require.Panics(t, func() { getEnv("STOREFRONT_TEST_MISSING_KEY", zap.NewNop()) })
}

func TestLoad_InvalidMode(t *testing.T) {
	setDBEnv(t)
	t.Setenv("NOTIFY_MODE", "pigeon")
	require.Panics(t, func() { Load(zap.NewNop()) })
}
